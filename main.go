package main

import "github.com/nixvuln/nixvuln/cmd"

func main() {
	cmd.Execute()
}
