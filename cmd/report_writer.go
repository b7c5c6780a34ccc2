package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"

	"github.com/nixvuln/nixvuln/internal/file"
)

func reportWriter() (io.Writer, func() error, error) {
	w, closer, err := file.GetWriter(afero.NewOsFs(), os.Stdout, appConfig.File)
	if err != nil || appConfig.File == "" {
		return w, closer, err
	}
	return w, func() error {
		if !appConfig.Quiet {
			fmt.Printf("Report written to %q\n", appConfig.File)
		}
		return closer()
	}, nil
}
