package version

import "fmt"

type Constraint interface {
	fmt.Stringer
	Satisfied(*Version) (bool, error)
}
