package derivation

import (
	"errors"
	"fmt"
)

// ErrSkip marks descriptors that do not name a versioned package (source archives, patches, names without a
// version). Such descriptors are filtered out, they are not failures.
var ErrSkip = errors.New("not a versioned package")

type skipError struct {
	name   string
	reason string
}

func (e skipError) Error() string {
	return fmt.Sprintf("skipping %q: %s", e.name, e.reason)
}

func (e skipError) Unwrap() error {
	return ErrSkip
}

// ErrNoName is returned when a descriptor carries no name in any of its encodings.
var ErrNoName = errors.New("descriptor has no name")
