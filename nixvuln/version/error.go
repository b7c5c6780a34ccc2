package version

import "errors"

var ErrNoVersionProvided = errors.New("no version provided for comparison")
