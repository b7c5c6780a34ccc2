package version

import "fmt"

// Version is a single raw version string that is ordered with Nix version semantics.
type Version struct {
	Raw string
}

func NewVersion(raw string) (*Version, error) {
	if raw == "" {
		return nil, ErrNoVersionProvided
	}
	return &Version{Raw: raw}, nil
}

// Must is meant for testing only, do not use within the library
func Must(raw string) *Version {
	v, err := NewVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare compares this version to another version.
// This returns -1, 0, or 1 if this version is smaller, equal, or larger than the other version, respectively.
func (v *Version) Compare(other *Version) (int, error) {
	if other == nil {
		return -1, ErrNoVersionProvided
	}
	return Compare(v.Raw, other.Raw), nil
}

func (v Version) String() string {
	return fmt.Sprintf("%s (nix)", v.Raw)
}
