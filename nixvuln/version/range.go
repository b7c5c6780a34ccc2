package version

import (
	"fmt"
	"strings"
)

var _ Constraint = (*Range)(nil)

// Range is the affected version predicate of a single NVD cpe_match entry. Either Exact is set (the version
// pinned in the CPE itself) or any combination of one lower and one upper bound. A Range without any field
// set matches every version.
type Range struct {
	Exact          string `json:"exact,omitempty"`
	StartIncluding string `json:"startIncluding,omitempty"`
	StartExcluding string `json:"startExcluding,omitempty"`
	EndIncluding   string `json:"endIncluding,omitempty"`
	EndExcluding   string `json:"endExcluding,omitempty"`
}

type rangeUnit struct {
	op  Operator
	ver string
}

func (r Range) units() []rangeUnit {
	if r.Exact != "" {
		return []rangeUnit{{op: EQ, ver: r.Exact}}
	}

	var units []rangeUnit
	if r.StartIncluding != "" {
		units = append(units, rangeUnit{op: GTE, ver: r.StartIncluding})
	} else if r.StartExcluding != "" {
		units = append(units, rangeUnit{op: GT, ver: r.StartExcluding})
	}

	if r.EndExcluding != "" {
		units = append(units, rangeUnit{op: LT, ver: r.EndExcluding})
	} else if r.EndIncluding != "" {
		units = append(units, rangeUnit{op: LTE, ver: r.EndIncluding})
	}
	return units
}

// IsAny reports whether the range places no restriction on the version at all.
func (r Range) IsAny() bool {
	return len(r.units()) == 0
}

func (r Range) Satisfied(v *Version) (bool, error) {
	if v == nil {
		return false, ErrNoVersionProvided
	}
	for _, u := range r.units() {
		if !u.op.Satisfied(Compare(v.Raw, u.ver)) {
			return false, nil
		}
	}
	return true, nil
}

// Contains is Satisfied for a raw version string; an empty string is never contained.
func (r Range) Contains(raw string) bool {
	v, err := NewVersion(raw)
	if err != nil {
		return false
	}
	ok, _ := r.Satisfied(v)
	return ok
}

func (r Range) String() string {
	units := r.units()
	if len(units) == 0 {
		return "*"
	}
	constraints := make([]string, 0, len(units))
	for _, u := range units {
		constraints = append(constraints, fmt.Sprintf("%s %s", u.op, u.ver))
	}
	return strings.Join(constraints, ", ")
}
