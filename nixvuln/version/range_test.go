package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRange_Satisfied(t *testing.T) {
	tests := []struct {
		name     string
		r        Range
		version  string
		expected bool
	}{
		{name: "any", r: Range{}, version: "0.0.1", expected: true},
		{name: "exact hit", r: Range{Exact: "1.2.3"}, version: "1.2.3", expected: true},
		{name: "exact miss", r: Range{Exact: "1.2.3"}, version: "1.2.4", expected: false},
		{name: "exact with leading zeros", r: Range{Exact: "1.02"}, version: "1.2", expected: true},
		{name: "end excluding below", r: Range{EndExcluding: "2.0"}, version: "1.9", expected: true},
		{name: "end excluding at bound", r: Range{EndExcluding: "2.0"}, version: "2.0", expected: false},
		{name: "end including at bound", r: Range{EndIncluding: "2.0"}, version: "2.0", expected: true},
		{name: "end including pre release", r: Range{EndIncluding: "2.0"}, version: "2.0pre1", expected: true},
		{name: "start including at bound", r: Range{StartIncluding: "1.0", EndExcluding: "2.0"}, version: "1.0", expected: true},
		{name: "start excluding at bound", r: Range{StartExcluding: "1.0", EndExcluding: "2.0"}, version: "1.0", expected: false},
		{name: "start excluding above", r: Range{StartExcluding: "1.0", EndExcluding: "2.0"}, version: "1.0.1", expected: true},
		{name: "missing component sorts before zero", r: Range{EndExcluding: "1.0"}, version: "1", expected: true},
		{name: "above window", r: Range{StartIncluding: "1.0", EndIncluding: "1.5"}, version: "1.5.1", expected: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ok, err := test.r.Satisfied(Must(test.version))
			require.NoError(t, err)
			assert.Equal(t, test.expected, ok)
			assert.Equal(t, test.expected, test.r.Contains(test.version))
		})
	}
}

func TestRange_SatisfiedWithoutVersion(t *testing.T) {
	_, err := Range{}.Satisfied(nil)
	assert.ErrorIs(t, err, ErrNoVersionProvided)
	assert.False(t, Range{}.Contains(""))
}

func TestRange_String(t *testing.T) {
	tests := []struct {
		r        Range
		expected string
	}{
		{r: Range{}, expected: "*"},
		{r: Range{Exact: "1.0"}, expected: "= 1.0"},
		{r: Range{StartIncluding: "1.0", EndExcluding: "2.0"}, expected: ">= 1.0, < 2.0"},
		{r: Range{StartExcluding: "1.0"}, expected: "> 1.0"},
		{r: Range{EndIncluding: "3"}, expected: "<= 3"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			assert.Equal(t, test.expected, test.r.String())
			assert.Equal(t, test.expected == "*", test.r.IsAny())
		})
	}
}

func TestOperator(t *testing.T) {
	tests := []struct {
		op         Operator
		comparison int
		expected   bool
	}{
		{op: EQ, comparison: 0, expected: true},
		{op: EQ, comparison: 1, expected: false},
		{op: GTE, comparison: 0, expected: true},
		{op: GTE, comparison: 1, expected: true},
		{op: GTE, comparison: -1, expected: false},
		{op: LT, comparison: -1, expected: true},
		{op: LT, comparison: 0, expected: false},
		{op: Operator("~>"), comparison: 0, expected: false},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, test.op.Satisfied(test.comparison), "%s %d", test.op, test.comparison)
	}
}
