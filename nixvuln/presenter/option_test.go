package presenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOption(t *testing.T) {
	tests := []struct {
		input    string
		expected Option
	}{
		{"json", JSONPresenter},
		{"JSON", JSONPresenter},
		{"table", TablePresenter},
		{"cyclonedx", UnknownPresenter},
		{"", UnknownPresenter},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			assert.Equal(t, test.expected, ParseOption(test.input))
		})
	}
}

func TestOption_String(t *testing.T) {
	assert.Equal(t, "json", JSONPresenter.String())
	assert.Equal(t, "UnknownPresenter", Option(42).String())
}
