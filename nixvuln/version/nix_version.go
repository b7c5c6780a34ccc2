package version

import "strings"

// Compare orders two version strings the way nix-env does when deciding upgrades. Both strings are split into
// components: maximal runs of digits, or maximal runs of characters that are neither digits nor one of the
// separators "." and "-". Corresponding components are compared pairwise, a missing component counts as the
// empty string. This returns -1, 0, or 1 if a is smaller, equal, or larger than b, respectively.
func Compare(a, b string) int {
	var ca, cb string
	for a != "" || b != "" {
		ca, a = nextComponent(a)
		cb, b = nextComponent(b)
		switch {
		case componentLess(ca, cb):
			return -1
		case componentLess(cb, ca):
			return 1
		}
	}
	return 0
}

// Less is Compare(a, b) < 0, handy for sort.Slice.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

func nextComponent(s string) (string, string) {
	s = strings.TrimLeft(s, ".-")
	if s == "" {
		return "", ""
	}

	end := 1
	if isDigit(s[0]) {
		for end < len(s) && isDigit(s[end]) {
			end++
		}
	} else {
		for end < len(s) && !isDigit(s[end]) && s[end] != '.' && s[end] != '-' {
			end++
		}
	}
	return s[:end], s[end:]
}

// componentLess yields the order: "pre" < "" < other non-numeric components (byte-wise) < numbers.
func componentLess(c1, c2 string) bool {
	n1, n2 := isNumber(c1), isNumber(c2)
	switch {
	case n1 && n2:
		return numberLess(c1, c2)
	case c1 == "" && n2:
		return true
	case c1 == "pre" && c2 != "pre":
		return true
	case c2 == "pre":
		return false
	case n2:
		return true
	case n1:
		return false
	}
	return c1 < c2
}

// numberLess compares two digit runs of arbitrary length without converting them.
func numberLess(a, b string) bool {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
