package version

const (
	EQ  Operator = "="
	GT  Operator = ">"
	LT  Operator = "<"
	GTE Operator = ">="
	LTE Operator = "<="
)

type Operator string

// Satisfied reports whether a comparison result (as returned by Compare, left-hand side being the candidate
// version) fulfills the operator.
func (op Operator) Satisfied(comparison int) bool {
	switch op {
	case EQ:
		return comparison == 0
	case GT:
		return comparison > 0
	case GTE:
		return comparison >= 0
	case LT:
		return comparison < 0
	case LTE:
		return comparison <= 0
	}
	return false
}
