package types

import "github.com/pkg/errors"

// Operator is the type of Operator used in a term.
type Operator int

const (
	NONE Operator = iota - 1
	// EQ is the equal Operator.
	EQ
	// NE is the not equal Operator.
	NE
	// LT is the less than Operator.
	LT
	// LE is the less than or equal Operator.
	LE
	// GT is the greater than Operator.
	GT
	// GE is the greater than or equal Operator.
	GE
)

// String returns the string representation of the Operator.
func (op Operator) String() string {
	switch op {
	case EQ:
		return "="
	case NE:
		return "!="
	case LT:
		return "<"
	case LE:
		return "<="
	case GT:
		return ">"
	case GE:
		return ">="
	default:
		return ""
	}
}

// Flip returns the operator that gives the same result when the operands are swapped.
func (op Operator) Flip() Operator {
	switch op {
	case LT:
		return GT
	case LE:
		return GE
	case GT:
		return LT
	case GE:
		return LE
	default:
		return op
	}
}

// OperatorFromString returns the Operator from the given string.
func OperatorFromString(op string) (Operator, error) {
	switch op {
	case "=", "==":
		return EQ, nil
	case "<>", "!=":
		return NE, nil
	case "<":
		return LT, nil
	case "<=":
		return LE, nil
	case ">":
		return GT, nil
	case ">=":
		return GE, nil
	default:
		return NONE, errors.Errorf("invalid operator: %s", op)
	}
}
