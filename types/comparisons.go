package types

import (
	"cmp"

	"github.com/pkg/errors"
)

// ErrIncomparable is returned when two values of different types are compared.
var ErrIncomparable = errors.New("incomparable values")

// Compare orders two field values. Only int and string values are supported and
// both sides must hold the same type.
func Compare(lhs, rhs any) (int, error) {
	switch l := lhs.(type) {
	case int:
		if r, ok := rhs.(int); ok {
			return cmp.Compare(l, r), nil
		}
	case string:
		if r, ok := rhs.(string); ok {
			return cmp.Compare(l, r), nil
		}
	}
	return 0, errors.Wrapf(ErrIncomparable, "%T vs %T", lhs, rhs)
}

// Equal reports whether two field values hold the same type and value.
func Equal(lhs, rhs any) bool {
	c, err := Compare(lhs, rhs)
	return err == nil && c == 0
}

// CompareSupportedTypes evaluates lhs op rhs. Mismatched or unsupported
// types never satisfy any operator.
func CompareSupportedTypes(lhs, rhs any, op Operator) bool {
	c, err := Compare(lhs, rhs)
	if err != nil {
		return false
	}
	switch op {
	case EQ:
		return c == 0
	case NE:
		return c != 0
	case LT:
		return c < 0
	case LE:
		return c <= 0
	case GT:
		return c > 0
	case GE:
		return c >= 0
	default:
		return false
	}
}
