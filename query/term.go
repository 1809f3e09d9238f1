package query

import (
	"math"

	"github.com/JyotinderSingh/dropexec/plan"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/JyotinderSingh/dropexec/types"
)

// Term compares two expressions with a relational operator.
type Term struct {
	lhs *Expression
	rhs *Expression
	op  types.Operator
}

func NewTerm(lhs, rhs *Expression, op types.Operator) *Term {
	return &Term{lhs: lhs, rhs: rhs, op: op}
}

// IsSatisfied evaluates the term against the current record of inputScan.
// Values of different types never satisfy a term.
func (t *Term) IsSatisfied(inputScan scan.Scan) (bool, error) {
	lhsVal, err := t.lhs.Evaluate(inputScan)
	if err != nil {
		return false, err
	}
	rhsVal, err := t.rhs.Evaluate(inputScan)
	if err != nil {
		return false, err
	}
	return types.CompareSupportedTypes(lhsVal, rhsVal, t.op), nil
}

// ReductionFactor calculates the extent to which selecting on the term reduces
// the number of records output by a query. A factor of 2 halves the output and
// a factor of 1 has no effect.
func (t *Term) ReductionFactor(queryPlan plan.Plan) int {
	switch {
	case t.lhs.IsFieldName() && t.rhs.IsFieldName():
		distinct := max(queryPlan.DistinctValues(t.lhs.AsFieldName()), queryPlan.DistinctValues(t.rhs.AsFieldName()))
		if t.op == types.EQ {
			return max(1, distinct)
		}
		return 1
	case t.lhs.IsFieldName():
		return reductionForConstantComparison(queryPlan.DistinctValues(t.lhs.AsFieldName()), t.op)
	case t.rhs.IsFieldName():
		return reductionForConstantComparison(queryPlan.DistinctValues(t.rhs.AsFieldName()), t.op)
	}

	if types.CompareSupportedTypes(t.lhs.AsConstant(), t.rhs.AsConstant(), t.op) {
		return 1
	}
	return math.MaxInt32
}

func reductionForConstantComparison(distinctValues int, op types.Operator) int {
	switch op {
	case types.EQ:
		return max(1, distinctValues)
	case types.LT, types.LE, types.GT, types.GE:
		// Uniform distribution: a range keeps about half the values.
		return max(1, distinctValues/2)
	default:
		return 1
	}
}

// EquatesWithConstant returns c if the term is of the form "F=c" for the
// specified field F. Otherwise it returns nil.
func (t *Term) EquatesWithConstant(fieldName string) any {
	if t.op != types.EQ {
		return nil
	}
	if t.lhs.AsFieldName() == fieldName && t.lhs.IsFieldName() && !t.rhs.IsFieldName() {
		return t.rhs.AsConstant()
	}
	if t.rhs.AsFieldName() == fieldName && t.rhs.IsFieldName() && !t.lhs.IsFieldName() {
		return t.lhs.AsConstant()
	}
	return nil
}

// EquatesWithField returns F2 if the term is of the form "F1=F2" for the
// specified field F1. Otherwise it returns "".
func (t *Term) EquatesWithField(fieldName string) string {
	if t.op != types.EQ || !t.lhs.IsFieldName() || !t.rhs.IsFieldName() {
		return ""
	}
	if t.lhs.AsFieldName() == fieldName {
		return t.rhs.AsFieldName()
	}
	if t.rhs.AsFieldName() == fieldName {
		return t.lhs.AsFieldName()
	}
	return ""
}

// AppliesTo returns true if both of the term's expressions
// apply to the specified schema.
func (t *Term) AppliesTo(schema *record.Schema) bool {
	return t.lhs.AppliesTo(schema) && t.rhs.AppliesTo(schema)
}

// Fields returns the field names the term references.
func (t *Term) Fields() []string {
	var fields []string
	for _, e := range []*Expression{t.lhs, t.rhs} {
		if e.IsFieldName() {
			fields = append(fields, e.AsFieldName())
		}
	}
	return fields
}

func (t *Term) String() string {
	return t.lhs.String() + " " + t.op.String() + " " + t.rhs.String()
}
