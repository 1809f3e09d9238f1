package query

import (
	"math"
	"strings"

	"github.com/JyotinderSingh/dropexec/plan"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/scan"
)

// Predicate is a conjunction of terms. The empty predicate is TRUE.
type Predicate struct {
	terms []*Term
}

// NewPredicate creates an empty predicate, corresponding to TRUE.
func NewPredicate() *Predicate {
	return &Predicate{}
}

// NewPredicateFromTerm creates a new predicate from the specified term.
func NewPredicateFromTerm(term *Term) *Predicate {
	return &Predicate{terms: []*Term{term}}
}

// ConjoinWith modifies the predicate to be the conjunction of itself and the specified predicate.
func (p *Predicate) ConjoinWith(other *Predicate) {
	if other == nil {
		return
	}
	p.terms = append(p.terms, other.terms...)
}

// IsEmpty reports whether the predicate has no terms.
func (p *Predicate) IsEmpty() bool {
	return p == nil || len(p.terms) == 0
}

func (p *Predicate) Terms() []*Term {
	if p == nil {
		return nil
	}
	return p.terms
}

// IsSatisfied returns true if every term holds for the current record of inputScan.
func (p *Predicate) IsSatisfied(inputScan scan.Scan) (bool, error) {
	for _, term := range p.Terms() {
		ok, err := term.IsSatisfied(inputScan)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// ReductionFactor is the product of the terms' reduction factors, capped at math.MaxInt32.
func (p *Predicate) ReductionFactor(queryPlan plan.Plan) int {
	factor := 1
	for _, term := range p.Terms() {
		factor = saturatingMul(factor, term.ReductionFactor(queryPlan))
	}
	return factor
}

func saturatingMul(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt32/b {
		return math.MaxInt32
	}
	return a * b
}

// SelectSubPredicate returns the terms that apply to schema, or nil if there are none.
func (p *Predicate) SelectSubPredicate(schema *record.Schema) *Predicate {
	result := NewPredicate()
	for _, term := range p.Terms() {
		if term.AppliesTo(schema) {
			result.terms = append(result.terms, term)
		}
	}
	if len(result.terms) == 0 {
		return nil
	}
	return result
}

// JoinSubPredicate returns the terms that apply to the union of the two
// schemas but to neither schema alone, or nil if there are none.
func (p *Predicate) JoinSubPredicate(schema1, schema2 *record.Schema) *Predicate {
	unionSchema := record.NewSchema()
	unionSchema.AddAll(schema1)
	unionSchema.AddAll(schema2)

	result := NewPredicate()
	for _, term := range p.Terms() {
		if !term.AppliesTo(schema1) && !term.AppliesTo(schema2) && term.AppliesTo(unionSchema) {
			result.terms = append(result.terms, term)
		}
	}
	if len(result.terms) == 0 {
		return nil
	}
	return result
}

// Without returns the predicate minus the first term equating the two
// fields, or nil if nothing is left.
func (p *Predicate) Without(field1, field2 string) *Predicate {
	result := NewPredicate()
	removed := false
	for _, term := range p.Terms() {
		if !removed && term.EquatesWithField(field1) == field2 {
			removed = true
			continue
		}
		result.terms = append(result.terms, term)
	}
	if len(result.terms) == 0 {
		return nil
	}
	return result
}

// EquatesWithConstant returns c if some term is "F=c" for the specified field,
// or nil otherwise.
func (p *Predicate) EquatesWithConstant(fieldName string) any {
	for _, term := range p.Terms() {
		if c := term.EquatesWithConstant(fieldName); c != nil {
			return c
		}
	}
	return nil
}

// EquatesWithField returns F2 if some term is "F1=F2" for the specified field,
// or "" otherwise.
func (p *Predicate) EquatesWithField(fieldName string) string {
	for _, term := range p.Terms() {
		if f := term.EquatesWithField(fieldName); f != "" {
			return f
		}
	}
	return ""
}

// CheckFields returns ErrFieldNotFound if a term references a field outside schema.
func (p *Predicate) CheckFields(schema *record.Schema) error {
	for _, term := range p.Terms() {
		for _, field := range term.Fields() {
			if !schema.HasField(field) {
				return fieldNotFound(field)
			}
		}
	}
	return nil
}

func (p *Predicate) String() string {
	parts := make([]string, 0, len(p.Terms()))
	for _, term := range p.Terms() {
		parts = append(parts, term.String())
	}
	return strings.Join(parts, " and ")
}
