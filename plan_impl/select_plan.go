package plan_impl

import (
	"github.com/JyotinderSingh/dropexec/plan"
	"github.com/JyotinderSingh/dropexec/query"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/scan"
)

var _ plan.Plan = &SelectPlan{}

type SelectPlan struct {
	inputPlan plan.Plan
	predicate *query.Predicate
}

// NewSelectPlan creates a new select node in the query tree,
// having the specified subquery and predicate. Every field the predicate
// mentions must be in the input's schema.
func NewSelectPlan(inputPlan plan.Plan, predicate *query.Predicate) (*SelectPlan, error) {
	if err := predicate.CheckFields(inputPlan.Schema()); err != nil {
		return nil, err
	}
	return &SelectPlan{
		inputPlan: inputPlan,
		predicate: predicate,
	}, nil
}

// Open creates a select scan for this query.
func (sp *SelectPlan) Open() (scan.Scan, error) {
	inputScan, err := sp.inputPlan.Open()
	if err != nil {
		return nil, err
	}
	return query.NewSelectScan(inputScan, sp.predicate), nil
}

// BlocksAccessed estimates the number of block accesses in the selection,
// which is the same as in the underlying query.
func (sp *SelectPlan) BlocksAccessed() int {
	return sp.inputPlan.BlocksAccessed()
}

// RecordsOutput estimates the number of records in the selection,
// which is determined by the reduction factor of the predicate.
func (sp *SelectPlan) RecordsOutput() int {
	return sp.inputPlan.RecordsOutput() / sp.predicate.ReductionFactor(sp.inputPlan)
}

// DistinctValues estimates the number of distinct values in the selection.
func (sp *SelectPlan) DistinctValues(fieldName string) int {
	// fieldName = constant leaves a single value.
	if sp.predicate.EquatesWithConstant(fieldName) != nil {
		return 1
	}

	// fieldName = otherField keeps the smaller domain.
	if fieldName2 := sp.predicate.EquatesWithField(fieldName); fieldName2 != "" {
		return min(
			sp.inputPlan.DistinctValues(fieldName),
			sp.inputPlan.DistinctValues(fieldName2),
		)
	}

	return min(sp.inputPlan.DistinctValues(fieldName), max(sp.RecordsOutput(), 1))
}

// Schema returns the schema of the selection,
// which is the same as the schema of the underlying query.
func (sp *SelectPlan) Schema() *record.Schema {
	return sp.inputPlan.Schema()
}

func (sp *SelectPlan) describe() string {
	return "select " + sp.predicate.String()
}

func (sp *SelectPlan) inputs() []plan.Plan {
	return []plan.Plan{sp.inputPlan}
}
