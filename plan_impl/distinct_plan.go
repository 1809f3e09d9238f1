package plan_impl

import (
	"strings"

	"github.com/JyotinderSingh/dropexec/plan"
	"github.com/JyotinderSingh/dropexec/query"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/pkg/errors"
)

var _ plan.Plan = (*DistinctPlan)(nil)

// DistinctPlan drops records whose values on the distinct fields repeat an
// earlier record. The input needs no particular order.
type DistinctPlan struct {
	inputPlan plan.Plan
	fields    []string
}

func NewDistinctPlan(inputPlan plan.Plan, fields []string) (*DistinctPlan, error) {
	for _, field := range fields {
		if !inputPlan.Schema().HasField(field) {
			return nil, errors.Wrapf(query.ErrFieldNotFound, "distinct %s", field)
		}
	}
	return &DistinctPlan{inputPlan: inputPlan, fields: fields}, nil
}

func (dp *DistinctPlan) Open() (scan.Scan, error) {
	inputScan, err := dp.inputPlan.Open()
	if err != nil {
		return nil, err
	}
	return query.NewDistinctScan(inputScan, dp.fields), nil
}

// BlocksAccessed is one pass over the input.
func (dp *DistinctPlan) BlocksAccessed() int {
	return dp.inputPlan.BlocksAccessed()
}

// RecordsOutput is bounded by the number of value combinations of the
// distinct fields.
func (dp *DistinctPlan) RecordsOutput() int {
	combinations := 1
	for _, field := range dp.fields {
		combinations = mulSat(combinations, dp.inputPlan.DistinctValues(field))
	}
	return min(dp.inputPlan.RecordsOutput(), combinations)
}

func (dp *DistinctPlan) DistinctValues(fieldName string) int {
	return dp.inputPlan.DistinctValues(fieldName)
}

func (dp *DistinctPlan) Schema() *record.Schema {
	return dp.inputPlan.Schema()
}

func (dp *DistinctPlan) describe() string {
	return "distinct " + strings.Join(dp.fields, ", ")
}

func (dp *DistinctPlan) inputs() []plan.Plan {
	return []plan.Plan{dp.inputPlan}
}
