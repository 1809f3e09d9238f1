package plan_impl

import (
	"strings"

	"github.com/JyotinderSingh/dropexec/plan"
	"github.com/JyotinderSingh/dropexec/query"
	"github.com/JyotinderSingh/dropexec/query/functions"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/JyotinderSingh/dropexec/tx"
	"github.com/JyotinderSingh/dropexec/types"
	"github.com/pkg/errors"
)

var _ plan.Plan = &GroupByPlan{}

type GroupByPlan struct {
	inputPlan   plan.Plan
	groupFields []string
	specs       []functions.Spec
	schema      *record.Schema
}

// NewGroupByPlan creates a groupby plan for the underlying
// query. The grouping is determined by the specified collection
// of group fields, and the aggregation is computed by the specified
// aggregation functions. The input is sorted on the group fields first;
// without group fields the whole input is a single group and is not sorted.
func NewGroupByPlan(transaction *tx.Transaction, inputPlan plan.Plan, groupFields []string, specs []functions.Spec) (*GroupByPlan, error) {
	inputSchema := inputPlan.Schema()
	gbp := &GroupByPlan{
		inputPlan:   inputPlan,
		groupFields: groupFields,
		specs:       specs,
		schema:      record.NewSchema(),
	}

	for _, field := range groupFields {
		if !inputSchema.HasField(field) {
			return nil, errors.Wrapf(query.ErrFieldNotFound, "group by %s", field)
		}
		gbp.schema.Add(field, inputSchema)
	}

	for _, spec := range specs {
		if !inputSchema.HasField(spec.Field) {
			return nil, errors.Wrapf(query.ErrFieldNotFound, "aggregate %s", spec)
		}
		sourceType := inputSchema.Type(spec.Field)
		if spec.NeedsInteger() && sourceType != types.Integer {
			return nil, errors.Errorf("aggregate %s needs an integer field, %s is %s", spec, spec.Field, sourceType)
		}
		outputType := spec.OutputType(sourceType)
		if outputType == types.Varchar {
			gbp.schema.AddStringField(spec.FieldName(), inputSchema.Length(spec.Field))
		} else {
			gbp.schema.AddIntField(spec.FieldName())
		}
	}

	if len(groupFields) > 0 {
		sorted, err := NewSortPlan(transaction, inputPlan, query.NewAscendingSort(groupFields...))
		if err != nil {
			return nil, err
		}
		gbp.inputPlan = sorted
	}
	return gbp, nil
}

// Open opens the input, which the sort plan keeps grouped, and creates
// fresh aggregation functions for the new scan.
func (p *GroupByPlan) Open() (scan.Scan, error) {
	aggregationFunctions := make([]functions.AggregationFunction, 0, len(p.specs))
	for _, spec := range p.specs {
		fn, err := spec.New()
		if err != nil {
			return nil, err
		}
		aggregationFunctions = append(aggregationFunctions, fn)
	}

	inputScan, err := p.inputPlan.Open()
	if err != nil {
		return nil, err
	}
	return query.NewGroupByScan(inputScan, p.groupFields, aggregationFunctions)
}

// BlocksAccessed returns the estimated number of block accesses
// required to compute the aggregation,
// which is one pass through the sorted table.
// It does not include the one-time cost of materializing and sorting the records.
func (p *GroupByPlan) BlocksAccessed() int {
	return p.inputPlan.BlocksAccessed()
}

// RecordsOutput returns the number of groups. Assuming equal distribution,
// this is the product of the distinct values of each grouping field.
func (p *GroupByPlan) RecordsOutput() int {
	numGroups := 1
	for _, field := range p.groupFields {
		numGroups = mulSat(numGroups, p.inputPlan.DistinctValues(field))
	}
	return min(numGroups, max(p.inputPlan.RecordsOutput(), 1))
}

// DistinctValues is the input's estimate for a grouping field. Aggregation
// fields are assumed to be distinct in every group.
func (p *GroupByPlan) DistinctValues(fieldName string) int {
	for _, field := range p.groupFields {
		if field == fieldName {
			return p.inputPlan.DistinctValues(fieldName)
		}
	}
	return p.RecordsOutput()
}

// Schema returns the schema of the output table.
// The schema consists of the grouping fields and the aggregation fields.
func (p *GroupByPlan) Schema() *record.Schema {
	return p.schema
}

func (p *GroupByPlan) describe() string {
	specs := make([]string, len(p.specs))
	for i, spec := range p.specs {
		specs[i] = spec.String()
	}
	label := "groupby [" + strings.Join(p.groupFields, ", ") + "]"
	if len(specs) > 0 {
		label += " " + strings.Join(specs, ", ")
	}
	return label
}

func (p *GroupByPlan) inputs() []plan.Plan {
	return []plan.Plan{p.inputPlan}
}
