package plan_impl

import (
	"github.com/JyotinderSingh/dropexec/plan"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/JyotinderSingh/dropexec/tx"
)

var _ plan.Plan = (*MaterializePlan)(nil)

// MaterializePlan represents the Plan for the materialize operator.
type MaterializePlan struct {
	srcPlan plan.Plan
	tx      *tx.Transaction
}

// NewMaterializePlan creates a materialize plan for the specified query.
func NewMaterializePlan(tx *tx.Transaction, srcPlan plan.Plan) *MaterializePlan {
	return &MaterializePlan{
		srcPlan: srcPlan,
		tx:      tx,
	}
}

// Open copies the output records of the underlying query into a temporary
// table and returns a scan of it. Closing the scan drops the table.
func (mp *MaterializePlan) Open() (scan.Scan, error) {
	tempTable, err := materializeInto(mp.tx, mp.srcPlan)
	if err != nil {
		return nil, err
	}
	return tempTable.OpenOwned()
}

// BlocksAccessed returns the estimated number of blocks in the materialized table.
// It does not include the one-time cost of copying the records.
func (mp *MaterializePlan) BlocksAccessed() int {
	return materializedBlocks(mp.tx, mp.srcPlan.Schema(), mp.srcPlan.RecordsOutput())
}

// RecordsOutput returns the number of records in the materialized table.
func (mp *MaterializePlan) RecordsOutput() int {
	return mp.srcPlan.RecordsOutput()
}

// DistinctValues returns the number of distinct field values, which is the same as the underlying plan.
func (mp *MaterializePlan) DistinctValues(fieldName string) int {
	return mp.srcPlan.DistinctValues(fieldName)
}

// Schema returns the schema of the materialized table, which is the same as the underlying plan.
func (mp *MaterializePlan) Schema() *record.Schema {
	return mp.srcPlan.Schema()
}

func (mp *MaterializePlan) describe() string {
	return "materialize"
}

func (mp *MaterializePlan) inputs() []plan.Plan {
	return []plan.Plan{mp.srcPlan}
}
