package plan_impl

import (
	"fmt"

	"github.com/JyotinderSingh/dropexec/metadata"
	"github.com/JyotinderSingh/dropexec/plan"
	"github.com/JyotinderSingh/dropexec/query"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/scan"
)

var _ plan.Plan = &IndexSelectPlan{}

type IndexSelectPlan struct {
	tablePlan *TablePlan
	indexInfo *metadata.IndexInfo
	value     any
}

// NewIndexSelectPlan creates a new indexselect node in the query tree
// for the specified index and selection constant.
func NewIndexSelectPlan(tablePlan *TablePlan, indexInfo *metadata.IndexInfo, value any) *IndexSelectPlan {
	return &IndexSelectPlan{
		tablePlan: tablePlan,
		indexInfo: indexInfo,
		value:     value,
	}
}

// Open creates a new indexselect scan for this query.
func (isp *IndexSelectPlan) Open() (scan.Scan, error) {
	tableScan, err := isp.tablePlan.openTable()
	if err != nil {
		return nil, err
	}
	return query.NewIndexSelectScan(tableScan, isp.indexInfo.Open(), isp.value)
}

// BlocksAccessed returns the estimated number of block accesses
// to compute the index selection, which is the same as the index
// traversal cost plus the number of matching data records.
func (isp *IndexSelectPlan) BlocksAccessed() int {
	return isp.indexInfo.BlocksAccessed() + isp.RecordsOutput()
}

// RecordsOutput returns the estimated number of records in the
// index selection, which is the same as the number of search
// key values for the index.
func (isp *IndexSelectPlan) RecordsOutput() int {
	return isp.indexInfo.RecordsOutput()
}

// DistinctValues returns the estimated number of distinct values
// as defined by the index.
func (isp *IndexSelectPlan) DistinctValues(fieldName string) int {
	return isp.indexInfo.DistinctValues(fieldName)
}

// Schema returns the schema of the data table.
func (isp *IndexSelectPlan) Schema() *record.Schema {
	return isp.tablePlan.Schema()
}

func (isp *IndexSelectPlan) describe() string {
	return fmt.Sprintf("indexselect %s = %v using %s", isp.indexInfo.FieldName(), isp.value, isp.indexInfo.IndexName())
}

func (isp *IndexSelectPlan) inputs() []plan.Plan {
	return []plan.Plan{isp.tablePlan}
}
