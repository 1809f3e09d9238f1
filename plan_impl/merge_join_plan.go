package plan_impl

import (
	"fmt"

	"github.com/JyotinderSingh/dropexec/plan"
	"github.com/JyotinderSingh/dropexec/query"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/JyotinderSingh/dropexec/tx"
)

var _ plan.Plan = (*MergeJoinPlan)(nil)

// MergeJoinPlan sorts both inputs on their join fields and merges them.
type MergeJoinPlan struct {
	left, right           *SortPlan
	leftField, rightField string
	schema                *record.Schema
}

func NewMergeJoinPlan(transaction *tx.Transaction, left, right plan.Plan, leftField, rightField string) (*MergeJoinPlan, error) {
	sortedLeft, err := NewSortPlan(transaction, left, query.NewAscendingSort(leftField))
	if err != nil {
		return nil, err
	}
	sortedRight, err := NewSortPlan(transaction, right, query.NewAscendingSort(rightField))
	if err != nil {
		return nil, err
	}

	mp := &MergeJoinPlan{
		left:       sortedLeft,
		right:      sortedRight,
		leftField:  leftField,
		rightField: rightField,
		schema:     record.NewSchema(),
	}
	mp.schema.AddAll(left.Schema())
	mp.schema.AddAll(right.Schema())
	return mp, nil
}

// Open sorts both inputs. The left sort scan is the side that is rewound
// for duplicate join values.
func (mp *MergeJoinPlan) Open() (scan.Scan, error) {
	leftScan, err := mp.left.openSorted()
	if err != nil {
		return nil, err
	}
	rightScan, err := mp.right.Open()
	if err != nil {
		closeQuietly(leftScan)
		return nil, err
	}
	return query.NewMergeJoinScan(leftScan, rightScan, mp.leftField, mp.rightField)
}

// BlocksAccessed is one pass over each sorted input plus the cost of
// producing the sorted runs.
func (mp *MergeJoinPlan) BlocksAccessed() int {
	passes := addSat(mp.left.BlocksAccessed(), mp.right.BlocksAccessed())
	sorting := addSat(mp.left.preprocessingCost(), mp.right.preprocessingCost())
	return addSat(passes, sorting)
}

// RecordsOutput assumes the smaller join domain is contained in the larger.
func (mp *MergeJoinPlan) RecordsOutput() int {
	maxVals := max(mp.left.DistinctValues(mp.leftField), mp.right.DistinctValues(mp.rightField), 1)
	return mulSat(mp.left.RecordsOutput(), mp.right.RecordsOutput()) / maxVals
}

func (mp *MergeJoinPlan) DistinctValues(fieldName string) int {
	if mp.left.Schema().HasField(fieldName) {
		return mp.left.DistinctValues(fieldName)
	}
	return mp.right.DistinctValues(fieldName)
}

func (mp *MergeJoinPlan) Schema() *record.Schema {
	return mp.schema
}

func (mp *MergeJoinPlan) describe() string {
	return fmt.Sprintf("mergejoin %s = %s", mp.leftField, mp.rightField)
}

func (mp *MergeJoinPlan) inputs() []plan.Plan {
	return []plan.Plan{mp.left, mp.right}
}
