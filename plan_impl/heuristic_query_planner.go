package plan_impl

import (
	"github.com/JyotinderSingh/dropexec/metadata"
	"github.com/JyotinderSingh/dropexec/parse"
	"github.com/JyotinderSingh/dropexec/plan"
	"github.com/JyotinderSingh/dropexec/tx"
)

var _ QueryPlanner = (*HeuristicQueryPlanner)(nil)

// HeuristicQueryPlanner builds a left-deep join order:
//  1. the table with the smallest filtered output goes first;
//  2. the table whose join with the current plan has the smallest output
//     goes next, or the smallest product when no join applies.
type HeuristicQueryPlanner struct {
	metadataManager *metadata.Manager
	options         Options
}

func NewHeuristicQueryPlanner(metadataManager *metadata.Manager, options Options) *HeuristicQueryPlanner {
	return &HeuristicQueryPlanner{metadataManager: metadataManager, options: options.withDefaults()}
}

// CreatePlan plans the joins and then adds grouping, ordering, duplicate
// removal and the final projection.
func (qp *HeuristicQueryPlanner) CreatePlan(queryData *parse.QueryData, transaction *tx.Transaction) (plan.Plan, error) {
	pool := make([]*TablePlanner, 0, len(queryData.Tables()))
	for _, tableName := range queryData.Tables() {
		tp, err := NewTablePlanner(tableName, queryData.Pred(), transaction, qp.metadataManager, qp.options)
		if err != nil {
			return nil, err
		}
		pool = append(pool, tp)
	}

	currentPlan, pool, err := lowestSelectPlan(pool)
	if err != nil {
		return nil, err
	}

	for len(pool) > 0 {
		var next plan.Plan
		next, pool, err = lowestJoinPlan(pool, currentPlan)
		if err != nil {
			return nil, err
		}
		if next == nil {
			if next, pool, err = lowestProductPlan(pool, currentPlan); err != nil {
				return nil, err
			}
		}
		currentPlan = next
	}

	return finishPlan(transaction, currentPlan, queryData)
}

// finishPlan adds the operators that follow the joins.
func finishPlan(transaction *tx.Transaction, currentPlan plan.Plan, queryData *parse.QueryData) (plan.Plan, error) {
	var err error
	if queryData.IsAggregate() {
		if currentPlan, err = NewGroupByPlan(transaction, currentPlan, queryData.GroupBy(), queryData.Aggregates()); err != nil {
			return nil, err
		}
	}
	if !queryData.OrderBy().IsEmpty() {
		if currentPlan, err = NewSortPlan(transaction, currentPlan, queryData.OrderBy()); err != nil {
			return nil, err
		}
	}
	if queryData.Distinct() {
		if currentPlan, err = NewDistinctPlan(currentPlan, queryData.Fields()); err != nil {
			return nil, err
		}
	}
	return NewProjectPlan(currentPlan, queryData.Fields())
}

// lowestSelectPlan returns the select plan with the fewest output records
// and the pool without its planner.
func lowestSelectPlan(pool []*TablePlanner) (plan.Plan, []*TablePlanner, error) {
	plans := make([]plan.Plan, len(pool))
	for i, tp := range pool {
		p, err := tp.MakeSelectPlan()
		if err != nil {
			return nil, nil, err
		}
		plans[i] = p
	}
	best := fewestRecords(pool, plans, "select")
	return plans[best], without(pool, best), nil
}

// lowestJoinPlan returns nil and the unchanged pool if no planner can join
// with current.
func lowestJoinPlan(pool []*TablePlanner, current plan.Plan) (plan.Plan, []*TablePlanner, error) {
	best := -1
	var bestPlan plan.Plan
	for i, tp := range pool {
		p, err := tp.MakeJoinPlan(current)
		if err != nil {
			return nil, nil, err
		}
		if p != nil && (bestPlan == nil || p.RecordsOutput() < bestPlan.RecordsOutput()) {
			best, bestPlan = i, p
		}
	}
	if bestPlan == nil {
		return nil, pool, nil
	}
	return bestPlan, without(pool, best), nil
}

func lowestProductPlan(pool []*TablePlanner, current plan.Plan) (plan.Plan, []*TablePlanner, error) {
	plans := make([]plan.Plan, len(pool))
	for i, tp := range pool {
		p, err := tp.MakeProductPlan(current)
		if err != nil {
			return nil, nil, err
		}
		plans[i] = p
	}
	best := fewestRecords(pool, plans, "product")
	return plans[best], without(pool, best), nil
}

// fewestRecords returns the index of the plan with the fewest output
// records, the first one on ties, and traces every candidate.
func fewestRecords(pool []*TablePlanner, plans []plan.Plan, strategy string) int {
	best := 0
	for i, p := range plans {
		if p.RecordsOutput() < plans[best].RecordsOutput() {
			best = i
		}
	}
	for i, tp := range pool {
		tp.emit(strategy, plans[i], i == best)
	}
	return best
}

// without returns a new slice holding every planner of pool except the i-th.
func without(pool []*TablePlanner, i int) []*TablePlanner {
	rest := make([]*TablePlanner, 0, len(pool)-1)
	rest = append(rest, pool[:i]...)
	return append(rest, pool[i+1:]...)
}
