package plan_impl

import (
	"github.com/JyotinderSingh/dropexec/metadata"
	"github.com/JyotinderSingh/dropexec/parse"
	"github.com/JyotinderSingh/dropexec/plan"
	"github.com/JyotinderSingh/dropexec/tx"
)

var _ QueryPlanner = &BasicQueryPlanner{}

type BasicQueryPlanner struct {
	metadataManager *metadata.Manager
}

// NewBasicQueryPlanner creates a new BasicQueryPlanner
func NewBasicQueryPlanner(metadataManager *metadata.Manager) *BasicQueryPlanner {
	return &BasicQueryPlanner{metadataManager: metadataManager}
}

// CreatePlan creates a query plan as follows:
// 1. Takes the product of all tables
// 2. Applies predicate selection
// 3. Applies grouping if specified
// 4. Applies ordering and duplicate removal if specified
// 5. Projects on the field list
func (qp *BasicQueryPlanner) CreatePlan(queryData *parse.QueryData, transaction *tx.Transaction) (plan.Plan, error) {
	// 1. Create a plan for each mentioned table
	plans := make([]plan.Plan, len(queryData.Tables()))
	for idx, tableName := range queryData.Tables() {
		tablePlan, err := NewTablePlan(transaction, tableName, qp.metadataManager)
		if err != nil {
			return nil, err
		}
		plans[idx] = tablePlan
	}

	// 2. Create the product of all table plans
	currentPlan := plans[0]
	for _, nextPlan := range plans[1:] {
		planChoice1 := NewProductPlan(currentPlan, nextPlan)
		planChoice2 := NewProductPlan(nextPlan, currentPlan)

		if planChoice1.BlocksAccessed() <= planChoice2.BlocksAccessed() {
			currentPlan = planChoice1
		} else {
			currentPlan = planChoice2
		}
	}

	// 3. Add a selection plan for the predicate
	currentPlan, err := addPredicate(currentPlan, queryData.Pred())
	if err != nil {
		return nil, err
	}

	return finishPlan(transaction, currentPlan, queryData)
}
