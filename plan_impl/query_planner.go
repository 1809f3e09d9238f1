package plan_impl

import (
	"github.com/JyotinderSingh/dropexec/parse"
	"github.com/JyotinderSingh/dropexec/plan"
	"github.com/JyotinderSingh/dropexec/tx"
)

// QueryPlanner is an interface implemented by planners for select queries.
type QueryPlanner interface {
	// CreatePlan creates a query plan for the specified query data.
	CreatePlan(queryData *parse.QueryData, transaction *tx.Transaction) (plan.Plan, error)
}
