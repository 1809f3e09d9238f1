package plan_impl

import (
	"github.com/JyotinderSingh/dropexec/metadata"
	"github.com/JyotinderSingh/dropexec/parse"
	"github.com/JyotinderSingh/dropexec/plan"
	"github.com/JyotinderSingh/dropexec/query"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/tx"
	"github.com/pkg/errors"
)

type Planner struct {
	queryPlanner    QueryPlanner
	metadataManager *metadata.Manager
}

func NewPlanner(queryPlanner QueryPlanner, metadataManager *metadata.Manager) *Planner {
	return &Planner{
		queryPlanner:    queryPlanner,
		metadataManager: metadataManager,
	}
}

// CreateQueryPlan checks the query against the catalog and plans it with the
// supplied planner.
func (planner *Planner) CreateQueryPlan(data *parse.QueryData, transaction *tx.Transaction) (plan.Plan, error) {
	if err := planner.verifyQuery(data); err != nil {
		return nil, err
	}
	return planner.queryPlanner.CreatePlan(data, transaction)
}

// CreateQueryPlanFromYAML decodes a YAML query request and plans it.
func (planner *Planner) CreateQueryPlanFromYAML(request []byte, transaction *tx.Transaction) (plan.Plan, error) {
	data, err := parse.ParseRequest(request)
	if err != nil {
		return nil, err
	}
	return planner.CreateQueryPlan(data, transaction)
}

// verifyQuery checks that every table exists and that every field the query
// reads belongs to one of its tables.
func (planner *Planner) verifyQuery(data *parse.QueryData) error {
	schema := record.NewSchema()
	for _, tableName := range data.Tables() {
		layout, err := planner.metadataManager.GetLayout(tableName)
		if err != nil {
			return errors.Wrapf(err, "table %s", tableName)
		}
		schema.AddAll(layout.Schema())
	}

	if err := data.Pred().CheckFields(schema); err != nil {
		return errors.Wrap(err, "where")
	}
	for _, field := range data.GroupBy() {
		if !schema.HasField(field) {
			return errors.Wrapf(query.ErrFieldNotFound, "group by %s", field)
		}
	}
	for _, spec := range data.Aggregates() {
		if !schema.HasField(spec.Field) {
			return errors.Wrapf(query.ErrFieldNotFound, "aggregate %s", spec)
		}
	}
	return nil
}
