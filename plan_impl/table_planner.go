package plan_impl

import (
	"slices"

	"github.com/JyotinderSingh/dropexec/metadata"
	"github.com/JyotinderSingh/dropexec/plan"
	"github.com/JyotinderSingh/dropexec/query"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/trace"
	"github.com/JyotinderSingh/dropexec/tx"
)

// TablePlanner builds the plans that read one table of a query, either on
// its own or joined to the plan of the tables placed before it.
type TablePlanner struct {
	tablePlan   *TablePlan
	predicate   *query.Predicate
	schema      *record.Schema
	indexes     map[string]*metadata.IndexInfo
	transaction *tx.Transaction
	options     Options
}

// NewTablePlanner creates a planner for tableName. The predicate is the
// whole query's predicate; the planner picks out the terms that concern
// its table.
func NewTablePlanner(tableName string, predicate *query.Predicate, transaction *tx.Transaction, metadataManager *metadata.Manager, options Options) (*TablePlanner, error) {
	tablePlan, err := NewTablePlan(transaction, tableName, metadataManager)
	if err != nil {
		return nil, err
	}
	indexes, err := metadataManager.GetIndexInfo(tableName, transaction)
	if err != nil {
		return nil, err
	}
	return &TablePlanner{
		tablePlan:   tablePlan,
		predicate:   predicate,
		schema:      tablePlan.Schema(),
		indexes:     indexes,
		transaction: transaction,
		options:     options.withDefaults(),
	}, nil
}

func (tp *TablePlanner) TableName() string {
	return tp.tablePlan.TableName()
}

// MakeSelectPlan returns an index select if an index field is equated to a
// constant, or a table scan otherwise, filtered by the table's terms.
func (tp *TablePlanner) MakeSelectPlan() (plan.Plan, error) {
	var p plan.Plan = tp.tablePlan
	if indexSelect := tp.makeIndexSelect(); indexSelect != nil {
		p = indexSelect
	}
	return tp.addSelectPredicate(p)
}

// MakeJoinPlan joins current with the table. It returns nil when no term of
// the predicate connects the two. Candidates are index join, merge join,
// hash join and block nested loop join, and the one with the fewest
// estimated block accesses wins. Ties go to the earlier candidate.
func (tp *TablePlanner) MakeJoinPlan(current plan.Plan) (plan.Plan, error) {
	currentSchema := current.Schema()
	joinPredicate := tp.predicate.JoinSubPredicate(tp.schema, currentSchema)
	if joinPredicate == nil {
		return nil, nil
	}

	type candidate struct {
		strategy string
		plan     plan.Plan
	}
	var candidates []candidate
	add := func(strategy string, p plan.Plan, err error) error {
		if err != nil {
			return err
		}
		if p != nil {
			candidates = append(candidates, candidate{strategy, p})
		}
		return nil
	}

	p, err := tp.makeIndexJoin(current, joinPredicate)
	if err := add("indexjoin", p, err); err != nil {
		return nil, err
	}
	p, err = tp.makeMergeJoin(current, joinPredicate)
	if err := add("mergejoin", p, err); err != nil {
		return nil, err
	}
	p, err = tp.makeHashJoin(current, joinPredicate)
	if err := add("hashjoin", p, err); err != nil {
		return nil, err
	}
	p, err = tp.makeBlockJoin(current, joinPredicate)
	if err := add("blockjoin", p, err); err != nil {
		return nil, err
	}

	best := 0
	for i, c := range candidates {
		if c.plan.BlocksAccessed() < candidates[best].plan.BlocksAccessed() {
			best = i
		}
	}
	for i, c := range candidates {
		tp.emit(c.strategy, c.plan, i == best)
	}
	return candidates[best].plan, nil
}

// MakeProductPlan returns the product of current and the filtered table.
func (tp *TablePlanner) MakeProductPlan(current plan.Plan) (plan.Plan, error) {
	p, err := tp.addSelectPredicate(tp.tablePlan)
	if err != nil {
		return nil, err
	}
	return NewProductPlan(current, p), nil
}

func (tp *TablePlanner) makeIndexSelect() plan.Plan {
	for _, fieldName := range tp.indexedFields() {
		if val := tp.predicate.EquatesWithConstant(fieldName); val != nil {
			return NewIndexSelectPlan(tp.tablePlan, tp.indexes[fieldName], val)
		}
	}
	return nil
}

func (tp *TablePlanner) makeIndexJoin(current plan.Plan, joinPredicate *query.Predicate) (plan.Plan, error) {
	for _, fieldName := range tp.indexedFields() {
		outerField := joinPredicate.EquatesWithField(fieldName)
		if outerField == "" || !current.Schema().HasField(outerField) {
			continue
		}
		var p plan.Plan = NewIndexJoinPlan(current, tp.tablePlan, tp.indexes[fieldName], outerField)
		p, err := tp.addSelectPredicate(p)
		if err != nil {
			return nil, err
		}
		return addPredicate(p, joinPredicate.Without(fieldName, outerField))
	}
	return nil, nil
}

func (tp *TablePlanner) makeMergeJoin(current plan.Plan, joinPredicate *query.Predicate) (plan.Plan, error) {
	fieldName, outerField := tp.equiJoinFields(current, joinPredicate)
	if fieldName == "" {
		return nil, nil
	}
	selected, err := tp.addSelectPredicate(tp.tablePlan)
	if err != nil {
		return nil, err
	}
	p, err := NewMergeJoinPlan(tp.transaction, selected, current, fieldName, outerField)
	if err != nil {
		return nil, err
	}
	return addPredicate(p, joinPredicate.Without(fieldName, outerField))
}

func (tp *TablePlanner) makeHashJoin(current plan.Plan, joinPredicate *query.Predicate) (plan.Plan, error) {
	fieldName, outerField := tp.equiJoinFields(current, joinPredicate)
	if fieldName == "" {
		return nil, nil
	}
	selected, err := tp.addSelectPredicate(tp.tablePlan)
	if err != nil {
		return nil, err
	}
	p, err := NewHashJoinPlan(tp.transaction, selected, current, fieldName, outerField,
		WithPartitions(tp.options.HashPartitions),
		WithSecondaryHashFactor(tp.options.SecondaryHashFactor),
		WithHashJoinTracer(tp.options.Tracer))
	if err != nil {
		return nil, err
	}
	return addPredicate(p, joinPredicate.Without(fieldName, outerField))
}

// makeBlockJoin accepts any join predicate, so it is always a candidate.
func (tp *TablePlanner) makeBlockJoin(current plan.Plan, joinPredicate *query.Predicate) (plan.Plan, error) {
	selected, err := tp.addSelectPredicate(tp.tablePlan)
	if err != nil {
		return nil, err
	}
	budget := tp.options.BufferBudget
	if budget == 0 {
		budget = DeriveBufferBudget(tp.transaction, selected)
	}
	return NewBlockJoinPlan(tp.transaction, selected, current, joinPredicate, budget, tp.options.Tracer)
}

// equiJoinFields returns the first field of the table that the join
// predicate equates with a field of current.
func (tp *TablePlanner) equiJoinFields(current plan.Plan, joinPredicate *query.Predicate) (string, string) {
	for _, fieldName := range tp.schema.Fields() {
		outerField := joinPredicate.EquatesWithField(fieldName)
		if outerField != "" && current.Schema().HasField(outerField) {
			return fieldName, outerField
		}
	}
	return "", ""
}

// indexedFields returns the indexed field names in a stable order.
func (tp *TablePlanner) indexedFields() []string {
	fields := make([]string, 0, len(tp.indexes))
	for fieldName := range tp.indexes {
		fields = append(fields, fieldName)
	}
	slices.Sort(fields)
	return fields
}

func (tp *TablePlanner) addSelectPredicate(p plan.Plan) (plan.Plan, error) {
	return addPredicate(p, tp.predicate.SelectSubPredicate(tp.schema))
}

func (tp *TablePlanner) emit(strategy string, p plan.Plan, chosen bool) {
	tp.options.Tracer.PlanChosen(trace.PlanEvent{
		Table:          tp.TableName(),
		Strategy:       strategy,
		BlocksAccessed: p.BlocksAccessed(),
		RecordsOutput:  p.RecordsOutput(),
		Chosen:         chosen,
	})
}

// addPredicate wraps p in a select plan unless predicate is empty.
func addPredicate(p plan.Plan, predicate *query.Predicate) (plan.Plan, error) {
	if predicate.IsEmpty() {
		return p, nil
	}
	return NewSelectPlan(p, predicate)
}
