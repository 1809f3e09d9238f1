package parse

import (
	"slices"
	"strings"

	"github.com/JyotinderSingh/dropexec/query"
	"github.com/JyotinderSingh/dropexec/query/functions"
	"github.com/pkg/errors"
)

var (
	// ErrEmptyRequest is returned for a query without tables or select items.
	ErrEmptyRequest = errors.New("query selects nothing")
	// ErrMalformedAggregate is returned when a plain select item is not grouped
	// in a query that groups or aggregates.
	ErrMalformedAggregate = errors.New("malformed aggregate query")
)

// QueryData is the abstract form of a select query.
type QueryData struct {
	fields    []Field
	tables    []string
	predicate *query.Predicate
	groupBy   []string
	orderBy   *query.Sort
	distinct  bool
}

// NewQueryData validates the request and returns it. A nil predicate or sort
// is replaced by an empty one.
func NewQueryData(fields []Field, tables []string, predicate *query.Predicate, groupBy []string, orderBy *query.Sort, distinct bool) (*QueryData, error) {
	if len(fields) == 0 || len(tables) == 0 {
		return nil, ErrEmptyRequest
	}
	if predicate == nil {
		predicate = query.NewPredicate()
	}
	if orderBy == nil {
		orderBy = query.NewSort()
	}
	qd := &QueryData{
		fields:    fields,
		tables:    tables,
		predicate: predicate,
		groupBy:   groupBy,
		orderBy:   orderBy,
		distinct:  distinct,
	}
	if err := qd.validate(); err != nil {
		return nil, err
	}
	return qd, nil
}

func (qd *QueryData) validate() error {
	seen := make(map[string]bool, len(qd.tables))
	for _, tableName := range qd.tables {
		if seen[tableName] {
			return errors.Errorf("table %s listed twice", tableName)
		}
		seen[tableName] = true
	}

	if !qd.IsAggregate() {
		return nil
	}
	for _, f := range qd.fields {
		if _, ok := f.Aggregate(); ok {
			continue
		}
		if !slices.Contains(qd.groupBy, f.Name()) {
			return errors.Wrapf(ErrMalformedAggregate, "field %s is neither grouped nor aggregated", f.Name())
		}
	}
	return nil
}

// Fields returns the output column names in select-list order.
func (qd *QueryData) Fields() []string {
	names := make([]string, len(qd.fields))
	for i, f := range qd.fields {
		names[i] = f.Name()
	}
	return names
}

func (qd *QueryData) SelectItems() []Field {
	return qd.fields
}

func (qd *QueryData) Tables() []string {
	return qd.tables
}

func (qd *QueryData) Pred() *query.Predicate {
	return qd.predicate
}

func (qd *QueryData) GroupBy() []string {
	return qd.groupBy
}

// Aggregates returns the aggregations in the select list, without duplicates.
func (qd *QueryData) Aggregates() []functions.Spec {
	var specs []functions.Spec
	for _, f := range qd.fields {
		spec, ok := f.Aggregate()
		if ok && !slices.Contains(specs, spec) {
			specs = append(specs, spec)
		}
	}
	return specs
}

// IsAggregate reports whether the query groups or aggregates its input.
func (qd *QueryData) IsAggregate() bool {
	return len(qd.groupBy) > 0 || len(qd.Aggregates()) > 0
}

func (qd *QueryData) OrderBy() *query.Sort {
	return qd.orderBy
}

func (qd *QueryData) Distinct() bool {
	return qd.distinct
}

// String renders the query as SQL-like text.
func (qd *QueryData) String() string {
	var sb strings.Builder
	sb.WriteString("select ")
	if qd.distinct {
		sb.WriteString("distinct ")
	}
	items := make([]string, len(qd.fields))
	for i, f := range qd.fields {
		items[i] = f.String()
	}
	sb.WriteString(strings.Join(items, ", "))
	sb.WriteString(" from ")
	sb.WriteString(strings.Join(qd.tables, ", "))
	if pred := qd.predicate.String(); pred != "" {
		sb.WriteString(" where " + pred)
	}
	if len(qd.groupBy) > 0 {
		sb.WriteString(" group by " + strings.Join(qd.groupBy, ", "))
	}
	if !qd.orderBy.IsEmpty() {
		sb.WriteString(" order by " + qd.orderBy.String())
	}
	return sb.String()
}
