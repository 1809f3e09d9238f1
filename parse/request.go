package parse

import (
	"os"

	"github.com/JyotinderSingh/dropexec/query"
	"github.com/JyotinderSingh/dropexec/query/functions"
	"github.com/JyotinderSingh/dropexec/types"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Request is the YAML form of a query:
//
//	select:
//	  - sid
//	  - {fn: count, field: grade, distinct: true}
//	from: [student, enroll]
//	where:
//	  - {lhs: {field: sid}, op: "=", rhs: {field: esid}}
//	groupBy: [sid]
//	orderBy:
//	  - {field: sid, desc: true}
//	distinct: false
type Request struct {
	Select   []SelectItem `yaml:"select"`
	From     []string     `yaml:"from"`
	Where    []TermSpec   `yaml:"where"`
	GroupBy  []string     `yaml:"groupBy"`
	OrderBy  []OrderItem  `yaml:"orderBy"`
	Distinct bool         `yaml:"distinct"`
}

// SelectItem is either a plain field name or an aggregation.
type SelectItem struct {
	Fn       string `yaml:"fn"`
	Field    string `yaml:"field"`
	Distinct bool   `yaml:"distinct"`
}

// UnmarshalYAML accepts a bare scalar as shorthand for a plain field.
func (si *SelectItem) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		si.Field = node.Value
		return nil
	}
	type plain SelectItem
	return node.Decode((*plain)(si))
}

// Operand is one side of a term: a field reference or a constant.
type Operand struct {
	Field  *string `yaml:"field"`
	Int    *int    `yaml:"int"`
	String *string `yaml:"string"`
}

type TermSpec struct {
	LHS Operand `yaml:"lhs"`
	Op  string  `yaml:"op"`
	RHS Operand `yaml:"rhs"`
}

type OrderItem struct {
	Field string `yaml:"field"`
	Desc  bool   `yaml:"desc"`
}

// ParseRequest decodes a YAML request and validates it.
func ParseRequest(data []byte) (*QueryData, error) {
	var req Request
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, errors.Wrap(err, "decode query request")
	}
	return req.QueryData()
}

// LoadRequest reads and decodes a YAML request file.
func LoadRequest(path string) (*QueryData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read query %s", path)
	}
	return ParseRequest(data)
}

// QueryData converts the request into its validated abstract form.
func (req *Request) QueryData() (*QueryData, error) {
	fields := make([]Field, 0, len(req.Select))
	for _, item := range req.Select {
		f, err := item.field()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	predicate := query.NewPredicate()
	for i, ts := range req.Where {
		term, err := ts.term()
		if err != nil {
			return nil, errors.Wrapf(err, "where term %d", i)
		}
		predicate.ConjoinWith(query.NewPredicateFromTerm(term))
	}

	sortFields := make([]query.SortField, 0, len(req.OrderBy))
	for _, item := range req.OrderBy {
		if item.Field == "" {
			return nil, errors.New("order by item without a field")
		}
		sortFields = append(sortFields, query.SortField{
			Expression: query.NewFieldExpression(item.Field),
			Descending: item.Desc,
		})
	}

	return NewQueryData(fields, req.From, predicate, req.GroupBy, query.NewSort(sortFields...), req.Distinct)
}

func (si SelectItem) field() (Field, error) {
	if si.Field == "" {
		return nil, errors.New("select item without a field")
	}
	if si.Fn == "" {
		if si.Distinct {
			return nil, errors.Wrapf(ErrMalformedAggregate, "distinct on plain field %s", si.Field)
		}
		return NewDefaultField(si.Field), nil
	}
	kind, err := functions.ParseKind(si.Fn)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedAggregate, err.Error())
	}
	return NewAggregateField(functions.Spec{Kind: kind, Field: si.Field, Distinct: si.Distinct}), nil
}

func (ts TermSpec) term() (*query.Term, error) {
	op, err := types.OperatorFromString(ts.Op)
	if err != nil {
		return nil, err
	}
	lhs, err := ts.LHS.expression()
	if err != nil {
		return nil, errors.Wrap(err, "lhs")
	}
	rhs, err := ts.RHS.expression()
	if err != nil {
		return nil, errors.Wrap(err, "rhs")
	}
	return query.NewTerm(lhs, rhs, op), nil
}

func (o Operand) expression() (*query.Expression, error) {
	set := 0
	var expr *query.Expression
	if o.Field != nil {
		set++
		expr = query.NewFieldExpression(*o.Field)
	}
	if o.Int != nil {
		set++
		expr = query.NewConstantExpression(*o.Int)
	}
	if o.String != nil {
		set++
		expr = query.NewConstantExpression(*o.String)
	}
	if set != 1 {
		return nil, errors.New("operand needs exactly one of field, int or string")
	}
	return expr, nil
}
