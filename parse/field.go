package parse

import "github.com/JyotinderSingh/dropexec/query/functions"

// Field is one item of a query's select list.
type Field interface {
	// Name is the name of the column the item produces in the output.
	Name() string
	// Aggregate returns the aggregation the item computes, if any.
	Aggregate() (functions.Spec, bool)
	String() string
}

// DefaultField selects a stored field unchanged.
type DefaultField struct {
	name string
}

func NewDefaultField(name string) *DefaultField {
	return &DefaultField{name: name}
}

func (f *DefaultField) Name() string {
	return f.name
}

func (f *DefaultField) Aggregate() (functions.Spec, bool) {
	return functions.Spec{}, false
}

func (f *DefaultField) String() string {
	return f.name
}

// AggregateField selects the result of an aggregation function.
type AggregateField struct {
	spec functions.Spec
}

func NewAggregateField(spec functions.Spec) *AggregateField {
	return &AggregateField{spec: spec}
}

// Name returns the generated output name, such as countOfgrade.
func (f *AggregateField) Name() string {
	return f.spec.FieldName()
}

func (f *AggregateField) Aggregate() (functions.Spec, bool) {
	return f.spec, true
}

func (f *AggregateField) String() string {
	return f.spec.String()
}
