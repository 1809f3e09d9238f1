package functions

import (
	"strings"

	"github.com/JyotinderSingh/dropexec/types"
	"github.com/pkg/errors"
)

// Kind names an aggregation function.
type Kind string

const (
	Sum   Kind = "sum"
	Count Kind = "count"
	Avg   Kind = "avg"
	Min   Kind = "min"
	Max   Kind = "max"
)

// ParseKind accepts a function name in any case.
func ParseKind(name string) (Kind, error) {
	switch k := Kind(strings.ToLower(name)); k {
	case Sum, Count, Avg, Min, Max:
		return k, nil
	default:
		return "", errors.Errorf("unknown aggregation function %q", name)
	}
}

// Spec describes an aggregation without holding any state. Plans keep specs
// and every opened scan gets fresh functions from New.
type Spec struct {
	Kind     Kind
	Field    string
	Distinct bool
}

// New returns a fresh aggregation function for the spec.
func (s Spec) New() (AggregationFunction, error) {
	var fn AggregationFunction
	switch s.Kind {
	case Sum:
		fn = NewSumFunction(s.Field)
	case Count:
		fn = NewCountFunction(s.Field)
	case Avg:
		fn = NewAvgFunction(s.Field)
	case Min:
		fn = NewMinFunction(s.Field)
	case Max:
		fn = NewMaxFunction(s.Field)
	default:
		return nil, errors.Errorf("unknown aggregation function %q", s.Kind)
	}
	if s.Distinct {
		fn = NewDistinctFunction(fn)
	}
	return fn, nil
}

// FieldName returns the name of the output field the function produces.
func (s Spec) FieldName() string {
	name := string(s.Kind) + "Of" + s.Field
	if s.Distinct {
		name = string(s.Kind) + "DistinctOf" + s.Field
	}
	return name
}

// OutputType returns the type of the output field given the type of the source field.
func (s Spec) OutputType(source types.SchemaType) types.SchemaType {
	switch s.Kind {
	case Min, Max:
		return source
	default:
		return types.Integer
	}
}

// NeedsInteger reports whether the function only accepts integer fields.
func (s Spec) NeedsInteger() bool {
	return s.Kind == Sum || s.Kind == Avg
}

func (s Spec) String() string {
	if s.Distinct {
		return string(s.Kind) + "(distinct " + s.Field + ")"
	}
	return string(s.Kind) + "(" + s.Field + ")"
}
