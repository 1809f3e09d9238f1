package functions

import (
	"strings"

	"github.com/JyotinderSingh/dropexec/scan"
)

var _ AggregationFunction = &DistinctFunction{}

// DistinctFunction feeds its inner function only the first occurrence of each
// value within a group.
type DistinctFunction struct {
	inner AggregationFunction
	seen  map[any]struct{}
}

func NewDistinctFunction(inner AggregationFunction) *DistinctFunction {
	return &DistinctFunction{inner: inner, seen: make(map[any]struct{})}
}

// ProcessFirst clears the values seen by the previous group.
func (f *DistinctFunction) ProcessFirst(s scan.Scan) error {
	clear(f.seen)
	val, err := s.GetVal(f.inner.OriginalFieldName())
	if err != nil {
		return err
	}
	f.seen[val] = struct{}{}
	return f.inner.ProcessFirst(s)
}

func (f *DistinctFunction) ProcessNext(s scan.Scan) error {
	val, err := s.GetVal(f.inner.OriginalFieldName())
	if err != nil {
		return err
	}
	if _, ok := f.seen[val]; ok {
		return nil
	}
	f.seen[val] = struct{}{}
	return f.inner.ProcessNext(s)
}

// FieldName is the inner name with "Of" replaced by "DistinctOf", e.g. countDistinctOfgrade.
func (f *DistinctFunction) FieldName() string {
	return strings.Replace(f.inner.FieldName(), "Of", "DistinctOf", 1)
}

func (f *DistinctFunction) OriginalFieldName() string {
	return f.inner.OriginalFieldName()
}

func (f *DistinctFunction) Value() any {
	return f.inner.Value()
}
