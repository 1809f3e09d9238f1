package functions

import (
	"testing"

	"github.com/JyotinderSingh/dropexec/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rowScan exposes a single mutable row through the scan interface.
type rowScan struct {
	row map[string]any
}

func (r *rowScan) BeforeFirst() error  { return nil }
func (r *rowScan) Next() (bool, error) { return false, nil }
func (r *rowScan) GetInt(f string) (int, error) {
	v, _ := r.row[f].(int)
	return v, nil
}
func (r *rowScan) GetString(f string) (string, error) {
	v, _ := r.row[f].(string)
	return v, nil
}
func (r *rowScan) GetVal(f string) (any, error) {
	v, ok := r.row[f]
	if !ok {
		return nil, errors.Errorf("no field %s", f)
	}
	return v, nil
}
func (r *rowScan) HasField(f string) bool { _, ok := r.row[f]; return ok }
func (r *rowScan) Close() error           { return nil }

func feed(t *testing.T, fn AggregationFunction, field string, values ...any) any {
	s := &rowScan{row: map[string]any{}}
	for i, v := range values {
		s.row[field] = v
		if i == 0 {
			require.NoError(t, fn.ProcessFirst(s))
		} else {
			require.NoError(t, fn.ProcessNext(s))
		}
	}
	return fn.Value()
}

func TestAggregates(t *testing.T) {
	assert.Equal(t, 10, feed(t, NewSumFunction("x"), "x", 1, 2, 3, 4))
	assert.Equal(t, 4, feed(t, NewCountFunction("x"), "x", 1, 2, 3, 4))
	assert.Equal(t, 2, feed(t, NewAvgFunction("x"), "x", 1, 2, 3, 4))
	assert.Equal(t, 1, feed(t, NewMinFunction("x"), "x", 3, 1, 4, 2))
	assert.Equal(t, 4, feed(t, NewMaxFunction("x"), "x", 3, 1, 4, 2))
	assert.Equal(t, "b", feed(t, NewMaxFunction("s"), "s", "a", "b", "a"))
}

func TestAggregates_ResetOnProcessFirst(t *testing.T) {
	fn := NewSumFunction("x")
	assert.Equal(t, 6, feed(t, fn, "x", 1, 2, 3))
	assert.Equal(t, 5, feed(t, fn, "x", 5))
}

func TestSum_RejectsStrings(t *testing.T) {
	s := &rowScan{row: map[string]any{"x": "abc"}}
	assert.Error(t, NewSumFunction("x").ProcessFirst(s))
}

func TestDistinct(t *testing.T) {
	fn := NewDistinctFunction(NewCountFunction("g"))
	assert.Equal(t, "countDistinctOfg", fn.FieldName())
	assert.Equal(t, 2, feed(t, fn, "g", "A", "A", "B", "A"))
	// A new group must not remember the previous group's values.
	assert.Equal(t, 1, feed(t, fn, "g", "A"))
}

func TestSpec(t *testing.T) {
	kind, err := ParseKind("COUNT")
	require.NoError(t, err)
	assert.Equal(t, Count, kind)
	_, err = ParseKind("median")
	assert.Error(t, err)

	spec := Spec{Kind: Count, Field: "grade"}
	fn, err := spec.New()
	require.NoError(t, err)
	assert.Equal(t, spec.FieldName(), fn.FieldName())
	assert.Equal(t, "countOfgrade", spec.FieldName())
	assert.Equal(t, types.Integer, spec.OutputType(types.Varchar))

	distinct := Spec{Kind: Max, Field: "grade", Distinct: true}
	fn, err = distinct.New()
	require.NoError(t, err)
	assert.Equal(t, distinct.FieldName(), fn.FieldName())
	assert.Equal(t, types.Varchar, distinct.OutputType(types.Varchar))

	other, err := spec.New()
	require.NoError(t, err)
	assert.NotSame(t, fn, other)
}
