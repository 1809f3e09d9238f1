package query

import (
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/JyotinderSingh/dropexec/types"
)

// GroupValue holds the values of a fixed list of fields taken from one record.
type GroupValue struct {
	fields []string
	values []any
}

// NewGroupValue reads the fields from the current record of s.
func NewGroupValue(s scan.Scan, fields []string) (*GroupValue, error) {
	values := make([]any, len(fields))
	for i, field := range fields {
		value, err := s.GetVal(field)
		if err != nil {
			return nil, err
		}
		values[i] = value
	}
	return &GroupValue{fields: fields, values: values}, nil
}

// GetVal returns the value of the specified field, or nil if it is not part of the group.
func (g *GroupValue) GetVal(field string) any {
	for i, f := range g.fields {
		if f == field {
			return g.values[i]
		}
	}
	return nil
}

// Equals reports whether both group values hold equal values field by field.
func (g *GroupValue) Equals(other *GroupValue) bool {
	if other == nil || len(g.values) != len(other.values) {
		return false
	}
	for i, value := range g.values {
		if !types.Equal(value, other.values[i]) {
			return false
		}
	}
	return true
}

// Hash combines the hashes of the values in field order.
func (g *GroupValue) Hash() int {
	h := 17
	for _, value := range g.values {
		h = (31*h + types.Hash(value)) & 0x7fffffff
	}
	return h
}
