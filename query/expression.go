package query

import (
	"fmt"

	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/scan"
)

// Expression is either a field reference or a constant int or string.
type Expression struct {
	value     any
	fieldName string
}

// NewFieldExpression creates a new expression for a field name.
func NewFieldExpression(fieldName string) *Expression {
	return &Expression{fieldName: fieldName}
}

// NewConstantExpression creates a new expression for a constant value.
func NewConstantExpression(value any) *Expression {
	return &Expression{value: value}
}

// Evaluate the expression with respect to the current record of the specified inputScan.
func (e *Expression) Evaluate(inputScan scan.Scan) (any, error) {
	if !e.IsFieldName() {
		return e.value, nil
	}
	if !inputScan.HasField(e.fieldName) {
		return nil, fieldNotFound(e.fieldName)
	}
	return inputScan.GetVal(e.fieldName)
}

// IsFieldName returns true if the expression is a field reference.
func (e *Expression) IsFieldName() bool {
	return e.fieldName != ""
}

// AsConstant returns the constant, or nil for a field reference.
func (e *Expression) AsConstant() any {
	return e.value
}

// AsFieldName returns the referenced field, or "" for a constant.
func (e *Expression) AsFieldName() string {
	return e.fieldName
}

// AppliesTo determines if all the fields mentioned in this expression are contained in the specified schema.
func (e *Expression) AppliesTo(schema *record.Schema) bool {
	return !e.IsFieldName() || schema.HasField(e.fieldName)
}

func (e *Expression) String() string {
	if e.IsFieldName() {
		return e.fieldName
	}
	if s, ok := e.value.(string); ok {
		return fmt.Sprintf("'%s'", s)
	}
	return fmt.Sprintf("%v", e.value)
}
