package functions

import (
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/pkg/errors"
)

var _ AggregationFunction = &SumFunction{}

const sumFunctionPrefix = "sumOf"

type SumFunction struct {
	fieldName string
	sum       int
}

func NewSumFunction(fieldName string) *SumFunction {
	return &SumFunction{fieldName: fieldName}
}

func (f *SumFunction) ProcessFirst(s scan.Scan) error {
	val, err := intField(s, f.fieldName)
	if err != nil {
		return err
	}
	f.sum = val
	return nil
}

func (f *SumFunction) ProcessNext(s scan.Scan) error {
	val, err := intField(s, f.fieldName)
	if err != nil {
		return err
	}
	f.sum += val
	return nil
}

func (f *SumFunction) FieldName() string {
	return sumFunctionPrefix + f.fieldName
}

func (f *SumFunction) OriginalFieldName() string {
	return f.fieldName
}

func (f *SumFunction) Value() any {
	return f.sum
}

// intField reads an integer field, failing for any other type.
func intField(s scan.Scan, fieldName string) (int, error) {
	val, err := s.GetVal(fieldName)
	if err != nil {
		return 0, err
	}
	n, ok := val.(int)
	if !ok {
		return 0, errors.Errorf("cannot aggregate non-integer field %s (%T)", fieldName, val)
	}
	return n, nil
}
