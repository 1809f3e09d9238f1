package functions

import (
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/JyotinderSingh/dropexec/types"
)

var _ AggregationFunction = &MinFunction{}

const minFunctionPrefix = "minOf"

type MinFunction struct {
	fieldName string
	value     any
}

func NewMinFunction(fieldName string) *MinFunction {
	return &MinFunction{fieldName: fieldName}
}

func (f *MinFunction) ProcessFirst(s scan.Scan) error {
	var err error
	f.value, err = s.GetVal(f.fieldName)
	return err
}

func (f *MinFunction) ProcessNext(s scan.Scan) error {
	newValue, err := s.GetVal(f.fieldName)
	if err != nil {
		return err
	}
	if types.CompareSupportedTypes(newValue, f.value, types.LT) {
		f.value = newValue
	}
	return nil
}

func (f *MinFunction) FieldName() string {
	return minFunctionPrefix + f.fieldName
}

func (f *MinFunction) OriginalFieldName() string {
	return f.fieldName
}

func (f *MinFunction) Value() any {
	return f.value
}
