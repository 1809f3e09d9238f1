package functions

import (
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/JyotinderSingh/dropexec/types"
)

var _ AggregationFunction = &MaxFunction{}

const maxFunctionPrefix = "maxOf"

type MaxFunction struct {
	fieldName string
	value     any
}

func NewMaxFunction(fieldName string) *MaxFunction {
	return &MaxFunction{fieldName: fieldName}
}

// ProcessFirst starts a new maximum to be the field
// value in the current record.
func (f *MaxFunction) ProcessFirst(s scan.Scan) error {
	var err error
	f.value, err = s.GetVal(f.fieldName)
	return err
}

// ProcessNext replaces the current maximum with the field
// value in the current record if it is greater.
func (f *MaxFunction) ProcessNext(s scan.Scan) error {
	newValue, err := s.GetVal(f.fieldName)
	if err != nil {
		return err
	}
	if types.CompareSupportedTypes(newValue, f.value, types.GT) {
		f.value = newValue
	}
	return nil
}

func (f *MaxFunction) FieldName() string {
	return maxFunctionPrefix + f.fieldName
}

func (f *MaxFunction) OriginalFieldName() string {
	return f.fieldName
}

func (f *MaxFunction) Value() any {
	return f.value
}
