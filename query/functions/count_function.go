package functions

import "github.com/JyotinderSingh/dropexec/scan"

var _ AggregationFunction = &CountFunction{}

const countFunctionPrefix = "countOf"

type CountFunction struct {
	fieldName string
	count     int
}

func NewCountFunction(fieldName string) *CountFunction {
	return &CountFunction{fieldName: fieldName}
}

// ProcessFirst starts a new count.
func (f *CountFunction) ProcessFirst(scan.Scan) error {
	f.count = 1
	return nil
}

// ProcessNext increments the count.
func (f *CountFunction) ProcessNext(scan.Scan) error {
	f.count++
	return nil
}

func (f *CountFunction) FieldName() string {
	return countFunctionPrefix + f.fieldName
}

func (f *CountFunction) OriginalFieldName() string {
	return f.fieldName
}

func (f *CountFunction) Value() any {
	return f.count
}
