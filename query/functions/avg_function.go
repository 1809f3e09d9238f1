package functions

import "github.com/JyotinderSingh/dropexec/scan"

var _ AggregationFunction = &AvgFunction{}

const avgFunctionPrefix = "avgOf"

// AvgFunction computes the integer average of a field.
type AvgFunction struct {
	fieldName string
	sum       int
	count     int
}

func NewAvgFunction(fieldName string) *AvgFunction {
	return &AvgFunction{fieldName: fieldName}
}

func (f *AvgFunction) ProcessFirst(s scan.Scan) error {
	val, err := intField(s, f.fieldName)
	if err != nil {
		return err
	}
	f.sum = val
	f.count = 1
	return nil
}

func (f *AvgFunction) ProcessNext(s scan.Scan) error {
	val, err := intField(s, f.fieldName)
	if err != nil {
		return err
	}
	f.sum += val
	f.count++
	return nil
}

func (f *AvgFunction) FieldName() string {
	return avgFunctionPrefix + f.fieldName
}

func (f *AvgFunction) OriginalFieldName() string {
	return f.fieldName
}

// Value returns the average truncated toward zero.
func (f *AvgFunction) Value() any {
	if f.count == 0 {
		return 0
	}
	return f.sum / f.count
}
