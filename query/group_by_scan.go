package query

import (
	"slices"

	"github.com/JyotinderSingh/dropexec/query/functions"
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/pkg/errors"
)

var _ scan.Scan = (*GroupByScan)(nil)

// GroupByScan produces one record per run of input records with equal group
// fields. The input must be sorted on the group fields. With no group fields
// the whole input is one group.
type GroupByScan struct {
	inputScan            scan.Scan
	groupFields          []string
	aggregationFunctions []functions.AggregationFunction
	groupValue           *GroupValue
	moreGroups           bool
}

func NewGroupByScan(inputScan scan.Scan, groupFields []string, aggregationFunctions []functions.AggregationFunction) (*GroupByScan, error) {
	s := &GroupByScan{
		inputScan:            inputScan,
		groupFields:          groupFields,
		aggregationFunctions: aggregationFunctions,
	}
	if err := s.BeforeFirst(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// BeforeFirst moves the input to its first record. The input is always kept
// on the first record of the next group.
func (s *GroupByScan) BeforeFirst() error {
	if err := s.inputScan.BeforeFirst(); err != nil {
		return err
	}
	var err error
	s.moreGroups, err = s.inputScan.Next()
	return err
}

// Next reads the input until the group fields change, feeding every record
// of the group to the aggregation functions.
func (s *GroupByScan) Next() (bool, error) {
	if !s.moreGroups {
		return false, nil
	}

	for _, function := range s.aggregationFunctions {
		if err := function.ProcessFirst(s.inputScan); err != nil {
			return false, err
		}
	}

	var err error
	if s.groupValue, err = NewGroupValue(s.inputScan, s.groupFields); err != nil {
		return false, err
	}

	for {
		if s.moreGroups, err = s.inputScan.Next(); err != nil {
			return false, err
		}
		if !s.moreGroups {
			return true, nil
		}

		nextGroupValue, err := NewGroupValue(s.inputScan, s.groupFields)
		if err != nil {
			return false, err
		}
		if !s.groupValue.Equals(nextGroupValue) {
			return true, nil
		}

		for _, function := range s.aggregationFunctions {
			if err := function.ProcessNext(s.inputScan); err != nil {
				return false, err
			}
		}
	}
}

func (s *GroupByScan) Close() error {
	return s.inputScan.Close()
}

// GetVal returns a group field from the saved group value, or the value of
// the aggregation function producing the field.
func (s *GroupByScan) GetVal(fieldName string) (any, error) {
	if !s.HasField(fieldName) {
		return nil, fieldNotFound(fieldName)
	}
	if s.groupValue == nil {
		return nil, errors.New("group by scan is not positioned on a group")
	}
	if slices.Contains(s.groupFields, fieldName) {
		return s.groupValue.GetVal(fieldName), nil
	}
	for _, function := range s.aggregationFunctions {
		if function.FieldName() == fieldName {
			return function.Value(), nil
		}
	}
	return nil, fieldNotFound(fieldName)
}

func (s *GroupByScan) GetInt(fieldName string) (int, error) {
	val, err := s.GetVal(fieldName)
	return asInt(fieldName, val, err)
}

func (s *GroupByScan) GetString(fieldName string) (string, error) {
	val, err := s.GetVal(fieldName)
	return asString(fieldName, val, err)
}

func (s *GroupByScan) HasField(fieldName string) bool {
	if slices.Contains(s.groupFields, fieldName) {
		return true
	}
	for _, function := range s.aggregationFunctions {
		if function.FieldName() == fieldName {
			return true
		}
	}
	return false
}
