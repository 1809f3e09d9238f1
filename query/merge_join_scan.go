package query

import (
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/JyotinderSingh/dropexec/types"
)

var _ scan.Scan = (*MergeJoinScan)(nil)

// PositionedScan is a scan that can return to a saved record.
type PositionedScan interface {
	scan.Scan
	SavePosition()
	RestorePosition() error
}

// MergeJoinScan joins two inputs sorted on their join fields. The left
// cursor remembers the first record of the current group and is rewound to it
// for every right record with the same join value.
type MergeJoinScan struct {
	left       PositionedScan
	right      scan.Scan
	leftField  string
	rightField string

	started   bool
	inGroup   bool
	joinValue any
	hasLeft   bool
	hasRight  bool
}

func NewMergeJoinScan(left PositionedScan, right scan.Scan, leftField, rightField string) (*MergeJoinScan, error) {
	ms := &MergeJoinScan{
		left:       left,
		right:      right,
		leftField:  leftField,
		rightField: rightField,
	}
	if err := ms.BeforeFirst(); err != nil {
		_ = ms.Close()
		return nil, err
	}
	return ms, nil
}

func (ms *MergeJoinScan) BeforeFirst() error {
	ms.started = false
	ms.inGroup = false
	ms.joinValue = nil
	if err := ms.left.BeforeFirst(); err != nil {
		return err
	}
	return ms.right.BeforeFirst()
}

// Next returns the next (left, right) pair with equal join values.
func (ms *MergeJoinScan) Next() (bool, error) {
	var err error
	if !ms.started {
		ms.started = true
		if ms.hasLeft, err = ms.left.Next(); err != nil {
			return false, err
		}
		if ms.hasRight, err = ms.right.Next(); err != nil {
			return false, err
		}
	}

	if ms.inGroup {
		more, err := ms.continueGroup()
		if more || err != nil {
			return more, err
		}
	}

	for ms.hasLeft && ms.hasRight {
		leftVal, err := ms.left.GetVal(ms.leftField)
		if err != nil {
			return false, err
		}
		rightVal, err := ms.right.GetVal(ms.rightField)
		if err != nil {
			return false, err
		}
		c, err := types.Compare(leftVal, rightVal)
		if err != nil {
			return false, err
		}
		switch {
		case c < 0:
			if ms.hasLeft, err = ms.left.Next(); err != nil {
				return false, err
			}
		case c > 0:
			if ms.hasRight, err = ms.right.Next(); err != nil {
				return false, err
			}
		default:
			ms.left.SavePosition()
			ms.joinValue = leftVal
			ms.inGroup = true
			return true, nil
		}
	}
	return false, nil
}

// continueGroup advances within the current group. When the group is done it
// leaves both cursors on the first record past it.
func (ms *MergeJoinScan) continueGroup() (bool, error) {
	var err error
	if ms.hasLeft, err = ms.left.Next(); err != nil {
		return false, err
	}
	if ms.hasLeft {
		same, err := ms.matches(ms.left, ms.leftField)
		if same || err != nil {
			return same, err
		}
	}

	if ms.hasRight, err = ms.right.Next(); err != nil {
		return false, err
	}
	if ms.hasRight {
		same, err := ms.matches(ms.right, ms.rightField)
		if err != nil {
			return false, err
		}
		if same {
			if err := ms.left.RestorePosition(); err != nil {
				return false, err
			}
			ms.hasLeft = true
			return true, nil
		}
	}

	ms.inGroup = false
	ms.joinValue = nil
	return false, nil
}

func (ms *MergeJoinScan) matches(s scan.Scan, fieldName string) (bool, error) {
	val, err := s.GetVal(fieldName)
	if err != nil {
		return false, err
	}
	return types.Equal(val, ms.joinValue), nil
}

func (ms *MergeJoinScan) Close() error {
	return closeAll(ms.left, ms.right)
}

func (ms *MergeJoinScan) HasField(fieldName string) bool {
	return ms.left.HasField(fieldName) || ms.right.HasField(fieldName)
}

func (ms *MergeJoinScan) GetVal(fieldName string) (any, error) {
	if ms.left.HasField(fieldName) {
		return ms.left.GetVal(fieldName)
	}
	if ms.right.HasField(fieldName) {
		return ms.right.GetVal(fieldName)
	}
	return nil, fieldNotFound(fieldName)
}

func (ms *MergeJoinScan) GetInt(fieldName string) (int, error) {
	val, err := ms.GetVal(fieldName)
	return asInt(fieldName, val, err)
}

func (ms *MergeJoinScan) GetString(fieldName string) (string, error) {
	val, err := ms.GetVal(fieldName)
	return asString(fieldName, val, err)
}
