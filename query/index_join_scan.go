package query

import (
	"github.com/JyotinderSingh/dropexec/index"
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/JyotinderSingh/dropexec/table"
)

var _ scan.Scan = (*IndexJoinScan)(nil)

// IndexJoinScan looks up the matching right-hand records of every left-hand
// record through an index on the right-hand table.
type IndexJoinScan struct {
	lhs       scan.Scan
	rhs       *table.Scan
	joinField string
	idx       index.Index
	hasLeft   bool
}

// NewIndexJoinScan joins lhs with rhs where lhs.joinField equals the indexed field of rhs.
func NewIndexJoinScan(lhs scan.Scan, rhs *table.Scan, joinField string, idx index.Index) (*IndexJoinScan, error) {
	ijs := &IndexJoinScan{
		lhs:       lhs,
		rhs:       rhs,
		joinField: joinField,
		idx:       idx,
	}
	if err := ijs.BeforeFirst(); err != nil {
		_ = ijs.Close()
		return nil, err
	}
	return ijs, nil
}

// BeforeFirst moves the left scan to its first record and the index before
// the first entry for its join value.
func (ijs *IndexJoinScan) BeforeFirst() error {
	if err := ijs.lhs.BeforeFirst(); err != nil {
		return err
	}
	var err error
	if ijs.hasLeft, err = ijs.lhs.Next(); err != nil || !ijs.hasLeft {
		return err
	}
	return ijs.resetIndex()
}

// Next moves to the next index entry, or to the next left record and its
// first index entry.
func (ijs *IndexJoinScan) Next() (bool, error) {
	for ijs.hasLeft {
		hasNext, err := ijs.idx.Next()
		if err != nil {
			return false, err
		}
		if hasNext {
			recordID, err := ijs.idx.GetDataRecordID()
			if err != nil {
				return false, err
			}
			return true, ijs.rhs.MoveToRecordID(recordID)
		}

		if ijs.hasLeft, err = ijs.lhs.Next(); err != nil {
			return false, err
		}
		if ijs.hasLeft {
			if err := ijs.resetIndex(); err != nil {
				return false, err
			}
		}
	}
	return false, nil
}

func (ijs *IndexJoinScan) GetInt(fieldName string) (int, error) {
	if ijs.rhs.HasField(fieldName) {
		return ijs.rhs.GetInt(fieldName)
	}
	return ijs.lhs.GetInt(fieldName)
}

func (ijs *IndexJoinScan) GetString(fieldName string) (string, error) {
	if ijs.rhs.HasField(fieldName) {
		return ijs.rhs.GetString(fieldName)
	}
	return ijs.lhs.GetString(fieldName)
}

func (ijs *IndexJoinScan) GetVal(fieldName string) (any, error) {
	if ijs.rhs.HasField(fieldName) {
		return ijs.rhs.GetVal(fieldName)
	}
	return ijs.lhs.GetVal(fieldName)
}

func (ijs *IndexJoinScan) HasField(fieldName string) bool {
	return ijs.rhs.HasField(fieldName) || ijs.lhs.HasField(fieldName)
}

func (ijs *IndexJoinScan) Close() error {
	err := ijs.idx.Close()
	if scanErr := closeAll(ijs.lhs, ijs.rhs); scanErr != nil && err == nil {
		err = scanErr
	}
	return err
}

func (ijs *IndexJoinScan) resetIndex() error {
	searchKey, err := ijs.lhs.GetVal(ijs.joinField)
	if err != nil {
		return err
	}
	return ijs.idx.BeforeFirst(searchKey)
}
