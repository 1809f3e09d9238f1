package query

import (
	"github.com/JyotinderSingh/dropexec/index"
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/JyotinderSingh/dropexec/table"
)

var _ scan.Scan = (*IndexSelectScan)(nil)

// IndexSelectScan reads the records of a table whose indexed field equals a constant.
type IndexSelectScan struct {
	tableScan *table.Scan
	idx       index.Index
	value     any
}

func NewIndexSelectScan(tableScan *table.Scan, idx index.Index, value any) (*IndexSelectScan, error) {
	iss := &IndexSelectScan{
		tableScan: tableScan,
		idx:       idx,
		value:     value,
	}
	if err := iss.BeforeFirst(); err != nil {
		_ = iss.Close()
		return nil, err
	}
	return iss, nil
}

// BeforeFirst positions the index before the first instance of the selection constant.
func (iss *IndexSelectScan) BeforeFirst() error {
	return iss.idx.BeforeFirst(iss.value)
}

// Next moves the index to the next matching entry and the table scan to
// the corresponding data record.
func (iss *IndexSelectScan) Next() (bool, error) {
	next, err := iss.idx.Next()
	if !next || err != nil {
		return false, err
	}
	dataRID, err := iss.idx.GetDataRecordID()
	if err != nil {
		return false, err
	}
	return true, iss.tableScan.MoveToRecordID(dataRID)
}

func (iss *IndexSelectScan) GetInt(fieldName string) (int, error) {
	return iss.tableScan.GetInt(fieldName)
}

func (iss *IndexSelectScan) GetString(fieldName string) (string, error) {
	return iss.tableScan.GetString(fieldName)
}

func (iss *IndexSelectScan) GetVal(fieldName string) (any, error) {
	return iss.tableScan.GetVal(fieldName)
}

func (iss *IndexSelectScan) HasField(fieldName string) bool {
	return iss.tableScan.HasField(fieldName)
}

func (iss *IndexSelectScan) Close() error {
	err := iss.idx.Close()
	if tsErr := iss.tableScan.Close(); tsErr != nil && err == nil {
		err = tsErr
	}
	return err
}
