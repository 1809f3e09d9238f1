package table

import (
	"github.com/JyotinderSingh/dropexec/file"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/JyotinderSingh/dropexec/tx"
	"github.com/JyotinderSingh/dropexec/types"
	"github.com/pkg/errors"
)

var _ scan.UpdateScan = (*Scan)(nil)

// Scan provides the abstraction of an arbitrarily large array of records.
type Scan struct {
	tx          *tx.Transaction
	layout      *record.Layout
	recordPage  *record.Page
	fileName    string
	currentSlot int
}

// NewTableScan opens a scan positioned before the first record of tableName.
// An empty table gets its first block appended.
func NewTableScan(tx *tx.Transaction, tableName string, layout *record.Layout) (*Scan, error) {
	ts := &Scan{
		tx:          tx,
		layout:      layout,
		fileName:    FileName(tableName),
		currentSlot: -1,
	}

	size, err := tx.Size(ts.fileName)
	if err != nil {
		return nil, errors.Wrap(err, "get file size")
	}

	if size == 0 {
		err = ts.moveToNewBlock()
	} else {
		err = ts.moveToBlock(0)
	}
	if err != nil {
		return nil, err
	}
	return ts, nil
}

func (ts *Scan) BeforeFirst() error {
	return ts.moveToBlock(0)
}

// Next moves to the next used slot, skipping any empty blocks.
func (ts *Scan) Next() (bool, error) {
	if ts.recordPage == nil {
		return false, errors.New("table scan is closed")
	}
	for {
		slot, err := ts.recordPage.NextAfter(ts.currentSlot)
		if err == nil {
			ts.currentSlot = slot
			return true, nil
		}
		if !errors.Is(err, record.ErrNoSlotFound) {
			return false, err
		}

		atLastBlock, err := ts.atLastBlock()
		if err != nil {
			return false, err
		}
		if atLastBlock {
			return false, nil
		}
		if err := ts.moveToBlock(ts.recordPage.Block().Number() + 1); err != nil {
			return false, err
		}
	}
}

func (ts *Scan) GetInt(fieldName string) (int, error) {
	return ts.recordPage.GetInt(ts.currentSlot, fieldName)
}

func (ts *Scan) GetString(fieldName string) (string, error) {
	return ts.recordPage.GetString(ts.currentSlot, fieldName)
}

func (ts *Scan) GetVal(fieldName string) (any, error) {
	switch fieldType := ts.layout.Schema().Type(fieldName); fieldType {
	case types.Integer:
		return ts.GetInt(fieldName)
	case types.Varchar:
		return ts.GetString(fieldName)
	default:
		return nil, errors.Wrapf(record.ErrFieldNotFound, "field %q", fieldName)
	}
}

func (ts *Scan) SetInt(fieldName string, val int) error {
	return ts.recordPage.SetInt(ts.currentSlot, fieldName, val)
}

func (ts *Scan) SetString(fieldName string, val string) error {
	return ts.recordPage.SetString(ts.currentSlot, fieldName, val)
}

func (ts *Scan) SetVal(fieldName string, val any) error {
	if !ts.layout.Schema().HasField(fieldName) {
		return errors.Wrapf(record.ErrFieldNotFound, "field %q", fieldName)
	}
	switch ts.layout.Schema().Type(fieldName) {
	case types.Integer:
		if v, ok := val.(int); ok {
			return ts.SetInt(fieldName, v)
		}
	case types.Varchar:
		if v, ok := val.(string); ok {
			return ts.SetString(fieldName, v)
		}
	}
	return errors.Errorf("type mismatch for field %s: %T", fieldName, val)
}

func (ts *Scan) HasField(fieldName string) bool {
	return ts.layout.Schema().HasField(fieldName)
}

// Close unpins the current block. Closing twice is a no-op.
func (ts *Scan) Close() error {
	if ts.recordPage == nil {
		return nil
	}
	block := ts.recordPage.Block()
	ts.recordPage = nil
	return ts.tx.Unpin(block)
}

// Insert claims a slot after the current one, moving to later blocks or
// appending a new block when the current one is full.
func (ts *Scan) Insert() error {
	for {
		slot, err := ts.recordPage.InsertAfter(ts.currentSlot)
		if err == nil {
			ts.currentSlot = slot
			return nil
		}
		if !errors.Is(err, record.ErrNoSlotFound) {
			return err
		}

		atLastBlock, err := ts.atLastBlock()
		if err != nil {
			return errors.Wrap(err, "checking last block")
		}
		if atLastBlock {
			err = ts.moveToNewBlock()
		} else {
			err = ts.moveToBlock(ts.recordPage.Block().Number() + 1)
		}
		if err != nil {
			return err
		}
	}
}

func (ts *Scan) Delete() error {
	return ts.recordPage.Delete(ts.currentSlot)
}

func (ts *Scan) GetRecordID() *record.ID {
	return record.NewID(ts.recordPage.Block().Number(), ts.currentSlot)
}

// MoveToRecordID positions the scan on rid.
func (ts *Scan) MoveToRecordID(rid *record.ID) error {
	if ts.recordPage == nil || ts.recordPage.Block().Number() != rid.BlockNumber() {
		if err := ts.moveToBlock(rid.BlockNumber()); err != nil {
			return err
		}
	}
	ts.currentSlot = rid.Slot()
	return nil
}

func (ts *Scan) moveToBlock(blockNum int) error {
	if err := ts.Close(); err != nil {
		return errors.Wrap(err, "close current page")
	}
	page, err := record.NewPage(ts.tx, file.NewBlockId(ts.fileName, blockNum), ts.layout)
	if err != nil {
		return errors.Wrapf(err, "pin block %d of %s", blockNum, ts.fileName)
	}
	ts.recordPage = page
	ts.currentSlot = -1
	return nil
}

func (ts *Scan) moveToNewBlock() error {
	if err := ts.Close(); err != nil {
		return errors.Wrap(err, "close current page")
	}
	blk, err := ts.tx.Append(ts.fileName)
	if err != nil {
		return errors.Wrap(err, "append block")
	}
	page, err := record.NewPage(ts.tx, blk, ts.layout)
	if err != nil {
		return errors.Wrap(err, "create new page")
	}
	if err := page.Format(); err != nil {
		return errors.Wrap(err, "format page")
	}
	ts.recordPage = page
	ts.currentSlot = -1
	return nil
}

func (ts *Scan) atLastBlock() (bool, error) {
	fileSize, err := ts.tx.Size(ts.fileName)
	if err != nil {
		return false, errors.Wrap(err, "get file size")
	}
	return ts.recordPage.Block().Number() >= fileSize-1, nil
}
