package table

import (
	"github.com/JyotinderSingh/dropexec/file"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/JyotinderSingh/dropexec/tx"
	"github.com/JyotinderSingh/dropexec/types"
	"github.com/pkg/errors"
)

var _ scan.Scan = (*ChunkScan)(nil)

// ChunkScan is a read-only scan over the contiguous blocks [first, last] of a
// table. Every block of the chunk stays pinned until Close.
type ChunkScan struct {
	tx          *tx.Transaction
	layout      *record.Layout
	pages       []*record.Page
	first       int
	last        int
	current     int
	currentSlot int
}

// NewChunkScan pins blocks first through last of tableName.
func NewChunkScan(transaction *tx.Transaction, tableName string, layout *record.Layout, first, last int) (*ChunkScan, error) {
	if first > last {
		return nil, errors.Errorf("invalid chunk [%d, %d]", first, last)
	}
	cs := &ChunkScan{
		tx:     transaction,
		layout: layout,
		first:  first,
		last:   last,
		pages:  make([]*record.Page, 0, last-first+1),
	}
	fileName := FileName(tableName)
	for i := first; i <= last; i++ {
		page, err := record.NewPage(transaction, file.NewBlockId(fileName, i), layout)
		if err != nil {
			_ = cs.Close()
			return nil, errors.Wrapf(err, "pin chunk block %d", i)
		}
		cs.pages = append(cs.pages, page)
	}
	if err := cs.BeforeFirst(); err != nil {
		_ = cs.Close()
		return nil, err
	}
	return cs, nil
}

func (cs *ChunkScan) BeforeFirst() error {
	cs.current = 0
	cs.currentSlot = -1
	return nil
}

// Next moves to the next used slot of the chunk.
func (cs *ChunkScan) Next() (bool, error) {
	for cs.current < len(cs.pages) {
		slot, err := cs.pages[cs.current].NextAfter(cs.currentSlot)
		if err == nil {
			cs.currentSlot = slot
			return true, nil
		}
		if !errors.Is(err, record.ErrNoSlotFound) {
			return false, err
		}
		cs.current++
		cs.currentSlot = -1
	}
	return false, nil
}

func (cs *ChunkScan) GetInt(fieldName string) (int, error) {
	if cs.current >= len(cs.pages) {
		return 0, errors.New("chunk scan is not positioned on a record")
	}
	return cs.pages[cs.current].GetInt(cs.currentSlot, fieldName)
}

func (cs *ChunkScan) GetString(fieldName string) (string, error) {
	if cs.current >= len(cs.pages) {
		return "", errors.New("chunk scan is not positioned on a record")
	}
	return cs.pages[cs.current].GetString(cs.currentSlot, fieldName)
}

func (cs *ChunkScan) GetVal(fieldName string) (any, error) {
	switch cs.layout.Schema().Type(fieldName) {
	case types.Integer:
		return cs.GetInt(fieldName)
	case types.Varchar:
		return cs.GetString(fieldName)
	default:
		return nil, errors.Wrapf(record.ErrFieldNotFound, "field %q", fieldName)
	}
}

func (cs *ChunkScan) HasField(fieldName string) bool {
	return cs.layout.Schema().HasField(fieldName)
}

// Close unpins every block of the chunk. Closing twice is a no-op.
func (cs *ChunkScan) Close() error {
	var firstErr error
	for _, page := range cs.pages {
		if err := cs.tx.Unpin(page.Block()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	cs.pages = nil
	cs.current = 0
	return firstErr
}
