package record

import (
	"github.com/JyotinderSingh/dropexec/file"
	"github.com/JyotinderSingh/dropexec/tx"
	"github.com/JyotinderSingh/dropexec/types"
	"github.com/pkg/errors"
)

const (
	FlagEmpty = iota
	FlagUsed
)

var (
	ErrNoSlotFound = errors.New("no slot found")
	// ErrFieldNotFound reports a reference to a field missing from a schema.
	ErrFieldNotFound = errors.New("field not found")
)

// Page stores a record at a given location in a block.
// A (record) page manages a block of records.
type Page struct {
	tx     *tx.Transaction
	block  *file.BlockId
	layout *Layout
}

// NewPage pins block and returns a record page over it.
func NewPage(transaction *tx.Transaction, block *file.BlockId, layout *Layout) (*Page, error) {
	if err := transaction.Pin(block); err != nil {
		return nil, err
	}
	return &Page{
		tx:     transaction,
		block:  block,
		layout: layout,
	}, nil
}

// GetInt returns the integer value stored for the specified field of a specified slot.
func (p *Page) GetInt(slot int, fieldName string) (int, error) {
	pos, err := p.fieldPosition(slot, fieldName)
	if err != nil {
		return 0, err
	}
	return p.tx.GetInt(p.block, pos)
}

// GetString returns the string value stored for the specified field of a specified slot.
func (p *Page) GetString(slot int, fieldName string) (string, error) {
	pos, err := p.fieldPosition(slot, fieldName)
	if err != nil {
		return "", err
	}
	return p.tx.GetString(p.block, pos)
}

// SetInt stores an integer value for the specified field of a specified slot.
func (p *Page) SetInt(slot int, fieldName string, val int) error {
	pos, err := p.fieldPosition(slot, fieldName)
	if err != nil {
		return err
	}
	return p.tx.SetInt(p.block, pos, val)
}

// SetString stores a string value for the specified field of a specified slot.
// Strings longer than the declared field length are rejected.
func (p *Page) SetString(slot int, fieldName string, val string) error {
	pos, err := p.fieldPosition(slot, fieldName)
	if err != nil {
		return err
	}
	if max := p.layout.Schema().Length(fieldName); len([]rune(val)) > max {
		return errors.Errorf("value for %s exceeds length %d", fieldName, max)
	}
	return p.tx.SetString(p.block, pos, val)
}

// Delete marks a slot as empty.
func (p *Page) Delete(slot int) error {
	return p.setFlag(slot, FlagEmpty)
}

// Format zeroes every slot of a freshly appended block.
func (p *Page) Format() error {
	schema := p.layout.Schema()
	for slot := 0; p.isValidSlot(slot); slot++ {
		if err := p.tx.SetInt(p.block, p.offset(slot), FlagEmpty); err != nil {
			return err
		}
		for _, fieldName := range schema.Fields() {
			offset, _ := p.layout.Offset(fieldName)
			fieldPosition := p.offset(slot) + offset

			var err error
			switch schema.Type(fieldName) {
			case types.Integer:
				err = p.tx.SetInt(p.block, fieldPosition, 0)
			case types.Varchar:
				err = p.tx.SetString(p.block, fieldPosition, "")
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// NextAfter returns the next slot that is in use after the specified slot.
func (p *Page) NextAfter(slot int) (int, error) {
	return p.searchAfter(slot, FlagUsed)
}

// InsertAfter claims the next empty slot after slot and returns it.
func (p *Page) InsertAfter(slot int) (int, error) {
	newSlot, err := p.searchAfter(slot, FlagEmpty)
	if err != nil {
		return -1, err
	}
	if err := p.setFlag(newSlot, FlagUsed); err != nil {
		return -1, errors.Wrapf(err, "set flag for slot %d", newSlot)
	}
	return newSlot, nil
}

// searchAfter finds the next slot with the specified flag.
// It returns ErrNoSlotFound when the block has none.
func (p *Page) searchAfter(slot, flag int) (int, error) {
	for slot++; p.isValidSlot(slot); slot++ {
		currentFlag, err := p.tx.GetInt(p.block, p.offset(slot))
		if err != nil {
			return -1, errors.Wrapf(err, "read flag at slot %d", slot)
		}
		if currentFlag == flag {
			return slot, nil
		}
	}
	return -1, ErrNoSlotFound
}

// Block returns the block that the page is using.
func (p *Page) Block() *file.BlockId {
	return p.block
}

func (p *Page) isValidSlot(slot int) bool {
	return p.offset(slot+1) <= p.tx.BlockSize()
}

func (p *Page) offset(slot int) int {
	return slot * p.layout.SlotSize()
}

func (p *Page) fieldPosition(slot int, fieldName string) (int, error) {
	offset, ok := p.layout.Offset(fieldName)
	if !ok {
		return 0, errors.Wrapf(ErrFieldNotFound, "field %q not in layout", fieldName)
	}
	return p.offset(slot) + offset, nil
}

func (p *Page) setFlag(slot int, flag int) error {
	return p.tx.SetInt(p.block, p.offset(slot), flag)
}
