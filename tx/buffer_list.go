package tx

import (
	"github.com/JyotinderSingh/dropexec/buffer"
	"github.com/JyotinderSingh/dropexec/file"
	"github.com/pkg/errors"
)

// BufferList manages a transaction's currently pinned buffers.
// A block may be pinned several times; each pin must be matched by an unpin.
type BufferList struct {
	buffers       map[file.BlockId]*buffer.Buffer
	pins          map[file.BlockId]int
	bufferManager *buffer.Manager
}

// NewBufferList creates a new BufferList.
func NewBufferList(bufferManager *buffer.Manager) *BufferList {
	return &BufferList{
		buffers:       make(map[file.BlockId]*buffer.Buffer),
		pins:          make(map[file.BlockId]int),
		bufferManager: bufferManager,
	}
}

// GetBuffer returns the buffer pinned to the specified block.
// The method returns nil if the transaction has not pinned the block.
func (bl *BufferList) GetBuffer(block *file.BlockId) *buffer.Buffer {
	return bl.buffers[*block]
}

// Pin pins the block and keeps track of the buffer internally.
func (bl *BufferList) Pin(block *file.BlockId) error {
	buff, err := bl.bufferManager.Pin(block)
	if err != nil {
		return err
	}
	bl.buffers[*block] = buff
	bl.pins[*block]++
	return nil
}

// Unpin releases one pin on the block.
func (bl *BufferList) Unpin(block *file.BlockId) error {
	count, ok := bl.pins[*block]
	if !ok {
		return errors.Errorf("block %s is not pinned", block)
	}
	bl.bufferManager.Unpin(bl.buffers[*block])
	if count == 1 {
		delete(bl.pins, *block)
		delete(bl.buffers, *block)
		return nil
	}
	bl.pins[*block] = count - 1
	return nil
}

// UnpinAll unpins all the blocks and clears the internal list of pinned buffers.
func (bl *BufferList) UnpinAll() {
	for block, count := range bl.pins {
		buff := bl.buffers[block]
		for i := 0; i < count; i++ {
			bl.bufferManager.Unpin(buff)
		}
	}
	bl.buffers = make(map[file.BlockId]*buffer.Buffer)
	bl.pins = make(map[file.BlockId]int)
}

// PinCount returns the total number of outstanding pins.
func (bl *BufferList) PinCount() int {
	total := 0
	for _, count := range bl.pins {
		total += count
	}
	return total
}
