package buffer

import (
	"github.com/JyotinderSingh/dropexec/file"
)

// Buffer wraps a page and tracks which block it holds, how many clients have
// it pinned, and which transaction last modified it.
type Buffer struct {
	fileManager *file.Manager
	contents    *file.Page
	block       *file.BlockId
	pins        int
	txNum       int
}

func NewBuffer(fileManager *file.Manager) *Buffer {
	return &Buffer{
		fileManager: fileManager,
		contents:    file.NewPage(fileManager.BlockSize()),
		txNum:       -1,
	}
}

func (b *Buffer) Contents() *file.Page {
	return b.contents
}

// Block returns the block currently assigned to the buffer, or nil.
func (b *Buffer) Block() *file.BlockId {
	return b.block
}

// SetModified records that txNum changed the page contents.
func (b *Buffer) SetModified(txNum int) {
	b.txNum = txNum
}

func (b *Buffer) isPinned() bool {
	return b.pins > 0
}

func (b *Buffer) modifyingTx() int {
	return b.txNum
}

// assignToBlock flushes the current contents and loads block from disk.
func (b *Buffer) assignToBlock(block *file.BlockId) error {
	if err := b.flush(); err != nil {
		return err
	}
	b.block = block
	if err := b.fileManager.Read(block, b.contents); err != nil {
		return err
	}
	b.pins = 0
	return nil
}

func (b *Buffer) flush() error {
	if b.txNum >= 0 && b.block != nil {
		if err := b.fileManager.Write(b.block, b.contents); err != nil {
			return err
		}
	}
	b.txNum = -1
	return nil
}

// discard forgets the assigned block without writing it back.
func (b *Buffer) discard() {
	b.block = nil
	b.txNum = -1
}

func (b *Buffer) pin() {
	b.pins++
}

func (b *Buffer) unpin() {
	b.pins--
}
