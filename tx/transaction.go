package tx

import (
	"sync"

	"github.com/JyotinderSingh/dropexec/buffer"
	"github.com/JyotinderSingh/dropexec/file"
	"github.com/pkg/errors"
)

var (
	nextTxNum   = 0
	nextTxNumMu sync.Mutex
)

// nextTxNumber increments and returns the next transaction number.
func nextTxNumber() int {
	nextTxNumMu.Lock()
	defer nextTxNumMu.Unlock()
	nextTxNum++
	return nextTxNum
}

// Transaction is the storage handle every scan works through. It tracks the
// buffers it has pinned and writes its dirty pages back on commit. Locking and
// logging live beneath this layer and are not modelled here.
type Transaction struct {
	bufferManager *buffer.Manager
	fileManager   *file.Manager
	txNum         int
	myBuffers     *BufferList
}

// NewTransaction creates a new Transaction over the given file and buffer managers.
func NewTransaction(fileManager *file.Manager, bufferManager *buffer.Manager) *Transaction {
	return &Transaction{
		fileManager:   fileManager,
		bufferManager: bufferManager,
		txNum:         nextTxNumber(),
		myBuffers:     NewBufferList(bufferManager),
	}
}

// Commit flushes every page modified by this transaction and releases all pins.
func (tx *Transaction) Commit() error {
	if err := tx.bufferManager.FlushAll(tx.txNum); err != nil {
		return err
	}
	tx.myBuffers.UnpinAll()
	return nil
}

// Rollback releases all pins. Modified pages are still written back, since no
// undo information is kept at this layer.
func (tx *Transaction) Rollback() error {
	tx.myBuffers.UnpinAll()
	return tx.bufferManager.FlushAll(tx.txNum)
}

// Pin pins the specified block.
// The transaction manages the buffer for the client.
func (tx *Transaction) Pin(block *file.BlockId) error {
	return tx.myBuffers.Pin(block)
}

// Unpin releases one pin on the specified block.
func (tx *Transaction) Unpin(block *file.BlockId) error {
	return tx.myBuffers.Unpin(block)
}

// GetInt returns the integer value stored at the specified offset of the specified block.
func (tx *Transaction) GetInt(block *file.BlockId, offset int) (int, error) {
	buff := tx.myBuffers.GetBuffer(block)
	if buff == nil {
		return 0, errors.Errorf("buffer for block %s not found", block)
	}
	return buff.Contents().GetInt(offset), nil
}

// GetString returns the string value stored at the specified offset of the specified block.
func (tx *Transaction) GetString(block *file.BlockId, offset int) (string, error) {
	buff := tx.myBuffers.GetBuffer(block)
	if buff == nil {
		return "", errors.Errorf("buffer for block %s not found", block)
	}
	return buff.Contents().GetString(offset)
}

// SetInt stores an integer at the specified offset of the specified block.
func (tx *Transaction) SetInt(block *file.BlockId, offset int, val int) error {
	buff := tx.myBuffers.GetBuffer(block)
	if buff == nil {
		return errors.Errorf("buffer for block %s not found", block)
	}
	buff.Contents().SetInt(offset, val)
	buff.SetModified(tx.txNum)
	return nil
}

// SetString stores a string at the specified offset of the specified block.
func (tx *Transaction) SetString(block *file.BlockId, offset int, val string) error {
	buff := tx.myBuffers.GetBuffer(block)
	if buff == nil {
		return errors.Errorf("buffer for block %s not found", block)
	}
	if err := buff.Contents().SetString(offset, val); err != nil {
		return err
	}
	buff.SetModified(tx.txNum)
	return nil
}

// Size returns the number of blocks in the specified file.
func (tx *Transaction) Size(filename string) (int, error) {
	return tx.fileManager.Length(filename)
}

// Append appends a new block to the end of the specified file and returns a reference to it.
func (tx *Transaction) Append(filename string) (*file.BlockId, error) {
	return tx.fileManager.Append(filename)
}

// DropFile discards any cached pages of filename and deletes it.
// None of its blocks may be pinned.
func (tx *Transaction) DropFile(filename string) error {
	if err := tx.bufferManager.DiscardFile(filename); err != nil {
		return err
	}
	return tx.fileManager.Remove(filename)
}

// BlockSize returns the size of a block in the database.
func (tx *Transaction) BlockSize() int {
	return tx.fileManager.BlockSize()
}

// AvailableBuffers returns the number of available (unpinned) buffers.
func (tx *Transaction) AvailableBuffers() int {
	return tx.bufferManager.Available()
}

// PinnedBlocks returns how many pins this transaction currently holds.
func (tx *Transaction) PinnedBlocks() int {
	return tx.myBuffers.PinCount()
}

// TxNum returns the transaction number.
func (tx *Transaction) TxNum() int {
	return tx.txNum
}
