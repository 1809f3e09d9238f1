package buffer

import (
	"context"
	"sync"
	"time"

	"github.com/JyotinderSingh/dropexec/file"
	"github.com/pkg/errors"
)

// DefaultMaxWaitTime is how long Pin waits for a free buffer before giving up.
const DefaultMaxWaitTime = 10 * time.Second

// ErrBufferAbort is returned when no buffer became available in time.
var ErrBufferAbort = errors.New("buffer abort")

// Manager manages the pinning and unpinning of buffers to blocks.
type Manager struct {
	bufferPool   []*Buffer
	numAvailable int
	maxWaitTime  time.Duration
	mu           sync.Mutex
	cond         *sync.Cond
}

// NewManager creates a buffer manager having the specified number of buffer slots.
func NewManager(fileManager *file.Manager, numBuffers int) *Manager {
	return NewManagerWithTimeout(fileManager, numBuffers, DefaultMaxWaitTime)
}

// NewManagerWithTimeout is NewManager with a custom pin timeout.
func NewManagerWithTimeout(fileManager *file.Manager, numBuffers int, maxWaitTime time.Duration) *Manager {
	bm := &Manager{
		bufferPool:   make([]*Buffer, numBuffers),
		numAvailable: numBuffers,
		maxWaitTime:  maxWaitTime,
	}
	bm.cond = sync.NewCond(&bm.mu)
	for i := 0; i < numBuffers; i++ {
		bm.bufferPool[i] = NewBuffer(fileManager)
	}
	return bm
}

// Available returns the number of available (i.e., unpinned) buffers.
func (m *Manager) Available() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.numAvailable
}

// FlushAll flushes the dirty buffers modified by the specified transaction.
func (m *Manager) FlushAll(txNum int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, buff := range m.bufferPool {
		if buff.modifyingTx() == txNum {
			if err := buff.flush(); err != nil {
				return errors.Wrapf(err, "flush buffer for txn %d", txNum)
			}
		}
	}
	return nil
}

// DiscardFile drops every unpinned buffer holding a block of filename
// without writing it back. Used before a file is deleted.
func (m *Manager) DiscardFile(filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, buff := range m.bufferPool {
		b := buff.Block()
		if b == nil || b.Filename() != filename {
			continue
		}
		if buff.isPinned() {
			return errors.Errorf("cannot discard %s: block %d is still pinned", filename, b.Number())
		}
		buff.discard()
	}
	return nil
}

// Unpin unpins the specified buffer. If its pin count goes to zero, it increases the number
// of available buffers and notifies any waiting goroutines.
func (m *Manager) Unpin(buffer *Buffer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	buffer.unpin()
	if !buffer.isPinned() {
		m.numAvailable++
		m.cond.Broadcast()
	}
}

// Pin pins a buffer to the specified block, potentially waiting until a buffer becomes available.
// If no buffer becomes available within the configured wait time, it returns ErrBufferAbort.
func (m *Manager) Pin(block *file.BlockId) (*Buffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.maxWaitTime)
	defer cancel()

	// Wake the waiter once the deadline passes.
	stop := context.AfterFunc(ctx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.cond.Broadcast()
	})
	defer stop()

	for {
		buff, err := m.tryToPin(block)
		if err != nil {
			return nil, err
		}
		if buff != nil {
			return buff, nil
		}
		if ctx.Err() != nil {
			return nil, errors.Wrapf(ErrBufferAbort, "could not pin block %s", block)
		}
		m.cond.Wait()
	}
}

// tryToPin tries to pin a buffer to the specified block.
// If there is already a buffer assigned to that block, it uses that buffer.
// Otherwise, it chooses an unpinned buffer from the pool.
// Returns nil if there are no available buffers. The caller must hold m.mu.
func (m *Manager) tryToPin(block *file.BlockId) (*Buffer, error) {
	buffer := m.findExistingBuffer(block)
	if buffer == nil {
		buffer = m.chooseUnpinnedBuffer()
		if buffer == nil {
			return nil, nil
		}
		if err := buffer.assignToBlock(block); err != nil {
			return nil, err
		}
	}
	if !buffer.isPinned() {
		m.numAvailable--
	}
	buffer.pin()
	return buffer, nil
}

func (m *Manager) findExistingBuffer(block *file.BlockId) *Buffer {
	for _, buffer := range m.bufferPool {
		if b := buffer.Block(); b != nil && b.Equals(block) {
			return buffer
		}
	}
	return nil
}

// chooseUnpinnedBuffer prefers a buffer holding no block, then the first unpinned one.
func (m *Manager) chooseUnpinnedBuffer() *Buffer {
	var candidate *Buffer
	for _, buffer := range m.bufferPool {
		if buffer.isPinned() {
			continue
		}
		if buffer.Block() == nil {
			return buffer
		}
		if candidate == nil {
			candidate = buffer
		}
	}
	return candidate
}
