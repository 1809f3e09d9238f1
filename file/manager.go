package file

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// Manager reads and writes fixed-size blocks of the files in one directory.
type Manager struct {
	dbDirectory string
	blockSize   int
	isNew       bool
	openFiles   map[string]*os.File
	mu          sync.Mutex
}

// NewManager creates a file manager rooted at dbDirectory, creating the
// directory if needed. Leftover temp table files from an earlier run are removed.
func NewManager(dbDirectory string, blockSize int) (*Manager, error) {
	if blockSize <= 0 {
		return nil, errors.Errorf("invalid block size %d", blockSize)
	}
	_, err := os.Stat(dbDirectory)
	isNew := os.IsNotExist(err)
	if isNew {
		if err := os.MkdirAll(dbDirectory, 0755); err != nil {
			return nil, errors.Wrap(err, "create database directory")
		}
	}

	entries, err := os.ReadDir(dbDirectory)
	if err != nil {
		return nil, errors.Wrap(err, "read database directory")
	}
	for _, entry := range entries {
		if isTempFile(entry.Name()) {
			_ = os.Remove(filepath.Join(dbDirectory, entry.Name()))
		}
	}

	return &Manager{
		dbDirectory: dbDirectory,
		blockSize:   blockSize,
		isNew:       isNew,
		openFiles:   make(map[string]*os.File),
	}, nil
}

// Read fills p with the contents of block.
func (m *Manager) Read(block *BlockId, p *Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := m.getFile(block.Filename())
	if err != nil {
		return err
	}
	clear(p.Contents())
	_, err = f.ReadAt(p.Contents(), int64(block.Number())*int64(m.blockSize))
	if err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrapf(err, "read block %s", block)
	}
	return nil
}

// Write writes the contents of p to block.
func (m *Manager) Write(block *BlockId, p *Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := m.getFile(block.Filename())
	if err != nil {
		return err
	}
	if _, err := f.WriteAt(p.Contents(), int64(block.Number())*int64(m.blockSize)); err != nil {
		return errors.Wrapf(err, "write block %s", block)
	}
	return nil
}

// Append adds a zeroed block to the end of filename and returns its id.
func (m *Manager) Append(filename string) (*BlockId, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	numBlocks, err := m.length(filename)
	if err != nil {
		return nil, err
	}
	block := NewBlockId(filename, numBlocks)

	f, err := m.getFile(filename)
	if err != nil {
		return nil, err
	}
	if _, err := f.WriteAt(make([]byte, m.blockSize), int64(block.Number())*int64(m.blockSize)); err != nil {
		return nil, errors.Wrapf(err, "append block %s", block)
	}
	return block, nil
}

// Length returns the number of blocks in filename.
func (m *Manager) Length(filename string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.length(filename)
}

// Remove closes and deletes filename. Removing a missing file is not an error.
func (m *Manager) Remove(filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if f, ok := m.openFiles[filename]; ok {
		_ = f.Close()
		delete(m.openFiles, filename)
	}
	err := os.Remove(filepath.Join(m.dbDirectory, filename))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove %s", filename)
	}
	return nil
}

// Close closes every open file.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for name, f := range m.openFiles {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "close %s", name)
		}
		delete(m.openFiles, name)
	}
	return firstErr
}

func (m *Manager) IsNew() bool {
	return m.isNew
}

func (m *Manager) BlockSize() int {
	return m.blockSize
}

func (m *Manager) length(filename string) (int, error) {
	f, err := m.getFile(filename)
	if err != nil {
		return 0, err
	}
	info, err := f.Stat()
	if err != nil {
		return 0, errors.Wrapf(err, "stat %s", filename)
	}
	return int(info.Size() / int64(m.blockSize)), nil
}

// getFile returns the open handle for filename, creating the file if it does
// not exist. The caller must hold m.mu.
func (m *Manager) getFile(filename string) (*os.File, error) {
	if f, ok := m.openFiles[filename]; ok {
		return f, nil
	}
	f, err := os.OpenFile(filepath.Join(m.dbDirectory, filename), os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", filename)
	}
	m.openFiles[filename] = f
	return f, nil
}

// TempFilePrefix starts the name of every temp table file.
const TempFilePrefix = "temp"

func isTempFile(name string) bool {
	if len(name) <= len(TempFilePrefix) || name[:len(TempFilePrefix)] != TempFilePrefix {
		return false
	}
	c := name[len(TempFilePrefix)]
	return c >= '0' && c <= '9'
}
