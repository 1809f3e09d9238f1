package metadata

import (
	"slices"
	"sync"

	"github.com/JyotinderSingh/dropexec/record"
	"github.com/pkg/errors"
)

// ErrTableNotFound is returned for lookups of tables that were never created.
var ErrTableNotFound = errors.New("table not found")

// TableManager is the in-memory table catalog. It maps table names to layouts.
type TableManager struct {
	mu      sync.RWMutex
	layouts map[string]*record.Layout
}

func NewTableManager() *TableManager {
	return &TableManager{layouts: make(map[string]*record.Layout)}
}

// CreateTable registers a table having the specified name and schema.
func (tm *TableManager) CreateTable(tableName string, schema *record.Schema) error {
	if tableName == "" {
		return errors.New("table name must not be empty")
	}
	if len(schema.Fields()) == 0 {
		return errors.Errorf("table %s has no fields", tableName)
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()
	if _, exists := tm.layouts[tableName]; exists {
		return errors.Errorf("table %s already exists", tableName)
	}
	tm.layouts[tableName] = record.NewLayout(schema)
	return nil
}

// GetLayout returns the layout of the specified table.
func (tm *TableManager) GetLayout(tableName string) (*record.Layout, error) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	layout, ok := tm.layouts[tableName]
	if !ok {
		return nil, errors.Wrapf(ErrTableNotFound, "table %s", tableName)
	}
	return layout, nil
}

// TableNames returns the names of every table, sorted.
func (tm *TableManager) TableNames() []string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	names := make([]string, 0, len(tm.layouts))
	for name := range tm.layouts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
