package metadata

import (
	"sync"

	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/table"
	"github.com/JyotinderSingh/dropexec/tx"
	"github.com/pkg/errors"
)

type indexDef struct {
	indexName string
	fieldName string
}

// IndexManager is the in-memory index catalog.
type IndexManager struct {
	mu           sync.RWMutex
	indexes      map[string][]indexDef
	tableManager *TableManager
	statManager  *StatManager
}

func NewIndexManager(tableManager *TableManager, statManager *StatManager) *IndexManager {
	return &IndexManager{
		indexes:      make(map[string][]indexDef),
		tableManager: tableManager,
		statManager:  statManager,
	}
}

// CreateIndex registers a hash index on tableName.fieldName and loads every
// record already in the table into it.
func (im *IndexManager) CreateIndex(indexName, tableName, fieldName string, transaction *tx.Transaction) error {
	layout, err := im.tableManager.GetLayout(tableName)
	if err != nil {
		return err
	}
	if !layout.Schema().HasField(fieldName) {
		return errors.Errorf("cannot index %s.%s: no such field", tableName, fieldName)
	}

	im.mu.Lock()
	for _, defs := range im.indexes {
		for _, def := range defs {
			if def.indexName == indexName {
				im.mu.Unlock()
				return errors.Errorf("index %s already exists", indexName)
			}
		}
	}
	im.indexes[tableName] = append(im.indexes[tableName], indexDef{indexName: indexName, fieldName: fieldName})
	im.mu.Unlock()

	return loadIndex(indexName, tableName, fieldName, layout, transaction)
}

func loadIndex(indexName, tableName, fieldName string, layout *record.Layout, transaction *tx.Transaction) (err error) {
	info := NewIndexInfo(indexName, fieldName, layout.Schema(), transaction, NewStatInfo(0, 0, nil))
	idx := info.Open()
	defer func() {
		if closeErr := idx.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	ts, err := table.NewTableScan(transaction, tableName, layout)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := ts.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for {
		hasNext, err := ts.Next()
		if err != nil {
			return err
		}
		if !hasNext {
			return nil
		}
		val, err := ts.GetVal(fieldName)
		if err != nil {
			return err
		}
		if err := idx.Insert(val, ts.GetRecordID()); err != nil {
			return errors.Wrapf(err, "load index %s", indexName)
		}
	}
}

// GetIndexInfo returns the indexes of tableName keyed by indexed field.
func (im *IndexManager) GetIndexInfo(tableName string, transaction *tx.Transaction) (map[string]*IndexInfo, error) {
	im.mu.RLock()
	defs := append([]indexDef(nil), im.indexes[tableName]...)
	im.mu.RUnlock()

	result := make(map[string]*IndexInfo, len(defs))
	if len(defs) == 0 {
		return result, nil
	}

	layout, err := im.tableManager.GetLayout(tableName)
	if err != nil {
		return nil, err
	}
	statInfo, err := im.statManager.GetStatInfo(tableName, layout, transaction)
	if err != nil {
		return nil, err
	}
	for _, def := range defs {
		result[def.fieldName] = NewIndexInfo(def.indexName, def.fieldName, layout.Schema(), transaction, statInfo)
	}
	return result, nil
}
