package metadata

import (
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/tx"
)

// Manager is the catalog facade used by the planners.
type Manager struct {
	tableManager *TableManager
	statManager  *StatManager
	indexManager *IndexManager
}

// NewManager creates an empty catalog. Statistics are cached for refreshLimit
// lookups before being recomputed.
func NewManager(transaction *tx.Transaction, refreshLimit int) (*Manager, error) {
	m := &Manager{tableManager: NewTableManager()}

	var err error
	if m.statManager, err = NewStatManager(m.tableManager, transaction, refreshLimit); err != nil {
		return nil, err
	}
	m.indexManager = NewIndexManager(m.tableManager, m.statManager)
	return m, nil
}

func (m *Manager) CreateTable(tableName string, schema *record.Schema) error {
	return m.tableManager.CreateTable(tableName, schema)
}

func (m *Manager) GetLayout(tableName string) (*record.Layout, error) {
	return m.tableManager.GetLayout(tableName)
}

func (m *Manager) TableNames() []string {
	return m.tableManager.TableNames()
}

// CreateIndex creates a hash index on the specified field and loads the
// table's existing records into it.
func (m *Manager) CreateIndex(indexName, tableName, fieldName string, transaction *tx.Transaction) error {
	return m.indexManager.CreateIndex(indexName, tableName, fieldName, transaction)
}

// GetIndexInfo returns the indexes of the specified table keyed by field name.
func (m *Manager) GetIndexInfo(tableName string, transaction *tx.Transaction) (map[string]*IndexInfo, error) {
	return m.indexManager.GetIndexInfo(tableName, transaction)
}

func (m *Manager) GetStatInfo(tableName string, layout *record.Layout, transaction *tx.Transaction) (*StatInfo, error) {
	return m.statManager.GetStatInfo(tableName, layout, transaction)
}

// RefreshStatistics recomputes the statistics of every table.
func (m *Manager) RefreshStatistics(transaction *tx.Transaction) error {
	return m.statManager.RefreshStatistics(transaction)
}
