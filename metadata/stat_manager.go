package metadata

import (
	"sync"

	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/table"
	"github.com/JyotinderSingh/dropexec/tx"
	"github.com/pkg/errors"
)

// StatManager computes table statistics by scanning and caches them. The
// cache is rebuilt after refreshLimit lookups.
type StatManager struct {
	tableManager *TableManager
	tableStats   map[string]*StatInfo
	numCalls     int
	mu           sync.Mutex
	refreshLimit int
}

func NewStatManager(tableManager *TableManager, transaction *tx.Transaction, refreshLimit int) (*StatManager, error) {
	statMgr := &StatManager{
		tableManager: tableManager,
		tableStats:   make(map[string]*StatInfo),
		refreshLimit: refreshLimit,
	}
	if err := statMgr.RefreshStatistics(transaction); err != nil {
		return nil, err
	}
	return statMgr, nil
}

// GetStatInfo returns statistical information about the specified table.
func (sm *StatManager) GetStatInfo(tableName string, layout *record.Layout, transaction *tx.Transaction) (*StatInfo, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.numCalls++
	if sm.refreshLimit > 0 && sm.numCalls > sm.refreshLimit {
		if err := sm.refreshLocked(transaction); err != nil {
			return nil, err
		}
	}

	if statInfo, exists := sm.tableStats[tableName]; exists {
		return statInfo, nil
	}

	statInfo, err := calcTableStats(tableName, layout, transaction)
	if err != nil {
		return nil, err
	}
	sm.tableStats[tableName] = statInfo
	return statInfo, nil
}

// RefreshStatistics recomputes the statistics of every catalogued table.
func (sm *StatManager) RefreshStatistics(transaction *tx.Transaction) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.refreshLocked(transaction)
}

// refreshLocked requires sm.mu.
func (sm *StatManager) refreshLocked(transaction *tx.Transaction) error {
	sm.tableStats = make(map[string]*StatInfo)
	sm.numCalls = 0

	for _, tableName := range sm.tableManager.TableNames() {
		layout, err := sm.tableManager.GetLayout(tableName)
		if err != nil {
			return err
		}
		statInfo, err := calcTableStats(tableName, layout, transaction)
		if err != nil {
			return err
		}
		sm.tableStats[tableName] = statInfo
	}
	return nil
}

func calcTableStats(tableName string, layout *record.Layout, transaction *tx.Transaction) (_ *StatInfo, err error) {
	fields := layout.Schema().Fields()
	distinct := make(map[string]map[any]struct{}, len(fields))
	for _, field := range fields {
		distinct[field] = make(map[any]struct{})
	}

	ts, err := table.NewTableScan(transaction, tableName, layout)
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s for statistics", tableName)
	}
	defer func() {
		if closeErr := ts.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	numRecords := 0
	for {
		hasNext, err := ts.Next()
		if err != nil {
			return nil, err
		}
		if !hasNext {
			break
		}
		numRecords++
		for _, field := range fields {
			val, err := ts.GetVal(field)
			if err != nil {
				return nil, err
			}
			distinct[field][val] = struct{}{}
		}
	}

	numBlocks, err := table.Size(transaction, tableName)
	if err != nil {
		return nil, err
	}

	distinctCounts := make(map[string]int, len(distinct))
	for field, values := range distinct {
		distinctCounts[field] = len(values)
	}
	return NewStatInfo(numBlocks, numRecords, distinctCounts), nil
}
