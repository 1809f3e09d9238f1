package materialize

import (
	"fmt"
	"sync/atomic"

	"github.com/JyotinderSingh/dropexec/file"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/table"
	"github.com/JyotinderSingh/dropexec/tx"
	"github.com/pkg/errors"
)

// TempTable is a table that is not registered in the catalog. Its file is
// removed by Drop, and any leftovers are cleaned up when the file manager starts.
type TempTable struct {
	tx        *tx.Transaction
	tableName string
	layout    *record.Layout
	dropped   bool
}

var nextTableNum atomic.Int64

// NewTempTable creates a temporary table with the specified schema.
func NewTempTable(transaction *tx.Transaction, schema *record.Schema) *TempTable {
	return &TempTable{
		tx:        transaction,
		tableName: nextTableName(),
		layout:    record.NewLayout(schema),
	}
}

// Open opens a table scan for the temporary table.
func (tt *TempTable) Open() (*table.Scan, error) {
	if tt.dropped {
		return nil, errors.Errorf("temp table %s has been dropped", tt.tableName)
	}
	return table.NewTableScan(tt.tx, tt.tableName, tt.layout)
}

// OpenOwned opens a scan that drops the table when it is closed. The table
// is also dropped if it cannot be opened.
func (tt *TempTable) OpenOwned() (*OwnedScan, error) {
	ts, err := tt.Open()
	if err != nil {
		_ = tt.Drop()
		return nil, err
	}
	return &OwnedScan{Scan: ts, owner: tt}, nil
}

// Drop removes the table's file. Every scan on the table must be closed.
// Dropping twice is a no-op.
func (tt *TempTable) Drop() error {
	if tt.dropped {
		return nil
	}
	tt.dropped = true
	return table.Drop(tt.tx, tt.tableName)
}

// Size returns the number of blocks in the table.
func (tt *TempTable) Size() (int, error) {
	return table.Size(tt.tx, tt.tableName)
}

func (tt *TempTable) TableName() string {
	return tt.tableName
}

func (tt *TempTable) Layout() *record.Layout {
	return tt.layout
}

func nextTableName() string {
	return fmt.Sprintf("%s%d", file.TempFilePrefix, nextTableNum.Add(1))
}

// OwnedScan is a table scan over a temp table that it owns.
type OwnedScan struct {
	*table.Scan
	owner *TempTable
}

// Close closes the scan and drops the underlying table.
func (s *OwnedScan) Close() error {
	err := s.Scan.Close()
	if dropErr := s.owner.Drop(); dropErr != nil && err == nil {
		err = dropErr
	}
	return err
}
