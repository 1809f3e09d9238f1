package hash

import (
	"fmt"

	"github.com/JyotinderSingh/dropexec/index"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/table"
	"github.com/JyotinderSingh/dropexec/tx"
	"github.com/JyotinderSingh/dropexec/types"
	"github.com/pkg/errors"
)

const numBuckets = 100

var _ index.Index = (*Index)(nil)

// Index is a static hash index. Each bucket is a separate table file.
type Index struct {
	transaction *tx.Transaction
	indexName   string
	layout      *record.Layout
	searchKey   any
	tableScan   *table.Scan
}

// NewIndex opens a hash index for the specified index.
func NewIndex(transaction *tx.Transaction, indexName string, layout *record.Layout) *Index {
	return &Index{
		transaction: transaction,
		indexName:   indexName,
		layout:      layout,
	}
}

// BeforeFirst hashes the search key to pick a bucket and opens a table scan
// on that bucket's file. The scan of the previous bucket, if any, is closed.
func (idx *Index) BeforeFirst(searchKey any) error {
	if err := idx.Close(); err != nil {
		return err
	}
	idx.searchKey = searchKey
	ts, err := table.NewTableScan(idx.transaction, bucketName(idx.indexName, searchKey), idx.layout)
	if err != nil {
		return errors.Wrapf(err, "open bucket of index %s", idx.indexName)
	}
	idx.tableScan = ts
	return nil
}

// Next moves to the next record of the bucket whose data value equals the search key.
func (idx *Index) Next() (bool, error) {
	if idx.tableScan == nil {
		return false, errors.New("index is not positioned")
	}
	for {
		hasNext, err := idx.tableScan.Next()
		if err != nil || !hasNext {
			return false, err
		}
		currentValue, err := idx.tableScan.GetVal(index.DataValueField)
		if err != nil {
			return false, err
		}
		if types.Equal(currentValue, idx.searchKey) {
			return true, nil
		}
	}
}

func (idx *Index) GetDataRecordID() (*record.ID, error) {
	blockNumber, err := idx.tableScan.GetInt(index.BlockField)
	if err != nil {
		return nil, err
	}
	slot, err := idx.tableScan.GetInt(index.IDField)
	if err != nil {
		return nil, err
	}
	return record.NewID(blockNumber, slot), nil
}

func (idx *Index) Insert(dataValue any, dataRecordID *record.ID) error {
	if err := idx.BeforeFirst(dataValue); err != nil {
		return err
	}
	if err := idx.tableScan.Insert(); err != nil {
		return err
	}
	if err := idx.tableScan.SetInt(index.BlockField, dataRecordID.BlockNumber()); err != nil {
		return err
	}
	if err := idx.tableScan.SetInt(index.IDField, dataRecordID.Slot()); err != nil {
		return err
	}
	return idx.tableScan.SetVal(index.DataValueField, dataValue)
}

// Delete removes the index record for dataValue pointing at dataRecordID.
// A missing record is not an error.
func (idx *Index) Delete(dataValue any, dataRecordID *record.ID) error {
	if err := idx.BeforeFirst(dataValue); err != nil {
		return err
	}
	for {
		hasNext, err := idx.Next()
		if err != nil || !hasNext {
			return err
		}
		currentRecordID, err := idx.GetDataRecordID()
		if err != nil {
			return err
		}
		if currentRecordID.Equals(dataRecordID) {
			return idx.tableScan.Delete()
		}
	}
}

func (idx *Index) Close() error {
	if idx.tableScan == nil {
		return nil
	}
	err := idx.tableScan.Close()
	idx.tableScan = nil
	return err
}

// SearchCost returns the cost of searching an index file having the
// specified number of blocks. Buckets are assumed to be about the same size.
func SearchCost(numBlocks, recordsPerBucket int) int {
	return numBlocks / numBuckets
}

func bucketName(indexName string, key any) string {
	return fmt.Sprintf("%s-%d", indexName, types.Hash(key)%numBuckets)
}
