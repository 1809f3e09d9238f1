package metadata

import (
	"github.com/JyotinderSingh/dropexec/index"
	"github.com/JyotinderSingh/dropexec/index/hash"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/tx"
)

// IndexInfo describes one index and estimates the cost of using it.
type IndexInfo struct {
	indexName   string
	fieldName   string
	transaction *tx.Transaction
	indexLayout *record.Layout
	statInfo    *StatInfo
}

func NewIndexInfo(indexName, fieldName string, tableSchema *record.Schema,
	transaction *tx.Transaction, statInfo *StatInfo) *IndexInfo {
	return &IndexInfo{
		indexName:   indexName,
		fieldName:   fieldName,
		transaction: transaction,
		indexLayout: index.NewLayout(tableSchema.Type(fieldName), tableSchema.Length(fieldName)),
		statInfo:    statInfo,
	}
}

// Open opens the index described by this object.
func (ii *IndexInfo) Open() index.Index {
	return hash.NewIndex(ii.transaction, ii.indexName, ii.indexLayout)
}

// BlocksAccessed estimates the number of block accesses required to
// find all the index records having a particular search key.
func (ii *IndexInfo) BlocksAccessed() int {
	recordsPerBlock := max(ii.transaction.BlockSize()/ii.indexLayout.SlotSize(), 1)
	numBlocks := ii.statInfo.RecordsOutput() / recordsPerBlock
	return hash.SearchCost(numBlocks, recordsPerBlock)
}

// RecordsOutput returns the estimated number of records having a search key.
func (ii *IndexInfo) RecordsOutput() int {
	return ii.statInfo.RecordsOutput() / ii.statInfo.DistinctValues(ii.fieldName)
}

// DistinctValues returns 1 for the indexed field and the table's estimate otherwise.
func (ii *IndexInfo) DistinctValues(fieldName string) int {
	if ii.fieldName == fieldName {
		return 1
	}
	return ii.statInfo.DistinctValues(fieldName)
}

func (ii *IndexInfo) IndexName() string {
	return ii.indexName
}

func (ii *IndexInfo) FieldName() string {
	return ii.fieldName
}
