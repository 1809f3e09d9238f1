package index

import (
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/types"
)

// Field names of every index record.
const (
	BlockField     = "block"
	IDField        = "id"
	DataValueField = "dataval"
)

type Index interface {
	// BeforeFirst positions the index before the
	// first record having the specified search key.
	BeforeFirst(searchKey any) error

	// Next moves the index to the next record having the search key specified in the BeforeFirst method.
	// Returns false if there are no more such index records.
	Next() (bool, error)

	// GetDataRecordID returns the data record ID stored in the current index record.
	GetDataRecordID() (*record.ID, error)

	// Insert inserts a new index record having the specified dataValue and dataRecordID values.
	Insert(dataValue any, dataRecordID *record.ID) error

	// Delete deletes the index record having the specified dataValue and dataRecordID values.
	Delete(dataValue any, dataRecordID *record.ID) error

	// Close closes the index. Closing twice is a no-op.
	Close() error
}

// NewLayout returns the layout of index records for an indexed field of the
// given type and length.
func NewLayout(fieldType types.SchemaType, length int) *record.Layout {
	schema := record.NewSchema()
	schema.AddIntField(BlockField)
	schema.AddIntField(IDField)
	if fieldType == types.Integer {
		schema.AddIntField(DataValueField)
	} else {
		schema.AddStringField(DataValueField, length)
	}
	return record.NewLayout(schema)
}
