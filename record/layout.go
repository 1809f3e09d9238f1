package record

import (
	"fmt"
	"sort"

	"github.com/JyotinderSingh/dropexec/file"
	"github.com/JyotinderSingh/dropexec/types"
)

// Layout describes the structure of a record.
// It contains the name, type, length, and offset of
// each field of a given table.
type Layout struct {
	schema   *Schema
	offsets  map[string]int
	slotSize int
}

// NewLayout creates a new layout for a given schema.
// The slot starts with the in-use flag. Integer fields follow so they stay
// 8-byte aligned, then the varchar fields, and the slot is padded to a multiple of 8.
func NewLayout(schema *Schema) *Layout {
	layout := &Layout{
		schema:  schema,
		offsets: make(map[string]int),
	}

	fields := schema.Fields()
	sort.SliceStable(fields, func(i, j int) bool {
		return schema.Type(fields[i]) == types.Integer && schema.Type(fields[j]) != types.Integer
	})

	pos := types.IntSize
	for _, field := range fields {
		layout.offsets[field] = pos
		pos += layout.lengthInBytes(field)
	}
	if rem := pos % types.IntSize; rem != 0 {
		pos += types.IntSize - rem
	}

	layout.slotSize = pos
	return layout
}

// NewLayoutFromMetadata creates a new layout from the specified metadata.
func NewLayoutFromMetadata(schema *Schema, offsets map[string]int, slotSize int) *Layout {
	return &Layout{
		schema:   schema,
		offsets:  offsets,
		slotSize: slotSize,
	}
}

// Schema returns the schema of the table's records.
func (l *Layout) Schema() *Schema {
	return l.schema
}

// Offset returns the offset of the specified field within a record.
func (l *Layout) Offset(fieldName string) (int, bool) {
	offset, ok := l.offsets[fieldName]
	return offset, ok
}

// SlotSize returns the size of a record slot in bytes.
func (l *Layout) SlotSize() int {
	return l.slotSize
}

func (l *Layout) lengthInBytes(fieldName string) int {
	fieldType := l.schema.Type(fieldName)
	switch fieldType {
	case types.Integer:
		return types.IntSize
	case types.Varchar:
		return file.MaxLength(l.schema.Length(fieldName))
	default:
		panic(fmt.Sprintf("unknown field type: %d", fieldType))
	}
}
