package record

import (
	"slices"

	"github.com/JyotinderSingh/dropexec/types"
)

// Schema represents record schema of a table.
// A schema contains the name and type of each
// field of the table, as well as the length of
// each varchar field.
type Schema struct {
	fields []string
	info   map[string]types.FieldInfo
}

// NewSchema creates a new schema.
func NewSchema() *Schema {
	return &Schema{
		fields: make([]string, 0),
		info:   make(map[string]types.FieldInfo),
	}
}

// AddField adds a field to the schema having a specified
// name, type, and length. Adding a name that already exists replaces its
// type information but keeps its position.
func (s *Schema) AddField(fieldName string, fieldType types.SchemaType, length int) {
	if _, ok := s.info[fieldName]; !ok {
		s.fields = append(s.fields, fieldName)
	}
	s.info[fieldName] = types.FieldInfo{Type: fieldType, Length: length}
}

// AddIntField adds an integer field to the schema.
func (s *Schema) AddIntField(fieldName string) {
	s.AddField(fieldName, types.Integer, 0)
}

// AddStringField adds a string field to the schema.
func (s *Schema) AddStringField(fieldName string, length int) {
	s.AddField(fieldName, types.Varchar, length)
}

// Add adds a field to the schema having the same
// type and length as the corresponding field in
// the specified schema.
func (s *Schema) Add(fieldName string, other *Schema) {
	info := other.info[fieldName]
	s.AddField(fieldName, info.Type, info.Length)
}

// AddAll adds all the fields in the specified schema to the current schema.
func (s *Schema) AddAll(other *Schema) {
	for _, field := range other.fields {
		s.Add(field, other)
	}
}

// Fields returns a copy of the field names in declaration order.
func (s *Schema) Fields() []string {
	return slices.Clone(s.fields)
}

// HasField returns true if the schema contains a field with the specified name.
func (s *Schema) HasField(fieldName string) bool {
	_, ok := s.info[fieldName]
	return ok
}

// Type returns the type of the field with the specified name.
func (s *Schema) Type(fieldName string) types.SchemaType {
	return s.info[fieldName].Type
}

// Length returns the length of the field with the specified name.
func (s *Schema) Length(fieldName string) int {
	return s.info[fieldName].Length
}
