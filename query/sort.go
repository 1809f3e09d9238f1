package query

import (
	"strings"

	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/JyotinderSingh/dropexec/types"
)

// SortField is one key of a sort order.
type SortField struct {
	Expression *Expression
	Descending bool
}

// Sort is an ordered list of sort keys. An empty Sort imposes no order.
type Sort struct {
	fields []SortField
}

func NewSort(fields ...SortField) *Sort {
	return &Sort{fields: fields}
}

// NewAscendingSort sorts by the named fields in ascending order.
func NewAscendingSort(fieldNames ...string) *Sort {
	s := &Sort{}
	for _, name := range fieldNames {
		s.fields = append(s.fields, SortField{Expression: NewFieldExpression(name)})
	}
	return s
}

func (s *Sort) Fields() []SortField {
	if s == nil {
		return nil
	}
	return s.fields
}

func (s *Sort) IsEmpty() bool {
	return len(s.Fields()) == 0
}

// FieldNames returns the names of the fields referenced by the sort keys.
func (s *Sort) FieldNames() []string {
	var names []string
	for _, f := range s.Fields() {
		if f.Expression.IsFieldName() {
			names = append(names, f.Expression.AsFieldName())
		}
	}
	return names
}

// CheckFields returns ErrFieldNotFound if a key references a field outside schema.
func (s *Sort) CheckFields(schema *record.Schema) error {
	for _, name := range s.FieldNames() {
		if !schema.HasField(name) {
			return fieldNotFound(name)
		}
	}
	return nil
}

func (s *Sort) String() string {
	parts := make([]string, 0, len(s.Fields()))
	for _, f := range s.Fields() {
		part := f.Expression.String()
		if f.Descending {
			part += " desc"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

// RecordComparator compares the current records of two scans by a sort order.
type RecordComparator struct {
	sort *Sort
}

func NewRecordComparator(sort *Sort) *RecordComparator {
	return &RecordComparator{sort: sort}
}

// Compare returns a negative number if s1 sorts before s2, a positive number if
// it sorts after, and 0 if they are equal on every key.
func (rc *RecordComparator) Compare(s1, s2 scan.Scan) (int, error) {
	for _, field := range rc.sort.Fields() {
		val1, err := field.Expression.Evaluate(s1)
		if err != nil {
			return 0, err
		}
		val2, err := field.Expression.Evaluate(s2)
		if err != nil {
			return 0, err
		}
		c, err := types.Compare(val1, val2)
		if err != nil {
			return 0, err
		}
		if c != 0 {
			if field.Descending {
				return -c, nil
			}
			return c, nil
		}
	}
	return 0, nil
}
