package server

import (
	"os"
	"unicode/utf8"

	"github.com/JyotinderSingh/dropexec/metadata"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/table"
	"github.com/JyotinderSingh/dropexec/tx"
	"github.com/JyotinderSingh/dropexec/types"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Dataset describes the tables, rows and indexes to load before querying.
type Dataset struct {
	Tables  []TableSpec `yaml:"tables"`
	Indexes []IndexSpec `yaml:"indexes"`
}

type TableSpec struct {
	Name   string      `yaml:"name"`
	Fields []FieldSpec `yaml:"fields"`
	// Rows list field values in the order of Fields.
	Rows [][]any `yaml:"rows"`
}

type FieldSpec struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Length int    `yaml:"length"`
}

type IndexSpec struct {
	Name  string `yaml:"name"`
	Table string `yaml:"table"`
	Field string `yaml:"field"`
}

// ParseDataset decodes a YAML dataset.
func ParseDataset(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, errors.Wrap(err, "parse dataset")
	}
	return &ds, nil
}

// LoadDataset reads and decodes the dataset at path.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read dataset")
	}
	return ParseDataset(data)
}

// Schema builds the record schema of the table.
func (ts TableSpec) Schema() (*record.Schema, error) {
	if ts.Name == "" {
		return nil, errors.New("table without a name")
	}
	if len(ts.Fields) == 0 {
		return nil, errors.Errorf("table %s has no fields", ts.Name)
	}
	schema := record.NewSchema()
	for _, f := range ts.Fields {
		if f.Name == "" {
			return nil, errors.Errorf("table %s: field without a name", ts.Name)
		}
		if schema.HasField(f.Name) {
			return nil, errors.Errorf("table %s: field %s declared twice", ts.Name, f.Name)
		}
		fieldType, ok := types.SchemaTypeFromString(f.Type)
		if !ok {
			return nil, errors.Errorf("table %s: field %s has unknown type %q", ts.Name, f.Name, f.Type)
		}
		switch fieldType {
		case types.Integer:
			schema.AddIntField(f.Name)
		case types.Varchar:
			if f.Length <= 0 {
				return nil, errors.Errorf("table %s: varchar field %s needs a positive length", ts.Name, f.Name)
			}
			schema.AddStringField(f.Name, f.Length)
		}
	}
	return schema, nil
}

// checkRow verifies that row matches the schema in arity, types and
// string lengths.
func checkRow(schema *record.Schema, row []any) error {
	fields := schema.Fields()
	if len(row) != len(fields) {
		return errors.Errorf("has %d values, want %d", len(row), len(fields))
	}
	for i, field := range fields {
		switch schema.Type(field) {
		case types.Integer:
			if _, ok := row[i].(int); !ok {
				return errors.Errorf("field %s wants an int, got %T", field, row[i])
			}
		case types.Varchar:
			s, ok := row[i].(string)
			if !ok {
				return errors.Errorf("field %s wants a string, got %T", field, row[i])
			}
			if n := utf8.RuneCountInString(s); n > schema.Length(field) {
				return errors.Errorf("field %s holds at most %d characters, got %d", field, schema.Length(field), n)
			}
		}
	}
	return nil
}

// loadTable creates the table and inserts its rows.
func loadTable(transaction *tx.Transaction, md *metadata.Manager, spec TableSpec) (err error) {
	schema, err := spec.Schema()
	if err != nil {
		return err
	}
	for i, row := range spec.Rows {
		if err := checkRow(schema, row); err != nil {
			return errors.Wrapf(err, "table %s row %d", spec.Name, i)
		}
	}

	if err := md.CreateTable(spec.Name, schema); err != nil {
		return err
	}
	layout, err := md.GetLayout(spec.Name)
	if err != nil {
		return err
	}

	ts, err := table.NewTableScan(transaction, spec.Name, layout)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := ts.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	for _, row := range spec.Rows {
		if err := ts.Insert(); err != nil {
			return err
		}
		for i, field := range schema.Fields() {
			if err := ts.SetVal(field, row[i]); err != nil {
				return errors.Wrapf(err, "table %s", spec.Name)
			}
		}
	}
	return nil
}
