package query

import (
	"slices"

	"github.com/JyotinderSingh/dropexec/scan"
)

var _ scan.Scan = (*ProjectScan)(nil)

// ProjectScan exposes only the listed fields of its input.
type ProjectScan struct {
	inputScan scan.Scan
	fields    []string
}

func NewProjectScan(s scan.Scan, fieldList []string) *ProjectScan {
	return &ProjectScan{inputScan: s, fields: fieldList}
}

func (ps *ProjectScan) BeforeFirst() error {
	return ps.inputScan.BeforeFirst()
}

func (ps *ProjectScan) Next() (bool, error) {
	return ps.inputScan.Next()
}

func (ps *ProjectScan) Close() error {
	return ps.inputScan.Close()
}

func (ps *ProjectScan) HasField(fieldName string) bool {
	return slices.Contains(ps.fields, fieldName)
}

func (ps *ProjectScan) GetInt(fieldName string) (int, error) {
	if !ps.HasField(fieldName) {
		return 0, fieldNotFound(fieldName)
	}
	return ps.inputScan.GetInt(fieldName)
}

func (ps *ProjectScan) GetString(fieldName string) (string, error) {
	if !ps.HasField(fieldName) {
		return "", fieldNotFound(fieldName)
	}
	return ps.inputScan.GetString(fieldName)
}

func (ps *ProjectScan) GetVal(fieldName string) (any, error) {
	if !ps.HasField(fieldName) {
		return nil, fieldNotFound(fieldName)
	}
	return ps.inputScan.GetVal(fieldName)
}
