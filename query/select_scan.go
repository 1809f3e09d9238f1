package query

import "github.com/JyotinderSingh/dropexec/scan"

var _ scan.Scan = (*SelectScan)(nil)

// SelectScan passes through the records of its input that satisfy a predicate.
type SelectScan struct {
	inputScan scan.Scan
	predicate *Predicate
}

// NewSelectScan creates a select scan. A nil predicate selects every record.
func NewSelectScan(s scan.Scan, p *Predicate) *SelectScan {
	return &SelectScan{inputScan: s, predicate: p}
}

func (ss *SelectScan) BeforeFirst() error {
	return ss.inputScan.BeforeFirst()
}

// Next moves to the next record satisfying the predicate.
func (ss *SelectScan) Next() (bool, error) {
	for {
		ok, err := ss.inputScan.Next()
		if !ok || err != nil {
			return false, err
		}
		satisfied, err := ss.predicate.IsSatisfied(ss.inputScan)
		if err != nil {
			return false, err
		}
		if satisfied {
			return true, nil
		}
	}
}

func (ss *SelectScan) GetInt(fieldName string) (int, error) {
	return ss.inputScan.GetInt(fieldName)
}

func (ss *SelectScan) GetString(fieldName string) (string, error) {
	return ss.inputScan.GetString(fieldName)
}

func (ss *SelectScan) GetVal(fieldName string) (any, error) {
	return ss.inputScan.GetVal(fieldName)
}

func (ss *SelectScan) HasField(fieldName string) bool {
	return ss.inputScan.HasField(fieldName)
}

func (ss *SelectScan) Close() error {
	return ss.inputScan.Close()
}
