package query

import "github.com/JyotinderSingh/dropexec/scan"

var _ scan.Scan = (*ProductScan)(nil)

// ProductScan returns every combination of a left and a right record.
type ProductScan struct {
	scan1   scan.Scan
	scan2   scan.Scan
	hasLeft bool
}

// NewProductScan positions the product before its first record.
func NewProductScan(s1, s2 scan.Scan) (*ProductScan, error) {
	ps := &ProductScan{scan1: s1, scan2: s2}
	if err := ps.BeforeFirst(); err != nil {
		_ = ps.Close()
		return nil, err
	}
	return ps, nil
}

// BeforeFirst moves the left scan to its first record and the right scan
// before its first record.
func (ps *ProductScan) BeforeFirst() error {
	if err := ps.scan1.BeforeFirst(); err != nil {
		return err
	}
	var err error
	if ps.hasLeft, err = ps.scan1.Next(); err != nil {
		return err
	}
	return ps.scan2.BeforeFirst()
}

// Next moves to the next right record, or to the next left record and the
// first right record once the right side is exhausted.
func (ps *ProductScan) Next() (bool, error) {
	for ps.hasLeft {
		ok, err := ps.scan2.Next()
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		if err := ps.scan2.BeforeFirst(); err != nil {
			return false, err
		}
		if ps.hasLeft, err = ps.scan1.Next(); err != nil {
			return false, err
		}
	}
	return false, nil
}

func (ps *ProductScan) Close() error {
	return closeAll(ps.scan1, ps.scan2)
}

func (ps *ProductScan) HasField(fieldName string) bool {
	return ps.scan1.HasField(fieldName) || ps.scan2.HasField(fieldName)
}

func (ps *ProductScan) GetInt(fieldName string) (int, error) {
	if ps.scan1.HasField(fieldName) {
		return ps.scan1.GetInt(fieldName)
	}
	if ps.scan2.HasField(fieldName) {
		return ps.scan2.GetInt(fieldName)
	}
	return 0, fieldNotFound(fieldName)
}

func (ps *ProductScan) GetString(fieldName string) (string, error) {
	if ps.scan1.HasField(fieldName) {
		return ps.scan1.GetString(fieldName)
	}
	if ps.scan2.HasField(fieldName) {
		return ps.scan2.GetString(fieldName)
	}
	return "", fieldNotFound(fieldName)
}

func (ps *ProductScan) GetVal(fieldName string) (any, error) {
	if ps.scan1.HasField(fieldName) {
		return ps.scan1.GetVal(fieldName)
	}
	if ps.scan2.HasField(fieldName) {
		return ps.scan2.GetVal(fieldName)
	}
	return nil, fieldNotFound(fieldName)
}
