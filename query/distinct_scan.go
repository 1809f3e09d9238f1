package query

import "github.com/JyotinderSingh/dropexec/scan"

var _ scan.Scan = (*DistinctScan)(nil)

// DistinctScan skips input records whose values on the distinct fields were
// already returned. Seen combinations are kept in memory, bucketed by hash.
type DistinctScan struct {
	inputScan scan.Scan
	fields    []string
	seen      map[int][]*GroupValue
}

func NewDistinctScan(inputScan scan.Scan, fields []string) *DistinctScan {
	return &DistinctScan{
		inputScan: inputScan,
		fields:    fields,
		seen:      make(map[int][]*GroupValue),
	}
}

// BeforeFirst restarts the input and forgets every seen combination.
func (ds *DistinctScan) BeforeFirst() error {
	clear(ds.seen)
	return ds.inputScan.BeforeFirst()
}

func (ds *DistinctScan) Next() (bool, error) {
	for {
		ok, err := ds.inputScan.Next()
		if !ok || err != nil {
			return false, err
		}
		gv, err := NewGroupValue(ds.inputScan, ds.fields)
		if err != nil {
			return false, err
		}
		if ds.markSeen(gv) {
			return true, nil
		}
	}
}

// markSeen records gv and reports whether it was new.
func (ds *DistinctScan) markSeen(gv *GroupValue) bool {
	h := gv.Hash()
	for _, other := range ds.seen[h] {
		if gv.Equals(other) {
			return false
		}
	}
	ds.seen[h] = append(ds.seen[h], gv)
	return true
}

func (ds *DistinctScan) GetInt(fieldName string) (int, error) {
	return ds.inputScan.GetInt(fieldName)
}

func (ds *DistinctScan) GetString(fieldName string) (string, error) {
	return ds.inputScan.GetString(fieldName)
}

func (ds *DistinctScan) GetVal(fieldName string) (any, error) {
	return ds.inputScan.GetVal(fieldName)
}

func (ds *DistinctScan) HasField(fieldName string) bool {
	return ds.inputScan.HasField(fieldName)
}

func (ds *DistinctScan) Close() error {
	clear(ds.seen)
	return ds.inputScan.Close()
}
