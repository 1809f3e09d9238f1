package metadata

// StatInfo holds the statistics of one table.
type StatInfo struct {
	numBlocks      int
	numRecords     int
	distinctValues map[string]int
}

func NewStatInfo(numBlocks, numRecords int, distinctValues map[string]int) *StatInfo {
	return &StatInfo{
		numBlocks:      numBlocks,
		numRecords:     numRecords,
		distinctValues: distinctValues,
	}
}

// BlocksAccessed returns the number of blocks in the table.
func (si *StatInfo) BlocksAccessed() int {
	return si.numBlocks
}

// RecordsOutput returns the number of records in the table.
func (si *StatInfo) RecordsOutput() int {
	return si.numRecords
}

// DistinctValues returns the number of distinct values of fieldName.
// Unknown fields and empty tables report 1 so the value can be used as a divisor.
func (si *StatInfo) DistinctValues(fieldName string) int {
	if val, ok := si.distinctValues[fieldName]; ok && val > 0 {
		return val
	}
	return 1
}
