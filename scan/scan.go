package scan

// Scan interface will be implemented by each query scan.
// There is a Scan class for each relational algebra operator.
//
// Next must be called before any field is read. Close releases every resource
// the scan holds, including those of its child scans, and is safe to call more
// than once.
type Scan interface {
	// BeforeFirst positions the scan before the first record. A subsequent call to Next will move to the first record.
	BeforeFirst() error

	// Next moves to the next record in the scan. It returns false if there are no more records to scan.
	Next() (bool, error)

	// GetInt returns the integer value of the specified field in the current record.
	GetInt(fieldName string) (int, error)

	// GetString returns the string value of the specified field in the current record.
	GetString(fieldName string) (string, error)

	// GetVal returns the value of the specified field in the current record.
	// The value is an int or a string.
	GetVal(fieldName string) (any, error)

	// HasField returns true if the current record has the specified field.
	HasField(fieldName string) bool

	// Close closes the scan and its subscans, if any.
	Close() error
}
