package types

// SchemaType identifies the storage type of a field. The values follow the
// JDBC type codes.
type SchemaType int

const (
	Integer SchemaType = 4
	Varchar SchemaType = 12
)

// IntSize is the number of bytes an integer occupies on a page.
const IntSize = 8

type FieldInfo struct {
	Type   SchemaType
	Length int
}

func (t SchemaType) String() string {
	switch t {
	case Integer:
		return "int"
	case Varchar:
		return "varchar"
	default:
		return "unknown"
	}
}

// SchemaTypeFromString parses the type names used in dataset files.
func SchemaTypeFromString(s string) (SchemaType, bool) {
	switch s {
	case "int", "integer":
		return Integer, true
	case "varchar", "string":
		return Varchar, true
	default:
		return 0, false
	}
}
