package types

// Hash returns a stable, non-negative hash of a field value. The same value
// always hashes the same way across runs, which partitioning relies on.
func Hash(value any) int {
	var h uint32
	switch v := value.(type) {
	case int:
		u := uint64(v)
		h = uint32(u ^ (u >> 32))
	case string:
		for _, c := range []byte(v) {
			h = 31*h + uint32(c)
		}
	default:
		return 0
	}
	return int(h & 0x7fffffff)
}
