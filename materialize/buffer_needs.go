package materialize

import "math"

// BestRoot returns the largest k no greater than the available buffers such
// that k is an integer root of size. Two buffers are kept in reserve. The result
// is at least 1.
func BestRoot(available, size int) int {
	avail := available - 2
	if avail <= 1 {
		return 1
	}
	k := math.MaxInt32
	i := 1.0
	for k > avail {
		i++
		k = int(math.Ceil(math.Pow(float64(size), 1/i)))
	}
	return k
}

// BestFactor returns the largest k no greater than the available buffers such
// that k is a factor of size. Two buffers are kept in reserve. The result is at
// least 1.
func BestFactor(available, size int) int {
	avail := available - 2
	if avail <= 1 {
		return 1
	}
	k := size
	i := 1.0
	for k > avail {
		i++
		k = int(math.Ceil(float64(size) / i))
	}
	return k
}
