package file

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Page holds the contents of one block in memory.
type Page struct {
	buffer []byte
}

// NewPage creates a Page with a buffer of the given block size.
func NewPage(blockSize int) *Page {
	return &Page{buffer: make([]byte, blockSize)}
}

// NewPageFromBytes creates a Page by wrapping the provided byte slice.
func NewPageFromBytes(bytes []byte) *Page {
	return &Page{buffer: bytes}
}

// GetInt reads the 64-bit integer stored at offset.
func (p *Page) GetInt(offset int) int {
	return int(int64(binary.BigEndian.Uint64(p.buffer[offset:])))
}

// SetInt writes n as a 64-bit integer at offset.
func (p *Page) SetInt(offset int, n int) {
	binary.BigEndian.PutUint64(p.buffer[offset:], uint64(int64(n)))
}

// GetBytes retrieves a length-prefixed byte slice starting at offset.
func (p *Page) GetBytes(offset int) []byte {
	length := int(binary.BigEndian.Uint32(p.buffer[offset:]))
	start := offset + 4
	b := make([]byte, length)
	copy(b, p.buffer[start:start+length])
	return b
}

// SetBytes writes b prefixed with its length starting at offset.
func (p *Page) SetBytes(offset int, b []byte) {
	binary.BigEndian.PutUint32(p.buffer[offset:], uint32(len(b)))
	copy(p.buffer[offset+4:], b)
}

// GetString retrieves a string from the buffer at the specified offset.
func (p *Page) GetString(offset int) (string, error) {
	b := p.GetBytes(offset)
	if !utf8.Valid(b) {
		return "", errors.New("invalid UTF-8 encoding")
	}
	return string(b), nil
}

// SetString writes a string to the buffer at the specified offset.
func (p *Page) SetString(offset int, s string) error {
	if !utf8.ValidString(s) {
		return errors.New("string contains invalid UTF-8 characters")
	}
	p.SetBytes(offset, []byte(s))
	return nil
}

// MaxLength returns the number of bytes needed to store a string of strlen
// characters, including the 4-byte length prefix.
func MaxLength(strlen int) int {
	return 4 + strlen*utf8.UTFMax
}

// Contents returns the byte buffer maintained by the Page.
func (p *Page) Contents() []byte {
	return p.buffer
}
