package file

import "fmt"

// BlockId identifies a block by its file name and logical block number.
type BlockId struct {
	filename    string
	blockNumber int
}

func NewBlockId(filename string, blockNumber int) *BlockId {
	return &BlockId{
		filename:    filename,
		blockNumber: blockNumber,
	}
}

func (b *BlockId) Filename() string {
	return b.filename
}

func (b *BlockId) Number() int {
	return b.blockNumber
}

func (b *BlockId) Equals(other *BlockId) bool {
	return other != nil && b.filename == other.filename && b.blockNumber == other.blockNumber
}

func (b *BlockId) String() string {
	return fmt.Sprintf("[file %s, block %d]", b.filename, b.blockNumber)
}
