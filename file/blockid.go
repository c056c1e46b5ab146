package file

import "fmt"

// BlockId identifies a block on disk by the file that holds it and its
// zero-based position within that file. It is a value type: two BlockIds
// with the same fields denote the same block regardless of which instance
// a caller is holding, so it is safe to use as a map key.
type BlockId struct {
	File        string
	BlockNumber int
}

func NewBlockId(filename string, blockNumber int) *BlockId {
	return &BlockId{
		File:        filename,
		BlockNumber: blockNumber,
	}
}

func (b *BlockId) Filename() string {
	return b.File
}

func (b *BlockId) Number() int {
	return b.BlockNumber
}

func (b *BlockId) String() string {
	return fmt.Sprintf("[file %s, block %d]", b.File, b.BlockNumber)
}

func (b *BlockId) Equals(other *BlockId) bool {
	return b.File == other.File && b.BlockNumber == other.BlockNumber
}
