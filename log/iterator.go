package log

import (
	"errors"
	"fmt"

	"coredb/file"
)

// Iterator walks the records of a log file from most recent to least
// recent, starting at the block it was constructed with and moving
// backward through earlier blocks as each is exhausted.
type Iterator struct {
	fileManager     *file.Manager
	block           *file.BlockId
	page            *file.Page
	currentPosition int
}

// NewIterator returns an iterator positioned at the most recent record
// in block.
func NewIterator(fileManager *file.Manager, block *file.BlockId) (*Iterator, error) {
	it := &Iterator{
		fileManager: fileManager,
		page:        file.NewPage(fileManager.BlockSize()),
	}
	if err := it.moveToBlock(block); err != nil {
		return nil, fmt.Errorf("log: cannot position iterator: %w", err)
	}
	return it, nil
}

// HasNext reports whether a call to Next would return a record rather
// than an error: either the current block still has unread records, or
// an earlier block exists to move into.
func (it *Iterator) HasNext() bool {
	return it.currentPosition < it.fileManager.BlockSize() || it.block.Number() > 0
}

// Next returns the next record in reverse-chronological order, moving
// to the previous block first if the current one is exhausted.
func (it *Iterator) Next() ([]byte, error) {
	if it.currentPosition >= it.fileManager.BlockSize() {
		if it.block.Number() == 0 {
			return nil, errors.New("log: no more records")
		}

		prev := &file.BlockId{File: it.block.Filename(), BlockNumber: it.block.Number() - 1}
		if err := it.moveToBlock(prev); err != nil {
			return nil, fmt.Errorf("log: cannot move to block %s: %w", prev.String(), err)
		}
	}

	record := it.page.GetBytes(it.currentPosition)
	it.currentPosition += file.IntSize + len(record)
	return record, nil
}

// moveToBlock reads block into the iterator's page and positions the
// cursor at its boundary, i.e. its most recent record.
func (it *Iterator) moveToBlock(block *file.BlockId) error {
	if err := it.fileManager.Read(block, it.page); err != nil {
		return fmt.Errorf("log: cannot read block %s: %w", block.String(), err)
	}
	it.block = block
	it.currentPosition = it.page.GetInt(0)
	return nil
}
