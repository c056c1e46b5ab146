package tx

import (
	"coredb/buffer"
	"coredb/file"
)

// BufferList tracks the buffers one transaction currently has pinned,
// so they can all be released together at commit time.
type BufferList struct {
	buffers       map[file.BlockId]*buffer.Buffer
	pins          []*file.BlockId
	bufferManager *buffer.Manager
}

// NewBufferList returns an empty BufferList backed by bufferManager.
func NewBufferList(bufferManager *buffer.Manager) *BufferList {
	return &BufferList{
		buffers:       make(map[file.BlockId]*buffer.Buffer),
		pins:          make([]*file.BlockId, 0, 10),
		bufferManager: bufferManager,
	}
}

// GetBuffer returns the buffer pinned to block, or nil if this list
// hasn't pinned it.
func (bl *BufferList) GetBuffer(block *file.BlockId) *buffer.Buffer {
	return bl.buffers[*block]
}

// Pin pins block through the buffer manager and remembers the result.
func (bl *BufferList) Pin(block *file.BlockId) error {
	buf, err := bl.bufferManager.Pin(block)
	if err != nil {
		return err
	}
	bl.buffers[*block] = buf
	bl.pins = append(bl.pins, block)
	return nil
}

// Unpin releases one pin on block and forgets it.
func (bl *BufferList) Unpin(block *file.BlockId) {
	bl.bufferManager.Unpin(bl.buffers[*block])
	delete(bl.buffers, *block)
	for i, b := range bl.pins {
		if *b == *block {
			bl.pins = append(bl.pins[:i], bl.pins[i+1:]...)
			break
		}
	}
}

// UnpinAll releases every pin this list is holding.
func (bl *BufferList) UnpinAll() {
	for _, block := range bl.pins {
		bl.bufferManager.Unpin(bl.buffers[*block])
	}
	bl.buffers = make(map[file.BlockId]*buffer.Buffer)
	bl.pins = make([]*file.BlockId, 0, 10)
}
