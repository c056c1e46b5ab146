package buffer

import (
	"fmt"

	"coredb/file"
	"coredb/log"
)

// Buffer pairs one page-sized chunk of a data file with the bookkeeping
// a buffer pool needs to decide when it can be reused: how many
// transactions currently have it pinned, which transaction last
// modified it, and the LSN of the log record that justifies that
// modification. A buffer with txnum -1 has never been modified since
// it was last flushed and can be discarded without writing it back.
type Buffer struct {
	fileManager *file.Manager
	logManager  *log.Manager
	contents    *file.Page
	block       *file.BlockId
	pins        int
	txnum       int64
	lsn         int64
}

// NewBuffer returns an unassigned buffer backed by a zeroed page of
// fileManager's block size.
func NewBuffer(fileManager *file.Manager, logManager *log.Manager) *Buffer {
	return &Buffer{
		fileManager: fileManager,
		logManager:  logManager,
		contents:    file.NewPage(fileManager.BlockSize()),
		txnum:       -1,
		lsn:         -1,
	}
}

// Contents returns the page this buffer holds. Callers modify it in
// place and then call SetModified to record that the change happened.
func (b *Buffer) Contents() *file.Page {
	return b.contents
}

// Block returns the block currently assigned to this buffer, or nil if
// it has never been assigned one.
func (b *Buffer) Block() *file.BlockId {
	return b.block
}

// SetModified records that txnum changed this buffer's contents, and
// that the change is described by the log record with the given lsn.
// A negative lsn means the change generated no log record (callers use
// this for changes that don't need undo information).
func (b *Buffer) SetModified(txnum int64, lsn int64) {
	b.txnum = txnum
	if lsn >= 0 {
		b.lsn = lsn
	}
}

// isPinned reports whether any transaction currently holds this
// buffer.
func (b *Buffer) isPinned() bool {
	return b.pins > 0
}

// modifyingTxn returns the transaction number passed to the most
// recent SetModified call, or -1 if the buffer is clean.
func (b *Buffer) modifyingTxn() int64 {
	return b.txnum
}

// assignToBlock flushes any pending modification to the buffer's
// current block, then reads block into the buffer's page and resets
// its pin count to zero. The caller is responsible for pinning it
// immediately afterward.
func (b *Buffer) assignToBlock(block *file.BlockId) error {
	if err := b.flush(); err != nil {
		return fmt.Errorf("buffer: cannot flush before reassigning: %w", err)
	}

	if err := b.fileManager.Read(block, b.contents); err != nil {
		return fmt.Errorf("buffer: cannot read block %s: %w", block.String(), err)
	}
	b.block = block
	b.pins = 0
	return nil
}

// flush writes this buffer's contents to disk, first forcing the log
// manager to flush up to the LSN that justifies the write. A clean
// buffer (txnum -1) is a no-op. After a successful flush the buffer is
// marked clean so a later eviction or reassignment doesn't write it
// again.
func (b *Buffer) flush() error {
	if b.txnum < 0 {
		return nil
	}

	if err := b.logManager.Flush(b.lsn); err != nil {
		return fmt.Errorf("buffer: cannot flush log up to lsn %d: %w", b.lsn, err)
	}
	if err := b.fileManager.Write(b.block, b.contents); err != nil {
		return fmt.Errorf("buffer: cannot write block %s: %w", b.block.String(), err)
	}
	b.txnum = -1
	return nil
}

func (b *Buffer) pin() {
	b.pins++
}

func (b *Buffer) unpin() {
	b.pins--
}
