package file

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Manager performs all reads, writes, and appends of fixed-size blocks
// against a directory of plain files. Every call reads or writes exactly
// one block's worth of bytes at a block-aligned offset, so each read,
// write, or append incurs exactly one disk access. Manager is safe for
// concurrent use; a single mutex serializes seek-then-read/write pairs
// so one caller's seek can never be clobbered by another's.
type Manager struct {
	dbDirectory   string
	blockSize     int
	isNew         bool
	mu            sync.Mutex
	openFiles     map[string]*os.File
	blocksRead    int
	blocksWritten int
}

// NewManager opens (creating if necessary) the database directory
// dbDirectory and returns a Manager that reads and writes blockSize-byte
// blocks within it. IsNew reports whether the directory had to be
// created by this call, not merely whether it happened to already
// exist with different contents.
func NewManager(dbDirectory string, blockSize int) (*Manager, error) {
	isNew := false

	if _, err := os.Stat(dbDirectory); os.IsNotExist(err) {
		isNew = true
		if err := os.MkdirAll(dbDirectory, 0755); err != nil {
			return nil, fmt.Errorf("cannot create directory %s: %w", dbDirectory, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("cannot access directory %s: %w", dbDirectory, err)
	}

	// Remove any leftover temporary tables from a previous run.
	entries, err := os.ReadDir(dbDirectory)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", dbDirectory, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), "temp") {
			tempFilePath := filepath.Join(dbDirectory, entry.Name())
			if err := os.Remove(tempFilePath); err != nil {
				return nil, fmt.Errorf("cannot remove file %s: %w", tempFilePath, err)
			}
		}
	}

	return &Manager{
		dbDirectory: dbDirectory,
		blockSize:   blockSize,
		isNew:       isNew,
		openFiles:   make(map[string]*os.File),
	}, nil
}

// Read positions at block's offset in its file and reads exactly one
// block's worth of bytes into page. Reading a block past the current
// end of file is not an error: the page is left as an all-zero block,
// matching a file that was appended but never written.
func (m *Manager) Read(block *BlockId, page *Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := m.getFile(block.Filename())
	if err != nil {
		return fmt.Errorf("cannot read block %s: %w", block.String(), err)
	}

	offset := int64(block.Number()) * int64(m.blockSize)
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("cannot seek to offset %d: %w", offset, err)
	}

	buf := page.Contents()
	n, err := io.ReadFull(f, buf)

	if err == nil && n == len(buf) {
		m.blocksRead++
		return nil
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		if n == 0 {
			// Reading at or past EOF: treat as an unwritten, all-zero block.
			clear(buf)
			m.blocksRead++
			return nil
		}
		return fmt.Errorf("file: short read at EOF for block %s: expected %d bytes, got %d", block.String(), len(buf), n)
	}

	return fmt.Errorf("cannot read block %s: %w", block.String(), err)
}

// Write positions at block's offset in its file and writes the entire
// contents of page. The OS extends the file with zero-fill if the
// offset lies beyond the current end of file.
func (m *Manager) Write(block *BlockId, page *Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := m.getFile(block.Filename())
	if err != nil {
		return fmt.Errorf("cannot write block %s: %w", block.String(), err)
	}

	offset := int64(block.Number()) * int64(m.blockSize)
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("cannot seek to offset %d: %w", offset, err)
	}

	buf := page.Contents()
	n, err := f.Write(buf)
	if err != nil {
		return fmt.Errorf("cannot write block %s: %w", block.String(), err)
	}
	if n != len(buf) {
		return fmt.Errorf("file: short write for block %s: expected %d bytes, wrote %d", block.String(), len(buf), n)
	}

	m.blocksWritten++
	return nil
}

// Append extends filename by one zero-filled block and returns the id
// of the new block. The returned block number is always the file's
// length in blocks as of just before the append.
func (m *Manager) Append(filename string) (*BlockId, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	newBlockNumber, err := m.lengthLocked(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot get length of %s: %w", filename, err)
	}

	block := &BlockId{File: filename, BlockNumber: newBlockNumber}

	f, err := m.getFile(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot append block %s: %w", block.String(), err)
	}

	offset := int64(block.Number()) * int64(m.blockSize)
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("cannot seek to offset %d: %w", offset, err)
	}

	b := make([]byte, m.blockSize)
	n, err := f.Write(b)
	if err != nil {
		return nil, fmt.Errorf("cannot append block %s: %w", block.String(), err)
	}
	if n != len(b) {
		return nil, fmt.Errorf("file: short write appending block %s: wrote %d of %d bytes", block.String(), n, len(b))
	}

	m.blocksWritten++
	return block, nil
}

// Length returns the number of blocks in filename (its size in bytes
// divided by the block size, truncated).
func (m *Manager) Length(filename string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lengthLocked(filename)
}

// lengthLocked is Length without acquiring mu; callers that already
// hold the lock (Append) call this directly to avoid deadlocking on a
// non-reentrant mutex.
func (m *Manager) lengthLocked(filename string) (int, error) {
	f, err := m.getFile(filename)
	if err != nil {
		return 0, fmt.Errorf("cannot access %s: %w", filename, err)
	}

	fileInfo, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("cannot stat %s: %w", filename, err)
	}

	return int(fileInfo.Size() / int64(m.blockSize)), nil
}

// IsNew reports whether the database directory had to be created by
// NewManager, as opposed to already existing from a prior open.
func (m *Manager) IsNew() bool {
	return m.isNew
}

// BlockSize returns the fixed block size this Manager reads and writes.
func (m *Manager) BlockSize() int {
	return m.blockSize
}

// getFile returns the cached handle for filename, opening and caching
// it on first use. Handles are never closed individually; they live
// for the process lifetime, matching the "one handle per filename,
// shared by every caller" contract the rest of the manager depends on.
// The caller must hold mu.
func (m *Manager) getFile(filename string) (*os.File, error) {
	if f, ok := m.openFiles[filename]; ok {
		return f, nil
	}

	dbTable := filepath.Join(m.dbDirectory, filename)
	f, err := os.OpenFile(dbTable, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, fmt.Errorf("cannot open file %s: %w", dbTable, err)
	}

	m.openFiles[filename] = f
	return f, nil
}

// GetBlocksRead returns the total number of blocks read.
func (m *Manager) GetBlocksRead() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blocksRead
}

// GetBlocksWritten returns the total number of blocks written.
func (m *Manager) GetBlocksWritten() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blocksWritten
}
