package log

import (
	"fmt"
	"sync"

	"coredb/file"
)

// Manager appends log records to a single log file and exposes a
// reverse-order iterator over them. Records are packed right-to-left
// within the current block: the first IntSize bytes of every log block
// hold a "boundary" offset pointing at the most recently written
// record, so a block's records can always be read back newest-first
// without scanning forward through it first. When a record no longer
// fits in the current block, the block is flushed and a fresh one is
// appended.
//
// Manager only ever touches the tail block of the log file in memory;
// everything before it is assumed already flushed. It is safe for
// concurrent use.
type Manager struct {
	fileManager  *file.Manager
	logFile      string
	logPage      *file.Page
	currentBlock *file.BlockId
	latestLSN    int64
	lastSavedLSN int64
	mu           sync.Mutex
}

// NewManager opens logFile within fileManager's directory. If the file
// is empty, a new block is appended and initialized as the log's first
// block; otherwise the existing final block is read in as the
// in-memory page so appends continue from where a previous run left
// off.
func NewManager(fileManager *file.Manager, logFile string) (*Manager, error) {
	logPage := file.NewPage(fileManager.BlockSize())

	logSize, err := fileManager.Length(logFile)
	if err != nil {
		return nil, fmt.Errorf("log: cannot determine size of %s: %w", logFile, err)
	}

	var currentBlock *file.BlockId
	if logSize == 0 {
		currentBlock, err = appendNewBlock(fileManager, logFile, logPage)
		if err != nil {
			return nil, fmt.Errorf("log: cannot initialize %s: %w", logFile, err)
		}
	} else {
		currentBlock = &file.BlockId{File: logFile, BlockNumber: logSize - 1}
		if err := fileManager.Read(currentBlock, logPage); err != nil {
			return nil, fmt.Errorf("log: cannot read final block of %s: %w", logFile, err)
		}
	}

	return &Manager{
		fileManager:  fileManager,
		logFile:      logFile,
		logPage:      logPage,
		currentBlock: currentBlock,
	}, nil
}

// Flush guarantees that the log record with the given LSN (and every
// record before it) is durably on disk. A no-op if lsn is lower than
// the latest LSN covered by the last flush.
func (m *Manager) Flush(lsn int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if lsn >= m.lastSavedLSN {
		return m.flush()
	}
	return nil
}

// Iterator flushes the current block and returns an iterator over
// every log record, most recent first.
func (m *Manager) Iterator() (*Iterator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.flush(); err != nil {
		return nil, fmt.Errorf("log: cannot flush before iterating: %w", err)
	}
	return NewIterator(m.fileManager, m.currentBlock)
}

// Append writes logRecord to the log buffer and returns its LSN. The
// record is not guaranteed durable until Flush is called with an LSN
// greater than or equal to the one returned here; callers that need a
// record on disk before proceeding (e.g. before writing the page it
// describes) must flush explicitly.
//
//	...............................boundary
//	[<boundary (int)>....[][recordN]...[record1]]
func (m *Manager) Append(logRecord []byte) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	boundary := m.logPage.GetInt(0)
	bytesNeeded := len(logRecord) + file.IntSize

	if boundary-bytesNeeded < file.IntSize {
		if err := m.flush(); err != nil {
			return 0, fmt.Errorf("log: cannot flush before appending: %w", err)
		}

		var err error
		m.currentBlock, err = appendNewBlock(m.fileManager, m.logFile, m.logPage)
		if err != nil {
			return 0, fmt.Errorf("log: cannot allocate new block: %w", err)
		}

		boundary = m.logPage.GetInt(0)
	}

	recordPosition := boundary - bytesNeeded
	m.logPage.SetBytes(recordPosition, logRecord)
	m.logPage.SetInt(0, recordPosition)

	m.latestLSN++
	return m.latestLSN, nil
}

// appendNewBlock allocates a fresh block at the end of the log file,
// resets page's boundary to point past its last byte (i.e. "no records
// yet"), and writes the reset page to the new block.
func appendNewBlock(fileManager *file.Manager, logFile string, page *file.Page) (*file.BlockId, error) {
	block, err := fileManager.Append(logFile)
	if err != nil {
		return nil, fmt.Errorf("log: cannot append block to %s: %w", logFile, err)
	}

	page.SetInt(0, fileManager.BlockSize())
	if err := fileManager.Write(block, page); err != nil {
		return nil, fmt.Errorf("log: cannot write new block %s: %w", block.String(), err)
	}
	return block, nil
}

// flush writes the in-memory page to its block. Callers must hold mu.
func (m *Manager) flush() error {
	if err := m.fileManager.Write(m.currentBlock, m.logPage); err != nil {
		return fmt.Errorf("log: cannot write block %s: %w", m.currentBlock.String(), err)
	}
	m.lastSavedLSN = m.latestLSN
	return nil
}
