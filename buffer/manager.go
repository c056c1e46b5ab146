package buffer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"coredb/file"
	"coredb/log"
)

// maxWaitTime bounds how long Pin waits for a buffer to free up before
// giving up.
const maxWaitTime = 10 * time.Second

// ErrNoAvailableBuffer is returned by Pin when no buffer frees up
// within maxWaitTime.
var ErrNoAvailableBuffer = errors.New("buffer: no buffer available")

// Manager owns a fixed-size pool of Buffers and maps blocks onto them
// on demand. A block already resident in the pool is reused rather
// than reread; otherwise an unpinned buffer, chosen by the replacement
// strategy, is reassigned to the new block. Manager is safe for
// concurrent use.
type Manager struct {
	bufferPool   []*Buffer
	numAvailable int
	mu           sync.Mutex
	cond         *sync.Cond
	strategy     ReplacementStrategy
}

// NewManager builds a pool of numBuffers buffers over fileManager and
// logManager, using the naive (first-unpinned) replacement strategy.
func NewManager(fileManager *file.Manager, logManager *log.Manager, numBuffers int) *Manager {
	return NewManagerWithReplacementStrategy(fileManager, logManager, numBuffers, NewNaiveStrategy())
}

// NewManagerWithReplacementStrategy builds a pool of numBuffers buffers
// over fileManager and logManager, evicting according to strategy.
func NewManagerWithReplacementStrategy(fileManager *file.Manager, logManager *log.Manager, numBuffers int, strategy ReplacementStrategy) *Manager {
	m := &Manager{
		bufferPool:   make([]*Buffer, numBuffers),
		numAvailable: numBuffers,
		strategy:     strategy,
	}
	m.cond = sync.NewCond(&m.mu)
	for i := range m.bufferPool {
		m.bufferPool[i] = NewBuffer(fileManager, logManager)
	}
	strategy.initialize(m.bufferPool)
	return m
}

// Available returns the number of buffers with a zero pin count.
func (m *Manager) Available() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.numAvailable
}

// FlushAll flushes every buffer last modified by txnum. Callers use
// this at commit time to force a transaction's writes to disk before
// acknowledging the commit.
func (m *Manager) FlushAll(txnum int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, buf := range m.bufferPool {
		if buf.modifyingTxn() == txnum {
			if err := buf.flush(); err != nil {
				return fmt.Errorf("buffer: cannot flush buffers for txn %d: %w", txnum, err)
			}
		}
	}
	return nil
}

// Unpin releases one pin on buffer. Once its pin count reaches zero,
// it becomes eligible for reassignment and any goroutine blocked in
// Pin is woken to recheck.
func (m *Manager) Unpin(buffer *Buffer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	buffer.unpin()
	m.strategy.unpinBuffer(buffer)
	if !buffer.isPinned() {
		m.numAvailable++
		m.cond.Broadcast()
	}
}

// Pin returns a buffer holding block, pinning it first. If block is
// already resident in the pool that buffer is reused; otherwise an
// unpinned buffer is reassigned to it. If every buffer is pinned, Pin
// blocks until one frees up or maxWaitTime elapses, whichever comes
// first.
func (m *Manager) Pin(block *file.BlockId) (*Buffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitTime)
	defer cancel()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			m.cond.Broadcast()
			m.mu.Unlock()
		case <-done:
		}
	}()

	for {
		buf, err := m.tryToPin(block)
		if err != nil {
			return nil, err
		}
		if buf != nil {
			return buf, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: could not pin block %s within %s", ErrNoAvailableBuffer, block.String(), maxWaitTime)
		}
		m.cond.Wait()
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: could not pin block %s within %s", ErrNoAvailableBuffer, block.String(), maxWaitTime)
		}
	}
}

// tryToPin attempts a single non-blocking pin attempt, returning a nil
// buffer (with a nil error) if none is available right now. The caller
// must hold mu.
func (m *Manager) tryToPin(block *file.BlockId) (*Buffer, error) {
	buffer := m.findExistingBuffer(block)
	if buffer == nil {
		buffer = m.strategy.chooseUnpinnedBuffer()
		if buffer == nil {
			return nil, nil
		}
		if err := buffer.assignToBlock(block); err != nil {
			return nil, fmt.Errorf("buffer: cannot assign block %s: %w", block.String(), err)
		}
	}
	if !buffer.isPinned() {
		m.numAvailable--
	}
	buffer.pin()
	m.strategy.pinBuffer(buffer)
	return buffer, nil
}

// findExistingBuffer returns the pool's buffer already assigned to
// block, or nil if none is.
func (m *Manager) findExistingBuffer(block *file.BlockId) *Buffer {
	for _, buffer := range m.bufferPool {
		if b := buffer.Block(); b != nil && b.Equals(block) {
			return buffer
		}
	}
	return nil
}
