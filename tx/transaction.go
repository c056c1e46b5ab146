package tx

import (
	"fmt"
	"sync"
	"time"

	"coredb/buffer"
	"coredb/file"
	"coredb/log"
)

// EndOfFile is the block number of the dummy block a full
// implementation would lock to serialize Size/Append against each
// other. This repository carries no lock manager (see Transaction), so
// EndOfFile is unused outside documenting
// where that lock would attach.
const EndOfFile = -1

var (
	nextTxNum   = 0
	nextTxNumMu sync.Mutex
)

// nextTxNumber hands out strictly increasing transaction numbers.
func nextTxNumber() int {
	nextTxNumMu.Lock()
	defer nextTxNumMu.Unlock()
	nextTxNum++
	return nextTxNum
}

// Transaction is the unit of work a caller pins blocks and sets values
// through. It owns a RecoveryManager (which it feeds the log records
// its own SetX methods generate) and a BufferList (which tracks every
// block this transaction currently has pinned). It carries no lock
// manager: concurrent transactions reading or writing the same block
// are not isolated from one another by this package.
type Transaction struct {
	recoveryManager *RecoveryManager
	bufferManager   *buffer.Manager
	fileManager     *file.Manager
	txNum           int
	myBuffers       *BufferList
}

// NewTransaction assigns tx a new transaction number, builds its
// RecoveryManager (which writes a start record), and returns it ready
// for use.
func NewTransaction(fileManager *file.Manager, logManager *log.Manager, bufferManager *buffer.Manager) (*Transaction, error) {
	tx := &Transaction{
		fileManager:   fileManager,
		bufferManager: bufferManager,
		txNum:         nextTxNumber(),
		myBuffers:     NewBufferList(bufferManager),
	}

	rm, err := NewRecoveryManager(tx, tx.txNum, logManager, bufferManager)
	if err != nil {
		return nil, err
	}
	tx.recoveryManager = rm
	return tx, nil
}

// Commit flushes every buffer this transaction modified, writes and
// flushes a commit record, and unpins every block it holds.
func (tx *Transaction) Commit() error {
	if err := tx.recoveryManager.Commit(); err != nil {
		return err
	}
	tx.myBuffers.UnpinAll()
	return nil
}

// Rollback is not implemented; see RecoveryManager.Rollback.
func (tx *Transaction) Rollback() error {
	if err := tx.recoveryManager.Rollback(); err != nil {
		return err
	}
	tx.myBuffers.UnpinAll()
	return nil
}

// Recover is not implemented; see RecoveryManager.Recover.
func (tx *Transaction) Recover() error {
	if err := tx.bufferManager.FlushAll(int64(tx.txNum)); err != nil {
		return err
	}
	return tx.recoveryManager.Recover()
}

// Pin pins block on this transaction's behalf.
func (tx *Transaction) Pin(block *file.BlockId) error {
	return tx.myBuffers.Pin(block)
}

// Unpin releases this transaction's pin on block.
func (tx *Transaction) Unpin(block *file.BlockId) {
	tx.myBuffers.Unpin(block)
}

// GetInt returns the integer at offset in block. block must already be
// pinned by this transaction.
func (tx *Transaction) GetInt(block *file.BlockId, offset int) (int, error) {
	buf := tx.myBuffers.GetBuffer(block)
	if buf == nil {
		return 0, fmt.Errorf("tx: block %s is not pinned by this transaction", block.String())
	}
	return buf.Contents().GetInt(offset), nil
}

// GetString returns the string at offset in block. block must already
// be pinned by this transaction.
func (tx *Transaction) GetString(block *file.BlockId, offset int) (string, error) {
	buf := tx.myBuffers.GetBuffer(block)
	if buf == nil {
		return "", fmt.Errorf("tx: block %s is not pinned by this transaction", block.String())
	}
	return buf.Contents().GetString(offset)
}

// SetInt stores val at offset in block. If logIt is true, a SetInt
// record holding the prior value is appended to the log (not flushed)
// and its LSN is recorded on the buffer when it is marked modified;
// the buffer manager flushes the log up to that LSN before writing the
// page, so the undo record reaches disk no later than the value it
// protects.
func (tx *Transaction) SetInt(block *file.BlockId, offset int, val int, logIt bool) error {
	buf := tx.myBuffers.GetBuffer(block)
	if buf == nil {
		return fmt.Errorf("tx: block %s is not pinned by this transaction", block.String())
	}

	lsn := int64(-1)
	if logIt {
		var err error
		if lsn, err = tx.recoveryManager.SetInt(buf, offset, val); err != nil {
			return err
		}
	}

	buf.Contents().SetInt(offset, val)
	buf.SetModified(int64(tx.txNum), lsn)
	return nil
}

// SetString stores val at offset in block, logging the prior value
// when logIt is true. See SetInt for the logging contract.
func (tx *Transaction) SetString(block *file.BlockId, offset int, val string, logIt bool) error {
	buf := tx.myBuffers.GetBuffer(block)
	if buf == nil {
		return fmt.Errorf("tx: block %s is not pinned by this transaction", block.String())
	}

	lsn := int64(-1)
	if logIt {
		var err error
		if lsn, err = tx.recoveryManager.SetString(buf, offset, val); err != nil {
			return err
		}
	}

	if err := buf.Contents().SetString(offset, val); err != nil {
		return err
	}
	buf.SetModified(int64(tx.txNum), lsn)
	return nil
}

// SetBool stores val at offset in block, logging the prior value when
// logIt is true. See SetInt for the logging contract.
func (tx *Transaction) SetBool(block *file.BlockId, offset int, val bool, logIt bool) error {
	buf := tx.myBuffers.GetBuffer(block)
	if buf == nil {
		return fmt.Errorf("tx: block %s is not pinned by this transaction", block.String())
	}

	lsn := int64(-1)
	if logIt {
		var err error
		if lsn, err = tx.recoveryManager.SetBool(buf, offset, val); err != nil {
			return err
		}
	}

	buf.Contents().SetBool(offset, val)
	buf.SetModified(int64(tx.txNum), lsn)
	return nil
}

// SetShort stores val at offset in block, logging the prior value when
// logIt is true. See SetInt for the logging contract.
func (tx *Transaction) SetShort(block *file.BlockId, offset int, val int16, logIt bool) error {
	buf := tx.myBuffers.GetBuffer(block)
	if buf == nil {
		return fmt.Errorf("tx: block %s is not pinned by this transaction", block.String())
	}

	lsn := int64(-1)
	if logIt {
		var err error
		if lsn, err = tx.recoveryManager.SetShort(buf, offset, val); err != nil {
			return err
		}
	}

	buf.Contents().SetShort(offset, val)
	buf.SetModified(int64(tx.txNum), lsn)
	return nil
}

// SetDate stores val at offset in block, logging the prior value when
// logIt is true. See SetInt for the logging contract.
func (tx *Transaction) SetDate(block *file.BlockId, offset int, val time.Time, logIt bool) error {
	buf := tx.myBuffers.GetBuffer(block)
	if buf == nil {
		return fmt.Errorf("tx: block %s is not pinned by this transaction", block.String())
	}

	lsn := int64(-1)
	if logIt {
		var err error
		if lsn, err = tx.recoveryManager.SetDate(buf, offset, val); err != nil {
			return err
		}
	}

	buf.Contents().SetDate(offset, val)
	buf.SetModified(int64(tx.txNum), lsn)
	return nil
}

// Size returns the number of blocks in filename.
func (tx *Transaction) Size(filename string) (int, error) {
	return tx.fileManager.Length(filename)
}

// Append adds a new block to the end of filename and returns its id.
func (tx *Transaction) Append(filename string) (*file.BlockId, error) {
	return tx.fileManager.Append(filename)
}

// BlockSize returns the database's fixed block size.
func (tx *Transaction) BlockSize() int {
	return tx.fileManager.BlockSize()
}

// AvailableBuffers returns the number of unpinned buffers in the pool.
func (tx *Transaction) AvailableBuffers() int {
	return tx.bufferManager.Available()
}

// TxNum returns this transaction's number.
func (tx *Transaction) TxNum() int {
	return tx.txNum
}
