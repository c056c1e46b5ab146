package tx

import (
	"errors"
	"fmt"
	"time"

	"coredb/buffer"
	"coredb/log"
)

// ErrRecoveryNotImplemented is returned by RecoveryManager.Recover and
// RecoveryManager.Rollback: both require scanning the log and undoing
// records for transactions that didn't commit, which this repository
// does not implement. Commit needs none of that scan and is fully
// implemented.
var ErrRecoveryNotImplemented = errors.New("tx: recovery log scan not implemented")

// RecoveryManager writes the log records a transaction's lifecycle
// needs (start, value changes, commit) and flushes a transaction's
// buffers at commit time. It exists at the Transaction's boundary; it
// does not scan the log to undo other transactions.
type RecoveryManager struct {
	logManager    *log.Manager
	bufferManager *buffer.Manager
	tx            *Transaction
	txNum         int
}

// NewRecoveryManager writes a start record for txNum and returns a
// RecoveryManager bound to tx.
func NewRecoveryManager(tx *Transaction, txNum int, logManager *log.Manager, bufferManager *buffer.Manager) (*RecoveryManager, error) {
	rm := &RecoveryManager{
		logManager:    logManager,
		bufferManager: bufferManager,
		tx:            tx,
		txNum:         txNum,
	}
	if _, err := WriteStartToLog(logManager, txNum); err != nil {
		return nil, fmt.Errorf("tx: cannot write start record: %w", err)
	}
	return rm, nil
}

// SetInt writes a SetInt record holding the value currently at offset
// in buf (the value the caller is about to overwrite), and returns its
// LSN.
func (rm *RecoveryManager) SetInt(buf *buffer.Buffer, offset int, _ int) (int64, error) {
	oldValue := buf.Contents().GetInt(offset)
	return WriteSetIntToLog(rm.logManager, rm.txNum, buf.Block(), offset, oldValue)
}

// SetString writes a SetString record holding the value currently at
// offset in buf, and returns its LSN.
func (rm *RecoveryManager) SetString(buf *buffer.Buffer, offset int, _ string) (int64, error) {
	oldValue, err := buf.Contents().GetString(offset)
	if err != nil {
		return 0, err
	}
	return WriteSetStringToLog(rm.logManager, rm.txNum, buf.Block(), offset, oldValue)
}

// SetBool writes a SetBool record holding the value currently at
// offset in buf, and returns its LSN.
func (rm *RecoveryManager) SetBool(buf *buffer.Buffer, offset int, _ bool) (int64, error) {
	oldValue := buf.Contents().GetBool(offset)
	return WriteSetBoolToLog(rm.logManager, rm.txNum, buf.Block(), offset, oldValue)
}

// SetShort writes a SetShort record holding the value currently at
// offset in buf, and returns its LSN.
func (rm *RecoveryManager) SetShort(buf *buffer.Buffer, offset int, _ int16) (int64, error) {
	oldValue := buf.Contents().GetShort(offset)
	return WriteSetShortToLog(rm.logManager, rm.txNum, buf.Block(), offset, oldValue)
}

// SetDate writes a SetDate record holding the value currently at
// offset in buf, and returns its LSN.
func (rm *RecoveryManager) SetDate(buf *buffer.Buffer, offset int, _ time.Time) (int64, error) {
	oldValue := buf.Contents().GetDate(offset)
	return WriteSetDateToLog(rm.logManager, rm.txNum, buf.Block(), offset, oldValue)
}

// Commit flushes every buffer this transaction modified, then writes
// and flushes a commit record.
func (rm *RecoveryManager) Commit() error {
	if err := rm.bufferManager.FlushAll(int64(rm.txNum)); err != nil {
		return fmt.Errorf("tx: cannot flush buffers for commit: %w", err)
	}
	lsn, err := WriteCommitToLog(rm.logManager, rm.txNum)
	if err != nil {
		return fmt.Errorf("tx: cannot write commit record: %w", err)
	}
	return rm.logManager.Flush(lsn)
}

// Rollback is not implemented: undoing a single transaction requires
// scanning the log backward to its start record, which this repository
// does not do.
func (rm *RecoveryManager) Rollback() error {
	return ErrRecoveryNotImplemented
}

// Recover is not implemented: recovering from a crash requires
// scanning the whole log forward from the last checkpoint, which this
// repository does not do.
func (rm *RecoveryManager) Recover() error {
	return ErrRecoveryNotImplemented
}
