package tx

import (
	"fmt"

	"coredb/file"
	"coredb/log"
)

// RollbackRecord marks in the log that a transaction was explicitly
// undone.
type RollbackRecord struct {
	txNum int
}

// NewRollbackRecord decodes a RollbackRecord from page.
func NewRollbackRecord(page *file.Page) (*RollbackRecord, error) {
	txNum := page.GetInt(file.IntSize)
	return &RollbackRecord{txNum: txNum}, nil
}

func (r *RollbackRecord) Op() LogRecordType {
	return Rollback
}

func (r *RollbackRecord) TxNumber() int {
	return r.txNum
}

// Undo does nothing; a rollback record carries no data to restore.
func (r *RollbackRecord) Undo(_ *Transaction) error {
	return nil
}

func (r *RollbackRecord) String() string {
	return fmt.Sprintf("<ROLLBACK %d>", r.txNum)
}

// WriteRollbackToLog writes a rollback record (type tag, transaction
// number) and returns its LSN.
func WriteRollbackToLog(logManager *log.Manager, txNum int) (int64, error) {
	record := make([]byte, 2*file.IntSize)
	page := file.NewPageFromBytes(record)
	page.SetInt(0, int(Rollback))
	page.SetInt(file.IntSize, txNum)

	return logManager.Append(record)
}
