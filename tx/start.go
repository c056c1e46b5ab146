package tx

import (
	"fmt"

	"coredb/file"
	"coredb/log"
)

// StartRecord marks the beginning of a transaction in the log.
type StartRecord struct {
	txNum int
}

// NewStartRecord decodes a StartRecord from page.
func NewStartRecord(page *file.Page) (*StartRecord, error) {
	txNum := page.GetInt(file.IntSize)
	return &StartRecord{txNum: txNum}, nil
}

func (r *StartRecord) Op() LogRecordType {
	return Start
}

func (r *StartRecord) TxNumber() int {
	return r.txNum
}

// Undo does nothing; a start record carries no data to restore.
func (r *StartRecord) Undo(_ *Transaction) error {
	return nil
}

func (r *StartRecord) String() string {
	return fmt.Sprintf("<START %d>", r.txNum)
}

// WriteStartToLog writes a start record (type tag, transaction number)
// and returns its LSN.
func WriteStartToLog(logManager *log.Manager, txNum int) (int64, error) {
	record := make([]byte, 2*file.IntSize)
	page := file.NewPageFromBytes(record)
	page.SetInt(0, int(Start))
	page.SetInt(file.IntSize, txNum)

	return logManager.Append(record)
}
