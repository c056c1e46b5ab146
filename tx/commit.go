package tx

import (
	"fmt"

	"coredb/file"
	"coredb/log"
)

// CommitRecord marks in the log that a transaction finished
// successfully.
type CommitRecord struct {
	txNum int
}

// NewCommitRecord decodes a CommitRecord from page.
func NewCommitRecord(page *file.Page) (*CommitRecord, error) {
	txNum := page.GetInt(file.IntSize)
	return &CommitRecord{txNum: txNum}, nil
}

func (r *CommitRecord) Op() LogRecordType {
	return Commit
}

func (r *CommitRecord) TxNumber() int {
	return r.txNum
}

// Undo does nothing; a commit record carries no data to restore.
func (r *CommitRecord) Undo(_ *Transaction) error {
	return nil
}

func (r *CommitRecord) String() string {
	return fmt.Sprintf("<COMMIT %d>", r.txNum)
}

// WriteCommitToLog writes a commit record (type tag, transaction
// number) and returns its LSN.
func WriteCommitToLog(logManager *log.Manager, txNum int) (int64, error) {
	record := make([]byte, 2*file.IntSize)
	page := file.NewPageFromBytes(record)
	page.SetInt(0, int(Commit))
	page.SetInt(file.IntSize, txNum)

	return logManager.Append(record)
}
