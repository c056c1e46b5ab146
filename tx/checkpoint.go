package tx

import (
	"coredb/file"
	"coredb/log"
)

// CheckpointRecord marks a point in the log before which no active
// transaction needs undoing. It carries no transaction id of its own.
type CheckpointRecord struct{}

// NewCheckpointRecord builds a CheckpointRecord. It takes no page since
// a checkpoint record carries nothing beyond its type tag.
func NewCheckpointRecord() (*CheckpointRecord, error) {
	return &CheckpointRecord{}, nil
}

func (r *CheckpointRecord) Op() LogRecordType {
	return Checkpoint
}

// TxNumber returns -1: a checkpoint isn't associated with any single
// transaction.
func (r *CheckpointRecord) TxNumber() int {
	return -1
}

// Undo does nothing; a checkpoint never changes data.
func (r *CheckpointRecord) Undo(_ *Transaction) error {
	return nil
}

func (r *CheckpointRecord) String() string {
	return "<CHECKPOINT>"
}

// WriteCheckpointToLog writes a checkpoint record containing only the
// Checkpoint type tag, and returns its LSN.
func WriteCheckpointToLog(logManager *log.Manager) (int64, error) {
	record := make([]byte, file.IntSize)
	page := file.NewPageFromBytes(record)
	page.SetInt(0, int(Checkpoint))

	return logManager.Append(record)
}
