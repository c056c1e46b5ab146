package tx

import (
	"errors"
	"fmt"

	"coredb/file"
)

// LogRecordType tags the kind of a log record; the tag is always the
// first file.IntSize bytes of the record's encoding.
type LogRecordType int

const (
	Checkpoint LogRecordType = iota
	Start
	Commit
	Rollback
	SetInt
	SetString
	SetBool
	SetShort
	SetDate
)

func (t LogRecordType) String() string {
	switch t {
	case Checkpoint:
		return "Checkpoint"
	case Start:
		return "Start"
	case Commit:
		return "Commit"
	case Rollback:
		return "Rollback"
	case SetInt:
		return "SetInt"
	case SetString:
		return "SetString"
	case SetBool:
		return "SetBool"
	case SetShort:
		return "SetShort"
	case SetDate:
		return "SetDate"
	default:
		return "Unknown"
	}
}

// FromCode maps a record's leading type tag back to a LogRecordType.
func FromCode(code int) (LogRecordType, error) {
	switch LogRecordType(code) {
	case Checkpoint, Start, Commit, Rollback, SetInt, SetString, SetBool, SetShort, SetDate:
		return LogRecordType(code), nil
	default:
		return -1, fmt.Errorf("tx: unknown log record type code %d", code)
	}
}

// LogRecord is a decoded log record. Undo is meaningful only for the
// value-setting record kinds (SetInt, SetString, SetBool, SetShort,
// SetDate); marker records (Checkpoint, Start, Commit, Rollback) undo
// as a no-op since they never carry a prior value to restore.
type LogRecord interface {
	// Op returns the log record's type.
	Op() LogRecordType

	// TxNumber returns the transaction that produced this record.
	TxNumber() int

	// Undo reverses the effect of this record against tx, if any.
	Undo(tx *Transaction) error

	// String renders the record for logging and test comparison.
	String() string
}

// CreateLogRecord decodes bytes into the LogRecord its leading type tag
// names. bytes must be exactly one record payload as Iterator.Next
// returns it, i.e. including that leading tag.
func CreateLogRecord(bytes []byte) (LogRecord, error) {
	page := file.NewPageFromBytes(bytes)
	recordType, err := FromCode(page.GetInt(0))
	if err != nil {
		return nil, err
	}

	switch recordType {
	case Checkpoint:
		return NewCheckpointRecord()
	case Start:
		return NewStartRecord(page)
	case Commit:
		return NewCommitRecord(page)
	case Rollback:
		return NewRollbackRecord(page)
	case SetInt:
		return NewSetIntRecord(page)
	case SetString:
		return NewSetStringRecord(page)
	case SetBool:
		return NewSetBoolRecord(page)
	case SetShort:
		return NewSetShortRecord(page)
	case SetDate:
		return NewSetDateRecord(page)
	default:
		return nil, errors.New("tx: unexpected log record type")
	}
}
