package tx

import (
	"fmt"
	"time"

	"coredb/file"
	"coredb/log"
)

// SetDateRecord captures the value a date held immediately before a
// transaction overwrote it, so Undo can restore it.
type SetDateRecord struct {
	txNum  int
	offset int
	value  time.Time
	block  *file.BlockId
}

// NewSetDateRecord decodes a SetDateRecord from page.
func NewSetDateRecord(page *file.Page) (*SetDateRecord, error) {
	txNumPos := file.IntSize
	txNum := page.GetInt(txNumPos)

	fileNamePos := txNumPos + file.IntSize
	fileName, err := page.GetString(fileNamePos)
	if err != nil {
		return nil, err
	}

	blockNumPos := fileNamePos + file.MaxLength(len(fileName))
	blockNum := page.GetInt(blockNumPos)
	block := &file.BlockId{File: fileName, BlockNumber: blockNum}

	offsetPos := blockNumPos + file.IntSize
	offset := page.GetInt(offsetPos)

	valuePos := offsetPos + file.IntSize
	value := page.GetDate(valuePos)

	return &SetDateRecord{txNum: txNum, offset: offset, value: value, block: block}, nil
}

func (r *SetDateRecord) Op() LogRecordType {
	return SetDate
}

func (r *SetDateRecord) TxNumber() int {
	return r.txNum
}

func (r *SetDateRecord) String() string {
	return fmt.Sprintf("<SETDATE %d %s %d %s>", r.txNum, r.block, r.offset, r.value)
}

// Undo restores the saved value by pinning the affected block and
// writing it back without generating a new log record.
func (r *SetDateRecord) Undo(tx *Transaction) error {
	if err := tx.Pin(r.block); err != nil {
		return err
	}
	defer tx.Unpin(r.block)
	return tx.SetDate(r.block, r.offset, r.value, false)
}

// WriteSetDateToLog writes a SetDate record (type tag, transaction
// number, block, offset, value) and returns its LSN.
func WriteSetDateToLog(logManager *log.Manager, txNum int, block *file.BlockId, offset int, val time.Time) (int64, error) {
	txNumPos := file.IntSize
	fileNamePos := txNumPos + file.IntSize
	fileName := block.Filename()

	blockNumPos := fileNamePos + file.MaxLength(len(fileName))
	blockNum := block.Number()

	offsetPos := blockNumPos + file.IntSize
	valuePos := offsetPos + file.IntSize
	recordLen := valuePos + 8 // Unix timestamp, 8 bytes

	record := make([]byte, recordLen)
	page := file.NewPageFromBytes(record)

	page.SetInt(0, int(SetDate))
	page.SetInt(txNumPos, txNum)
	if err := page.SetString(fileNamePos, fileName); err != nil {
		return 0, err
	}
	page.SetInt(blockNumPos, blockNum)
	page.SetInt(offsetPos, offset)
	page.SetDate(valuePos, val)

	return logManager.Append(record)
}
