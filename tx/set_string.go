package tx

import (
	"fmt"

	"coredb/file"
	"coredb/log"
)

// SetStringRecord captures the value a string held immediately before a
// transaction overwrote it, so Undo can restore it.
type SetStringRecord struct {
	txNum  int
	offset int
	value  string
	block  *file.BlockId
}

// NewSetStringRecord decodes a SetStringRecord from page.
func NewSetStringRecord(page *file.Page) (*SetStringRecord, error) {
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
	value, err := page.GetString(valuePos)
	if err != nil {
		return nil, err
	}

	return &SetStringRecord{txNum: txNum, offset: offset, value: value, block: block}, nil
}

func (r *SetStringRecord) Op() LogRecordType {
	return SetString
}

func (r *SetStringRecord) TxNumber() int {
	return r.txNum
}

func (r *SetStringRecord) String() string {
	return fmt.Sprintf("<SETSTRING %d %s %d %s>", r.txNum, r.block, r.offset, r.value)
}

// Undo restores the saved value by pinning the affected block and
// writing it back without generating a new log record.
func (r *SetStringRecord) Undo(tx *Transaction) error {
	if err := tx.Pin(r.block); err != nil {
		return err
	}
	defer tx.Unpin(r.block)
	return tx.SetString(r.block, r.offset, r.value, false)
}

// WriteSetStringToLog writes a SetString record (type tag, transaction
// number, block, offset, value) and returns its LSN.
func WriteSetStringToLog(logManager *log.Manager, txNum int, block *file.BlockId, offset int, value string) (int64, error) {
	txNumPos := file.IntSize
	fileNamePos := txNumPos + file.IntSize
	fileName := block.Filename()

	blockNumPos := fileNamePos + file.MaxLength(len(fileName))
	blockNum := block.Number()

	offsetPos := blockNumPos + file.IntSize
	valuePos := offsetPos + file.IntSize
	recordLen := valuePos + file.MaxLength(len(value))

	record := make([]byte, recordLen)
	page := file.NewPageFromBytes(record)

	page.SetInt(0, int(SetString))
	page.SetInt(txNumPos, txNum)
	if err := page.SetString(fileNamePos, fileName); err != nil {
		return 0, err
	}
	page.SetInt(blockNumPos, blockNum)
	page.SetInt(offsetPos, offset)
	if err := page.SetString(valuePos, value); err != nil {
		return 0, err
	}

	return logManager.Append(record)
}
