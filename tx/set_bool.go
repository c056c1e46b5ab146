package tx

import (
	"fmt"

	"coredb/file"
	"coredb/log"
)

// SetBoolRecord captures the value a boolean held immediately before a
// transaction overwrote it, so Undo can restore it.
type SetBoolRecord struct {
	txNum  int
	offset int
	value  bool
	block  *file.BlockId
}

// NewSetBoolRecord decodes a SetBoolRecord from page.
func NewSetBoolRecord(page *file.Page) (*SetBoolRecord, error) {
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
	value := page.GetBool(valuePos)

	return &SetBoolRecord{txNum: txNum, offset: offset, value: value, block: block}, nil
}

func (r *SetBoolRecord) Op() LogRecordType {
	return SetBool
}

func (r *SetBoolRecord) TxNumber() int {
	return r.txNum
}

func (r *SetBoolRecord) String() string {
	return fmt.Sprintf("<SETBOOL %d %s %d %t>", r.txNum, r.block, r.offset, r.value)
}

// Undo restores the saved value by pinning the affected block and
// writing it back without generating a new log record.
func (r *SetBoolRecord) Undo(tx *Transaction) error {
	if err := tx.Pin(r.block); err != nil {
		return err
	}
	defer tx.Unpin(r.block)
	return tx.SetBool(r.block, r.offset, r.value, false)
}

// WriteSetBoolToLog writes a SetBool record (type tag, transaction
// number, block, offset, value) and returns its LSN.
func WriteSetBoolToLog(logManager *log.Manager, txNum int, block *file.BlockId, offset int, val bool) (int64, error) {
	txNumPos := file.IntSize
	fileNamePos := txNumPos + file.IntSize
	fileName := block.Filename()

	blockNumPos := fileNamePos + file.MaxLength(len(fileName))
	blockNum := block.Number()

	offsetPos := blockNumPos + file.IntSize
	valuePos := offsetPos + file.IntSize
	recordLen := valuePos + 1 // 1 byte for bool

	record := make([]byte, recordLen)
	page := file.NewPageFromBytes(record)

	page.SetInt(0, int(SetBool))
	page.SetInt(txNumPos, txNum)
	if err := page.SetString(fileNamePos, fileName); err != nil {
		return 0, err
	}
	page.SetInt(blockNumPos, blockNum)
	page.SetInt(offsetPos, offset)
	page.SetBool(valuePos, val)

	return logManager.Append(record)
}
