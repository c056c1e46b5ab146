package tx

import (
	"fmt"

	"coredb/file"
	"coredb/log"
)

// SetIntRecord captures the value an integer held immediately before a
// transaction overwrote it, so Undo can restore it.
type SetIntRecord struct {
	txNum  int
	offset int
	value  int
	block  *file.BlockId
}

// NewSetIntRecord decodes a SetIntRecord from page.
func NewSetIntRecord(page *file.Page) (*SetIntRecord, error) {
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
	value := page.GetInt(valuePos)

	return &SetIntRecord{txNum: txNum, offset: offset, value: value, block: block}, nil
}

func (r *SetIntRecord) Op() LogRecordType {
	return SetInt
}

func (r *SetIntRecord) TxNumber() int {
	return r.txNum
}

func (r *SetIntRecord) String() string {
	return fmt.Sprintf("<SETINT %d %s %d %d>", r.txNum, r.block, r.offset, r.value)
}

// Undo restores the saved value by pinning the affected block and
// writing it back without generating a new log record.
func (r *SetIntRecord) Undo(tx *Transaction) error {
	if err := tx.Pin(r.block); err != nil {
		return err
	}
	defer tx.Unpin(r.block)
	return tx.SetInt(r.block, r.offset, r.value, false)
}

// WriteSetIntToLog writes a SetInt record (type tag, transaction
// number, block, offset, value) and returns its LSN.
func WriteSetIntToLog(logManager *log.Manager, txNum int, block *file.BlockId, offset int, val int) (int64, error) {
	txNumPos := file.IntSize
	fileNamePos := txNumPos + file.IntSize
	fileName := block.Filename()

	blockNumPos := fileNamePos + file.MaxLength(len(fileName))
	blockNum := block.Number()

	offsetPos := blockNumPos + file.IntSize
	valuePos := offsetPos + file.IntSize
	recordLen := valuePos + file.IntSize

	record := make([]byte, recordLen)
	page := file.NewPageFromBytes(record)

	page.SetInt(0, int(SetInt))
	page.SetInt(txNumPos, txNum)
	if err := page.SetString(fileNamePos, fileName); err != nil {
		return 0, err
	}
	page.SetInt(blockNumPos, blockNum)
	page.SetInt(offsetPos, offset)
	page.SetInt(valuePos, val)

	return logManager.Append(record)
}
