package tx

import (
	"fmt"

	"coredb/file"
	"coredb/log"
)

// SetShortRecord captures the value a 16-bit integer held immediately
// before a transaction overwrote it, so Undo can restore it.
type SetShortRecord struct {
	txNum  int
	offset int
	value  int16
	block  *file.BlockId
}

// NewSetShortRecord decodes a SetShortRecord from page.
func NewSetShortRecord(page *file.Page) (*SetShortRecord, error) {
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
	value := page.GetShort(valuePos)

	return &SetShortRecord{txNum: txNum, offset: offset, value: value, block: block}, nil
}

func (r *SetShortRecord) Op() LogRecordType {
	return SetShort
}

func (r *SetShortRecord) TxNumber() int {
	return r.txNum
}

func (r *SetShortRecord) String() string {
	return fmt.Sprintf("<SETSHORT %d %s %d %d>", r.txNum, r.block, r.offset, r.value)
}

// Undo restores the saved value by pinning the affected block and
// writing it back without generating a new log record.
func (r *SetShortRecord) Undo(tx *Transaction) error {
	if err := tx.Pin(r.block); err != nil {
		return err
	}
	defer tx.Unpin(r.block)
	return tx.SetShort(r.block, r.offset, r.value, false)
}

// WriteSetShortToLog writes a SetShort record (type tag, transaction
// number, block, offset, value) and returns its LSN.
func WriteSetShortToLog(logManager *log.Manager, txNum int, block *file.BlockId, offset int, val int16) (int64, error) {
	txNumPos := file.IntSize
	fileNamePos := txNumPos + file.IntSize
	fileName := block.Filename()

	blockNumPos := fileNamePos + file.MaxLength(len(fileName))
	blockNum := block.Number()

	offsetPos := blockNumPos + file.IntSize
	valuePos := offsetPos + file.IntSize
	recordLen := valuePos + 2 // int16 is 2 bytes

	record := make([]byte, recordLen)
	page := file.NewPageFromBytes(record)

	page.SetInt(0, int(SetShort))
	page.SetInt(txNumPos, txNum)
	if err := page.SetString(fileNamePos, fileName); err != nil {
		return 0, err
	}
	page.SetInt(blockNumPos, blockNum)
	page.SetInt(offsetPos, offset)
	page.SetShort(valuePos, val)

	return logManager.Append(record)
}
