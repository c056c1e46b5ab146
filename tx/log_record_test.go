package tx

import (
	"fmt"
	"os"
	"testing"
	"time"

	"coredb/file"
	"coredb/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogSetup(t *testing.T) (*file.Manager, *log.Manager) {
	t.Helper()
	dir, err := os.MkdirTemp("", "tx_logrecord_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	fm, err := file.NewManager(dir, 400)
	require.NoError(t, err)
	lm, err := log.NewManager(fm, "testlog")
	require.NoError(t, err)
	return fm, lm
}

func TestSetIntRecord(t *testing.T) {
	_, lm := testLogSetup(t)

	block := file.NewBlockId("testfile", 1)
	txNum, offset, oldValue := 1, 300, 42

	lsn, err := WriteSetIntToLog(lm, txNum, block, offset, oldValue)
	require.NoError(t, err)
	assert.Greater(t, lsn, int64(0))

	it, err := lm.Iterator()
	require.NoError(t, err)
	require.True(t, it.HasNext())

	bytes, err := it.Next()
	require.NoError(t, err)

	record, err := CreateLogRecord(bytes)
	require.NoError(t, err)
	assert.Equal(t, "<SETINT 1 [file testfile, block 1] 300 42>", record.String())
	assert.Equal(t, SetInt, record.Op())
	assert.Equal(t, txNum, record.TxNumber())
}

func TestSetStringRecord(t *testing.T) {
	_, lm := testLogSetup(t)

	block := file.NewBlockId("testfile", 1)
	txNum, offset, oldValue := 1, 600, "Hello, World!"

	lsn, err := WriteSetStringToLog(lm, txNum, block, offset, oldValue)
	require.NoError(t, err)
	assert.Greater(t, lsn, int64(0))

	it, err := lm.Iterator()
	require.NoError(t, err)
	bytes, err := it.Next()
	require.NoError(t, err)

	record, err := CreateLogRecord(bytes)
	require.NoError(t, err)
	assert.Equal(t, "<SETSTRING 1 [file testfile, block 1] 600 Hello, World!>", record.String())
}

func TestSetBoolRecord(t *testing.T) {
	_, lm := testLogSetup(t)

	block := file.NewBlockId("testfile", 1)
	txNum, offset, oldValue := 1, 100, false

	lsn, err := WriteSetBoolToLog(lm, txNum, block, offset, oldValue)
	require.NoError(t, err)
	assert.Greater(t, lsn, int64(0))

	it, err := lm.Iterator()
	require.NoError(t, err)
	bytes, err := it.Next()
	require.NoError(t, err)

	record, err := CreateLogRecord(bytes)
	require.NoError(t, err)
	assert.Equal(t, "<SETBOOL 1 [file testfile, block 1] 100 false>", record.String())
}

func TestSetShortRecord(t *testing.T) {
	_, lm := testLogSetup(t)

	block := file.NewBlockId("testfile", 1)
	txNum, offset, oldValue := 1, 500, int16(1234)

	lsn, err := WriteSetShortToLog(lm, txNum, block, offset, oldValue)
	require.NoError(t, err)
	assert.Greater(t, lsn, int64(0))

	it, err := lm.Iterator()
	require.NoError(t, err)
	bytes, err := it.Next()
	require.NoError(t, err)

	record, err := CreateLogRecord(bytes)
	require.NoError(t, err)
	assert.Equal(t, "<SETSHORT 1 [file testfile, block 1] 500 1234>", record.String())
}

func TestSetDateRecord(t *testing.T) {
	_, lm := testLogSetup(t)

	block := file.NewBlockId("testfile", 1)
	txNum, offset := 1, 200
	oldValue := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	lsn, err := WriteSetDateToLog(lm, txNum, block, offset, oldValue)
	require.NoError(t, err)
	assert.Greater(t, lsn, int64(0))

	it, err := lm.Iterator()
	require.NoError(t, err)
	bytes, err := it.Next()
	require.NoError(t, err)

	record, err := CreateLogRecord(bytes)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("<SETDATE 1 [file testfile, block 1] 200 %s>", oldValue.UTC()), record.String())
}

func TestCheckpointAndStartAndCommitAndRollbackRecords(t *testing.T) {
	_, lm := testLogSetup(t)

	startLSN, err := WriteStartToLog(lm, 7)
	require.NoError(t, err)
	commitLSN, err := WriteCommitToLog(lm, 7)
	require.NoError(t, err)
	rollbackLSN, err := WriteRollbackToLog(lm, 8)
	require.NoError(t, err)
	checkpointLSN, err := WriteCheckpointToLog(lm)
	require.NoError(t, err)

	assert.Less(t, startLSN, commitLSN)
	assert.Less(t, commitLSN, rollbackLSN)
	assert.Less(t, rollbackLSN, checkpointLSN)

	it, err := lm.Iterator()
	require.NoError(t, err)

	bytes, err := it.Next()
	require.NoError(t, err)
	record, err := CreateLogRecord(bytes)
	require.NoError(t, err)
	assert.Equal(t, "<CHECKPOINT>", record.String())
	assert.Equal(t, -1, record.TxNumber())

	bytes, err = it.Next()
	require.NoError(t, err)
	record, err = CreateLogRecord(bytes)
	require.NoError(t, err)
	assert.Equal(t, "<ROLLBACK 8>", record.String())

	bytes, err = it.Next()
	require.NoError(t, err)
	record, err = CreateLogRecord(bytes)
	require.NoError(t, err)
	assert.Equal(t, "<COMMIT 7>", record.String())

	bytes, err = it.Next()
	require.NoError(t, err)
	record, err = CreateLogRecord(bytes)
	require.NoError(t, err)
	assert.Equal(t, "<START 7>", record.String())
}

func TestMultipleLogRecords(t *testing.T) {
	_, lm := testLogSetup(t)

	block := file.NewBlockId("testfile", 1)
	txNum := 1

	type logWrite struct {
		write    func() (int64, error)
		expected string
	}

	testTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	writes := []logWrite{
		{
			write:    func() (int64, error) { return WriteSetBoolToLog(lm, txNum, block, 100, true) },
			expected: "<SETBOOL 1 [file testfile, block 1] 100 true>",
		},
		{
			write: func() (int64, error) { return WriteSetDateToLog(lm, txNum, block, 200, testTime) },
			expected: fmt.Sprintf("<SETDATE 1 [file testfile, block 1] 200 %s>",
				testTime.UTC()),
		},
		{
			write:    func() (int64, error) { return WriteSetIntToLog(lm, txNum, block, 300, 42) },
			expected: "<SETINT 1 [file testfile, block 1] 300 42>",
		},
		{
			write:    func() (int64, error) { return WriteSetShortToLog(lm, txNum, block, 500, 1234) },
			expected: "<SETSHORT 1 [file testfile, block 1] 500 1234>",
		},
		{
			write:    func() (int64, error) { return WriteSetStringToLog(lm, txNum, block, 600, "Test String") },
			expected: "<SETSTRING 1 [file testfile, block 1] 600 Test String>",
		},
	}

	var lsns []int64
	for _, w := range writes {
		lsn, err := w.write()
		require.NoError(t, err)
		lsns = append(lsns, lsn)
	}

	for i := 1; i < len(lsns); i++ {
		assert.Greater(t, lsns[i], lsns[i-1], "LSNs should be strictly increasing")
	}

	it, err := lm.Iterator()
	require.NoError(t, err)

	recordCount := 0
	for it.HasNext() {
		bytes, err := it.Next()
		require.NoError(t, err)

		record, err := CreateLogRecord(bytes)
		require.NoError(t, err)

		require.Less(t, recordCount, len(writes))
		idx := len(writes) - recordCount - 1
		assert.Equal(t, writes[idx].expected, record.String())
		recordCount++
	}
	assert.Equal(t, len(writes), recordCount)
}
