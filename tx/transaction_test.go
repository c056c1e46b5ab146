package tx

import (
	"errors"
	"os"
	"testing"

	"coredb/buffer"
	"coredb/file"
	"coredb/log"

	"github.com/stretchr/testify/require"
)

func testTxSetup(t *testing.T) (*file.Manager, *log.Manager, *buffer.Manager) {
	t.Helper()
	dir, err := os.MkdirTemp("", "tx_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	fm, err := file.NewManager(dir, 400)
	require.NoError(t, err)
	lm, err := log.NewManager(fm, "testlog")
	require.NoError(t, err)
	bm := buffer.NewManager(fm, lm, 8)
	return fm, lm, bm
}

func TestTransaction_SetAndGetRoundTrip(t *testing.T) {
	fm, lm, bm := testTxSetup(t)

	tx1, err := NewTransaction(fm, lm, bm)
	require.NoError(t, err)
	block, err := tx1.Append("testfile")
	require.NoError(t, err)

	require.NoError(t, tx1.Pin(block))
	require.NoError(t, tx1.SetInt(block, 80, 1, false))
	require.NoError(t, tx1.SetString(block, 40, "one", false))
	require.NoError(t, tx1.Commit())

	tx2, err := NewTransaction(fm, lm, bm)
	require.NoError(t, err)
	require.NoError(t, tx2.Pin(block))

	ival, err := tx2.GetInt(block, 80)
	require.NoError(t, err)
	require.Equal(t, 1, ival)

	sval, err := tx2.GetString(block, 40)
	require.NoError(t, err)
	require.Equal(t, "one", sval)
	require.NoError(t, tx2.Commit())
}

func TestTransaction_SetWithLoggingWritesUndoRecord(t *testing.T) {
	fm, lm, bm := testTxSetup(t)

	tx, err := NewTransaction(fm, lm, bm)
	require.NoError(t, err)
	block, err := tx.Append("testfile")
	require.NoError(t, err)
	require.NoError(t, tx.Pin(block))
	require.NoError(t, tx.SetInt(block, 0, 99, true))

	it, err := lm.Iterator()
	require.NoError(t, err)
	require.True(t, it.HasNext())

	bytes, err := it.Next()
	require.NoError(t, err)
	record, err := CreateLogRecord(bytes)
	require.NoError(t, err)
	require.Equal(t, SetInt, record.Op())
}

func TestTransaction_UnimplementedRecoveryPaths(t *testing.T) {
	fm, lm, bm := testTxSetup(t)

	tx, err := NewTransaction(fm, lm, bm)
	require.NoError(t, err)

	require.True(t, errors.Is(tx.Rollback(), ErrRecoveryNotImplemented))
	require.True(t, errors.Is(tx.Recover(), ErrRecoveryNotImplemented))
}

func TestTransaction_AppendAndSize(t *testing.T) {
	fm, lm, bm := testTxSetup(t)

	tx, err := NewTransaction(fm, lm, bm)
	require.NoError(t, err)

	size0, err := tx.Size("sizefile")
	require.NoError(t, err)
	require.Equal(t, 0, size0)

	_, err = tx.Append("sizefile")
	require.NoError(t, err)
	_, err = tx.Append("sizefile")
	require.NoError(t, err)

	size2, err := tx.Size("sizefile")
	require.NoError(t, err)
	require.Equal(t, 2, size2)
	require.NoError(t, tx.Commit())
}
