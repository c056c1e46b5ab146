package log

import (
	"fmt"
	"os"
	"testing"

	"coredb/file"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTempFileManager(t *testing.T, blockSize int) *file.Manager {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "logmgr_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	fm, err := file.NewManager(tmpDir, blockSize)
	require.NoError(t, err)
	return fm
}

func TestManager_AppendAndIteratorConsistency(t *testing.T) {
	fm := createTempFileManager(t, 4096)

	lm, err := NewManager(fm, "testlog")
	require.NoError(t, err)

	const recordCount = 100
	records := make([][]byte, recordCount)
	for i := 0; i < recordCount; i++ {
		records[i] = []byte(fmt.Sprintf("log record %d", i+1))
		_, err := lm.Append(records[i])
		require.NoError(t, err)
	}

	it, err := lm.Iterator()
	require.NoError(t, err)

	for i := recordCount - 1; i >= 0; i-- {
		require.True(t, it.HasNext(), "expected a record at index %d", i)
		rec, err := it.Next()
		require.NoError(t, err)
		assert.Equal(t, records[i], rec)
	}

	assert.False(t, it.HasNext())
}

func TestManager_SpansMultipleBlocks(t *testing.T) {
	fm := createTempFileManager(t, 64)
	lm, err := NewManager(fm, "testlog")
	require.NoError(t, err)

	const recordCount = 20
	records := make([][]byte, recordCount)
	for i := 0; i < recordCount; i++ {
		records[i] = []byte(fmt.Sprintf("rec-%03d", i))
		_, err := lm.Append(records[i])
		require.NoError(t, err)
	}

	length, err := fm.Length("testlog")
	require.NoError(t, err)
	assert.Greater(t, length, 1, "records should have overflowed into more than one block")

	it, err := lm.Iterator()
	require.NoError(t, err)
	for i := recordCount - 1; i >= 0; i-- {
		require.True(t, it.HasNext())
		rec, err := it.Next()
		require.NoError(t, err)
		assert.Equal(t, records[i], rec)
	}
	assert.False(t, it.HasNext())
}

func TestManager_FlushIsIdempotentForOlderLSN(t *testing.T) {
	fm := createTempFileManager(t, 4096)
	lm, err := NewManager(fm, "testlog")
	require.NoError(t, err)

	lsn1, err := lm.Append([]byte("first"))
	require.NoError(t, err)
	_, err = lm.Append([]byte("second"))
	require.NoError(t, err)

	require.NoError(t, lm.Flush(lsn1))
	require.NoError(t, lm.Flush(lsn1))

	it, err := lm.Iterator()
	require.NoError(t, err)
	rec, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), rec)
}

func TestManager_ReopensExistingLogFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "logmgr_reopen_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	fm1, err := file.NewManager(tmpDir, 4096)
	require.NoError(t, err)
	lm1, err := NewManager(fm1, "testlog")
	require.NoError(t, err)
	_, err = lm1.Append([]byte("persisted record"))
	require.NoError(t, err)
	require.NoError(t, lm1.Flush(1))

	fm2, err := file.NewManager(tmpDir, 4096)
	require.NoError(t, err)
	lm2, err := NewManager(fm2, "testlog")
	require.NoError(t, err)

	it, err := lm2.Iterator()
	require.NoError(t, err)
	require.True(t, it.HasNext())
	rec, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted record"), rec)
}
