package coredb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpen_WiresManagersAndTransactionsPersist(t *testing.T) {
	dir, err := os.MkdirTemp("", "coredb_test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	db, err := Open(filepath.Join(dir, "db"), 400, 8)
	require.NoError(t, err)
	require.True(t, db.IsNew())

	tx1, err := db.NewTx()
	require.NoError(t, err)
	block, err := tx1.Append("testfile")
	require.NoError(t, err)
	require.NoError(t, tx1.Pin(block))
	require.NoError(t, tx1.SetInt(block, 0, 123, true))
	require.NoError(t, tx1.Commit())

	tx2, err := db.NewTx()
	require.NoError(t, err)
	require.NoError(t, tx2.Pin(block))
	val, err := tx2.GetInt(block, 0)
	require.NoError(t, err)
	require.Equal(t, 123, val)
	require.NoError(t, tx2.Commit())
}

func TestOpen_ReopeningExistingDirectoryIsNotNew(t *testing.T) {
	dir, err := os.MkdirTemp("", "coredb_test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	dbDir := filepath.Join(dir, "db")
	db1, err := Open(dbDir, 400, 8)
	require.NoError(t, err)
	require.True(t, db1.IsNew())

	db2, err := Open(dbDir, 400, 8)
	require.NoError(t, err)
	require.False(t, db2.IsNew())
}
