// Package coredb wires the file, log, and buffer layers together into
// a single handle and hands out transactions against it. It has no
// query layer, no metadata catalog, and no CLI: Open's parameters are
// the only configuration surface.
package coredb

import (
	"fmt"

	"coredb/buffer"
	"coredb/file"
	"coredb/log"
	"coredb/tx"
)

const logFile = "coredb.log"

// DB holds the three core managers a transaction is built from.
type DB struct {
	fileManager   *file.Manager
	logManager    *log.Manager
	bufferManager *buffer.Manager
}

// Open wires a FileManager, LogManager, and BufferManager together, in
// that dependency order, over a directory of blockSize-byte blocks and
// a pool of bufferPoolSize frames. It does not run crash recovery and
// does not build a metadata catalog; callers that need either build
// them on top of the transaction Open's NewTx returns.
func Open(dir string, blockSize int, bufferPoolSize int) (*DB, error) {
	fileManager, err := file.NewManager(dir, blockSize)
	if err != nil {
		return nil, fmt.Errorf("coredb: cannot open file manager: %w", err)
	}

	logManager, err := log.NewManager(fileManager, logFile)
	if err != nil {
		return nil, fmt.Errorf("coredb: cannot open log manager: %w", err)
	}

	bufferManager := buffer.NewManager(fileManager, logManager, bufferPoolSize)

	return &DB{
		fileManager:   fileManager,
		logManager:    logManager,
		bufferManager: bufferManager,
	}, nil
}

// NewTx starts a new transaction against this database.
func (db *DB) NewTx() (*tx.Transaction, error) {
	return tx.NewTransaction(db.fileManager, db.logManager, db.bufferManager)
}

// IsNew reports whether Open had to create the database directory.
func (db *DB) IsNew() bool {
	return db.fileManager.IsNew()
}

// FileManager returns the database's file layer.
func (db *DB) FileManager() *file.Manager {
	return db.fileManager
}

// LogManager returns the database's log layer.
func (db *DB) LogManager() *log.Manager {
	return db.logManager
}

// BufferManager returns the database's buffer pool.
func (db *DB) BufferManager() *buffer.Manager {
	return db.bufferManager
}
