package cachestore

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/mrsimoes/lnsyncgo/pkg/lnsyncerr"
)

// Tx is a transaction-scoped handle onto a Store, used where several
// writes must commit or roll back together (the design's requirement that
// offline-freeze is a single CacheStore transaction).
type Tx struct {
	tx *sql.Tx
}

// Begin starts a transaction on the store.
func (s *Store) Begin() (*Tx, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
	}
	return &Tx{tx: tx}, nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	return errors.Wrap(t.tx.Commit(), "unable to commit cache transaction")
}

// Rollback aborts the transaction. Calling it after a successful Commit is
// a harmless no-op, mirroring the usual defer tx.Rollback() idiom.
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if err != nil && err != sql.ErrTxDone {
		return errors.Wrap(err, "unable to roll back cache transaction")
	}
	return nil
}

// PutProp upserts a property row within the transaction.
func (t *Tx) PutProp(fileID int64, prop Prop) error {
	_, err := t.tx.Exec(
		`INSERT INTO prop(file_id, value, size, mtime, ctime) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(file_id) DO UPDATE SET value = excluded.value,
		   size = excluded.size, mtime = excluded.mtime, ctime = excluded.ctime`,
		fileID, prop.Fingerprint, prop.Stamp.Size, prop.Stamp.MTime, prop.Stamp.CTime)
	if err != nil {
		return errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
	}
	return nil
}

// PutOfflineMetadata upserts an offline metadata row within the
// transaction.
func (t *Tx) PutOfflineMetadata(fileID int64, stamp Stamp) error {
	_, err := t.tx.Exec(
		`INSERT INTO metadata(file_id, size, mtime, ctime) VALUES (?, ?, ?, ?)
		 ON CONFLICT(file_id) DO UPDATE SET size = excluded.size,
		   mtime = excluded.mtime, ctime = excluded.ctime`,
		fileID, stamp.Size, stamp.MTime, stamp.CTime)
	if err != nil {
		return errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
	}
	return nil
}

// PutDirEntry upserts an offline directory entry within the transaction.
func (t *Tx) PutDirEntry(parentID int64, entry DirEntry) error {
	isFile := 0
	if entry.IsFile {
		isFile = 1
	}
	_, err := t.tx.Exec(
		`INSERT INTO dir_contents(parent_id, basename, obj_id, obj_is_file) VALUES (?, ?, ?, ?)
		 ON CONFLICT(parent_id, basename) DO UPDATE SET obj_id = excluded.obj_id,
		   obj_is_file = excluded.obj_is_file`,
		parentID, entry.Basename, entry.ObjID, isFile)
	if err != nil {
		return errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
	}
	return nil
}
