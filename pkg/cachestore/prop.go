package cachestore

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/mrsimoes/lnsyncgo/pkg/lnsyncerr"
)

// Stamp is the (size, mtime, ctime) triple recorded alongside a cached
// fingerprint. Equality for staleness purposes considers size and mtime
// only; ctime is carried but ignored by Equal.
type Stamp struct {
	Size  int64
	MTime int64
	CTime int64
}

// Equal reports whether two stamps represent the same file state, per the
// design's "equality uses size and mtime only".
func (s Stamp) Equal(other Stamp) bool {
	return s.Size == other.Size && s.MTime == other.MTime
}

// Prop is a cached (fingerprint, stamp) pair.
type Prop struct {
	Fingerprint int64
	Stamp       Stamp
}

// GetProp returns the cached property row for fileID, or ok == false if
// none exists.
func (s *Store) GetProp(fileID int64) (prop Prop, ok bool, err error) {
	row := s.db.QueryRow(
		"SELECT value, size, mtime, ctime FROM prop WHERE file_id = ?", fileID)
	err = row.Scan(&prop.Fingerprint, &prop.Stamp.Size, &prop.Stamp.MTime, &prop.Stamp.CTime)
	if err == sql.ErrNoRows {
		return Prop{}, false, nil
	}
	if err != nil {
		return Prop{}, false, errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
	}
	return prop, true, nil
}

// PutProp upserts the property row for fileID.
func (s *Store) PutProp(fileID int64, prop Prop) error {
	_, err := s.db.Exec(
		`INSERT INTO prop(file_id, value, size, mtime, ctime) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(file_id) DO UPDATE SET value = excluded.value,
		   size = excluded.size, mtime = excluded.mtime, ctime = excluded.ctime`,
		fileID, prop.Fingerprint, prop.Stamp.Size, prop.Stamp.MTime, prop.Stamp.CTime)
	if err != nil {
		return errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
	}
	return nil
}

// DeleteIDs removes the property rows for the given file ids. Unknown ids
// are silently ignored.
func (s *Store) DeleteIDs(fileIDs []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("DELETE FROM prop WHERE file_id = ?")
	if err != nil {
		return errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
	}
	defer stmt.Close()

	for _, id := range fileIDs {
		if _, err := stmt.Exec(id); err != nil {
			return errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
		}
	}
	return errors.Wrap(tx.Commit(), "unable to commit delete")
}

// DeleteIDsExcept removes every property row whose file id is not in keep.
func (s *Store) DeleteIDsExcept(keep map[int64]struct{}) error {
	rows, err := s.db.Query("SELECT file_id FROM prop")
	if err != nil {
		return errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
	}
	var toDelete []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
		}
		if _, ok := keep[id]; !ok {
			toDelete = append(toDelete, id)
		}
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
	}
	rows.Close()
	return s.DeleteIDs(toDelete)
}
