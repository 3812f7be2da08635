package cachestore

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/mrsimoes/lnsyncgo/pkg/lnsyncerr"
)

// DirEntry is one row of an offline tree's directory listing.
type DirEntry struct {
	Basename string
	ObjID    int64
	IsFile   bool
}

// GetDirEntries returns the offline directory listing for parentID, in no
// particular order (callers must not rely on filesystem enumeration
// order, same as the online scan).
func (s *Store) GetDirEntries(parentID int64) ([]DirEntry, error) {
	rows, err := s.db.Query(
		"SELECT basename, obj_id, obj_is_file FROM dir_contents WHERE parent_id = ?", parentID)
	if err != nil {
		return nil, errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
	}
	defer rows.Close()

	var entries []DirEntry
	for rows.Next() {
		var entry DirEntry
		var isFile int
		if err := rows.Scan(&entry.Basename, &entry.ObjID, &isFile); err != nil {
			return nil, errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
		}
		entry.IsFile = isFile != 0
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
	}
	return entries, nil
}

// PutDirEntry upserts one offline directory entry.
func (s *Store) PutDirEntry(parentID int64, entry DirEntry) error {
	isFile := 0
	if entry.IsFile {
		isFile = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO dir_contents(parent_id, basename, obj_id, obj_is_file) VALUES (?, ?, ?, ?)
		 ON CONFLICT(parent_id, basename) DO UPDATE SET obj_id = excluded.obj_id,
		   obj_is_file = excluded.obj_is_file`,
		parentID, entry.Basename, entry.ObjID, isFile)
	if err != nil {
		return errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
	}
	return nil
}

// GetOfflineMetadata returns the offline metadata row for fileID.
func (s *Store) GetOfflineMetadata(fileID int64) (stamp Stamp, ok bool, err error) {
	row := s.db.QueryRow("SELECT size, mtime, ctime FROM metadata WHERE file_id = ?", fileID)
	err = row.Scan(&stamp.Size, &stamp.MTime, &stamp.CTime)
	if err == sql.ErrNoRows {
		return Stamp{}, false, nil
	}
	if err != nil {
		return Stamp{}, false, errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
	}
	return stamp, true, nil
}

// PutOfflineMetadata upserts the offline metadata row for fileID.
func (s *Store) PutOfflineMetadata(fileID int64, stamp Stamp) error {
	_, err := s.db.Exec(
		`INSERT INTO metadata(file_id, size, mtime, ctime) VALUES (?, ?, ?, ?)
		 ON CONFLICT(file_id) DO UPDATE SET size = excluded.size,
		   mtime = excluded.mtime, ctime = excluded.ctime`,
		fileID, stamp.Size, stamp.MTime, stamp.CTime)
	if err != nil {
		return errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
	}
	return nil
}
