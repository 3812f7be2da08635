package cachestore

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/mrsimoes/lnsyncgo/pkg/lnsyncerr"
)

// MergeFrom inserts prop rows from the store at otherPath that aren't
// already present in s, skipping any file id for which filter(id) returns
// false. It uses SQLite's ATTACH DATABASE so both stores are addressable
// from a single connection during the merge, matching the design's
// "ATTACH-equivalent semantics" requirement.
func (s *Store) MergeFrom(otherPath string, filter func(fileID int64) bool) error {
	const alias = "incoming"

	if _, err := s.db.Exec(fmt.Sprintf("ATTACH DATABASE ? AS %s", alias), otherPath); err != nil {
		return errors.Wrap(lnsyncerr.ErrCacheUnavailable, err.Error())
	}
	defer s.db.Exec(fmt.Sprintf("DETACH DATABASE %s", alias))

	rows, err := s.db.Query(fmt.Sprintf(
		`SELECT o.file_id, o.value, o.size, o.mtime, o.ctime FROM %s.prop o
		 LEFT JOIN prop p ON p.file_id = o.file_id
		 WHERE p.file_id IS NULL`, alias))
	if err != nil {
		return errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
	}

	type row struct {
		id   int64
		prop Prop
	}
	var toInsert []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.prop.Fingerprint, &r.prop.Stamp.Size, &r.prop.Stamp.MTime, &r.prop.Stamp.CTime); err != nil {
			rows.Close()
			return errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
		}
		if filter == nil || filter(r.id) {
			toInsert = append(toInsert, r)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
	}
	rows.Close()

	for _, r := range toInsert {
		if err := s.PutProp(r.id, r.prop); err != nil {
			return err
		}
	}
	return nil
}
