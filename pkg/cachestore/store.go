// Package cachestore implements CacheStore: an embedded relational store
// of file fingerprints and, for offline trees, the full directory
// structure and metadata needed to query a tree without its filesystem
// present.
//
// The store is backed by modernc.org/sqlite, a cgo-free SQLite driver, so
// that the resulting binary has no C toolchain dependency. A store is held
// under exclusive advisory lock (flock) for the lifetime of its enclosing
// scope, matching the design's "exclusive-lock semantics" requirement;
// concurrent use by two processes against the same cache file fails fast
// at Open rather than corrupting the database.
package cachestore

import (
	"database/sql"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	_ "modernc.org/sqlite"

	"github.com/mrsimoes/lnsyncgo/pkg/lnsyncerr"
	"github.com/mrsimoes/lnsyncgo/pkg/logging"
)

var log = logging.RootLogger.Sublogger("cachestore")

// Store is an open CacheStore.
type Store struct {
	db       *sql.DB
	path     string
	lockFile *os.File
}

// Open opens (creating if necessary) the SQLite database at path, takes an
// exclusive advisory lock on it, and verifies/initializes its schema
// version. If the store cannot be opened, initialized, or has the wrong
// schema version, it returns an error wrapping lnsyncerr.ErrCacheUnavailable.
func Open(path string) (*Store, error) {
	lockFile, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, errors.Wrap(lnsyncerr.ErrCacheUnavailable, err.Error())
	}
	if err := unix.Flock(int(lockFile.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		lockFile.Close()
		return nil, errors.Wrap(lnsyncerr.ErrCacheUnavailable, "cache file is locked by another process")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		lockFile.Close()
		return nil, errors.Wrap(lnsyncerr.ErrCacheUnavailable, err.Error())
	}
	// A single exclusive-lock scope means a single live connection is
	// sufficient and avoids SQLITE_BUSY from the driver's own pool.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, path: path, lockFile: lockFile}
	if err := store.initSchema(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return errors.Wrap(lnsyncerr.ErrCacheUnavailable, "unable to read schema version")
	}

	if version == 0 {
		if _, err := s.db.Exec(schemaDDL); err != nil {
			return errors.Wrap(lnsyncerr.ErrCacheUnavailable, err.Error())
		}
		if _, err := s.db.Exec("PRAGMA user_version = " + strconv.Itoa(schemaVersion)); err != nil {
			return errors.Wrap(lnsyncerr.ErrCacheUnavailable, err.Error())
		}
		return nil
	}

	if version < schemaVersion {
		return errors.Wrapf(lnsyncerr.ErrCacheUnavailable, "cache schema version %d is older than supported version %d", version, schemaVersion)
	}
	if version > schemaVersion {
		return errors.Wrapf(lnsyncerr.ErrCacheUnavailable, "cache schema version %d is newer than supported version %d", version, schemaVersion)
	}
	return nil
}

// Path returns the filesystem path of the open cache file.
func (s *Store) Path() string {
	return s.path
}

// Close releases the store's lock and closes its database connection.
func (s *Store) Close() error {
	dbErr := s.db.Close()
	lockErr := s.lockFile.Close()
	if dbErr != nil {
		return errors.Wrap(dbErr, "unable to close cache database")
	}
	if lockErr != nil {
		return errors.Wrap(lockErr, "unable to release cache lock")
	}
	return nil
}

// Compact reclaims space from deleted rows.
func (s *Store) Compact() error {
	_, err := s.db.Exec("VACUUM")
	if err != nil {
		return errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
	}
	return nil
}

// ClearOffline drops only the offline-specific tables (dir_contents and
// metadata), leaving prop intact.
func (s *Store) ClearOffline() error {
	if _, err := s.db.Exec("DELETE FROM dir_contents"); err != nil {
		return errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
	}
	if _, err := s.db.Exec("DELETE FROM metadata"); err != nil {
		return errors.Wrap(lnsyncerr.ErrCacheCorrupt, err.Error())
	}
	return nil
}
