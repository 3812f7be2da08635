package proptree

import (
	"github.com/mrsimoes/lnsyncgo/pkg/cachestore"
	"github.com/mrsimoes/lnsyncgo/pkg/filetree"
)

// UpdateReport aggregates per-file failures from BulkUpdate, so that one
// unreadable file doesn't abort the whole pass.
type UpdateReport struct {
	Updated int
	Failed  map[string]error // relPath -> error
}

// BulkUpdate ensures every file in the tree has an up-to-date cached
// fingerprint, continuing past individual failures and reporting them.
func (p *PropertyTree) BulkUpdate() (*UpdateReport, error) {
	files, err := p.Tree.WalkFiles(nil)
	if err != nil {
		return nil, err
	}

	report := &UpdateReport{Failed: make(map[string]error)}
	for _, file := range files {
		paths := file.Paths()
		if len(paths) == 0 {
			continue
		}
		if _, err := p.GetFingerprint(file, paths[0]); err != nil {
			report.Failed[paths[0]] = err
			log.Warn(err)
			continue
		}
		report.Updated++
	}
	return report, nil
}

// PurgeStale deletes cache rows whose file_id is no longer present in the
// tree's id index, after a full scan.
func (p *PropertyTree) PurgeStale() error {
	if _, err := p.Tree.WalkFiles(nil); err != nil {
		return err
	}
	return p.Store.DeleteIDsExcept(p.Tree.LiveFileIDs())
}

// FreezeOffline scans the full tree and, in one CacheStore transaction,
// copies every non-filtered prop row into target along with metadata and
// dir_contents rows, producing a portable offline snapshot.
func (p *PropertyTree) FreezeOffline(target *cachestore.Store, filter func(fileID int64) bool) error {
	entries, err := p.Tree.WalkPaths(nil, true, true, false, true)
	if err != nil {
		return err
	}
	files, err := p.Tree.WalkFiles(nil)
	if err != nil {
		return err
	}

	tx, err := target.Begin()
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	for _, file := range files {
		if filter != nil && !filter(file.ID) {
			continue
		}
		paths := file.Paths()
		if len(paths) == 0 {
			continue
		}
		fp, err := p.GetFingerprint(file, paths[0])
		if err != nil {
			log.Warn(err)
			continue
		}
		if err := tx.PutProp(file.ID, cachestore.Prop{Fingerprint: fp, Stamp: file.Stamp}); err != nil {
			return err
		}
		if err := tx.PutOfflineMetadata(file.ID, file.Stamp); err != nil {
			return err
		}
	}

	root := p.Tree.RootDir()
	dirsToVisit := []*filetree.Dir{root}
	for _, entry := range entries {
		if entry.Item.Dir != nil {
			dirsToVisit = append(dirsToVisit, entry.Item.Dir)
		}
	}
	for _, dir := range dirsToVisit {
		children, err := p.Tree.DirEntries(dir)
		if err != nil {
			return err
		}
		for _, child := range children {
			if child.IsFile && filter != nil && !filter(child.ID) {
				continue
			}
			if err := tx.PutDirEntry(dir.ID, cachestore.DirEntry{
				Basename: child.Basename,
				ObjID:    child.ID,
				IsFile:   child.IsFile,
			}); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
