package cachestore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mrsimoes/lnsyncgo/pkg/lnsyncerr"
)

// TestPickBasenameNoneExisting tests that a fresh directory gets a
// synthesized basename matching the prefix pattern.
func TestPickBasenameNoneExisting(t *testing.T) {
	dir := t.TempDir()
	basename, err := PickBasename(dir, "lnsync-")
	if err != nil {
		t.Fatalf("PickBasename failed: %v", err)
	}
	if filepath.Ext(basename) != ".db" {
		t.Errorf("basename %q does not end in .db", basename)
	}
	if ok, _ := filepath.Match("lnsync-[0-9][0-9][0-9].db", basename); !ok {
		t.Errorf("basename %q does not match the lnsync-NNN.db pattern", basename)
	}
}

// TestPickBasenameOneExisting tests that an existing single match is
// returned as-is.
func TestPickBasenameOneExisting(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "lnsync-042.db"), nil, 0o644); err != nil {
		t.Fatalf("unable to seed cache file: %v", err)
	}

	basename, err := PickBasename(dir, "lnsync-")
	if err != nil {
		t.Fatalf("PickBasename failed: %v", err)
	}
	if basename != "lnsync-042.db" {
		t.Errorf("PickBasename = %q, expected lnsync-042.db", basename)
	}
}

// TestPickBasenameAmbiguous tests that more than one match returns
// ErrAmbiguousCache.
func TestPickBasenameAmbiguous(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "lnsync-001.db"), nil, 0o644)
	os.WriteFile(filepath.Join(dir, "lnsync-002.db"), nil, 0o644)

	_, err := PickBasename(dir, "lnsync-")
	if err == nil {
		t.Fatal("expected an error for ambiguous cache candidates")
	}
	if !errors.Is(err, lnsyncerr.ErrAmbiguousCache) {
		t.Errorf("error %v does not wrap ErrAmbiguousCache", err)
	}
}

// TestPickBasenameIgnoresUnrelatedFiles tests that files not matching the
// prefix pattern are not counted as candidates.
func TestPickBasenameIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "lnsync-007.db"), nil, 0o644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644)
	os.WriteFile(filepath.Join(dir, "otherprefix-007.db"), nil, 0o644)

	basename, err := PickBasename(dir, "lnsync-")
	if err != nil {
		t.Fatalf("PickBasename failed: %v", err)
	}
	if basename != "lnsync-007.db" {
		t.Errorf("PickBasename = %q, expected lnsync-007.db", basename)
	}
}
