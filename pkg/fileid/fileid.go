// Package fileid implements the FileIdProvider contract from the design: a
// mapping from a relative path (plus optional stat info) to a stable
// 64-bit signed serial number, such that two paths to the same underlying
// file always produce the same id within one provider instance.
package fileid

import "os"

// Provider maps paths to stable file ids.
type Provider interface {
	// GetID returns the id for the file at relPath. If info is non-nil it
	// is used instead of re-statting the path; callers that already have a
	// directory listing's FileInfo should pass it to avoid a redundant
	// syscall.
	GetID(relPath string, info os.FileInfo) (int64, error)

	// SubdirInvariant reports whether moving the tree root to a deeper
	// starting path leaves ids unchanged. True for InodeProvider, false
	// for PathHashProvider (whose ids are derived from path components
	// between its anchor directory and the file).
	SubdirInvariant() bool
}

// ForRoot selects the appropriate Provider for the filesystem hosting root,
// probing the filesystem format with statfs on root. When inodes are not
// stable it anchors the PathHashProvider at root itself, not at the mount
// point containing root, so path-hash ids come from the components below
// root and differ between trees rooted at different directories.
func ForRoot(root string) (Provider, error) {
	if StableInodes(root) {
		return NewInodeProvider(), nil
	}
	return NewPathHashProvider(root), nil
}
