// Package globmatch defines the include/exclude predicate that FileTree
// scanning consults, and a doublestar-backed default implementation.
//
// The design treats the matcher as an external collaborator: FileTree never
// parses patterns itself, it only asks a Matcher to classify entries and to
// derive a child Matcher when descending into a subdirectory.
package globmatch

import "github.com/bmatcuk/doublestar/v4"

// Classification is the result of testing a path against a Matcher.
type Classification int

const (
	// Allow means the entry should be scanned normally.
	Allow Classification = iota
	// ExcludeFile means a file entry is left out of the scan; FileTree
	// records no placeholder entry for it.
	ExcludeFile
	// ExcludeDir means a directory entry and its entire subtree are left
	// out of the scan; FileTree records no placeholder entry for them.
	ExcludeDir
)

// Matcher classifies filesystem entries relative to some fixed root and can
// be specialized for a subdirectory without re-parsing the whole pattern
// set.
type Matcher interface {
	// Classify decides whether the entry at relPath (relative to the
	// matcher's root) should be scanned, excluded as a file, or excluded
	// (with its subtree) as a directory. isDir indicates which of the
	// latter two applies for a match.
	Classify(relPath string, isDir bool) Classification

	// Descend returns a Matcher appropriate for evaluating entries inside
	// the subdirectory named basename, so that callers can pass paths
	// relative to that subdirectory. The default implementation records
	// the descended prefix and still matches patterns against the full
	// path from the original root.
	Descend(basename string) Matcher
}

// AllowAll is a Matcher that excludes nothing. It is the default when no
// include/exclude configuration is supplied.
var AllowAll Matcher = allowAll{}

type allowAll struct{}

func (allowAll) Classify(string, bool) Classification { return Allow }
func (allowAll) Descend(string) Matcher               { return AllowAll }

// patternSet is the default Matcher, backed by doublestar glob patterns.
// Patterns are matched against the path relative to the original tree root
// (the prefix field joined with the entry's path), mirroring how rsync-style include/exclude filters are
// normally specified.
type patternSet struct {
	excludeFiles []string
	excludeDirs  []string
	prefix       string // path prefix already descended, joined with "/"
}

// NewPatternMatcher builds a Matcher from two pattern lists: patterns that
// exclude matching files, and patterns that exclude matching directories
// (along with their entire subtree). Patterns use doublestar syntax, so
// "**/*.tmp" and "build/**" are both valid.
func NewPatternMatcher(excludeFiles, excludeDirs []string) Matcher {
	return &patternSet{
		excludeFiles: excludeFiles,
		excludeDirs:  excludeDirs,
	}
}

func (m *patternSet) full(relPath string) string {
	if m.prefix == "" {
		return relPath
	}
	if relPath == "" {
		return m.prefix
	}
	return m.prefix + "/" + relPath
}

// Classify implements Matcher.
func (m *patternSet) Classify(relPath string, isDir bool) Classification {
	full := m.full(relPath)
	if isDir {
		for _, pattern := range m.excludeDirs {
			if ok, _ := doublestar.Match(pattern, full); ok {
				return ExcludeDir
			}
		}
		return Allow
	}
	for _, pattern := range m.excludeFiles {
		if ok, _ := doublestar.Match(pattern, full); ok {
			return ExcludeFile
		}
	}
	return Allow
}

// Descend implements Matcher.
func (m *patternSet) Descend(basename string) Matcher {
	return &patternSet{
		excludeFiles: m.excludeFiles,
		excludeDirs:  m.excludeDirs,
		prefix:       m.full(basename),
	}
}
