package cachestore

import (
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/mrsimoes/lnsyncgo/pkg/lnsyncerr"
)

// DefaultPrefix is the default basename prefix for online cache files,
// matching the design's "default lnsync-".
const DefaultPrefix = "lnsync-"

// PickBasename finds or creates the unique basename matching
// <prefix>[0-9]*.db inside dir. If exactly one file matches, it is
// returned. If none match, a new random basename is synthesized (the
// caller is responsible for actually creating the file). If more than one
// matches, ErrAmbiguousCache is returned.
func PickBasename(dir, prefix string) (string, error) {
	prefix = strings.TrimSuffix(prefix, ".db")
	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + `[0-9]*\.db$`)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Wrap(err, "unable to list cache directory")
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if pattern.MatchString(entry.Name()) {
			candidates = append(candidates, entry.Name())
		}
	}

	switch len(candidates) {
	case 1:
		return candidates[0], nil
	case 0:
		return prefix + randomDigits(3) + ".db", nil
	default:
		return "", errors.Wrapf(lnsyncerr.ErrAmbiguousCache, "%d candidates in %s", len(candidates), dir)
	}
}

func randomDigits(n int) string {
	digits := make([]byte, n)
	for i := range digits {
		digits[i] = byte('0' + rand.Intn(10))
	}
	return string(digits)
}

// PathFor resolves the full cache file path for dir, picking an existing
// basename or synthesizing a fresh one.
func PathFor(dir, prefix string) (string, error) {
	basename, err := PickBasename(dir, prefix)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, basename), nil
}
