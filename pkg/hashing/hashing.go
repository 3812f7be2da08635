// Package hashing implements the Hasher contract: a pluggable interface for
// computing a file's content fingerprint, plus the one built-in algorithm
// the design requires (a 64-bit xxHash variant).
package hashing

import "io"

// Hasher computes 64-bit signed content fingerprints. Implementations are
// expected to be stateless and safe for concurrent use; per-call state
// (e.g. a streaming digest in progress) lives in the Stream values they
// produce.
type Hasher interface {
	// FingerprintFile computes the fingerprint of a complete file.
	FingerprintFile(path string) (int64, error)

	// FingerprintBytes computes the fingerprint of an in-memory buffer in
	// one shot.
	FingerprintBytes(data []byte) int64

	// NewStream returns a fresh streaming digest.
	NewStream() Stream

	// DependsOnSize reports whether two files of different sizes are
	// guaranteed to have different fingerprints. True for content hashes;
	// false for algorithms like a perceptual hash, where size carries no
	// information about equality.
	DependsOnSize() bool
}

// Stream is a resettable, incremental digest, mirroring the design's
// reset()/update()/digest() contract.
type Stream interface {
	// Reset returns the stream to its initial state.
	Reset()
	// Update folds more bytes into the digest.
	Update(p []byte)
	// Digest returns the current fingerprint. It does not reset the
	// stream.
	Digest() int64
}

// copyDigest drains r into s in chunks no larger than len(buf), reusing
// buf for every read, and returns the first read error (if any) other
// than io.EOF.
func copyDigest(s Stream, r io.Reader, buf []byte) error {
	for {
		n, err := r.Read(buf)
		if n > 0 {
			s.Update(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
