package hashing

import (
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// block is a unit of work passed from the reader goroutine to the hasher
// goroutine. A zero-length, eof=true block is the explicit end-of-stream
// marker; the design calls for this in place of the source's NoMoreData
// control-flow exception.
type block struct {
	data []byte
	eof  bool
	err  error
}

// fingerprintPipelined hashes large files (>= largeFileThreshold) using
// two goroutines: a reader goroutine that fills largeBlockSize buffers
// and the calling goroutine, which hashes them, synchronized by a
// single-slot channel so that at most one block is ever in flight between
// them (the "bounded buffer" from the design, implemented as a capacity-1
// channel rather than condition-variable signaling).
func fingerprintPipelined(file *os.File) (int64, error) {
	blocks := make(chan block, 1)

	go func() {
		buf := make([]byte, largeBlockSize)
		for {
			n, err := file.Read(buf)
			if n > 0 {
				// Copy out of buf before sending: the reader
				// immediately reuses buf for the next read, and the
				// channel has no intrinsic copy semantics.
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				blocks <- block{data: chunk}
			}
			if err != nil {
				if err != io.EOF {
					blocks <- block{eof: true, err: err}
					return
				}
				blocks <- block{eof: true}
				return
			}
		}
	}()

	digest := xxhash.New()
	for b := range blocks {
		if b.eof {
			if b.err != nil {
				return 0, errors.Wrap(b.err, "unable to read file")
			}
			break
		}
		digest.Write(b.data)
	}

	return int64(digest.Sum64()), nil
}
