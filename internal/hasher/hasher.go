// Package hasher computes SHA-256 content digests for file records.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/razakaze/duplicate-finder/internal/scanner"
)

// ChunkSize is the read buffer size used while hashing. Streaming through
// a fixed 1 MiB buffer bounds memory regardless of file size.
const ChunkSize = 1024 * 1024

// progressInterval controls how often the progress callback fires.
const progressInterval = 20

// HashFile computes the hex-encoded SHA-256 digest of the file at path,
// reading its contents in ChunkSize chunks.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, ChunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashAll fills in the Digest of each record, in input order. A file that
// cannot be opened or read leaves its record with an empty digest; that is
// a normal classification input, not an error.
//
// isCancelled, if non-nil, is polled before each file; when it reports
// true no further files are processed and already-hashed records keep
// their digests. onProgress, if non-nil, fires every 20 records and
// unconditionally on the last one with (done, total).
func HashAll(records []*scanner.FileRecord, onProgress func(done, total int), isCancelled func() bool) {
	total := len(records)
	for i, rec := range records {
		if isCancelled != nil && isCancelled() {
			return
		}

		if digest, err := HashFile(rec.Path); err == nil {
			rec.Digest = digest
		}

		done := i + 1
		if onProgress != nil && (done%progressInterval == 0 || done == total) {
			onProgress(done, total)
		}
	}
}
