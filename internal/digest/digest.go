// Package digest computes streamed content digests of local files.
//
// SHA-256 is used because MD5 and SHA-1 are compromised and therefore
// unreliable measures of file integrity, while SHA-256 remains reasonably
// performant. The digest is recorded as object metadata at the destination
// and is never consulted to skip or deduplicate uploads.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	serrors "github.com/treelineops/s3ship/errors"
	"github.com/treelineops/s3ship/shiptypes"
)

// Algorithm is the digest function recorded on the integrity record.
const Algorithm = "sha256"

// chunkSize bounds the memory used per file regardless of file size.
const chunkSize = 64 * 1024

// Hasher computes content digests through a filesystem abstraction.
type Hasher struct {
	fs fs.Filesystem
}

// New creates a Hasher reading through the provided filesystem.
func New(filesystem fs.Filesystem) *Hasher {
	return &Hasher{fs: filesystem}
}

// Sum streams the file content through SHA-256 in fixed-size chunks and
// returns the integrity record. A file that became unreadable between
// discovery and hashing yields ErrFileRead; that aborts only this file's
// upload, not the run. A zero-byte file digests to the hash of empty
// input.
func (h *Hasher) Sum(f shiptypes.FileInfo) (shiptypes.Digest, error) {
	file, err := h.fs.Open(f.Path)
	if err != nil {
		return shiptypes.Digest{}, serrors.NewError("digest", serrors.ErrFileRead).
			WithPath(f.Path).
			WithMessage(err.Error())
	}
	defer file.Close()

	sum := sha256.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(sum, file, buf); err != nil {
		return shiptypes.Digest{}, serrors.NewError("digest", serrors.ErrFileRead).
			WithPath(f.Path).
			WithMessage(err.Error())
	}

	return shiptypes.Digest{
		Algorithm: Algorithm,
		Hex:       hex.EncodeToString(sum.Sum(nil)),
	}, nil
}
