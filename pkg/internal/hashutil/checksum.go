// Package hashutil checks the SHA-256 digests the registry publishes for
// crate archives.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/arthur-debert/bpack/pkg/errors"
)

// Sum returns the lowercase hex SHA-256 of data
func Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Verify compares data against a published digest. An empty digest is
// accepted, since older index entries may not carry one.
func Verify(data []byte, want string) error {
	want = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(want), "sha256:"))
	if want == "" {
		return nil
	}
	if got := Sum(data); got != want {
		return errors.Newf(errors.ErrFetch, "checksum mismatch: got %s, want %s", got, want).
			WithDetail("checksum", want)
	}
	return nil
}
