package util

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

const defaultChunkSize = 8 * 1024

// HexDigest streams r through SHA-256 in chunkSize reads and returns the
// lowercase hex digest. A non-positive chunkSize falls back to 8 KiB.
func HexDigest(r io.Reader, chunkSize int) (string, error) {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	hasher := sha256.New()
	if _, err := io.CopyBuffer(hasher, r, make([]byte, chunkSize)); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// HexDigestBytes returns the lowercase hex SHA-256 digest of data.
func HexDigestBytes(data []byte) string {
	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:])
}
