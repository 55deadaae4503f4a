package ioutils

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Checksum returns the hex-encoded BLAKE3-256 digest of data.
func Checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ChecksumLine formats a digest line as written by b3sum, so the sidecar
// file can be checked with "b3sum --check".
func ChecksumLine(name string, data []byte) string {
	return fmt.Sprintf("%s  %s\n", Checksum(data), name)
}
