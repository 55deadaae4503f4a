package download

import (
	"crypto/sha1"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"github.com/handiism/modrinth-downloader/internal/model"
)

// hashAlgorithms lists the digests the catalog publishes, strongest first.
var hashAlgorithms = []struct {
	name string
	new  func() hash.Hash
}{
	{"sha512", sha512.New},
	{"sha1", sha1.New},
}

// verifyHash checks data against the strongest digest present in hashes.
// Files without any known digest pass.
func verifyHash(data []byte, hashes map[string]string) error {
	for _, alg := range hashAlgorithms {
		want, ok := hashes[alg.name]
		if !ok || want == "" {
			continue
		}
		h := alg.new()
		h.Write(data)
		got := hex.EncodeToString(h.Sum(nil))
		if !strings.EqualFold(got, want) {
			return fmt.Errorf("%w: %s is %s, catalog says %s", model.ErrHashMismatch, alg.name, got, want)
		}
		return nil
	}
	return nil
}
