package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// HashPrefixSHA256 prefixes sha256 content hashes in persisted documents.
// Every stored hash value carries its algorithm identifier.
const HashPrefixSHA256 = "sha256:"

// HashPrefixXXH64 prefixes xxh64 digests over the installed package set.
const HashPrefixXXH64 = "xxh64:"

// ContentHash hashes raw content with sha256 and returns the prefixed form
// used in lock documents, e.g. "sha256:<hex>".
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return HashPrefixSHA256 + hex.EncodeToString(sum[:])
}

// HashAlgorithm extracts the algorithm identifier from a prefixed hash value,
// or an empty string when the value carries none.
func HashAlgorithm(h string) string {
	algo, _, ok := strings.Cut(h, ":")
	if !ok {
		return ""
	}
	return algo
}

// InstalledDigest digests an installed package set. The input must already be
// sorted by name; an empty set yields an empty digest so a project without
// node_modules never records a hash.
func InstalledDigest(pkgs []InstalledPackage) string {
	if len(pkgs) == 0 {
		return ""
	}
	hasher := xxhash.New()
	for _, pkg := range pkgs {
		_, _ = hasher.WriteString(pkg.Name)
		_, _ = hasher.WriteString("@")
		_, _ = hasher.WriteString(pkg.Version)
		_, _ = hasher.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%s%016x", HashPrefixXXH64, hasher.Sum64())
}
