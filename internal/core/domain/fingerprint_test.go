package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/hale/internal/core/domain"
)

func TestEnvironmentFingerprint_Clone(t *testing.T) {
	fp := baseFingerprint()
	fp.Platform = &domain.Platform{OS: "linux", Arch: "amd64"}
	fp.NodeModulesHash = "xxh64:abcd"

	clone := fp.Clone()
	clone.Frameworks["react"] = "19.0.0"
	clone.Platform.OS = "darwin"

	assert.Equal(t, "18.2.0", fp.Frameworks["react"], "clone must not alias the frameworks map")
	assert.Equal(t, "linux", fp.Platform.OS, "clone must not alias the platform")
}

func TestEnvironmentFingerprint_Equal(t *testing.T) {
	fp := baseFingerprint()

	t.Run("identical fingerprints are equal", func(t *testing.T) {
		assert.True(t, fp.Equal(fp.Clone()))
	})

	t.Run("capture extras do not participate", func(t *testing.T) {
		other := fp.Clone()
		other.Platform = &domain.Platform{OS: "linux", Arch: "arm64"}
		other.NodeModulesHash = "xxh64:ffff"
		assert.True(t, fp.Equal(other))
	})

	t.Run("runtime version differs", func(t *testing.T) {
		other := fp.Clone()
		other.RuntimeVersion = "22.1.0"
		assert.False(t, fp.Equal(other))
	})

	t.Run("framework set differs", func(t *testing.T) {
		other := fp.Clone()
		other.Frameworks["vue"] = "3.4.0"
		assert.False(t, fp.Equal(other))
	})
}

func TestContentHash(t *testing.T) {
	h := domain.ContentHash([]byte("lockfile body"))
	assert.True(t, len(h) > len(domain.HashPrefixSHA256))
	assert.Equal(t, "sha256", domain.HashAlgorithm(h))

	// Same content, same hash.
	assert.Equal(t, h, domain.ContentHash([]byte("lockfile body")))
	assert.NotEqual(t, h, domain.ContentHash([]byte("other body")))

	assert.Equal(t, "", domain.HashAlgorithm("bare-hex-digest"))
}
