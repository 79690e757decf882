package lockstore_test

import (
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/hale/internal/adapters/lockstore"
	"go.trai.ch/hale/internal/core/domain"
	"go.trai.ch/zerr"
)

func sampleFingerprint() domain.EnvironmentFingerprint {
	return domain.EnvironmentFingerprint{
		RuntimeVersion: "20.11.0",
		PackageManager: domain.PackageManager{Name: "pnpm", Version: "8.15.1"},
		Lockfile: domain.LockfileRef{
			Path:        "pnpm-lock.yaml",
			Type:        "pnpm-lock.yaml",
			ContentHash: domain.ContentHash([]byte("lockfileVersion: '6.0'\n")),
		},
		Frameworks: map[string]string{
			"next":  "14.1.0",
			"react": "18.2.0",
		},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	fs := memfs.New()
	store := lockstore.NewStore(fs, "/proj")

	want := domain.NewLockDocument(sampleFingerprint(), "hale@0.3.0")
	require.NoError(t, store.Write(want))

	got, err := store.Read()
	require.NoError(t, err)

	assert.Equal(t, want.Schema, got.Schema)
	assert.Equal(t, want.GeneratedBy, got.GeneratedBy)
	assert.True(t, got.GeneratedAt.Equal(want.GeneratedAt))
	assert.True(t, got.UpdatedAt.Equal(want.UpdatedAt))
	assert.Equal(t, want.Fingerprint, got.Fingerprint)
}

func TestStore_RoundTrip_FullCapture(t *testing.T) {
	fs := memfs.New()
	store := lockstore.NewStore(fs, "/proj")

	fp := sampleFingerprint()
	fp.Platform = &domain.Platform{OS: "linux", Arch: "amd64"}
	fp.NodeModulesHash = "xxh64:00000000075bcd15"

	require.NoError(t, store.Write(domain.NewLockDocument(fp, "hale@0.3.0")))

	got, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, fp, got.Fingerprint)
}

func TestStore_RoundTrip_NoLockfile(t *testing.T) {
	fs := memfs.New()
	store := lockstore.NewStore(fs, "/proj")

	fp := sampleFingerprint()
	fp.Lockfile = domain.LockfileRef{}
	fp.Frameworks = nil

	require.NoError(t, store.Write(domain.NewLockDocument(fp, "hale@0.3.0")))

	got, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, fp, got.Fingerprint)
}

func TestStore_Read_NotFound(t *testing.T) {
	store := lockstore.NewStore(memfs.New(), "/proj")

	_, err := store.Read()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLockNotFound)
}

func TestStore_Read_Malformed(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/proj/env.lock", []byte("schema: [unclosed\n"), 0o644))

	store := lockstore.NewStore(fs, "/proj")
	_, err := store.Read()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLockMalformed)

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.NotEmpty(t, zErr.Metadata()["detail"])
}

func TestStore_Read_EmptyFileIsMalformed(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/proj/env.lock", nil, 0o644))

	store := lockstore.NewStore(fs, "/proj")
	_, err := store.Read()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLockMalformed)
}

func TestStore_Read_UnsupportedSchema(t *testing.T) {
	fs := memfs.New()
	store := lockstore.NewStore(fs, "/proj")

	doc := domain.NewLockDocument(sampleFingerprint(), "hale@0.3.0")
	doc.Schema = "2.0"
	require.NoError(t, store.Write(doc))

	_, err := store.Read()
	require.Error(t, err)

	// A schema mismatch is its own condition, never folded into malformed.
	assert.ErrorIs(t, err, domain.ErrUnsupportedSchema)
	assert.NotErrorIs(t, err, domain.ErrLockMalformed)
}

func TestStore_Write_Overwrite(t *testing.T) {
	fs := memfs.New()
	store := lockstore.NewStore(fs, "/proj")

	first := domain.NewLockDocument(sampleFingerprint(), "hale@0.3.0")
	require.NoError(t, store.Write(first))

	fp := sampleFingerprint()
	fp.RuntimeVersion = "22.1.0"
	second := first.Refresh(fp, "hale@0.3.0")
	require.NoError(t, store.Write(second))

	got, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, "22.1.0", got.Fingerprint.RuntimeVersion)
	assert.True(t, got.GeneratedAt.Equal(first.GeneratedAt))
}

func TestStore_Write_LeavesNoTempFiles(t *testing.T) {
	fs := memfs.New()
	store := lockstore.NewStore(fs, "/proj")

	require.NoError(t, store.Write(domain.NewLockDocument(sampleFingerprint(), "hale@0.3.0")))

	entries, err := fs.ReadDir("/proj")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.LockFileName, entries[0].Name())
}

func TestStore_Write_Header(t *testing.T) {
	fs := memfs.New()
	store := lockstore.NewStore(fs, "/proj")

	require.NoError(t, store.Write(domain.NewLockDocument(sampleFingerprint(), "hale@0.3.0")))

	data, err := util.ReadFile(fs, "/proj/env.lock")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# env.lock"))
	assert.Contains(t, string(data), "package_manager_version: 8.15.1")
}

func TestStore_Path(t *testing.T) {
	store := lockstore.NewStore(memfs.New(), "/proj")
	assert.Equal(t, "/proj/env.lock", store.Path())
}
