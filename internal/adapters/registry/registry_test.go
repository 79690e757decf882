package registry_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/hale/internal/adapters/registry"
	"go.trai.ch/hale/internal/core/domain"
)

func newClient(serverURL string) *registry.Client {
	return registry.NewClient(domain.RegistryConfig{
		BaseURL: serverURL,
		Timeout: 5 * time.Second,
	})
}

func TestClient_Versions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/react", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		_, _ = w.Write([]byte(`{
			"name": "react",
			"dist-tags": {"latest": "18.2.0"},
			"versions": {
				"18.2.0": {},
				"17.0.2": {},
				"18.1.0": {},
				"not-a-version": {}
			}
		}`))
	}))
	defer server.Close()

	versions, err := newClient(server.URL).Versions(context.Background(), "react")
	require.NoError(t, err)

	// Ascending semver; unparsable tags are dropped.
	assert.Equal(t, []string{"17.0.2", "18.1.0", "18.2.0"}, versions)
}

func TestClient_Versions_ScopedPackage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/@types%2freact", r.RequestURI)
		_, _ = w.Write([]byte(`{"versions": {"18.2.14": {}}}`))
	}))
	defer server.Close()

	versions, err := newClient(server.URL).Versions(context.Background(), "@types/react")
	require.NoError(t, err)
	assert.Equal(t, []string{"18.2.14"}, versions)
}

func TestClient_Versions_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newClient(server.URL).Versions(context.Background(), "no-such-package")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRegistryPackageNotFound)
}

func TestClient_Versions_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newClient(server.URL).Versions(context.Background(), "react")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRegistryUnavailable)
}

func TestClient_PeerDependencies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"versions": {
				"18.2.14": {"peerDependencies": {"react": "^18.0.0"}},
				"17.0.0": {}
			}
		}`))
	}))
	defer server.Close()

	client := newClient(server.URL)

	peers, err := client.PeerDependencies(context.Background(), "@types/react", "18.2.14")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"react": "^18.0.0"}, peers)

	peers, err = client.PeerDependencies(context.Background(), "@types/react", "17.0.0")
	require.NoError(t, err)
	assert.Empty(t, peers)

	_, err = client.PeerDependencies(context.Background(), "@types/react", "9.9.9")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRegistryPackageNotFound)
}

func TestClient_CachesPackageDocuments(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"versions": {"1.0.0": {"peerDependencies": {"react": ">=17"}}}}`))
	}))
	defer server.Close()

	client := newClient(server.URL)
	ctx := context.Background()

	_, err := client.Versions(ctx, "left-pad")
	require.NoError(t, err)
	_, err = client.Versions(ctx, "left-pad")
	require.NoError(t, err)
	_, err = client.PeerDependencies(ctx, "left-pad", "1.0.0")
	require.NoError(t, err)

	assert.Equal(t, int64(1), hits.Load())
}
