// Package registry implements the npm registry client.
package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"

	"go.trai.ch/hale/internal/core/domain"
	"go.trai.ch/hale/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Registry = (*Client)(nil)

// Client implements ports.Registry against an npm-compatible registry.
// Package documents are cached for the lifetime of the client, so one fetch
// serves both version listing and peer dependency lookups.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.Mutex
	cache map[string]packageDocument
}

// NewClient creates a registry client from configuration.
func NewClient(cfg domain.RegistryConfig) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache: make(map[string]packageDocument),
	}
}

// packageDocument is the slice of npm package metadata the client needs.
type packageDocument struct {
	Versions map[string]versionManifest `json:"versions"`
	DistTags map[string]string          `json:"dist-tags"`
}

type versionManifest struct {
	PeerDependencies map[string]string `json:"peerDependencies"`
}

// Versions lists the published versions of a package in ascending
// semantic-version order. Tags that do not parse as semver are skipped.
func (c *Client) Versions(ctx context.Context, name string) ([]string, error) {
	doc, err := c.fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	parsed := make(semver.Collection, 0, len(doc.Versions))
	for raw := range doc.Versions {
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue
		}
		parsed = append(parsed, v)
	}
	sort.Sort(parsed)

	out := make([]string, len(parsed))
	for i, v := range parsed {
		out[i] = v.Original()
	}
	return out, nil
}

// PeerDependencies returns the peer dependency ranges declared by one
// published version of a package.
func (c *Client) PeerDependencies(ctx context.Context, name, version string) (map[string]string, error) {
	doc, err := c.fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	manifest, ok := doc.Versions[version]
	if !ok {
		notFound := zerr.With(domain.ErrRegistryPackageNotFound, "package", name)
		return nil, zerr.With(notFound, "version", version)
	}
	return manifest.PeerDependencies, nil
}

// fetch loads a package document, hitting the cache first.
func (c *Client) fetch(ctx context.Context, name string) (packageDocument, error) {
	c.mu.Lock()
	if doc, ok := c.cache[name]; ok {
		c.mu.Unlock()
		return doc, nil
	}
	c.mu.Unlock()

	url := c.baseURL + "/" + encodePackage(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return packageDocument{}, zerr.With(zerr.Wrap(err, domain.ErrRegistryUnavailable.Error()), "package", name)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return packageDocument{}, zerr.With(zerr.Wrap(err, domain.ErrRegistryUnavailable.Error()), "package", name)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return packageDocument{}, zerr.With(domain.ErrRegistryPackageNotFound, "package", name)
	}
	if resp.StatusCode != http.StatusOK {
		unavailable := zerr.With(domain.ErrRegistryUnavailable, "package", name)
		return packageDocument{}, zerr.With(unavailable, "status", resp.StatusCode)
	}

	var doc packageDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return packageDocument{}, zerr.With(zerr.Wrap(err, "failed to decode registry response"), "package", name)
	}

	c.mu.Lock()
	c.cache[name] = doc
	c.mu.Unlock()
	return doc, nil
}

// encodePackage escapes the scope separator the way the npm registry expects.
func encodePackage(name string) string {
	return strings.ReplaceAll(name, "/", "%2f")
}
