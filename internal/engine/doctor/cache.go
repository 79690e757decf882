package doctor

import (
	"context"
	"encoding/json"

	"github.com/go-git/go-billy/v5/util"

	"go.trai.ch/hale/internal/core/domain"
)

// nodeModulesCacheCheck compares the installed package set against the digest
// recorded at lock time.
type nodeModulesCacheCheck struct{}

func (c *nodeModulesCacheCheck) ID() string                     { return "cache.node_modules" }
func (c *nodeModulesCacheCheck) Category() domain.CheckCategory { return domain.CategoryCache }

func (c *nodeModulesCacheCheck) Evaluate(_ context.Context, cc *CheckContext) ([]domain.Finding, error) {
	if cc.Stored == nil || cc.Stored.Fingerprint.NodeModulesHash == "" {
		return nil, nil
	}
	// An absent node_modules is the installed-dependencies check's finding.
	if len(cc.Installed) == 0 {
		return nil, nil
	}

	if domain.InstalledDigest(cc.Installed) == cc.Stored.Fingerprint.NodeModulesHash {
		return nil, nil
	}
	return []domain.Finding{{
		ID:       c.ID(),
		Category: c.Category(),
		Severity: domain.SeverityWarning,
		Message:  "installed packages diverge from the digest recorded at lock time",
		Fixable:  true,
	}}, nil
}

// nextCacheCheck validates the integrity of a Next.js build cache.
type nextCacheCheck struct{}

func (c *nextCacheCheck) ID() string                     { return "cache.next" }
func (c *nextCacheCheck) Category() domain.CheckCategory { return domain.CategoryCache }

func (c *nextCacheCheck) Evaluate(_ context.Context, cc *CheckContext) ([]domain.Finding, error) {
	cacheDir := cc.FS.Join(cc.Root, ".next")
	if fi, err := cc.FS.Stat(cacheDir); err != nil || !fi.IsDir() {
		return nil, nil
	}

	data, err := util.ReadFile(cc.FS, cc.FS.Join(cacheDir, "build-manifest.json"))
	if err != nil {
		return []domain.Finding{{
			ID:       c.ID(),
			Category: c.Category(),
			Severity: domain.SeverityWarning,
			Message:  ".next build cache has no build manifest; the cache is stale or truncated",
			Fixable:  true,
		}}, nil
	}

	if !json.Valid(data) {
		return []domain.Finding{{
			ID:       c.ID(),
			Category: c.Category(),
			Severity: domain.SeverityWarning,
			Message:  ".next build manifest is not valid JSON; the cache is corrupt",
			Fixable:  true,
		}}, nil
	}
	return nil, nil
}
