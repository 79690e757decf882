package doctor

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/hale/internal/core/domain"
)

// lockfileByManager maps each package manager to the lockfile it writes.
var lockfileByManager = map[string]string{
	"npm":  "package-lock.json",
	"pnpm": "pnpm-lock.yaml",
	"yarn": "yarn.lock",
	"bun":  "bun.lockb",
}

// lockfilePresenceCheck reports a project that declares dependencies but
// pins none of them.
type lockfilePresenceCheck struct{}

func (c *lockfilePresenceCheck) ID() string                     { return "lockfile.presence" }
func (c *lockfilePresenceCheck) Category() domain.CheckCategory { return domain.CategoryLockfile }

func (c *lockfilePresenceCheck) Evaluate(_ context.Context, cc *CheckContext) ([]domain.Finding, error) {
	if len(cc.Manifest.DeclaredDependencies()) == 0 {
		return nil, nil
	}

	for _, name := range lockfileByManager {
		if _, err := cc.FS.Stat(cc.FS.Join(cc.Root, name)); err == nil {
			return nil, nil
		}
	}
	return []domain.Finding{{
		ID:       c.ID(),
		Category: c.Category(),
		Severity: domain.SeverityWarning,
		Message:  "no lockfile found; dependency versions are not pinned",
		Fixable:  true,
	}}, nil
}

// lockfileConsistencyCheck compares the lockfile against the package manager
// that is supposed to own it and against the manifest's declared dependencies.
type lockfileConsistencyCheck struct{}

func (c *lockfileConsistencyCheck) ID() string                     { return "lockfile.consistency" }
func (c *lockfileConsistencyCheck) Category() domain.CheckCategory { return domain.CategoryLockfile }

func (c *lockfileConsistencyCheck) Evaluate(_ context.Context, cc *CheckContext) ([]domain.Finding, error) {
	var findings []domain.Finding

	if cc.ProbeErr == nil && cc.Live.Lockfile.Type != "" {
		if owned := lockfileByManager[cc.Live.PackageManager.Name]; owned != "" && owned != cc.Live.Lockfile.Type {
			findings = append(findings, domain.Finding{
				ID:       c.ID(),
				Category: c.Category(),
				Severity: domain.SeverityCritical,
				Message: fmt.Sprintf("lockfile %s belongs to a different tool than the active package manager %s",
					cc.Live.Lockfile.Type, cc.Live.PackageManager.Name),
				Fixable: true,
			})
		}
	}

	if len(cc.Locked) > 0 {
		findings = append(findings, c.missingEntries(cc)...)
		findings = append(findings, c.duplicates(cc)...)
	}
	return findings, nil
}

// missingEntries flags declared dependencies absent from the lockfile.
func (c *lockfileConsistencyCheck) missingEntries(cc *CheckContext) []domain.Finding {
	locked := make(map[string]bool, len(cc.Locked))
	for _, pkg := range cc.Locked {
		locked[pkg.Name] = true
	}

	var missing []string
	for name := range cc.Manifest.DeclaredDependencies() {
		if !locked[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)

	return []domain.Finding{{
		ID:       "lockfile.missing_entries",
		Category: c.Category(),
		Severity: domain.SeverityWarning,
		Message: fmt.Sprintf("lockfile is missing %d declared dependencies: %s",
			len(missing), summarizeNames(missing, 3)),
		Fixable: true,
	}}
}

// duplicates flags packages locked at more than one version. Deduplication
// failures are informational; resolve handles the conflicting constraints.
func (c *lockfileConsistencyCheck) duplicates(cc *CheckContext) []domain.Finding {
	versions := make(map[string]map[string]bool)
	for _, pkg := range cc.Locked {
		if versions[pkg.Name] == nil {
			versions[pkg.Name] = make(map[string]bool)
		}
		versions[pkg.Name][pkg.Version] = true
	}

	var duplicated []string
	for name, set := range versions {
		if len(set) > 1 {
			duplicated = append(duplicated, name)
		}
	}
	if len(duplicated) == 0 {
		return nil
	}
	slices.Sort(duplicated)

	return []domain.Finding{{
		ID:       "lockfile.duplicates",
		Category: c.Category(),
		Severity: domain.SeverityInfo,
		Message: fmt.Sprintf("%d packages are locked at multiple versions: %s",
			len(duplicated), summarizeNames(duplicated, 3)),
	}}
}

// summarizeNames joins up to limit names and counts the rest, keeping
// messages readable for projects with hundreds of dependencies.
func summarizeNames(names []string, limit int) string {
	if len(names) <= limit {
		return strings.Join(names, "; ")
	}
	return fmt.Sprintf("%s; and %d more", strings.Join(names[:limit], "; "), len(names)-limit)
}
