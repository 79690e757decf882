package doctor

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"go.trai.ch/hale/internal/core/domain"
)

// runtimeCheck validates the Node.js runtime against the manifest's
// engines.node range and the project's version policies.
type runtimeCheck struct{}

func (c *runtimeCheck) ID() string                     { return "toolchain.runtime" }
func (c *runtimeCheck) Category() domain.CheckCategory { return domain.CategoryToolchain }

func (c *runtimeCheck) Evaluate(_ context.Context, cc *CheckContext) ([]domain.Finding, error) {
	if cc.ProbeErr != nil {
		return []domain.Finding{{
			ID:       c.ID(),
			Category: c.Category(),
			Severity: domain.SeverityCritical,
			Message:  fmt.Sprintf("runtime environment is not accessible: %v", cc.ProbeErr),
		}}, nil
	}

	var findings []domain.Finding
	live := cc.Live.RuntimeVersion

	if rng := cc.Manifest.Engines["node"]; rng != "" && !satisfies(rng, live) {
		findings = append(findings, domain.Finding{
			ID:       c.ID(),
			Category: c.Category(),
			Severity: domain.SeverityWarning,
			Message:  fmt.Sprintf("Node.js %s does not satisfy engines.node %q", live, rng),
			Fixable:  true,
		})
	}

	policies := cc.Config.Policies
	if min := policies.MinNodeVersion; min != "" && versionBefore(live, min) {
		findings = append(findings, domain.Finding{
			ID:       c.ID(),
			Category: c.Category(),
			Severity: domain.SeverityCritical,
			Message:  fmt.Sprintf("Node.js %s is below the project minimum %s", live, min),
			Fixable:  true,
		})
	}
	if max := policies.MaxNodeVersion; max != "" && versionBefore(max, live) {
		findings = append(findings, domain.Finding{
			ID:       c.ID(),
			Category: c.Category(),
			Severity: domain.SeverityCritical,
			Message:  fmt.Sprintf("Node.js %s is above the project maximum %s", live, max),
			Fixable:  true,
		})
	}
	return findings, nil
}

// packageManagerCheck confirms the active package manager binary runs,
// reports the expected version, and is allowed by project policy.
type packageManagerCheck struct{}

func (c *packageManagerCheck) ID() string                     { return "toolchain.package_manager" }
func (c *packageManagerCheck) Category() domain.CheckCategory { return domain.CategoryToolchain }

func (c *packageManagerCheck) Evaluate(ctx context.Context, cc *CheckContext) ([]domain.Finding, error) {
	if cc.ProbeErr != nil {
		return nil, nil
	}

	pm := cc.Live.PackageManager
	declared := cc.Manifest.PackageManager != ""

	var findings []domain.Finding
	if allowed := cc.Config.Policies.AllowedPackageManagers; len(allowed) > 0 && !slices.Contains(allowed, pm.Name) {
		findings = append(findings, domain.Finding{
			ID:       c.ID(),
			Category: c.Category(),
			Severity: domain.SeverityCritical,
			Message:  fmt.Sprintf("package manager %s is not in the allowed set %v", pm.Name, allowed),
		})
	}

	res, err := cc.Runner.Run(ctx, cc.Root, []string{pm.Name, "--version"})
	if err != nil {
		findings = append(findings, domain.Finding{
			ID:       c.ID(),
			Category: c.Category(),
			Severity: domain.SeverityCritical,
			Message:  fmt.Sprintf("package manager %s is not runnable: %v", pm.Name, err),
			Fixable:  declared,
		})
		return findings, nil
	}

	// A declared packageManager field is trusted during capture, so the
	// binary on PATH can still disagree with it.
	if actual := strings.TrimSpace(res.Stdout); actual != "" && actual != pm.Version {
		findings = append(findings, domain.Finding{
			ID:       c.ID(),
			Category: c.Category(),
			Severity: domain.SeverityWarning,
			Message:  fmt.Sprintf("%s %s is active but %s is expected", pm.Name, actual, pm.Version),
			Fixable:  true,
		})
	}
	return findings, nil
}

// corepackCheck validates that corepack is present when the project relies on
// it to pin the package manager.
type corepackCheck struct{}

func (c *corepackCheck) ID() string                     { return "toolchain.corepack" }
func (c *corepackCheck) Category() domain.CheckCategory { return domain.CategoryToolchain }

func (c *corepackCheck) Evaluate(ctx context.Context, cc *CheckContext) ([]domain.Finding, error) {
	enforce := cc.Config.Policies.EnforceCorepack
	declared := cc.Manifest.PackageManager != ""
	if !enforce && !declared {
		return nil, nil
	}

	var findings []domain.Finding
	if enforce && !declared {
		findings = append(findings, domain.Finding{
			ID:       c.ID(),
			Category: c.Category(),
			Severity: domain.SeverityWarning,
			Message:  "packageManager is not declared in package.json",
		})
	}

	if _, err := cc.Runner.Run(ctx, cc.Root, []string{"corepack", "--version"}); err != nil {
		severity := domain.SeverityInfo
		if enforce {
			severity = domain.SeverityCritical
		}
		findings = append(findings, domain.Finding{
			ID:       c.ID(),
			Category: c.Category(),
			Severity: severity,
			Message:  fmt.Sprintf("corepack is not available: %v", err),
		})
	}
	return findings, nil
}

// satisfies reports whether version meets the range. Unparsable input is
// treated as satisfied so loose author metadata never produces noise.
func satisfies(rng, version string) bool {
	constraint, err := semver.NewConstraint(rng)
	if err != nil {
		return true
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return true
	}
	return constraint.Check(v)
}

// versionBefore reports whether a sorts strictly before b. Unparsable
// versions never order.
func versionBefore(a, b string) bool {
	av, err := semver.NewVersion(a)
	if err != nil {
		return false
	}
	bv, err := semver.NewVersion(b)
	if err != nil {
		return false
	}
	return av.LessThan(bv)
}
