package doctor

import (
	"context"
	"fmt"
	"slices"

	"go.trai.ch/hale/internal/core/domain"
)

// installedDepsCheck compares declared dependencies against what is actually
// present under node_modules.
type installedDepsCheck struct{}

func (c *installedDepsCheck) ID() string                     { return "dependencies.installed" }
func (c *installedDepsCheck) Category() domain.CheckCategory { return domain.CategoryDependencies }

func (c *installedDepsCheck) Evaluate(_ context.Context, cc *CheckContext) ([]domain.Finding, error) {
	declared := cc.Manifest.DeclaredDependencies()
	if len(declared) == 0 {
		return nil, nil
	}

	if len(cc.Installed) == 0 {
		return []domain.Finding{{
			ID:       c.ID(),
			Category: c.Category(),
			Severity: domain.SeverityCritical,
			Message:  fmt.Sprintf("node_modules is missing but %d dependencies are declared", len(declared)),
			Fixable:  true,
		}}, nil
	}

	installed := make(map[string]bool, len(cc.Installed))
	for _, pkg := range cc.Installed {
		installed[pkg.Name] = true
	}

	var missing []string
	for name := range declared {
		if !installed[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}
	slices.Sort(missing)

	return []domain.Finding{{
		ID:       c.ID(),
		Category: c.Category(),
		Severity: domain.SeverityWarning,
		Message: fmt.Sprintf("%d declared dependencies are not installed: %s",
			len(missing), summarizeNames(missing, 3)),
		Fixable: true,
	}}, nil
}

// deprecatedPackages maps packages the ecosystem has abandoned to their
// replacements.
var deprecatedPackages = map[string]string{
	"request":   "use the built-in fetch or axios",
	"left-pad":  "use String.prototype.padStart",
	"node-sass": "use sass (Dart Sass)",
	"tslint":    "use eslint with typescript-eslint",
	"moment":    "consider date-fns or dayjs",
}

// deprecatedDepsCheck flags installed packages that are deprecated upstream.
type deprecatedDepsCheck struct{}

func (c *deprecatedDepsCheck) ID() string                     { return "dependencies.deprecated" }
func (c *deprecatedDepsCheck) Category() domain.CheckCategory { return domain.CategoryDependencies }

func (c *deprecatedDepsCheck) Evaluate(_ context.Context, cc *CheckContext) ([]domain.Finding, error) {
	var findings []domain.Finding
	for _, pkg := range cc.Installed {
		suggestion, deprecated := deprecatedPackages[pkg.Name]
		if !deprecated {
			continue
		}
		findings = append(findings, domain.Finding{
			ID:       c.ID(),
			Category: c.Category(),
			Severity: domain.SeverityWarning,
			Message:  fmt.Sprintf("%s %s is deprecated; %s", pkg.Name, pkg.Version, suggestion),
		})
	}
	return findings, nil
}
