package doctor

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"go.trai.ch/hale/internal/core/domain"
)

// frameworkNames is the set of packages whose compatibility pairs and runtime
// requirements are inspected.
var frameworkNames = map[string]bool{
	"next":       true,
	"react":      true,
	"react-dom":  true,
	"typescript": true,
	"vite":       true,
	"vue":        true,
}

// frameworksCheck validates framework version pairs and their runtime
// requirements.
type frameworksCheck struct{}

func (c *frameworksCheck) ID() string                     { return "frameworks.compatibility" }
func (c *frameworksCheck) Category() domain.CheckCategory { return domain.CategoryFrameworks }

func (c *frameworksCheck) Evaluate(_ context.Context, cc *CheckContext) ([]domain.Finding, error) {
	var findings []domain.Finding

	installed := make(map[string]domain.InstalledPackage, len(cc.Installed))
	for _, pkg := range cc.Installed {
		installed[pkg.Name] = pkg
	}

	if f, ok := c.reactPairMismatch(installed); ok {
		findings = append(findings, f)
	}

	if cc.ProbeErr == nil {
		for _, pkg := range cc.Installed {
			if !frameworkNames[pkg.Name] || pkg.EnginesNode == "" {
				continue
			}
			if satisfies(pkg.EnginesNode, cc.Live.RuntimeVersion) {
				continue
			}
			findings = append(findings, domain.Finding{
				ID:       c.ID(),
				Category: c.Category(),
				Severity: domain.SeverityWarning,
				Message: fmt.Sprintf("%s %s requires node %q but %s is installed",
					pkg.Name, pkg.Version, pkg.EnginesNode, cc.Live.RuntimeVersion),
			})
		}
	}

	if f, ok := c.missingTSConfig(cc, installed); ok {
		findings = append(findings, f)
	}
	return findings, nil
}

// reactPairMismatch flags react and react-dom on different majors; the pair
// must always move together.
func (c *frameworksCheck) reactPairMismatch(installed map[string]domain.InstalledPackage) (domain.Finding, bool) {
	react, hasReact := installed["react"]
	reactDOM, hasDOM := installed["react-dom"]
	if !hasReact || !hasDOM {
		return domain.Finding{}, false
	}

	rv, err := semver.NewVersion(react.Version)
	if err != nil {
		return domain.Finding{}, false
	}
	dv, err := semver.NewVersion(reactDOM.Version)
	if err != nil {
		return domain.Finding{}, false
	}
	if rv.Major() == dv.Major() {
		return domain.Finding{}, false
	}

	return domain.Finding{
		ID:       c.ID(),
		Category: c.Category(),
		Severity: domain.SeverityCritical,
		Message: fmt.Sprintf("react %s and react-dom %s must share a major version",
			react.Version, reactDOM.Version),
	}, true
}

// missingTSConfig flags a TypeScript project without its compiler
// configuration.
func (c *frameworksCheck) missingTSConfig(cc *CheckContext, installed map[string]domain.InstalledPackage) (domain.Finding, bool) {
	_, hasTS := installed["typescript"]
	if !hasTS {
		_, hasTS = cc.Manifest.DeclaredDependencies()["typescript"]
	}
	if !hasTS {
		return domain.Finding{}, false
	}
	if _, err := cc.FS.Stat(cc.FS.Join(cc.Root, "tsconfig.json")); err == nil {
		return domain.Finding{}, false
	}

	return domain.Finding{
		ID:       c.ID(),
		Category: c.Category(),
		Severity: domain.SeverityWarning,
		Message:  "typescript is a dependency but tsconfig.json is missing",
	}, true
}
