// Package planner turns diagnostic findings into an ordered repair plan by
// mapping each fixable finding onto a fixed action template.
package planner

import (
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/hale/internal/core/domain"
)

// Action ids produced by the planner. One template per id; several findings
// can map onto the same action.
const (
	ActionPinRuntime        domain.ActionID = "pin-runtime"
	ActionPinPackageManager domain.ActionID = "pin-package-manager"
	ActionInstallDeps       domain.ActionID = "install-deps"
	ActionRegenLockfile     domain.ActionID = "regen-lockfile"
	ActionClearCache        domain.ActionID = "clear-cache"
)

// actionByFinding maps finding ids onto action templates. Findings outside
// the table have no automated repair.
var actionByFinding = map[string]domain.ActionID{
	"toolchain.runtime":                          ActionPinRuntime,
	"drift." + domain.FieldRuntimeVersion:        ActionPinRuntime,
	"toolchain.package_manager":                  ActionPinPackageManager,
	"drift." + domain.FieldPackageManagerName:    ActionPinPackageManager,
	"drift." + domain.FieldPackageManagerVer:     ActionPinPackageManager,
	"drift." + domain.FieldLockfileHash:          ActionInstallDeps,
	"dependencies.installed":                     ActionInstallDeps,
	"cache.node_modules":                         ActionInstallDeps,
	"drift." + domain.FieldLockfileType:          ActionRegenLockfile,
	"lockfile.presence":                          ActionRegenLockfile,
	"lockfile.consistency":                       ActionRegenLockfile,
	"lockfile.missing_entries":                   ActionRegenLockfile,
	"cache.next":                                 ActionClearCache,
}

// Env describes the environment repairs will run in. It selects the concrete
// commands each action template expands to.
type Env struct {
	// PackageManager is the tool that owns installs and caches.
	PackageManager domain.PackageManager

	// NodeVersionManager is the detected runtime version manager
	// ("volta", "fnm" or "nvm").
	NodeVersionManager string

	// RuntimeVersion is the version pin-runtime switches to, normally the
	// locked one.
	RuntimeVersion string
}

// Planner maps findings onto action templates.
type Planner struct{}

// New creates a planner.
func New() *Planner { return &Planner{} }

// Plan builds a repair plan for the fixable findings. Findings mapping onto
// the same action are deduplicated and the action carries their highest
// severity; dependencies on actions the plan does not contain are dropped.
// The same findings always produce the same plan.
func (p *Planner) Plan(env Env, findings []domain.Finding) (*domain.RepairPlan, error) {
	severities := make(map[domain.ActionID]domain.Severity)
	for _, f := range findings {
		if !f.Fixable {
			continue
		}
		id, ok := actionFor(f)
		if !ok {
			continue
		}
		if current, seen := severities[id]; !seen || f.Severity > current {
			severities[id] = f.Severity
		}
	}

	plan := domain.NewRepairPlan()
	ids := make([]domain.ActionID, 0, len(severities))
	for id := range severities {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		action := buildAction(id, env)
		action.DependsOn = presentOnly(action.DependsOn, severities)
		if err := plan.AddAction(action, severities[id]); err != nil {
			return nil, err
		}
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

func actionFor(f domain.Finding) (domain.ActionID, bool) {
	if id, ok := actionByFinding[f.ID]; ok {
		return id, true
	}
	// Framework drift is repaired like any other dependency divergence.
	if strings.HasPrefix(f.ID, "drift."+domain.FieldFrameworksPrefix) {
		return ActionInstallDeps, true
	}
	return "", false
}

func presentOnly(deps []domain.ActionID, present map[domain.ActionID]domain.Severity) []domain.ActionID {
	var out []domain.ActionID
	for _, dep := range deps {
		if _, ok := present[dep]; ok {
			out = append(out, dep)
		}
	}
	return out
}

// buildAction expands one template against the environment.
func buildAction(id domain.ActionID, env Env) domain.Action {
	pm := env.PackageManager.Name
	if pm == "" {
		pm = "npm"
	}

	switch id {
	case ActionPinRuntime:
		return domain.Action{
			ID:          id,
			Description: "switch the Node.js runtime to " + env.RuntimeVersion,
			Operation:   pinRuntimeArgv(env),
			Reversible:  true,
		}
	case ActionPinPackageManager:
		spec := pm + "@" + env.PackageManager.Version
		return domain.Action{
			ID:          id,
			Description: "activate " + spec + " via corepack",
			Operation:   []string{"corepack", "prepare", spec, "--activate"},
			Reversible:  true,
		}
	case ActionInstallDeps:
		return domain.Action{
			ID:          id,
			Description: "reinstall dependencies from the lockfile",
			Operation:   frozenInstallArgv(pm),
			Reversible:  true,
			DependsOn:   []domain.ActionID{ActionPinRuntime, ActionPinPackageManager},
		}
	case ActionRegenLockfile:
		return domain.Action{
			ID:          id,
			Description: "regenerate the lockfile from the manifest",
			Operation:   []string{pm, "install"},
			DependsOn:   []domain.ActionID{ActionInstallDeps},
		}
	case ActionClearCache:
		return domain.Action{
			ID:          id,
			Description: "remove the stale .next build cache",
			Operation:   []string{"rm", "-rf", ".next"},
		}
	default:
		panic(fmt.Sprintf("no template for action %q", id))
	}
}

func pinRuntimeArgv(env Env) []string {
	version := env.RuntimeVersion
	switch env.NodeVersionManager {
	case "volta":
		return []string{"volta", "pin", "node@" + version}
	case "fnm":
		return []string{"fnm", "use", version}
	default:
		return []string{"nvm", "use", version}
	}
}

func frozenInstallArgv(pm string) []string {
	switch pm {
	case "npm":
		return []string{"npm", "ci"}
	case "pnpm", "yarn", "bun":
		return []string{pm, "install", "--frozen-lockfile"}
	default:
		return []string{pm, "install"}
	}
}
