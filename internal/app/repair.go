package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.trai.ch/hale/internal/core/domain"
	"go.trai.ch/hale/internal/engine/doctor"
	"go.trai.ch/hale/internal/engine/planner"
	"go.trai.ch/hale/internal/engine/repair"
	"go.trai.ch/zerr"
)

// PlanRepairs diagnoses the project and builds the repair plan for what was
// found. The findings the plan was derived from come back alongside it so
// callers can show the diagnosis next to the cure.
func (a *App) PlanRepairs(ctx context.Context, root string) (*domain.RepairPlan, []domain.Finding, error) {
	cc, err := a.checkContext(ctx, root)
	if err != nil {
		return nil, nil, err
	}
	findings := a.doctor.Run(ctx, *cc)

	plan, err := a.planner.Plan(repairEnv(cc), findings)
	if err != nil {
		return nil, nil, err
	}
	return plan, findings, nil
}

// Repair diagnoses, plans and applies the plan under the project lock. A
// policy argument overrides the configured failure policy; pass the zero
// value to keep it. The returned results cover every planned action even
// when the run stops early.
func (a *App) Repair(ctx context.Context, root string, policy domain.FailurePolicy) ([]domain.ActionResult, *domain.RepairPlan, error) {
	cc, err := a.checkContext(ctx, root)
	if err != nil {
		return nil, nil, err
	}
	findings := a.doctor.Run(ctx, *cc)

	plan, err := a.planner.Plan(repairEnv(cc), findings)
	if err != nil {
		return nil, nil, err
	}
	if plan.Len() == 0 {
		a.log.Info("nothing to repair")
		return nil, plan, nil
	}

	if policy == "" {
		policy = cc.Config.Repair.Policy
	}

	store := a.stores(root)
	results, err := a.repairer.Apply(ctx, repair.Input{
		Root:        root,
		Plan:        plan,
		Policy:      policy,
		Store:       store,
		Locker:      a.lockers(store.Path()),
		Prober:      a.prober,
		GeneratedBy: generatedBy(),
	})
	return results, plan, err
}

// Clean prunes the package manager's cache through its own cache command.
// The manager is taken from the live environment; when probing fails the
// npm default is tried anyway so a broken setup can still be cleaned.
func (a *App) Clean(ctx context.Context, root string) error {
	vctx, vertex := a.tel.Record(ctx, "detect package manager")
	fp, err := a.prober.Capture(vctx, root)
	vertex.Complete(err)

	pm := "npm"
	if err == nil && fp.PackageManager.Name != "" {
		pm = fp.PackageManager.Name
	}

	vctx, vertex = a.tel.Record(ctx, fmt.Sprintf("prune the %s cache", pm))
	_, err = a.runner.Run(vctx, root, cacheCleanArgv(pm))
	vertex.Complete(err)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "cache prune failed"), "package_manager", pm)
	}
	a.log.Info(fmt.Sprintf("pruned the %s cache", pm))
	return nil
}

// repairEnv derives the repair target from the stored fingerprint, falling
// back to the live capture for anything that was never locked. The stored
// side wins: repairs move the environment toward the lock, not the reverse.
func repairEnv(cc *doctor.CheckContext) planner.Env {
	env := planner.Env{
		PackageManager:     cc.Live.PackageManager,
		RuntimeVersion:     cc.Live.RuntimeVersion,
		NodeVersionManager: detectVersionManager(),
	}
	if cc.Stored != nil {
		if v := cc.Stored.Fingerprint.RuntimeVersion; v != "" {
			env.RuntimeVersion = v
		}
		if pm := cc.Stored.Fingerprint.PackageManager; pm.Name != "" {
			env.PackageManager = pm
		}
	}
	if env.PackageManager.Name == "" {
		if name, version, ok := strings.Cut(cc.Manifest.PackageManager, "@"); ok {
			env.PackageManager = domain.PackageManager{Name: name, Version: version}
		}
	}
	return env
}

// detectVersionManager sniffs the installed Node version manager from the
// environment variables each tool exports into its shells.
func detectVersionManager() string {
	switch {
	case os.Getenv("VOLTA_HOME") != "":
		return "volta"
	case os.Getenv("FNM_DIR") != "" || os.Getenv("FNM_MULTISHELL_PATH") != "":
		return "fnm"
	case os.Getenv("NVM_DIR") != "":
		return "nvm"
	default:
		return ""
	}
}

func cacheCleanArgv(pm string) []string {
	switch pm {
	case "pnpm":
		return []string{"pnpm", "store", "prune"}
	case "yarn":
		return []string{"yarn", "cache", "clean"}
	case "bun":
		return []string{"bun", "pm", "cache", "rm"}
	default:
		return []string{"npm", "cache", "clean", "--force"}
	}
}
