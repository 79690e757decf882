package domain

// CheckCategory groups diagnostic findings by the concern they inspect.
type CheckCategory string

const (
	// CategoryToolchain covers runtime and package manager presence and sanity.
	CategoryToolchain CheckCategory = "toolchain"
	// CategoryLockfile covers lockfile consistency with the manifest and node_modules.
	CategoryLockfile CheckCategory = "lockfile"
	// CategoryDependencies covers installed dependency health.
	CategoryDependencies CheckCategory = "dependencies"
	// CategoryFrameworks covers framework version compatibility pairs.
	CategoryFrameworks CheckCategory = "frameworks"
	// CategoryDrift covers differences between the lock document and live state.
	CategoryDrift CheckCategory = "drift"
	// CategoryCache covers build and install cache integrity.
	CategoryCache CheckCategory = "cache"
	// CategoryCheckError marks a check that failed to execute; the failure is
	// reported as a finding rather than aborting the run.
	CategoryCheckError CheckCategory = "check_error"
)

// ParseCheckCategory maps a user-supplied category name to a CheckCategory.
func ParseCheckCategory(s string) (CheckCategory, bool) {
	switch CheckCategory(s) {
	case CategoryToolchain, CategoryLockfile, CategoryDependencies,
		CategoryFrameworks, CategoryDrift, CategoryCache:
		return CheckCategory(s), true
	default:
		return "", false
	}
}

// Finding is one diagnostic result. Findings are aggregated and never mutated.
type Finding struct {
	// ID identifies the finding stably across runs (e.g., "drift.runtime_version").
	ID string

	// Category is the concern the producing check inspects.
	Category CheckCategory

	// Severity grades the finding.
	Severity Severity

	// Message is a human-readable description.
	Message string

	// Fixable reports whether the repair planner has an action template for it.
	Fixable bool

	// Discrepancy links back to the drift detector output when the finding
	// wraps a comparison result.
	Discrepancy *Discrepancy
}
