package domain

import "time"

// ResolverPreference selects which satisfying version the conflict resolver
// picks when a constraint intersection admits more than one.
type ResolverPreference string

const (
	// PreferNewest picks the highest version satisfying every constraint.
	PreferNewest ResolverPreference = "newest"
	// PreferMinimal picks the lowest satisfying version, for projects that
	// want the smallest possible upgrade surface.
	PreferMinimal ResolverPreference = "minimal"
)

// ParseResolverPreference maps a configuration value to a ResolverPreference.
// The empty string selects the default.
func ParseResolverPreference(s string) (ResolverPreference, bool) {
	switch ResolverPreference(s) {
	case PreferNewest, PreferMinimal:
		return ResolverPreference(s), true
	case "":
		return PreferNewest, true
	default:
		return "", false
	}
}

// FailurePolicy controls how the repair executor proceeds after an action fails.
type FailurePolicy string

const (
	// StopOnFailure aborts the run at the first failure; every remaining
	// action is recorded as skipped.
	StopOnFailure FailurePolicy = "stop"
	// ContinueOnFailure keeps executing actions whose dependencies all
	// succeeded; dependents of the failure are skipped.
	ContinueOnFailure FailurePolicy = "continue"
)

// ParseFailurePolicy maps a configuration value to a FailurePolicy.
// The empty string selects the default.
func ParseFailurePolicy(s string) (FailurePolicy, bool) {
	switch FailurePolicy(s) {
	case StopOnFailure, ContinueOnFailure:
		return FailurePolicy(s), true
	case "":
		return StopOnFailure, true
	default:
		return "", false
	}
}

// CheckOverride adjusts one diagnostic check from project configuration.
type CheckOverride struct {
	// Disabled removes the check from doctor runs entirely.
	Disabled bool

	// Severity overrides the severity of the check's findings when set.
	Severity *Severity
}

// ResolverConfig holds conflict-resolver settings.
type ResolverConfig struct {
	Preference ResolverPreference

	// MaxIterations bounds the fixed-point iteration.
	MaxIterations int
}

// RepairConfig holds repair-executor settings.
type RepairConfig struct {
	Policy FailurePolicy
}

// RegistryConfig holds npm registry client settings.
type RegistryConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DoctorConfig holds diagnostic-engine settings.
type DoctorConfig struct {
	// CheckTimeout bounds each individual check. A check that exceeds it is
	// reported as failed, not waited for.
	CheckTimeout time.Duration

	// Parallelism caps how many checks run at once.
	Parallelism int
}

// PolicyConfig carries project policies that extra diagnostic checks enforce.
type PolicyConfig struct {
	// EnforceCorepack requires corepack to manage the package manager.
	EnforceCorepack bool

	// AllowedPackageManagers restricts which tools the project may use.
	// Empty allows all.
	AllowedPackageManagers []string

	// MinNodeVersion and MaxNodeVersion bound the runtime version when set.
	MinNodeVersion string
	MaxNodeVersion string
}

// Config carries the project-level settings loaded from the configuration
// file. Every field has a usable default; a missing file yields DefaultConfig.
type Config struct {
	Resolver ResolverConfig
	Repair   RepairConfig
	Registry RegistryConfig
	Doctor   DoctorConfig
	Policies PolicyConfig

	// Checks maps check ids to per-check overrides.
	Checks map[string]CheckOverride
}

// DefaultConfig returns the settings used when no configuration file exists.
func DefaultConfig() Config {
	return Config{
		Resolver: ResolverConfig{
			Preference:    PreferNewest,
			MaxIterations: 10,
		},
		Repair: RepairConfig{
			Policy: StopOnFailure,
		},
		Registry: RegistryConfig{
			BaseURL: "https://registry.npmjs.org",
			Timeout: 15 * time.Second,
		},
		Doctor: DoctorConfig{
			CheckTimeout: 10 * time.Second,
			Parallelism:  4,
		},
		Checks: map[string]CheckOverride{},
	}
}
