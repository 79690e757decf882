package domain

import "go.trai.ch/zerr"

var (
	// ErrProbeNotFound is returned when the runtime or package manager cannot be identified.
	ErrProbeNotFound = zerr.New("tool not found")

	// ErrProbeUnreadable is returned when a project file required by the probe cannot be read.
	ErrProbeUnreadable = zerr.New("project file unreadable")

	// ErrProbeTimeout is returned when a probe process query exceeds its time budget.
	ErrProbeTimeout = zerr.New("probe timed out")

	// ErrLockNotFound is returned when no lock document exists in the project root.
	ErrLockNotFound = zerr.New("lock document not found")

	// ErrLockExists is returned by init when a lock document is already present
	// and the caller did not ask to overwrite it.
	ErrLockExists = zerr.New("lock document already exists")

	// ErrLockMalformed is returned when the lock document is structurally invalid.
	ErrLockMalformed = zerr.New("lock document malformed")

	// ErrUnsupportedSchema is returned when the lock document schema version is not
	// supported by this engine. It is never silently coerced.
	ErrUnsupportedSchema = zerr.New("unsupported lock schema")

	// ErrActionAlreadyExists is returned when adding an action whose id is already in the plan.
	ErrActionAlreadyExists = zerr.New("action already exists")

	// ErrUnknownActionDependency is returned when an action depends on an id not present in the plan.
	ErrUnknownActionDependency = zerr.New("unknown action dependency")

	// ErrPlanCycle is returned when action dependencies form a cycle. This indicates an
	// internal consistency bug in the action templates, not a user error.
	ErrPlanCycle = zerr.New("repair plan cycle detected")

	// ErrActionFailed wraps a single action's execution failure.
	ErrActionFailed = zerr.New("repair action failed")

	// ErrUnsatisfiable is returned when peer-dependency constraints admit no solution.
	ErrUnsatisfiable = zerr.New("unsatisfiable dependency constraints")

	// ErrRegistryUnavailable is returned when the package registry cannot be
	// reached or answers with a server error.
	ErrRegistryUnavailable = zerr.New("registry unavailable")

	// ErrRegistryPackageNotFound is returned when the registry has no such
	// package or version.
	ErrRegistryPackageNotFound = zerr.New("package not found in registry")

	// ErrLockHeld is returned when another process holds the advisory lock on the
	// lock document. Callers fail fast rather than block.
	ErrLockHeld = zerr.New("lock held by another process")

	// ErrDriftDetected is returned by strict verify when the live environment
	// diverges from the stored fingerprint in any field.
	ErrDriftDetected = zerr.New("environment drift detected")
)
