package domain

// ActionID identifies a repair action within a plan.
type ActionID string

// String returns the id as a plain string.
func (id ActionID) String() string { return string(id) }

// Action is an atomic unit of repair. Immutable once constructed.
type Action struct {
	// ID identifies the action within its plan.
	ID ActionID

	// Description says what the action does, for plan display.
	Description string

	// Operation is the argv executed to perform the action.
	Operation []string

	// Reversible reports whether the action can be undone by re-running the
	// repair flow (e.g., reinstalling from the lockfile). Successful
	// reversible actions trigger a lock rewrite after execution.
	Reversible bool

	// DependsOn lists actions that must succeed before this one runs.
	DependsOn []ActionID
}

// ActionOutcome is the terminal state of one executed action.
type ActionOutcome int

const (
	// OutcomeSucceeded means the action completed without error.
	OutcomeSucceeded ActionOutcome = iota
	// OutcomeFailed means the action ran and failed.
	OutcomeFailed
	// OutcomeSkipped means the action was not attempted, either because a
	// prior failure stopped the run or because a dependency failed.
	OutcomeSkipped
)

// String returns the outcome label.
func (o ActionOutcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ActionResult records the outcome of one action. The plan plus its results
// form the audit record of a repair run.
type ActionResult struct {
	ActionID ActionID
	Outcome  ActionOutcome

	// Reason holds the failure description when Outcome is OutcomeFailed.
	Reason string
}
