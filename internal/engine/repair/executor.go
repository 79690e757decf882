// Package repair executes a repair plan action by action under an exclusive
// project lock.
package repair

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.trai.ch/hale/internal/core/domain"
	"go.trai.ch/hale/internal/core/ports"
	"go.trai.ch/zerr"
)

// actionTimeout bounds a single repair action. Installs dominate, so the
// budget is generous.
const actionTimeout = 10 * time.Minute

// Input carries one repair run's plan and its per-project collaborators.
type Input struct {
	// Root is the project directory.
	Root string

	// Plan is the validated plan to execute.
	Plan *domain.RepairPlan

	// Policy selects the failure behavior.
	Policy domain.FailurePolicy

	// Store rewrites the lock document after successful actions.
	Store ports.LockStore

	// Locker guards the project against concurrent repair runs.
	Locker ports.Locker

	// Prober recaptures the environment for the lock rewrite.
	Prober ports.Prober

	// GeneratedBy tags the rewritten lock document.
	GeneratedBy string
}

// Executor runs repair plans strictly sequentially: actions mutate the
// project, so nothing here is concurrent.
type Executor struct {
	runner ports.CommandRunner
	tel    ports.Telemetry
	log    ports.Logger
}

// New creates an executor.
func New(runner ports.CommandRunner, tel ports.Telemetry, log ports.Logger) *Executor {
	return &Executor{runner: runner, tel: tel, log: log}
}

// Apply executes the plan in order under the project lock, which is held for
// the whole run. Every action ends up with a result: after a failure the
// policy decides whether all remaining actions are skipped or only those
// depending on the failure. When at least one reversible action succeeded the
// environment is recaptured and the lock document rewritten before the lock
// drops, so the document matches what the repairs produced. Irreversible
// actions only remove derived state, which the fingerprint does not record.
func (e *Executor) Apply(ctx context.Context, in Input) ([]domain.ActionResult, error) {
	if err := in.Locker.Acquire(); err != nil {
		return nil, err
	}
	defer func() {
		if err := in.Locker.Release(); err != nil {
			e.log.Warn(fmt.Sprintf("failed to release repair lock: %v", err))
		}
	}()

	e.log.Info(fmt.Sprintf("applying %d repair actions", in.Plan.Len()))

	results := make([]domain.ActionResult, 0, in.Plan.Len())
	failedOrSkipped := make(map[domain.ActionID]bool)
	stopping := false
	relockNeeded := false
	var firstFailed domain.ActionID

	for _, action := range in.Plan.Ordered() {
		if stopping || e.blocked(action, failedOrSkipped) {
			failedOrSkipped[action.ID] = true
			results = append(results, domain.ActionResult{
				ActionID: action.ID,
				Outcome:  domain.OutcomeSkipped,
			})
			continue
		}

		if err := e.run(ctx, in.Root, action); err != nil {
			failedOrSkipped[action.ID] = true
			if firstFailed == "" {
				firstFailed = action.ID
			}
			if in.Policy != domain.ContinueOnFailure {
				stopping = true
			}
			results = append(results, domain.ActionResult{
				ActionID: action.ID,
				Outcome:  domain.OutcomeFailed,
				Reason:   err.Error(),
			})
			continue
		}

		if action.Reversible {
			relockNeeded = true
		}
		results = append(results, domain.ActionResult{
			ActionID: action.ID,
			Outcome:  domain.OutcomeSucceeded,
		})
	}

	if relockNeeded {
		if err := e.relock(ctx, in); err != nil {
			return results, zerr.Wrap(err, "repairs applied but the lock document could not be rewritten")
		}
	}

	if firstFailed != "" {
		return results, zerr.With(domain.ErrActionFailed, "action_id", firstFailed.String())
	}
	return results, nil
}

// blocked reports whether any dependency of the action already failed or was
// skipped. Skips propagate, so everything downstream of a failure is skipped
// transitively.
func (e *Executor) blocked(action domain.Action, failedOrSkipped map[domain.ActionID]bool) bool {
	for _, dep := range action.DependsOn {
		if failedOrSkipped[dep] {
			return true
		}
	}
	return false
}

// run executes one action with its output streamed into a telemetry vertex.
func (e *Executor) run(ctx context.Context, root string, action domain.Action) error {
	runCtx, cancel := context.WithTimeout(ctx, actionTimeout)
	defer cancel()

	vctx, vertex := e.tel.Record(runCtx, action.Description)
	_, err := e.runner.Run(vctx, root, action.Operation)
	vertex.Complete(err)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "action failed"), "action_id", action.ID.String())
	}
	return nil
}

// relock recaptures the environment and rewrites the lock document so it
// reflects what the repairs changed.
func (e *Executor) relock(ctx context.Context, in Input) error {
	fp, err := in.Prober.CaptureFull(ctx, in.Root)
	if err != nil {
		return zerr.Wrap(err, "failed to recapture the environment")
	}

	doc, err := in.Store.Read()
	switch {
	case err == nil:
		doc = doc.Refresh(fp, in.GeneratedBy)
	case errors.Is(err, domain.ErrLockNotFound):
		doc = domain.NewLockDocument(fp, in.GeneratedBy)
	default:
		return zerr.Wrap(err, "failed to read the lock document")
	}
	return in.Store.Write(doc)
}
