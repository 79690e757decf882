// Package doctor diagnoses a project by running a suite of environment,
// lockfile, dependency and cache checks and aggregating their findings.
package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/go-git/go-billy/v5"
	"golang.org/x/sync/errgroup"

	"go.trai.ch/hale/internal/core/domain"
	"go.trai.ch/hale/internal/core/ports"
)

// Engine evaluates a fixed check suite. Findings come back in registration
// order regardless of which check finishes first, so doctor output is stable
// across runs.
type Engine struct {
	log    ports.Logger
	runner ports.CommandRunner
	fs     billy.Filesystem
	checks []Check
}

// New creates the diagnostic engine with its full check suite.
func New(log ports.Logger, runner ports.CommandRunner, fs billy.Filesystem) *Engine {
	return &Engine{
		log:    log,
		runner: runner,
		fs:     fs,
		checks: []Check{
			&runtimeCheck{},
			&packageManagerCheck{},
			&corepackCheck{},
			&lockfilePresenceCheck{},
			&lockfileConsistencyCheck{},
			&installedDepsCheck{},
			&deprecatedDepsCheck{},
			&driftCheck{},
			&frameworksCheck{},
			&nodeModulesCacheCheck{},
			&nextCacheCheck{},
		},
	}
}

// Run evaluates every applicable check against cc. Checks run concurrently
// under the configured parallelism; each one is bounded by the configured
// timeout. A check that errors, panics or times out contributes a single
// check_error finding instead of aborting the run.
func (e *Engine) Run(ctx context.Context, cc CheckContext) []domain.Finding {
	if cc.Runner == nil {
		cc.Runner = e.runner
	}
	if cc.FS == nil {
		cc.FS = e.fs
	}

	defaults := domain.DefaultConfig().Doctor
	cfg := cc.Config.Doctor
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = defaults.Parallelism
	}
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = defaults.CheckTimeout
	}

	checks := e.applicable(cc)
	results := make([][]domain.Finding, len(checks))

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(cfg.Parallelism)
	for i, chk := range checks {
		grp.Go(func() error {
			results[i] = e.evaluate(grpCtx, chk, &cc, cfg.CheckTimeout)
			return nil
		})
	}
	_ = grp.Wait()

	var findings []domain.Finding
	for i, chk := range checks {
		findings = append(findings, e.applyOverride(chk, results[i], cc.Config.Checks)...)
	}
	return findings
}

// applicable filters the suite down to the requested category and drops
// checks disabled by project configuration.
func (e *Engine) applicable(cc CheckContext) []Check {
	var out []Check
	for _, chk := range e.checks {
		if cc.Category != "" && chk.Category() != cc.Category {
			continue
		}
		if ov, ok := cc.Config.Checks[chk.ID()]; ok && ov.Disabled {
			continue
		}
		out = append(out, chk)
	}
	return out
}

// evaluate runs one check under its timeout. The inner goroutine lets a stuck
// check be abandoned at the deadline; its late result lands in the buffered
// channel and is dropped.
func (e *Engine) evaluate(ctx context.Context, chk Check, cc *CheckContext, timeout time.Duration) []domain.Finding {
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		findings []domain.Finding
		err      error
	}
	resCh := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resCh <- outcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		findings, err := chk.Evaluate(checkCtx, cc)
		resCh <- outcome{findings: findings, err: err}
	}()

	select {
	case res := <-resCh:
		if res.err != nil {
			return e.checkError(chk, res.err)
		}
		return res.findings
	case <-checkCtx.Done():
		return e.checkError(chk, checkCtx.Err())
	}
}

func (e *Engine) checkError(chk Check, err error) []domain.Finding {
	msg := fmt.Sprintf("check %s failed: %v", chk.ID(), err)
	e.log.Warn(msg)
	return []domain.Finding{{
		ID:       "check_error." + chk.ID(),
		Category: domain.CategoryCheckError,
		Severity: domain.SeverityWarning,
		Message:  msg,
	}}
}

// applyOverride rewrites finding severities when project configuration pins
// the producing check to a fixed grade.
func (e *Engine) applyOverride(chk Check, findings []domain.Finding, overrides map[string]domain.CheckOverride) []domain.Finding {
	ov, ok := overrides[chk.ID()]
	if !ok || ov.Severity == nil {
		return findings
	}
	out := make([]domain.Finding, len(findings))
	for i, f := range findings {
		f.Severity = *ov.Severity
		out[i] = f
	}
	return out
}
