package doctor

import (
	"context"
	"fmt"

	"go.trai.ch/hale/internal/core/domain"
)

// driftCheck wraps the fingerprint comparison: every discrepancy between the
// lock document and the live environment becomes one finding.
type driftCheck struct{}

func (c *driftCheck) ID() string                     { return "drift.fingerprint" }
func (c *driftCheck) Category() domain.CheckCategory { return domain.CategoryDrift }

func (c *driftCheck) Evaluate(_ context.Context, cc *CheckContext) ([]domain.Finding, error) {
	if cc.Stored == nil {
		return []domain.Finding{{
			ID:       "drift.lock_missing",
			Category: c.Category(),
			Severity: domain.SeverityInfo,
			Message:  "no lock document found; run 'hale init' to record this environment",
		}}, nil
	}
	if cc.ProbeErr != nil {
		return nil, nil
	}

	discrepancies := domain.CompareFingerprints(cc.Stored.Fingerprint, cc.Live)
	findings := make([]domain.Finding, 0, len(discrepancies))
	for _, d := range discrepancies {
		findings = append(findings, domain.Finding{
			ID:          "drift." + d.FieldPath,
			Category:    c.Category(),
			Severity:    d.Severity,
			Message:     fmt.Sprintf("%s drifted: locked %q, live %q", d.FieldPath, d.Expected, d.Actual),
			Fixable:     d.Severity > domain.SeverityInfo,
			Discrepancy: &d,
		})
	}
	return findings, nil
}
