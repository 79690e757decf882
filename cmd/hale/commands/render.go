package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"go.trai.ch/hale/internal/app"
	"go.trai.ch/hale/internal/core/domain"
)

func describeFingerprint(fp domain.EnvironmentFingerprint) string {
	runtime := fp.RuntimeVersion
	if runtime == "" {
		runtime = "unknown"
	}
	if fp.PackageManager.Name == "" {
		return "node " + runtime
	}
	return fmt.Sprintf("node %s, %s %s", runtime, fp.PackageManager.Name, fp.PackageManager.Version)
}

func renderFindings(w io.Writer, findings []domain.Finding) {
	if len(findings) == 0 {
		fmt.Fprintln(w, "No problems found")
		return
	}

	var critical, warnings, fixable int
	for _, f := range findings {
		switch f.Severity {
		case domain.SeverityCritical:
			critical++
		case domain.SeverityWarning:
			warnings++
		}
		suffix := ""
		if f.Fixable {
			fixable++
			suffix = " (fixable)"
		}
		fmt.Fprintf(w, "[%s] %s: %s%s\n", f.Severity, f.ID, f.Message, suffix)
	}

	fmt.Fprintf(w, "\n%d problems: %d critical, %d warnings\n", len(findings), critical, warnings)
	if fixable > 0 {
		fmt.Fprintln(w, "Run 'hale repair' to plan fixes for the fixable ones")
	}
}

type findingJSON struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Fixable  bool   `json:"fixable"`
}

func writeFindingsJSON(w io.Writer, findings []domain.Finding) error {
	out := make([]findingJSON, 0, len(findings))
	for _, f := range findings {
		out = append(out, findingJSON{
			ID:       f.ID,
			Category: string(f.Category),
			Severity: f.Severity.String(),
			Message:  f.Message,
			Fixable:  f.Fixable,
		})
	}
	return writeJSON(w, out)
}

type discrepancyJSON struct {
	FieldPath string `json:"field_path"`
	Expected  string `json:"expected"`
	Actual    string `json:"actual"`
	Severity  string `json:"severity"`
}

func discrepanciesJSON(ds []domain.Discrepancy) []discrepancyJSON {
	out := make([]discrepancyJSON, 0, len(ds))
	for _, d := range ds {
		out = append(out, discrepancyJSON{
			FieldPath: d.FieldPath,
			Expected:  d.Expected,
			Actual:    d.Actual,
			Severity:  d.Severity.String(),
		})
	}
	return out
}

type fingerprintJSON struct {
	RuntimeVersion        string            `json:"runtime_version"`
	PackageManager        string            `json:"package_manager"`
	PackageManagerVersion string            `json:"package_manager_version"`
	Frameworks            map[string]string `json:"frameworks,omitempty"`
}

func fingerprintToJSON(fp domain.EnvironmentFingerprint) *fingerprintJSON {
	return &fingerprintJSON{
		RuntimeVersion:        fp.RuntimeVersion,
		PackageManager:        fp.PackageManager.Name,
		PackageManagerVersion: fp.PackageManager.Version,
		Frameworks:            fp.Frameworks,
	}
}

type statusJSON struct {
	LockPath    string            `json:"lock_path"`
	Locked      bool              `json:"locked"`
	UpdatedAt   string            `json:"updated_at,omitempty"`
	GeneratedBy string            `json:"generated_by,omitempty"`
	Stored      *fingerprintJSON  `json:"stored,omitempty"`
	Live        *fingerprintJSON  `json:"live,omitempty"`
	ProbeError  string            `json:"probe_error,omitempty"`
	Drift       []discrepancyJSON `json:"drift,omitempty"`
}

func writeStatusJSON(w io.Writer, st app.Status) error {
	out := statusJSON{
		LockPath: st.LockPath,
		Locked:   st.Document != nil,
		Drift:    discrepanciesJSON(st.Discrepancies),
	}
	if st.Document != nil {
		out.UpdatedAt = st.Document.UpdatedAt.Format(time.RFC3339)
		out.GeneratedBy = st.Document.GeneratedBy
		out.Stored = fingerprintToJSON(st.Document.Fingerprint)
	}
	if st.Live != nil {
		out.Live = fingerprintToJSON(*st.Live)
	}
	if st.ProbeErr != nil {
		out.ProbeError = st.ProbeErr.Error()
	}
	return writeJSON(w, out)
}

type constraintJSON struct {
	RequiredBy string `json:"required_by"`
	Range      string `json:"range"`
}

type conflictJSON struct {
	Package     string           `json:"package"`
	Constraints []constraintJSON `json:"constraints"`
}

type resolutionJSON struct {
	Chosen     map[string]string `json:"chosen"`
	Conflicts  []conflictJSON    `json:"conflicts"`
	Iterations int               `json:"iterations"`
	Converged  bool              `json:"converged"`
}

func writeResolutionJSON(w io.Writer, res domain.Resolution) error {
	out := resolutionJSON{
		Chosen:     res.Chosen,
		Conflicts:  make([]conflictJSON, 0, len(res.Conflicts)),
		Iterations: res.Iterations,
		Converged:  res.Converged,
	}
	if out.Chosen == nil {
		out.Chosen = map[string]string{}
	}
	for _, c := range res.Conflicts {
		cj := conflictJSON{Package: c.Package, Constraints: make([]constraintJSON, 0, len(c.Constraints))}
		for _, ref := range c.Constraints {
			cj.Constraints = append(cj.Constraints, constraintJSON{RequiredBy: ref.RequiredBy, Range: ref.Range})
		}
		out.Conflicts = append(out.Conflicts, cj)
	}
	return writeJSON(w, out)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderPlan(w io.Writer, plan *domain.RepairPlan) {
	actions := plan.Ordered()
	if len(actions) == 0 {
		fmt.Fprintln(w, "Nothing to repair")
		return
	}

	fmt.Fprintf(w, "Repair plan (%d actions):\n", len(actions))
	for i, action := range actions {
		fmt.Fprintf(w, "%3d. %-20s %s\n", i+1, action.ID, action.Description)
		fmt.Fprintf(w, "     $ %s\n", strings.Join(action.Operation, " "))
	}
	fmt.Fprintln(w, "\nRun 'hale repair --apply' to execute it")
}

func renderResults(w io.Writer, results []domain.ActionResult) {
	for _, r := range results {
		if r.Outcome == domain.OutcomeFailed {
			fmt.Fprintf(w, "%-9s %s: %s\n", r.Outcome, r.ActionID, r.Reason)
			continue
		}
		fmt.Fprintf(w, "%-9s %s\n", r.Outcome, r.ActionID)
	}
}

func renderResolution(w io.Writer, res domain.Resolution) {
	if len(res.Chosen) > 0 {
		fmt.Fprintf(w, "Resolved %d shared packages:\n", len(res.Chosen))
		for _, name := range slices.Sorted(maps.Keys(res.Chosen)) {
			fmt.Fprintf(w, "  %s %s\n", name, res.Chosen[name])
		}
	} else if len(res.Conflicts) == 0 {
		fmt.Fprintln(w, "No packages are constrained by more than one dependent")
	}

	for _, conflict := range res.Conflicts {
		fmt.Fprintf(w, "Unresolvable: %s\n", conflict.Package)
		for _, ref := range conflict.Constraints {
			fmt.Fprintf(w, "  %s requires %s\n", ref.RequiredBy, ref.Range)
		}
	}

	if !res.Converged {
		fmt.Fprintf(w, "Resolution did not converge within %d iterations\n", res.Iterations)
	}
}

func renderStatus(w io.Writer, st app.Status) {
	if st.Document != nil {
		fmt.Fprintf(w, "Lock:    %s (updated %s by %s)\n", st.LockPath,
			st.Document.UpdatedAt.Format(time.RFC3339), st.Document.GeneratedBy)
		fmt.Fprintf(w, "Locked:  %s\n", describeFingerprint(st.Document.Fingerprint))
	} else {
		fmt.Fprintln(w, "Lock:    none (run 'hale init' to record this environment)")
	}

	switch {
	case st.ProbeErr != nil:
		fmt.Fprintf(w, "Live:    unavailable: %v\n", st.ProbeErr)
	case st.Live != nil:
		fmt.Fprintf(w, "Live:    %s\n", describeFingerprint(*st.Live))
	}

	if st.Document == nil || st.Live == nil {
		return
	}
	if len(st.Discrepancies) == 0 {
		fmt.Fprintln(w, "Drift:   none")
		return
	}

	critical := 0
	for _, d := range st.Discrepancies {
		if d.Severity == domain.SeverityCritical {
			critical++
		}
	}
	fmt.Fprintf(w, "Drift:   %d discrepancies (%d critical); run 'hale verify' for detail\n",
		len(st.Discrepancies), critical)
}
