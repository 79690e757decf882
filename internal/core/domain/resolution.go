package domain

// ConstraintRef names one constraint on a package and who imposes it.
type ConstraintRef struct {
	// RequiredBy is the dependent package imposing the constraint.
	RequiredBy string

	// Range is the version-range constraint (e.g., ">=1.0.0 <2.0.0").
	Range string
}

// Conflict reports a package whose incoming constraint ranges have an empty
// intersection. The resolver never guesses a best-effort version for one.
type Conflict struct {
	Package     string
	Constraints []ConstraintRef
}

// Resolution is the outcome of a conflict-resolution pass over a dependency
// graph. Transient: recomputed per invocation, never cached.
type Resolution struct {
	// Chosen maps each multiply-constrained package to the version selected
	// for it under the configured preference.
	Chosen map[string]string

	// Conflicts lists every package with an unsatisfiable constraint set.
	Conflicts []Conflict

	// Iterations is the number of fixed-point passes performed.
	Iterations int

	// Converged is false when the iteration bound was reached before the
	// choices stabilized.
	Converged bool
}

// Unsatisfiable reports whether the graph admits no consistent assignment,
// either through an empty constraint intersection or a failure to converge.
func (r Resolution) Unsatisfiable() bool {
	return len(r.Conflicts) > 0 || !r.Converged
}
