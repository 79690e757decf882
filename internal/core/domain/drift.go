package domain

import (
	"slices"

	"github.com/Masterminds/semver/v3"
)

// Field paths reported by CompareFingerprints.
const (
	FieldRuntimeVersion     = "runtime_version"
	FieldPackageManagerName = "package_manager.name"
	FieldPackageManagerVer  = "package_manager.version"
	FieldLockfileType       = "lockfile.type"
	FieldLockfileHash       = "lockfile.content_hash"
	FieldFrameworksPrefix   = "frameworks."
)

// CompareFingerprints compares a stored fingerprint against live state and
// returns every field that differs. An empty result is the verify success
// condition. The result order is deterministic: fixed fields first, then
// framework names sorted.
func CompareFingerprints(stored, live EnvironmentFingerprint) []Discrepancy {
	var out []Discrepancy

	if d, ok := compareVersionField(FieldRuntimeVersion, stored.RuntimeVersion, live.RuntimeVersion); ok {
		out = append(out, d)
	}

	if stored.PackageManager.Name != live.PackageManager.Name {
		out = append(out, Discrepancy{
			FieldPath: FieldPackageManagerName,
			Expected:  stored.PackageManager.Name,
			Actual:    live.PackageManager.Name,
			Severity:  SeverityCritical,
		})
	}
	if d, ok := compareVersionField(FieldPackageManagerVer, stored.PackageManager.Version, live.PackageManager.Version); ok {
		out = append(out, d)
	}

	out = append(out, compareLockfile(stored.Lockfile, live.Lockfile)...)
	out = append(out, compareFrameworks(stored.Frameworks, live.Frameworks)...)

	return out
}

func compareLockfile(stored, live LockfileRef) []Discrepancy {
	var out []Discrepancy
	if stored.Type != live.Type {
		// A different lockfile implies a different tool entirely.
		out = append(out, Discrepancy{
			FieldPath: FieldLockfileType,
			Expected:  stored.Type,
			Actual:    live.Type,
			Severity:  SeverityCritical,
		})
	}
	if stored.ContentHash != live.ContentHash {
		// The dependency tree changed without a lock update.
		out = append(out, Discrepancy{
			FieldPath: FieldLockfileHash,
			Expected:  stored.ContentHash,
			Actual:    live.ContentHash,
			Severity:  SeverityCritical,
		})
	}
	return out
}

func compareFrameworks(stored, live map[string]string) []Discrepancy {
	names := make([]string, 0, len(stored)+len(live))
	for name := range stored {
		names = append(names, name)
	}
	for name := range live {
		if _, seen := stored[name]; !seen {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	var out []Discrepancy
	for _, name := range names {
		expected, inStored := stored[name]
		actual, inLive := live[name]
		field := FieldFrameworksPrefix + name

		switch {
		case inStored && inLive:
			if d, changed := compareVersionField(field, expected, actual); changed {
				out = append(out, d)
			}
		default:
			// Added or removed frameworks are informational, not a failure.
			out = append(out, Discrepancy{
				FieldPath: field,
				Expected:  expected,
				Actual:    actual,
				Severity:  SeverityInfo,
			})
		}
	}
	return out
}

// compareVersionField grades a version mismatch: exact inequality is a
// Warning, a major-version jump is Critical. Values that do not parse as
// semantic versions fall back to the Warning grade.
func compareVersionField(field, expected, actual string) (Discrepancy, bool) {
	if expected == actual {
		return Discrepancy{}, false
	}

	severity := SeverityWarning
	ev, eerr := semver.NewVersion(expected)
	av, aerr := semver.NewVersion(actual)
	if eerr == nil && aerr == nil && ev.Major() != av.Major() {
		severity = SeverityCritical
	}

	return Discrepancy{
		FieldPath: field,
		Expected:  expected,
		Actual:    actual,
		Severity:  severity,
	}, true
}
