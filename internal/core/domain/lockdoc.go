package domain

import (
	"strconv"
	"strings"
	"time"

	"go.trai.ch/zerr"
)

const (
	// LockFileName is the on-disk name of the lock document, one per project root.
	LockFileName = "env.lock"

	// SchemaVersion is the schema tag written into new lock documents.
	SchemaVersion = "1.0"

	schemaMajorCurrent = 1
)

// LockDocument is the persisted, versioned wrapper around a fingerprint.
type LockDocument struct {
	// Schema is the document format version, "MAJOR.MINOR".
	Schema string

	// GeneratedAt is when the document was first created.
	GeneratedAt time.Time

	// UpdatedAt is when the fingerprint was last rewritten.
	UpdatedAt time.Time

	// GeneratedBy records the producing tool and version (e.g., "hale@0.3.0").
	GeneratedBy string

	// Fingerprint is the captured environment state.
	Fingerprint EnvironmentFingerprint
}

// NewLockDocument wraps a fingerprint in a current-schema document.
func NewLockDocument(fp EnvironmentFingerprint, generatedBy string) LockDocument {
	now := time.Now().UTC().Truncate(time.Second)
	return LockDocument{
		Schema:      SchemaVersion,
		GeneratedAt: now,
		UpdatedAt:   now,
		GeneratedBy: generatedBy,
		Fingerprint: fp,
	}
}

// Refresh returns a new document carrying the given fingerprint, preserving
// the original creation time.
func (d LockDocument) Refresh(fp EnvironmentFingerprint, generatedBy string) LockDocument {
	out := d
	out.Fingerprint = fp
	out.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	out.GeneratedBy = generatedBy
	if out.Schema == "" {
		out.Schema = SchemaVersion
	}
	return out
}

// ValidateSchema checks a stored schema tag against the engine's supported range.
// A malformed tag yields ErrLockMalformed; a major version other than the
// engine's yields ErrUnsupportedSchema. A newer minor within the current major
// is accepted.
func ValidateSchema(schema string) error {
	major, _, err := parseSchema(schema)
	if err != nil {
		return err
	}
	if major > schemaMajorCurrent {
		err := zerr.With(ErrUnsupportedSchema, "schema", schema)
		err = zerr.With(err, "supported", SchemaVersion)
		return zerr.With(err, "reason", "newer than this engine")
	}
	if major < schemaMajorCurrent {
		err := zerr.With(ErrUnsupportedSchema, "schema", schema)
		err = zerr.With(err, "supported", SchemaVersion)
		return zerr.With(err, "reason", "older than this engine supports")
	}
	return nil
}

func parseSchema(schema string) (major, minor int, err error) {
	majorStr, minorStr, ok := strings.Cut(schema, ".")
	if !ok {
		return 0, 0, zerr.With(zerr.With(ErrLockMalformed, "field", "schema"), "value", schema)
	}
	major, err = strconv.Atoi(majorStr)
	if err != nil {
		return 0, 0, zerr.With(zerr.With(ErrLockMalformed, "field", "schema"), "value", schema)
	}
	minor, err = strconv.Atoi(minorStr)
	if err != nil {
		return 0, 0, zerr.With(zerr.With(ErrLockMalformed, "field", "schema"), "value", schema)
	}
	return major, minor, nil
}
