package analysis

import (
	"time"

	"github.com/rivalmap/rivalmap/app/database"
)

const (
	// SchemaEpoch marks the current output-schema generation. Records
	// created before it carry payloads in the previous shape and are
	// treated as stale regardless of age. Bump it when the research
	// output schema changes incompatibly.
	SchemaEpoch = "2026-06-01T00:00:00Z"

	// FreshnessWindow is how long a record stays fresh after creation.
	FreshnessWindow = 14 * 24 * time.Hour

	// MaxAnalysesPerUser caps how many records one identity may create.
	// Admins are exempt.
	MaxAnalysesPerUser = 5
)

var schemaEpoch = mustParseTime(SchemaEpoch)

func mustParseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// IsStale reports whether the record is eligible for deletion and
// recreation: created before the schema epoch, older than the freshness
// window, or carrying an unparseable creation timestamp.
func IsStale(a *database.Analysis) bool {
	created, err := time.Parse(time.RFC3339, a.CreatedAt)
	if err != nil {
		return true
	}
	if created.Before(schemaEpoch) {
		return true
	}
	return time.Since(created) > FreshnessWindow
}
