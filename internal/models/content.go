// -----------------------------------------------------------------------
// ContentRecord - Persisted, immutable result of one daily generation
// -----------------------------------------------------------------------

package models

import (
	"encoding/json"
	"time"
)

// Provenance indicates how a ContentRecord's payload was produced.
type Provenance string

const (
	// ProvenanceGenerated indicates the payload came out of the generation pipeline.
	ProvenanceGenerated Provenance = "generated"
	// ProvenanceFallback indicates the payload is static fallback content,
	// substituted after a generation or validation failure.
	ProvenanceFallback Provenance = "fallback"
)

// GenerationKey identifies one required daily output: a job key, the calendar
// date in the job's configured time zone, and an optional sub-key (e.g. a
// sector name for sector briefs). Two attempts with equal keys must yield at
// most one persisted record.
type GenerationKey struct {
	Job    string `json:"job"`
	Date   string `json:"date"` // YYYY-MM-DD in the job's zone
	SubKey string `json:"sub_key,omitempty"`
}

// String returns the canonical storage key, e.g. "news:2024-06-01" or
// "sector-brief:defense:2024-06-01".
func (k GenerationKey) String() string {
	if k.SubKey != "" {
		return k.Job + ":" + k.SubKey + ":" + k.Date
	}
	return k.Job + ":" + k.Date
}

// ContentRecord is the persisted artifact for a GenerationKey. Records are
// written exactly once and never mutated; consumers read them many times.
type ContentRecord struct {
	ID         string          `json:"id"`
	Job        string          `json:"job"`
	SubKey     string          `json:"sub_key,omitempty"`
	Date       string          `json:"date"`
	Payload    json.RawMessage `json:"payload"`
	Provenance Provenance      `json:"provenance"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Key reconstructs the GenerationKey this record was stored under.
func (r *ContentRecord) Key() GenerationKey {
	return GenerationKey{Job: r.Job, Date: r.Date, SubKey: r.SubKey}
}
