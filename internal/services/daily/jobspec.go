package daily

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ternarybob/dailybrief/internal/common"
	"github.com/ternarybob/dailybrief/internal/interfaces"
	"github.com/ternarybob/dailybrief/internal/models"
)

// JobSpec is the static configuration for one daily content type. Specs are
// built at process start and registered with the Service; they are immutable
// for the process lifetime.
type JobSpec struct {
	// Key is the stable job identifier, e.g. "quiz", "news", "sector-brief".
	Key string

	// Timezone is the zone used for date keys and the scheduling boundary.
	Timezone *time.Location

	// Boundary is the "HH:MM" wall-clock generation time in Timezone.
	// Empty means catch-up semantics: the record should exist once per day
	// but the exact time doesn't matter, so the scheduler rechecks hourly
	// and the idempotency check makes repeats cheap no-ops.
	Boundary string

	// SubKeys fan one spec out into several records per day (e.g. one
	// sector brief per sector). Empty means a single record per day.
	SubKeys []string

	// Context optionally fetches supporting real-world prose for a key.
	// Nil skips the context step. Errors and timeouts degrade to an empty
	// context; they never abort the pipeline.
	Context func(ctx context.Context, key models.GenerationKey) (string, error)

	// Instructions builds the generation task description for a key,
	// including the required JSON output shape.
	Instructions func(key models.GenerationKey) string

	// Generator is the generative-text collaborator for this job.
	Generator interfaces.Generator

	// Validate checks a candidate payload against the job's required shape.
	// Any violation is treated as a generation failure.
	Validate func(payload json.RawMessage) error

	// Fallback produces the static, pre-validated payload used when
	// generation or validation fails. Must always pass Validate.
	Fallback func(key models.GenerationKey) json.RawMessage
}

// validate checks the spec is complete enough to register. The fallback is
// probed against the validator here so a schema drift between the two fails
// at startup instead of on the first bad generation day.
func (spec *JobSpec) validate() error {
	if spec.Key == "" {
		return fmt.Errorf("job spec key is required")
	}
	if spec.Timezone == nil {
		return fmt.Errorf("job %s: timezone is required", spec.Key)
	}
	if spec.Boundary != "" {
		if _, _, err := common.ParseBoundary(spec.Boundary); err != nil {
			return fmt.Errorf("job %s: %w", spec.Key, err)
		}
	}
	if spec.Instructions == nil {
		return fmt.Errorf("job %s: instructions builder is required", spec.Key)
	}
	if spec.Generator == nil {
		return fmt.Errorf("job %s: generator is required", spec.Key)
	}
	if spec.Validate == nil {
		return fmt.Errorf("job %s: validator is required", spec.Key)
	}
	if spec.Fallback == nil {
		return fmt.Errorf("job %s: fallback supplier is required", spec.Key)
	}

	for _, key := range spec.keysFor(time.Now()) {
		if err := spec.Validate(spec.Fallback(key)); err != nil {
			return fmt.Errorf("job %s: fallback payload does not pass validator: %w", spec.Key, err)
		}
	}

	return nil
}

// cronSpec returns the robfig/cron schedule for this job. Boundary jobs fire
// at the configured wall-clock time in the job's zone via CRON_TZ; catch-up
// jobs recheck at the top of every hour.
func (spec *JobSpec) cronSpec() string {
	if spec.Boundary == "" {
		return "0 * * * *"
	}
	hour, minute, _ := common.ParseBoundary(spec.Boundary)
	return fmt.Sprintf("CRON_TZ=%s %d %d * * *", spec.Timezone.String(), minute, hour)
}

// keysFor returns the generation keys this spec requires for the day
// containing now, with the date computed in the job's zone.
func (spec *JobSpec) keysFor(now time.Time) []models.GenerationKey {
	date := common.DateKeyIn(now, spec.Timezone)
	if len(spec.SubKeys) == 0 {
		return []models.GenerationKey{{Job: spec.Key, Date: date}}
	}

	keys := make([]models.GenerationKey, 0, len(spec.SubKeys))
	for _, subKey := range spec.SubKeys {
		keys = append(keys, models.GenerationKey{Job: spec.Key, Date: date, SubKey: subKey})
	}
	return keys
}

// guardKey is the single-flight lock key for one generation key. Date is
// excluded: two pipelines for the same job and sub-key must never overlap,
// even across a midnight boundary.
func guardKey(key models.GenerationKey) string {
	if key.SubKey != "" {
		return key.Job + ":" + key.SubKey
	}
	return key.Job
}
