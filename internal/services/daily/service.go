// -----------------------------------------------------------------------
// Service - Daily content scheduler and idempotent getOrGenerate
// -----------------------------------------------------------------------

package daily

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/dailybrief/internal/common"
	"github.com/ternarybob/dailybrief/internal/interfaces"
	"github.com/ternarybob/dailybrief/internal/models"
)

// JobStatus reports the transient run state for one job key.
type JobStatus struct {
	Key         string     `json:"key"`
	Schedule    string     `json:"schedule"`
	LastAttempt *time.Time `json:"last_attempt,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	NextRun     *time.Time `json:"next_run,omitempty"`
	IsRunning   bool       `json:"is_running"`
}

// Service owns the registered job specs, the single-flight lock table, and
// the cron scheduler that drives daily generation. All process-wide state
// lives here, explicitly constructed and passed in, never ambient.
type Service struct {
	storage       interfaces.ContentStorage
	logger        arbor.ILogger
	cron          *cron.Cron
	guard         *Guard
	contextBudget time.Duration

	mu      sync.Mutex // protects specs, status, cronIDs, running
	specs   map[string]*JobSpec
	status  map[string]*JobStatus
	cronIDs map[string]cron.EntryID
	running bool
}

// Option configures the Service.
type Option func(*Service)

// WithContextBudget bounds the optional context-fetch step per pipeline run.
func WithContextBudget(d time.Duration) Option {
	return func(s *Service) {
		s.contextBudget = d
	}
}

// NewService creates a new daily content service.
func NewService(storage interfaces.ContentStorage, logger arbor.ILogger, opts ...Option) *Service {
	s := &Service{
		storage:       storage,
		logger:        logger,
		cron:          cron.New(),
		guard:         NewGuard(),
		contextBudget: 30 * time.Second,
		specs:         make(map[string]*JobSpec),
		status:        make(map[string]*JobStatus),
		cronIDs:       make(map[string]cron.EntryID),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a job spec. Must be called before Start; specs are immutable
// afterwards. The spec's fallback payload is probed against its validator so
// a drift between the two fails here instead of at generation time.
func (s *Service) Register(spec *JobSpec) error {
	if err := spec.validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("cannot register job %s: scheduler already running", spec.Key)
	}
	if _, exists := s.specs[spec.Key]; exists {
		return fmt.Errorf("job %s already registered", spec.Key)
	}

	s.specs[spec.Key] = spec
	s.status[spec.Key] = &JobStatus{
		Key:      spec.Key,
		Schedule: spec.cronSpec(),
	}

	s.logger.Info().
		Str("job", spec.Key).
		Str("schedule", spec.cronSpec()).
		Int("sub_keys", len(spec.SubKeys)).
		Msg("Job registered")

	return nil
}

// Start arms the scheduler. Every registered spec is attempted immediately
// (covering the case where the process was down across a boundary), then
// re-attempted on its schedule. Each attempt runs in its own panic-protected
// goroutine so a slow provider never delays other jobs' timers.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}

	specs := make([]*JobSpec, 0, len(s.specs))
	for _, spec := range s.specs {
		specs = append(specs, spec)
	}

	for _, spec := range specs {
		spec := spec
		id, err := s.cron.AddFunc(spec.cronSpec(), func() {
			s.attemptAll(spec)
		})
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to schedule job %s: %w", spec.Key, err)
		}
		s.cronIDs[spec.Key] = id
	}

	s.running = true
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info().Int("jobs", len(specs)).Msg("Daily content scheduler started")

	// Startup catch-up: attempt every spec now
	for _, spec := range specs {
		spec := spec
		common.SafeGo(s.logger, "startup-attempt-"+spec.Key, func() {
			s.attemptAll(spec)
		})
	}

	return nil
}

// Stop halts the scheduler. In-flight pipelines run to completion; only
// future firings are cancelled.
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.cron.Stop()
	s.logger.Info().Msg("Daily content scheduler stopped")
	return nil
}

// attemptAll runs one scheduled attempt for every generation key the spec
// requires today. Errors are recorded and logged, never propagated: a failed
// attempt must not stop future firings.
func (s *Service) attemptAll(spec *JobSpec) {
	for _, key := range spec.keysFor(time.Now()) {
		key := key
		common.SafeGo(s.logger, "attempt-"+key.String(), func() {
			s.attempt(spec, key)
		})
	}
}

// attempt is the scheduler-driven path: single-flight guarded, error-swallowing.
func (s *Service) attempt(spec *JobSpec, key models.GenerationKey) {
	gk := guardKey(key)
	if !s.guard.TryAcquire(gk) {
		s.logger.Debug().
			Str("key", key.String()).
			Msg("Generation already in flight, skipping attempt")
		return
	}
	defer s.guard.Release(gk)

	s.setRunning(spec.Key, true)
	defer s.setRunning(spec.Key, false)

	start := time.Now()
	_, err := s.getOrGenerate(context.Background(), spec, key)

	now := time.Now()
	s.mu.Lock()
	if status, ok := s.status[spec.Key]; ok {
		status.LastAttempt = &now
		if err != nil {
			status.LastError = err.Error()
		} else {
			status.LastError = ""
		}
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().
			Str("key", key.String()).
			Dur("duration", time.Since(start)).
			Err(err).
			Msg("Generation attempt failed")
		return
	}

	s.logger.Debug().
		Str("key", key.String()).
		Dur("duration", time.Since(start)).
		Msg("Generation attempt completed")
}

// GetOrGenerate returns the persisted record for key, generating and
// persisting it first if absent. It is the composed operation consumers
// call: the result is always a schema-valid payload (generated or fallback
// provenance) unless persistence itself is unavailable, the sole error case.
func (s *Service) GetOrGenerate(ctx context.Context, key models.GenerationKey) (*models.ContentRecord, error) {
	s.mu.Lock()
	spec, ok := s.specs[key.Job]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown job %s", key.Job)
	}
	return s.getOrGenerate(ctx, spec, key)
}

// Today returns the record for today's key in the job's configured zone,
// generating it if absent. This is the shared date convention consumers use
// to ask "has today's record been generated yet".
func (s *Service) Today(ctx context.Context, job, subKey string) (*models.ContentRecord, error) {
	s.mu.Lock()
	spec, ok := s.specs[job]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown job %s", job)
	}

	key := models.GenerationKey{
		Job:    job,
		Date:   common.DateKeyIn(time.Now(), spec.Timezone),
		SubKey: subKey,
	}
	return s.getOrGenerate(ctx, spec, key)
}

// getOrGenerate implements check, generate, insert-if-absent. The race
// window between Find and Create is tolerated: a concurrent winner's record
// stands and the loser's result is discarded in favor of a re-read.
func (s *Service) getOrGenerate(ctx context.Context, spec *JobSpec, key models.GenerationKey) (*models.ContentRecord, error) {
	record, err := s.storage.Find(ctx, key)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, interfaces.ErrRecordNotFound) {
		return nil, fmt.Errorf("content lookup failed for %s: %w", key.String(), err)
	}

	payload, provenance := s.runPipeline(ctx, spec, key)

	record = &models.ContentRecord{
		ID:         common.NewRecordID(),
		Job:        key.Job,
		SubKey:     key.SubKey,
		Date:       key.Date,
		Payload:    payload,
		Provenance: provenance,
		CreatedAt:  time.Now().UTC(),
	}

	err = s.storage.Create(ctx, record)
	if errors.Is(err, interfaces.ErrRecordExists) {
		// Lost the duplicate-create race; the stored record wins
		s.logger.Debug().
			Str("key", key.String()).
			Msg("Concurrent writer persisted record first, re-reading")
		return s.storage.Find(ctx, key)
	}
	if err != nil {
		return nil, fmt.Errorf("content persistence failed for %s: %w", key.String(), err)
	}

	s.logger.Info().
		Str("key", key.String()).
		Str("provenance", string(provenance)).
		Msg("Content record persisted")

	return record, nil
}

// Status returns a snapshot of every registered job's run state.
func (s *Service) Status() map[string]*JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	statuses := make(map[string]*JobStatus, len(s.status))
	for key, status := range s.status {
		copied := *status
		if id, ok := s.cronIDs[key]; ok {
			for _, entry := range entries {
				if entry.ID == id && !entry.Next.IsZero() {
					next := entry.Next
					copied.NextRun = &next
					break
				}
			}
		}
		statuses[key] = &copied
	}
	return statuses
}

// IsRunning returns true if the scheduler is active.
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Service) setRunning(job string, running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.status[job]; ok {
		status.IsRunning = running
	}
}
