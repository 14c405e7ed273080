package daily

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/dailybrief/internal/interfaces"
	"github.com/ternarybob/dailybrief/internal/models"
)

func testKey(job, date, subKey string) models.GenerationKey {
	return models.GenerationKey{Job: job, Date: date, SubKey: subKey}
}

// memoryStorage is an in-memory ContentStorage with injectable failures.
type memoryStorage struct {
	mu        sync.Mutex
	records   map[string]*models.ContentRecord
	findErr   error
	createErr error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{records: make(map[string]*models.ContentRecord)}
}

func (m *memoryStorage) Find(ctx context.Context, key models.GenerationKey) (*models.ContentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	record, ok := m.records[key.String()]
	if !ok {
		return nil, interfaces.ErrRecordNotFound
	}
	return record, nil
}

func (m *memoryStorage) Create(ctx context.Context, record *models.ContentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	key := record.Key().String()
	if _, exists := m.records[key]; exists {
		return interfaces.ErrRecordExists
	}
	m.records[key] = record
	return nil
}

func (m *memoryStorage) ListByJob(ctx context.Context, job string, limit int) ([]*models.ContentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ContentRecord
	for _, record := range m.records {
		if record.Job == job {
			out = append(out, record)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *memoryStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// scriptedGenerator returns canned responses in order, recording the
// requests it received. After the script runs out it repeats the last entry.
type scriptedGenerator struct {
	mu       sync.Mutex
	script   []generatorStep
	requests []interfaces.GenerateRequest
	delay    time.Duration
}

type generatorStep struct {
	payload string
	err     error
}

func (g *scriptedGenerator) GenerateJSON(ctx context.Context, req interfaces.GenerateRequest) (json.RawMessage, error) {
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.requests = append(g.requests, req)
	if len(g.script) == 0 {
		return nil, fmt.Errorf("no scripted response")
	}

	idx := len(g.requests) - 1
	if idx >= len(g.script) {
		idx = len(g.script) - 1
	}
	step := g.script[idx]
	if step.err != nil {
		return nil, step.err
	}
	return json.RawMessage(step.payload), nil
}

func (g *scriptedGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

func (g *scriptedGenerator) request(i int) interfaces.GenerateRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests[i]
}

// validGreeting accepts only documents with a non-empty "text" field, the
// minimal stand-in for a real payload schema.
func validGreeting(payload json.RawMessage) error {
	var doc struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return err
	}
	if doc.Text == "" {
		return fmt.Errorf("text is required")
	}
	return nil
}

func greetingFallback(key models.GenerationKey) json.RawMessage {
	return json.RawMessage(`{"text":"hello from the fallback"}`)
}

func testSpec(job string, gen interfaces.Generator) *JobSpec {
	return &JobSpec{
		Key:      job,
		Timezone: time.UTC,
		Instructions: func(key models.GenerationKey) string {
			return "produce a greeting document for " + key.Date
		},
		Generator: gen,
		Validate:  validGreeting,
		Fallback:  greetingFallback,
	}
}

func testService(storage interfaces.ContentStorage, opts ...Option) *Service {
	return NewService(storage, arbor.NewLogger(), opts...)
}
