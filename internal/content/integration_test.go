package content

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/dailybrief/internal/common"
	"github.com/ternarybob/dailybrief/internal/interfaces"
	"github.com/ternarybob/dailybrief/internal/models"
	"github.com/ternarybob/dailybrief/internal/services/daily"
)

// mapStorage is a minimal in-memory ContentStorage for wiring real job
// specs through the daily service.
type mapStorage struct {
	mu      sync.Mutex
	records map[string]*models.ContentRecord
}

func newMapStorage() *mapStorage {
	return &mapStorage{records: make(map[string]*models.ContentRecord)}
}

func (m *mapStorage) Find(ctx context.Context, key models.GenerationKey) (*models.ContentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[key.String()]
	if !ok {
		return nil, interfaces.ErrRecordNotFound
	}
	return record, nil
}

func (m *mapStorage) Create(ctx context.Context, record *models.ContentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := record.Key().String()
	if _, exists := m.records[key]; exists {
		return interfaces.ErrRecordExists
	}
	m.records[key] = record
	return nil
}

func (m *mapStorage) ListByJob(ctx context.Context, job string, limit int) ([]*models.ContentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ContentRecord
	for _, record := range m.records {
		if record.Job == job {
			out = append(out, record)
		}
	}
	return out, nil
}

// shortQuizGenerator always returns a two-question quiz, one short of the
// required three.
type shortQuizGenerator struct{}

func (g *shortQuizGenerator) GenerateJSON(ctx context.Context, req interfaces.GenerateRequest) (json.RawMessage, error) {
	quiz := validQuiz()
	quiz.Questions = quiz.Questions[:2]
	return mustJSON(quiz), nil
}

func TestQuizJob_ShortGenerationFallsBackToFullQuiz(t *testing.T) {
	storage := newMapStorage()
	deps := Deps{Generator: &shortQuizGenerator{}, Logger: arbor.NewLogger()}

	svc := daily.NewService(storage, arbor.NewLogger())
	require.NoError(t, svc.Register(NewQuizSpec(deps, time.UTC, "06:00")))

	record, err := svc.GetOrGenerate(context.Background(), models.GenerationKey{Job: "quiz", Date: "2024-06-01"})
	require.NoError(t, err, "a short generation must resolve to fallback, not an error")

	assert.Equal(t, models.ProvenanceFallback, record.Provenance)

	var quiz QuizPayload
	require.NoError(t, json.Unmarshal(record.Payload, &quiz))
	assert.Len(t, quiz.Questions, 3, "the stored payload must satisfy the quiz shape")
	require.NoError(t, ValidateQuizPayload(record.Payload))
}

func TestAllJobSpecs_RegisterCleanly(t *testing.T) {
	// Registration probes every fallback against its validator, so this
	// doubles as a drift check across all four job definitions.
	deps := Deps{Generator: &shortQuizGenerator{}, Logger: arbor.NewLogger()}

	specs, err := BuildJobSpecs(common.DefaultConfig(), deps)
	require.NoError(t, err)

	svc := daily.NewService(newMapStorage(), arbor.NewLogger())
	for _, spec := range specs {
		require.NoError(t, svc.Register(spec), "spec %s", spec.Key)
	}
}
