// -----------------------------------------------------------------------
// ContentStorage - Badger-backed idempotency store for daily content
// -----------------------------------------------------------------------

package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/dailybrief/internal/common"
	"github.com/ternarybob/dailybrief/internal/interfaces"
	"github.com/ternarybob/dailybrief/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ContentStorage implements the ContentStorage interface for Badger.
// Records are keyed by the GenerationKey's canonical string, so Insert's
// key-exists failure doubles as the conditional-insert check.
type ContentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewContentStorage creates a new ContentStorage instance
func NewContentStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ContentStorage {
	return &ContentStorage{
		db:     db,
		logger: logger,
	}
}

// Find retrieves the record for a key, returning ErrRecordNotFound if absent
func (s *ContentStorage) Find(ctx context.Context, key models.GenerationKey) (*models.ContentRecord, error) {
	var record models.ContentRecord
	err := s.db.Store().Get(key.String(), &record)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content record: %w", err)
	}
	return &record, nil
}

// Create persists a new record. A concurrent writer that got there first
// surfaces as ErrRecordExists; the stored record is never overwritten.
func (s *ContentStorage) Create(ctx context.Context, record *models.ContentRecord) error {
	if record.ID == "" {
		record.ID = common.NewRecordID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	key := record.Key().String()
	err := s.db.Store().Insert(key, record)
	if err == badgerhold.ErrKeyExists {
		return interfaces.ErrRecordExists
	}
	if err != nil {
		return fmt.Errorf("failed to create content record: %w", err)
	}

	s.logger.Debug().
		Str("key", key).
		Str("provenance", string(record.Provenance)).
		Msg("Content record created")

	return nil
}

// ListByJob returns all records for a job key, newest date first
func (s *ContentStorage) ListByJob(ctx context.Context, job string, limit int) ([]*models.ContentRecord, error) {
	query := badgerhold.Where("Job").Eq(job).SortBy("Date").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []models.ContentRecord
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to list content records: %w", err)
	}

	result := make([]*models.ContentRecord, len(records))
	for i := range records {
		result[i] = &records[i]
	}
	return result, nil
}
