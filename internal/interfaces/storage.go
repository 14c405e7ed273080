package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/dailybrief/internal/models"
)

// ErrRecordNotFound is returned by Find when no record exists for a key.
var ErrRecordNotFound = errors.New("content record not found")

// ErrRecordExists is returned by Create when a record for the same
// GenerationKey was already persisted, typically by a concurrent writer.
var ErrRecordExists = errors.New("content record already exists")

// ContentStorage defines the persistence collaborator for daily content.
// Implementations must offer point lookups and conditional insert per
// GenerationKey; no cross-key coordination is required.
type ContentStorage interface {
	// Find retrieves the record for a key, returning ErrRecordNotFound if absent.
	Find(ctx context.Context, key models.GenerationKey) (*models.ContentRecord, error)

	// Create persists a new record, returning ErrRecordExists if a record for
	// the same key was created first. The stored record is never overwritten.
	Create(ctx context.Context, record *models.ContentRecord) error

	// ListByJob returns all records for a job key, newest date first.
	ListByJob(ctx context.Context, job string, limit int) ([]*models.ContentRecord, error)
}
