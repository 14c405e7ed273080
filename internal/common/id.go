package common

import (
	"github.com/google/uuid"
)

// NewRecordID generates a unique content record ID with the "rec_" prefix
// Format: rec_<uuid>
func NewRecordID() string {
	return "rec_" + uuid.New().String()
}
