package market

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
)

// SnapshotService produces a one-line market summary from index quotes.
// It is a best-effort context enrichment: any failure degrades to an empty
// snapshot rather than blocking generation.
type SnapshotService struct {
	client  *Client
	indices []string
	logger  arbor.ILogger
}

// NewSnapshotService creates a snapshot service over the given index symbols.
func NewSnapshotService(client *Client, indices []string, logger arbor.ILogger) *SnapshotService {
	return &SnapshotService{
		client:  client,
		indices: indices,
		logger:  logger,
	}
}

// SummaryLine fetches quotes for the configured indices and formats them as
// a single prose line, e.g. "Market snapshot: GSPC.INDX 5321.40 (+0.62%), ...".
// Returns an empty string and the error when the fetch fails.
func (s *SnapshotService) SummaryLine(ctx context.Context) (string, error) {
	if s.client == nil || len(s.indices) == 0 {
		return "", nil
	}

	quotes, err := s.client.GetQuotes(ctx, s.indices)
	if err != nil {
		return "", fmt.Errorf("failed to fetch index quotes: %w", err)
	}
	if len(quotes) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(quotes))
	for _, q := range quotes {
		if q.Code == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %.2f (%+.2f%%)", q.Code, q.Close, q.ChangePercent))
	}
	if len(parts) == 0 {
		return "", nil
	}

	line := "Market snapshot: " + strings.Join(parts, ", ")

	s.logger.Debug().
		Int("index_count", len(parts)).
		Msg("Built market snapshot line")

	return line, nil
}
