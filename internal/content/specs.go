// -----------------------------------------------------------------------
// Specs - Content job spec assembly and shared dependencies
// -----------------------------------------------------------------------

package content

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/dailybrief/internal/common"
	"github.com/ternarybob/dailybrief/internal/interfaces"
	"github.com/ternarybob/dailybrief/internal/market"
	"github.com/ternarybob/dailybrief/internal/services/daily"
)

// Deps carries the shared collaborators the job specs close over.
// Events and Snapshot are optional; jobs that need them degrade to an
// empty context when they are nil.
type Deps struct {
	Generator interfaces.Generator
	Events    interfaces.ContextProvider
	Snapshot  *market.SnapshotService
	Logger    arbor.ILogger
}

// BuildJobSpecs assembles every daily content job from configuration.
func BuildJobSpecs(cfg *common.Config, deps Deps) ([]*daily.JobSpec, error) {
	if deps.Generator == nil {
		return nil, fmt.Errorf("content job specs require a generator")
	}

	loc, err := time.LoadLocation(cfg.Jobs.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid jobs timezone %q: %w", cfg.Jobs.Timezone, err)
	}

	return []*daily.JobSpec{
		NewQuizSpec(deps, loc, cfg.Jobs.QuizBoundary),
		NewNewsSpec(deps, loc, cfg.Jobs.NewsBoundary),
		NewDiscussionSpec(deps, loc),
		NewSectorBriefSpec(deps, loc, cfg.Jobs.Sectors),
	}, nil
}

// mustJSON marshals a fallback payload. Fallbacks are static structs built
// in this package, so a marshal failure is a programming error.
func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("failed to marshal fallback payload: %v", err))
	}
	return data
}
