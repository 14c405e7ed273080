// -----------------------------------------------------------------------
// SectorBrief - Per-sector daily brief job definition
// -----------------------------------------------------------------------

package content

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/dailybrief/internal/models"
	"github.com/ternarybob/dailybrief/internal/services/daily"
)

// SectorBriefPayload is the required shape of a per-sector daily brief.
type SectorBriefPayload struct {
	Sector     string   `json:"sector" validate:"required"`
	Overview   string   `json:"overview" validate:"required"`
	KeyPoints  []string `json:"key_points" validate:"required,min=3,max=6,dive,required"`
	Outlook    string   `json:"outlook" validate:"required,oneof=positive negative mixed"`
	Confidence int      `json:"confidence" validate:"gte=0,lte=100"`
}

// Validate validates the payload using go-playground/validator.
func (p *SectorBriefPayload) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// ValidateSectorBriefPayload decodes and validates a candidate sector brief.
func ValidateSectorBriefPayload(payload json.RawMessage) error {
	var brief SectorBriefPayload
	if err := json.Unmarshal(payload, &brief); err != nil {
		return fmt.Errorf("sector brief payload is not valid JSON: %w", err)
	}
	return brief.Validate()
}

// SectorBriefFallback returns a static, pre-validated brief. The sector name
// is taken from the key's sub-key so the fallback stays coherent for every
// sector the job fans out to.
func SectorBriefFallback(key models.GenerationKey) json.RawMessage {
	return mustJSON(SectorBriefPayload{
		Sector:   key.SubKey,
		Overview: fmt.Sprintf("The %s sector traded in line with the broader market today, with no single development dominating the session.", key.SubKey),
		KeyPoints: []string{
			"Sector performance tracked the major indices without notable dispersion.",
			"No significant earnings reports or guidance changes moved the group.",
			"Positioning and flows remained consistent with recent sessions.",
		},
		Outlook:    "mixed",
		Confidence: 30,
	})
}

func sectorBriefInstructions(key models.GenerationKey) string {
	return fmt.Sprintf(`Write a daily brief on the %s sector for %s using the supporting context if provided.

Return a JSON object with this exact shape:
{
  "sector": %q,
  "overview": string,
  "key_points": [string, ...],
  "outlook": "positive" | "negative" | "mixed",
  "confidence": integer 0-100
}

Requirements:
- The overview is a two-to-three-sentence summary of the sector's current state.
- Between 3 and 6 key points, each a single concrete observation.
- Confidence reflects how well-supported the outlook is by the context.
- If no context is provided, keep the outlook "mixed" and confidence low.`, key.SubKey, key.Date, key.SubKey)
}

func sectorBriefContext(deps Deps) func(ctx context.Context, key models.GenerationKey) (string, error) {
	return func(ctx context.Context, key models.GenerationKey) (string, error) {
		if deps.Events == nil {
			return "", nil
		}
		query := fmt.Sprintf("recent news and developments in the %s sector: earnings, regulation, major company moves", key.SubKey)
		return deps.Events.RecentEvents(ctx, query)
	}
}

// NewSectorBriefSpec builds the sector-brief job: one record per configured
// sector per day via sub-key fan-out, catch-up semantics, recent-events
// context per sector.
func NewSectorBriefSpec(deps Deps, loc *time.Location, sectors []string) *daily.JobSpec {
	return &daily.JobSpec{
		Key:          "sector-brief",
		Timezone:     loc,
		SubKeys:      sectors,
		Context:      sectorBriefContext(deps),
		Instructions: sectorBriefInstructions,
		Generator:    deps.Generator,
		Validate:     ValidateSectorBriefPayload,
		Fallback:     SectorBriefFallback,
	}
}
