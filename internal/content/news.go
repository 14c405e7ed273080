// -----------------------------------------------------------------------
// News - Daily market news brief job definition
// -----------------------------------------------------------------------

package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/dailybrief/internal/models"
	"github.com/ternarybob/dailybrief/internal/services/daily"
)

// NewsPayload is the required shape of the daily news brief: a headline,
// four to ten summary bullets, and an overall sentiment call.
type NewsPayload struct {
	Headline  string   `json:"headline" validate:"required"`
	Bullets   []string `json:"bullets" validate:"required,min=4,max=10,dive,required"`
	Sentiment string   `json:"sentiment" validate:"required,oneof=bullish bearish neutral"`
}

// Validate validates the payload using go-playground/validator.
func (p *NewsPayload) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// ValidateNewsPayload decodes and validates a candidate news payload.
func ValidateNewsPayload(payload json.RawMessage) error {
	var news NewsPayload
	if err := json.Unmarshal(payload, &news); err != nil {
		return fmt.Errorf("news payload is not valid JSON: %w", err)
	}
	return news.Validate()
}

var newsFallback = NewsPayload{
	Headline: "Markets Mixed as Investors Weigh Economic Signals",
	Bullets: []string{
		"Major indices traded in a narrow range as investors awaited fresh economic data.",
		"Treasury yields held steady while rate expectations remained the dominant driver of sentiment.",
		"Energy and defensive sectors outperformed growth names in cautious trading.",
		"Analysts continue to watch earnings revisions for direction on the broader market trend.",
	},
	Sentiment: "neutral",
}

// NewsFallback returns the static, pre-validated news payload.
func NewsFallback(key models.GenerationKey) json.RawMessage {
	return mustJSON(newsFallback)
}

func newsInstructions(key models.GenerationKey) string {
	return fmt.Sprintf(`Write a daily market news brief for %s using the supporting context if provided.

Return a JSON object with this exact shape:
{
  "headline": string,
  "bullets": [string, ...],
  "sentiment": "bullish" | "bearish" | "neutral"
}

Requirements:
- Between 4 and 10 bullets, each a single factual sentence.
- Lead with the most market-moving developments.
- Sentiment reflects the overall tone of the day's news.
- If no context is provided, write a general brief without inventing specific figures.`, key.Date)
}

// newsContext composes the recent-events search with the market snapshot
// line. Both halves are best-effort: a failed snapshot is dropped, and a
// failed search surfaces as an error only when no snapshot exists either,
// so the pipeline degrades to an empty context.
func newsContext(deps Deps) func(ctx context.Context, key models.GenerationKey) (string, error) {
	return func(ctx context.Context, key models.GenerationKey) (string, error) {
		var parts []string

		if deps.Snapshot != nil {
			line, err := deps.Snapshot.SummaryLine(ctx)
			if err != nil {
				deps.Logger.Warn().Err(err).Msg("Market snapshot unavailable for news context")
			} else if line != "" {
				parts = append(parts, line)
			}
		}

		if deps.Events != nil {
			text, err := deps.Events.RecentEvents(ctx, "major financial market news today: stocks, bonds, central banks, earnings")
			if err != nil {
				if len(parts) == 0 {
					return "", err
				}
				deps.Logger.Warn().Err(err).Msg("Recent-events search unavailable for news context")
			} else {
				parts = append(parts, text)
			}
		}

		return strings.Join(parts, "\n\n"), nil
	}
}

// NewNewsSpec builds the daily news job: fixed morning boundary with
// recent-events and market-snapshot context.
func NewNewsSpec(deps Deps, loc *time.Location, boundary string) *daily.JobSpec {
	return &daily.JobSpec{
		Key:          "news",
		Timezone:     loc,
		Boundary:     boundary,
		Context:      newsContext(deps),
		Instructions: newsInstructions,
		Generator:    deps.Generator,
		Validate:     ValidateNewsPayload,
		Fallback:     NewsFallback,
	}
}
