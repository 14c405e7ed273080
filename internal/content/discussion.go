// -----------------------------------------------------------------------
// Discussion - Daily community discussion prompt job definition
// -----------------------------------------------------------------------

package content

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/dailybrief/internal/models"
	"github.com/ternarybob/dailybrief/internal/services/daily"
)

// DiscussionPayload is the required shape of the daily discussion prompt:
// an open question, two to five angles to approach it from, and a topic tag.
type DiscussionPayload struct {
	Prompt string   `json:"prompt" validate:"required"`
	Angles []string `json:"angles" validate:"required,min=2,max=5,dive,required"`
	Topic  string   `json:"topic" validate:"required,oneof=investing economy markets personal-finance"`
}

// Validate validates the payload using go-playground/validator.
func (p *DiscussionPayload) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// ValidateDiscussionPayload decodes and validates a candidate discussion payload.
func ValidateDiscussionPayload(payload json.RawMessage) error {
	var discussion DiscussionPayload
	if err := json.Unmarshal(payload, &discussion); err != nil {
		return fmt.Errorf("discussion payload is not valid JSON: %w", err)
	}
	return discussion.Validate()
}

var discussionFallback = DiscussionPayload{
	Prompt: "Is time in the market really better than timing the market?",
	Angles: []string{
		"The historical evidence for buy-and-hold versus tactical strategies",
		"How missing the market's best days changes long-run returns",
		"When rebalancing or de-risking is not market timing",
	},
	Topic: "investing",
}

// DiscussionFallback returns the static, pre-validated discussion payload.
func DiscussionFallback(key models.GenerationKey) json.RawMessage {
	return mustJSON(discussionFallback)
}

func discussionInstructions(key models.GenerationKey) string {
	return fmt.Sprintf(`Write a daily discussion prompt for a financial-markets community for %s.

Return a JSON object with this exact shape:
{
  "prompt": string,
  "angles": [string, ...],
  "topic": "investing" | "economy" | "markets" | "personal-finance"
}

Requirements:
- The prompt is a single open-ended question people will genuinely disagree on.
- Between 2 and 5 angles, each a distinct way to argue the question.
- Pick the topic tag that best fits the prompt.`, key.Date)
}

// NewDiscussionSpec builds the discussion job: catch-up semantics (the
// record should exist once per day, the exact hour doesn't matter) and no
// context step.
func NewDiscussionSpec(deps Deps, loc *time.Location) *daily.JobSpec {
	return &daily.JobSpec{
		Key:          "discussion",
		Timezone:     loc,
		Instructions: discussionInstructions,
		Generator:    deps.Generator,
		Validate:     ValidateDiscussionPayload,
		Fallback:     DiscussionFallback,
	}
}
