// -----------------------------------------------------------------------
// Quiz - Daily three-question market quiz job definition
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

// QuizPayload is the required shape of a daily quiz: exactly three questions,
// each with four options and an answer index into them.
type QuizPayload struct {
	Title     string         `json:"title" validate:"required"`
	Questions []QuizQuestion `json:"questions" validate:"required,len=3,dive"`
}

// QuizQuestion is a single multiple-choice question.
type QuizQuestion struct {
	Prompt      string   `json:"prompt" validate:"required"`
	Options     []string `json:"options" validate:"required,len=4,dive,required"`
	Answer      int      `json:"answer" validate:"gte=0,lte=3"`
	Explanation string   `json:"explanation" validate:"required"`
}

// Validate validates the payload using go-playground/validator.
func (p *QuizPayload) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// ValidateQuizPayload decodes and validates a candidate quiz payload.
func ValidateQuizPayload(payload json.RawMessage) error {
	var quiz QuizPayload
	if err := json.Unmarshal(payload, &quiz); err != nil {
		return fmt.Errorf("quiz payload is not valid JSON: %w", err)
	}
	return quiz.Validate()
}

// quizFallback is the static quiz served when generation fails. Questions
// are evergreen so the payload stays correct on any date.
var quizFallback = QuizPayload{
	Title: "Market Fundamentals Quiz",
	Questions: []QuizQuestion{
		{
			Prompt:      "What does a stock's P/E ratio compare?",
			Options:     []string{"Price to earnings", "Profit to expenses", "Price to equity", "Performance to expectations"},
			Answer:      0,
			Explanation: "The price-to-earnings ratio divides a company's share price by its earnings per share, a common gauge of how richly a stock is valued.",
		},
		{
			Prompt:      "Which of these is generally considered a defensive sector?",
			Options:     []string{"Semiconductors", "Consumer staples", "Biotechnology", "Cryptocurrency"},
			Answer:      1,
			Explanation: "Consumer staples demand holds up in downturns because households keep buying essentials, making the sector a classic defensive allocation.",
		},
		{
			Prompt:      "What happens to existing bond prices when interest rates rise?",
			Options:     []string{"They rise", "They are unaffected", "They fall", "They become more volatile but hold value"},
			Answer:      2,
			Explanation: "New bonds pay the higher rate, so older bonds with lower coupons must trade at a discount to compete.",
		},
	},
}

// QuizFallback returns the static, pre-validated quiz payload.
func QuizFallback(key models.GenerationKey) json.RawMessage {
	return mustJSON(quizFallback)
}

func quizInstructions(key models.GenerationKey) string {
	return fmt.Sprintf(`Write a daily financial-markets quiz for %s.

Return a JSON object with this exact shape:
{
  "title": string,
  "questions": [
    {
      "prompt": string,
      "options": [string, string, string, string],
      "answer": integer index 0-3 of the correct option,
      "explanation": string explaining why the answer is correct
    }
  ]
}

Requirements:
- Exactly 3 questions, each with exactly 4 options.
- Questions test practical investing and market knowledge, mixed difficulty.
- Explanations are one or two sentences.`, key.Date)
}

// NewQuizSpec builds the quiz job: generated at a fixed morning boundary,
// no context step (quiz questions don't need recent events).
func NewQuizSpec(deps Deps, loc *time.Location, boundary string) *daily.JobSpec {
	return &daily.JobSpec{
		Key:          "quiz",
		Timezone:     loc,
		Boundary:     boundary,
		Instructions: quizInstructions,
		Generator:    deps.Generator,
		Validate:     ValidateQuizPayload,
		Fallback:     QuizFallback,
	}
}
