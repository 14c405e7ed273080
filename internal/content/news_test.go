package content

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/dailybrief/internal/models"
)

func validNews() NewsPayload {
	return NewsPayload{
		Headline: "Stocks Climb on Strong Earnings",
		Bullets: []string{
			"Major indices closed higher for the third straight session.",
			"Technology shares led gains after upbeat quarterly reports.",
			"Treasury yields eased as rate-cut expectations firmed.",
			"Oil prices slipped on rising inventories.",
		},
		Sentiment: "bullish",
	}
}

func TestValidateNewsPayload(t *testing.T) {
	t.Run("valid payload passes", func(t *testing.T) {
		assert.NoError(t, ValidateNewsPayload(mustJSON(validNews())))
	})

	t.Run("ten bullets still pass", func(t *testing.T) {
		payload := validNews()
		for len(payload.Bullets) < 10 {
			payload.Bullets = append(payload.Bullets, "Another market observation for the day.")
		}
		assert.NoError(t, ValidateNewsPayload(mustJSON(payload)))
	})

	tests := []struct {
		name   string
		mutate func(*NewsPayload)
	}{
		{name: "missing headline", mutate: func(p *NewsPayload) { p.Headline = "" }},
		{name: "three bullets", mutate: func(p *NewsPayload) { p.Bullets = p.Bullets[:3] }},
		{name: "eleven bullets", mutate: func(p *NewsPayload) {
			for len(p.Bullets) < 11 {
				p.Bullets = append(p.Bullets, "Filler bullet.")
			}
		}},
		{name: "empty bullet", mutate: func(p *NewsPayload) { p.Bullets[1] = "" }},
		{name: "unknown sentiment", mutate: func(p *NewsPayload) { p.Sentiment = "euphoric" }},
		{name: "missing sentiment", mutate: func(p *NewsPayload) { p.Sentiment = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validNews()
			tt.mutate(&payload)
			assert.Error(t, ValidateNewsPayload(mustJSON(payload)))
		})
	}
}

func TestNewsFallback_PassesValidator(t *testing.T) {
	key := models.GenerationKey{Job: "news", Date: "2024-06-01"}
	require.NoError(t, ValidateNewsPayload(NewsFallback(key)))
}

type stubEvents struct {
	text string
	err  error
}

func (s *stubEvents) RecentEvents(ctx context.Context, query string) (string, error) {
	return s.text, s.err
}

func TestNewsContext_ComposesSnapshotAndEvents(t *testing.T) {
	deps := Deps{
		Events: &stubEvents{text: "Central bank held rates steady."},
		Logger: arbor.NewLogger(),
	}

	text, err := newsContext(deps)(context.Background(), models.GenerationKey{Job: "news", Date: "2024-06-01"})
	require.NoError(t, err)
	assert.Contains(t, text, "Central bank held rates steady.")
}

func TestNewsContext_EventsErrorPropagatesWhenNothingElse(t *testing.T) {
	deps := Deps{
		Events: &stubEvents{err: fmt.Errorf("search quota exhausted")},
		Logger: arbor.NewLogger(),
	}

	_, err := newsContext(deps)(context.Background(), models.GenerationKey{Job: "news", Date: "2024-06-01"})
	assert.Error(t, err)
}

func TestNewsContext_NoProvidersYieldsEmpty(t *testing.T) {
	deps := Deps{Logger: arbor.NewLogger()}

	text, err := newsContext(deps)(context.Background(), models.GenerationKey{Job: "news", Date: "2024-06-01"})
	require.NoError(t, err)
	assert.Empty(t, text)
}
