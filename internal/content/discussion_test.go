package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/dailybrief/internal/models"
)

func validDiscussion() DiscussionPayload {
	return DiscussionPayload{
		Prompt: "Should retail investors hold individual stocks or only index funds?",
		Angles: []string{
			"The diversification math behind index funds",
			"When stock picking is a reasonable hobby with play money",
		},
		Topic: "investing",
	}
}

func TestValidateDiscussionPayload(t *testing.T) {
	t.Run("valid payload passes", func(t *testing.T) {
		assert.NoError(t, ValidateDiscussionPayload(mustJSON(validDiscussion())))
	})

	t.Run("five angles still pass", func(t *testing.T) {
		payload := validDiscussion()
		for len(payload.Angles) < 5 {
			payload.Angles = append(payload.Angles, "Another angle on the question.")
		}
		assert.NoError(t, ValidateDiscussionPayload(mustJSON(payload)))
	})

	tests := []struct {
		name   string
		mutate func(*DiscussionPayload)
	}{
		{name: "missing prompt", mutate: func(p *DiscussionPayload) { p.Prompt = "" }},
		{name: "one angle", mutate: func(p *DiscussionPayload) { p.Angles = p.Angles[:1] }},
		{name: "six angles", mutate: func(p *DiscussionPayload) {
			for len(p.Angles) < 6 {
				p.Angles = append(p.Angles, "Filler angle.")
			}
		}},
		{name: "empty angle", mutate: func(p *DiscussionPayload) { p.Angles[0] = "" }},
		{name: "unknown topic", mutate: func(p *DiscussionPayload) { p.Topic = "sports" }},
		{name: "missing topic", mutate: func(p *DiscussionPayload) { p.Topic = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validDiscussion()
			tt.mutate(&payload)
			assert.Error(t, ValidateDiscussionPayload(mustJSON(payload)))
		})
	}
}

func TestDiscussionFallback_PassesValidator(t *testing.T) {
	key := models.GenerationKey{Job: "discussion", Date: "2024-06-01"}
	require.NoError(t, ValidateDiscussionPayload(DiscussionFallback(key)))
}
