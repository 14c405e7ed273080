// -----------------------------------------------------------------------
// Pipeline - Context fetch, generation, validation, fallback
// -----------------------------------------------------------------------

package daily

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ternarybob/dailybrief/internal/interfaces"
	"github.com/ternarybob/dailybrief/internal/models"
)

// maxGenerationAttempts bounds pipeline latency and provider cost: one
// generation call plus at most one validation-informed retry, then fallback.
const maxGenerationAttempts = 2

// runPipeline produces one schema-valid payload for a generation key. It
// never returns a provider error: every failure path terminates in the
// spec's fallback payload, tagged with fallback provenance.
func (s *Service) runPipeline(ctx context.Context, spec *JobSpec, key models.GenerationKey) (json.RawMessage, models.Provenance) {
	contextText := s.fetchContext(ctx, spec, key)

	instructions := spec.Instructions(key)
	var lastErr error

	for attempt := 1; attempt <= maxGenerationAttempts; attempt++ {
		req := interfaces.GenerateRequest{
			Instructions: instructions,
			Context:      contextText,
		}
		if lastErr != nil {
			// Validation-informed retry: tell the model what was wrong
			req.Instructions = fmt.Sprintf("%s\n\nYour previous attempt was rejected: %v. Produce a corrected JSON document.", instructions, lastErr)
		}

		payload, err := spec.Generator.GenerateJSON(ctx, req)
		if err != nil {
			lastErr = err
			s.logger.Warn().
				Str("key", key.String()).
				Int("attempt", attempt).
				Err(err).
				Msg("Generation call failed")
			continue
		}

		if err := spec.Validate(payload); err != nil {
			lastErr = err
			s.logger.Warn().
				Str("key", key.String()).
				Int("attempt", attempt).
				Err(err).
				Msg("Generated payload failed validation")
			continue
		}

		s.logger.Info().
			Str("key", key.String()).
			Int("attempt", attempt).
			Bool("context_used", contextText != "").
			Msg("Generation pipeline produced valid payload")

		return payload, models.ProvenanceGenerated
	}

	s.logger.Warn().
		Str("key", key.String()).
		Err(lastErr).
		Msg("Generation exhausted, substituting fallback payload")

	return spec.Fallback(key), models.ProvenanceFallback
}

// fetchContext runs the optional context step. Context enrichment is
// best-effort: provider errors and timeouts degrade to an empty string.
func (s *Service) fetchContext(ctx context.Context, spec *JobSpec, key models.GenerationKey) string {
	if spec.Context == nil {
		return ""
	}

	budget := s.contextBudget
	if budget <= 0 {
		budget = 30 * time.Second
	}
	contextCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	text, err := spec.Context(contextCtx, key)
	if err != nil {
		s.logger.Warn().
			Str("key", key.String()).
			Err(err).
			Msg("Context fetch failed, proceeding without context")
		return ""
	}

	return text
}
