package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/dailybrief/internal/common"
	"github.com/ternarybob/dailybrief/internal/interfaces"
)

// ClaudeService implements the Generator interface using the Anthropic Claude
// API. Callers supply task instructions describing the required JSON shape;
// the service returns the parsed JSON document or a generation error.
type ClaudeService struct {
	config    *common.ClaudeConfig
	logger    arbor.ILogger
	client    anthropic.Client
	timeout   time.Duration
	maxTokens int
}

// Compile-time assertion: ClaudeService implements Generator
var _ interfaces.Generator = (*ClaudeService)(nil)

// NewClaudeService creates a new Claude generator service instance.
func NewClaudeService(claudeConfig *common.ClaudeConfig, logger arbor.ILogger) (*ClaudeService, error) {
	if claudeConfig.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required for Claude service (set ANTHROPIC_API_KEY or claude.api_key in config)")
	}

	if claudeConfig.Model == "" {
		claudeConfig.Model = "claude-sonnet-4-20250514"
	}

	timeout, err := time.ParseDuration(claudeConfig.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", claudeConfig.Timeout, err)
	}

	maxTokens := claudeConfig.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	client := anthropic.NewClient(
		option.WithAPIKey(claudeConfig.APIKey),
	)

	service := &ClaudeService{
		config:    claudeConfig,
		logger:    logger,
		client:    client,
		timeout:   timeout,
		maxTokens: maxTokens,
	}

	logger.Debug().
		Str("model", claudeConfig.Model).
		Dur("timeout", timeout).
		Float32("temperature", claudeConfig.Temperature).
		Int("max_tokens", maxTokens).
		Msg("Claude generator service initialized successfully")

	return service, nil
}

// GenerateJSON sends one structured-generation request and returns the parsed
// JSON payload. Malformed provider output (non-JSON text, truncation) is
// returned as an error for the caller's retry/fallback handling, never a panic.
func (s *ClaudeService) GenerateJSON(ctx context.Context, req interfaces.GenerateRequest) (json.RawMessage, error) {
	if strings.TrimSpace(req.Instructions) == "" {
		return nil, fmt.Errorf("instructions cannot be empty for generation")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()
	s.logger.Debug().
		Int("instructions_length", len(req.Instructions)).
		Int("context_length", len(req.Context)).
		Msg("Starting Claude structured generation")

	response, err := s.generateCompletion(timeoutCtx, req)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("Claude structured generation failed")
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	payload, err := ParseJSONResponse(response)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Int("response_length", len(response)).
			Msg("Claude response was not valid JSON")
		return nil, fmt.Errorf("malformed generation output: %w", err)
	}

	s.logger.Debug().
		Int("payload_length", len(payload)).
		Dur("duration", time.Since(startTime)).
		Msg("Claude structured generation completed successfully")

	return payload, nil
}

// HealthCheck verifies the Claude service is operational and can handle requests.
func (s *ClaudeService) HealthCheck(ctx context.Context) error {
	healthCheckCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	response, err := s.generateCompletion(healthCheckCtx, interfaces.GenerateRequest{
		Instructions: `Respond with exactly this JSON: {"status":"ok"}`,
	})
	if err != nil {
		return fmt.Errorf("Claude probe failed: %w", err)
	}
	if len(strings.TrimSpace(response)) == 0 {
		return fmt.Errorf("Claude probe returned empty response")
	}

	s.logger.Debug().
		Str("model", s.config.Model).
		Msg("Claude generator service health check passed")

	return nil
}

// Close releases resources and performs cleanup operations.
func (s *ClaudeService) Close() error {
	s.logger.Debug().Msg("Closing Claude generator service")
	// Claude client doesn't require explicit cleanup
	return nil
}

// generateCompletion encapsulates the Claude API call. The system prompt pins
// JSON-only output; the optional context is presented as supporting material
// ahead of the task instructions.
func (s *ClaudeService) generateCompletion(ctx context.Context, req interfaces.GenerateRequest) (string, error) {
	var prompt strings.Builder
	if req.Context != "" {
		prompt.WriteString("Supporting context:\n\n")
		prompt.WriteString(req.Context)
		prompt.WriteString("\n\n---\n\n")
	}
	prompt.WriteString(req.Instructions)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: int64(s.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.String())),
		},
		System: []anthropic.TextBlockParam{
			{Text: "You are a structured content generator. Respond with a single JSON document matching the requested shape. Do not include prose outside the JSON."},
		},
	}

	if s.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(s.config.Temperature))
	}

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from Claude API")
	}

	return response.String(), nil
}
