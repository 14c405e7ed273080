// -----------------------------------------------------------------------
// GeminiService - GoogleSearch-grounded recent-events context provider
// -----------------------------------------------------------------------

package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/dailybrief/internal/common"
	"github.com/ternarybob/dailybrief/internal/interfaces"
	"google.golang.org/genai"
)

// GeminiService implements the ContextProvider interface using the Gemini
// SDK with GoogleSearch grounding. Its output is advisory prose used to
// enrich generation prompts; callers treat any failure as an empty context.
type GeminiService struct {
	config  *common.GeminiConfig
	logger  arbor.ILogger
	client  *genai.Client
	timeout time.Duration
}

// Compile-time assertion: GeminiService implements ContextProvider
var _ interfaces.ContextProvider = (*GeminiService)(nil)

// NewGeminiService creates a new Gemini context provider instance.
func NewGeminiService(ctx context.Context, geminiConfig *common.GeminiConfig, logger arbor.ILogger) (*GeminiService, error) {
	if geminiConfig.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required for search context (set GEMINI_API_KEY or gemini.api_key in config)")
	}

	if geminiConfig.Model == "" {
		geminiConfig.Model = "gemini-3-flash-preview"
	}

	timeout, err := time.ParseDuration(geminiConfig.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", geminiConfig.Timeout, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logger.Debug().
		Str("model", geminiConfig.Model).
		Dur("timeout", timeout).
		Msg("Gemini context provider initialized")

	return &GeminiService{
		config:  geminiConfig,
		logger:  logger,
		client:  client,
		timeout: timeout,
	}, nil
}

// RecentEvents searches the web for recent events matching the query and
// returns a prose summary with source attributions appended.
func (s *GeminiService) RecentEvents(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("query cannot be empty")
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	searchTool := &genai.Tool{GoogleSearch: &genai.GoogleSearch{}}
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{searchTool},
	}

	// Include current date so the model has temporal context for "recent"
	currentDate := time.Now().Format("January 2, 2006")
	prompt := fmt.Sprintf(`You are a research assistant. Today's date is %s.
Search the web and summarize the most relevant recent developments for the topic below.
Keep the summary factual and under 400 words. Prioritize results from the last few days.

Topic: %s`, currentDate, query)

	s.logger.Debug().
		Str("query", query).
		Msg("Executing Gemini grounded search")

	resp, err := s.client.Models.GenerateContent(
		searchCtx,
		s.config.Model,
		[]*genai.Content{
			genai.NewContentFromText(prompt, genai.RoleUser),
		},
		config,
	)
	if err != nil {
		return "", fmt.Errorf("grounded search failed: %w", err)
	}

	var content strings.Builder
	var sources []string
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text != "" {
				content.WriteString(part.Text)
			}
		}

		if gm := resp.Candidates[0].GroundingMetadata; gm != nil && gm.GroundingChunks != nil {
			seen := make(map[string]bool)
			for _, chunk := range gm.GroundingChunks {
				if chunk.Web != nil && !seen[chunk.Web.URI] {
					seen[chunk.Web.URI] = true
					if chunk.Web.Title != "" {
						sources = append(sources, fmt.Sprintf("%s (%s)", chunk.Web.Title, chunk.Web.URI))
					} else {
						sources = append(sources, chunk.Web.URI)
					}
				}
			}
		}
	}

	if content.Len() == 0 {
		return "", fmt.Errorf("grounded search returned no content")
	}

	if len(sources) > 0 {
		content.WriteString("\n\nSources:\n")
		for _, source := range sources {
			content.WriteString("- " + source + "\n")
		}
	}

	s.logger.Debug().
		Str("query", query).
		Int("content_length", content.Len()).
		Int("source_count", len(sources)).
		Msg("Gemini grounded search completed")

	return content.String(), nil
}
