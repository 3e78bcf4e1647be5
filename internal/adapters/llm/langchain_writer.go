package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/obs"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.1-8b-instant"

	maxTokens   = 1500
	temperature = 0.6
)

// generator is the part of llms.Model the writer needs.
type generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// LangchainWriter implements NarrativeWriter against any OpenAI-compatible
// chat endpoint (Groq by default).
type LangchainWriter struct {
	model generator
}

func NewLangchainWriter(apiKey, baseURL, model string) (*LangchainWriter, error) {
	if apiKey == "" {
		return nil, domain.NewConfigurationError("groq_api_key", "LLM api key is empty")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(model),
		openai.WithBaseURL(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}

	return &LangchainWriter{model: client}, nil
}

func (w *LangchainWriter) Write(ctx context.Context, prompt string) (_ string, err error) {
	defer obs.Time(ctx, "llm.Write")(&err)

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}

	resp, err := w.model.GenerateContent(ctx, messages,
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(temperature),
	)
	if err != nil {
		return "", fmt.Errorf("generate itinerary: %w", err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("generate itinerary: empty response")
	}

	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", errors.New("generate itinerary: empty content")
	}
	return text, nil
}
