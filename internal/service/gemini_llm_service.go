package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/farhansajid/visamock/config"
	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// LLMService issues one analysis prompt and returns the raw JSON object the
// model produced. Each analysis task calls it independently.
type LLMService interface {
	AnalyzeJSON(ctx context.Context, systemPrompt, userPrompt string) (json.RawMessage, error)
}

type geminiLLMService struct {
	client *genai.GenerativeModel
	cfg    *config.Config
}

func NewGeminiLLMService(cfg *config.Config) (LLMService, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. LLM analysis will be non-functional.")
		return &geminiLLMService{cfg: cfg, client: nil}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	model := client.GenerativeModel("gemini-2.5-flash")
	temperature := float32(0.3)
	model.Temperature = &temperature
	return &geminiLLMService{client: model, cfg: cfg}, nil
}

func (s *geminiLLMService) AnalyzeJSON(ctx context.Context, systemPrompt, userPrompt string) (json.RawMessage, error) {
	if s.client == nil {
		return nil, fmt.Errorf("gemini client not initialized")
	}

	s.client.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	resp, err := s.client.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		log.Error().Err(err).Msg("Gemini API error during analysis")
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Warn().Msg("Gemini returned no candidates or parts in response.")
		return nil, fmt.Errorf("gemini returned no content")
	}

	fullResponseText := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			fullResponseText += string(txt)
		}
	}
	if fullResponseText == "" {
		return nil, fmt.Errorf("gemini returned no text content")
	}

	raw, err := ExtractJSON(fullResponseText)
	if err != nil {
		log.Warn().Err(err).Str("rawResponse", fullResponseText).Msg("Failed to parse JSON from Gemini response")
		return nil, err
	}
	return raw, nil
}

// ExtractJSON strips optional markdown code fencing from an LLM response
// and validates that the remainder is a JSON document.
func ExtractJSON(text string) (json.RawMessage, error) {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	if !json.Valid([]byte(cleaned)) {
		return nil, fmt.Errorf("llm response is not valid JSON")
	}
	return json.RawMessage(cleaned), nil
}
