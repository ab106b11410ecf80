// Package llm wraps the hosted text-generation API used to answer chat messages.
package llm

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("model returned no text")

// Generator produces a reply for a single prompt. Credentials are per call because every
// chatbot carries its own API key.
type Generator interface {
	Generate(ctx context.Context, apiKey, model, prompt string) (string, error)
}

// Gemini calls the Gemini API through the genai SDK. A client is built per call since the
// API key differs between chatbots.
type Gemini struct {
	// BaseURL overrides the SDK endpoint when set.
	BaseURL string
	logger  *zap.Logger
}

var _ Generator = (*Gemini)(nil)

func NewGemini(baseURL string, logger *zap.Logger) *Gemini {
	return &Gemini{BaseURL: baseURL, logger: logger.Named("gemini")}
}

func (g *Gemini) Generate(ctx context.Context, apiKey, model, prompt string) (string, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if g.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		g.logger.Warn("GenerateContent failed", zap.String("model", model), zap.Error(err))
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	g.logger.Debug("generated reply", zap.String("model", model), zap.Int("prompt_chars", len(prompt)), zap.Int("reply_chars", len(text)))
	return text, nil
}
