package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

var ErrEmptyResponse = errors.New("model returned no content")

type (
	// VisionModel sends one prompt plus an image to a hosted multimodal model
	// and returns the raw text of the first candidate.
	VisionModel interface {
		Generate(ctx context.Context, req Request) (string, error)
		Name() string
	}

	Request struct {
		SystemPrompt string
		Prompt       string
		Image        []byte
		MimeType     string
		Temperature  float32
		MaxTokens    int
		JSONMode     bool
	}
)

func (r Request) mimeType() string {
	if r.MimeType == "" {
		return "image/jpeg"
	}
	return r.MimeType
}

// DataURL encodes image bytes as a base64 data URI.
func DataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// NewVisionModel picks the provider named by LLM_PROVIDER.
func NewVisionModel(ctx context.Context, provider string, cfg Config) (VisionModel, error) {
	switch provider {
	case "", "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is not set")
		}
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, errors.New("GEMINI_API_KEY is not set")
		}
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	return nil, fmt.Errorf("unknown llm provider %q", provider)
}

type Config struct {
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiAPIKey  string
	GeminiModel   string
}
