package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type geminiModel struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (VisionModel, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &geminiModel{client: client, model: model}, nil
}

func (m *geminiModel) Name() string {
	return "gemini:" + m.model
}

func (m *geminiModel) Generate(ctx context.Context, req Request) (string, error) {
	model := m.client.GenerativeModel(m.model)
	model.SetTemperature(req.Temperature)
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemPrompt)}}
	}
	if req.JSONMode {
		model.ResponseMIMEType = "application/json"
	}

	var parts []genai.Part
	if len(req.Image) > 0 {
		parts = append(parts, genai.Blob{MIMEType: req.mimeType(), Data: req.Image})
	}
	parts = append(parts, genai.Text(req.Prompt))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

func (m *geminiModel) Close() error {
	return m.client.Close()
}
