package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"beautyfood-backend/domain"
	"beautyfood-backend/pkg/llm"

	"github.com/sirupsen/logrus"
)

const classifySystemPrompt = `You decide whether a photo shows food or a drink that someone is about to eat.
Reply with JSON only, no markdown:
{"is_food": boolean, "detected_object": string, "confidence": number between 0 and 1, "description": string}
detected_object is a short lowercase noun for the main subject (for example "salad", "cat", "keyboard").`

type (
	ClassifierService interface {
		Classify(ctx context.Context, image domain.MealImage) domain.ClassificationResult
	}

	// labeler is the backend that actually looks at the image.
	labeler interface {
		label(ctx context.Context, image domain.MealImage) (domain.ClassificationResult, error)
	}

	classifierService struct {
		backend labeler
		log     logrus.FieldLogger
	}

	llmLabeler struct {
		model llm.VisionModel
	}
)

// Degraded is returned whenever the backend call fails.
func Degraded() domain.ClassificationResult {
	return domain.ClassificationResult{
		IsFood:         false,
		DetectedObject: "unclear",
		Confidence:     0.5,
		Description:    "the image could not be classified",
		Degraded:       true,
	}
}

func NewLLMClassifier(model llm.VisionModel, log logrus.FieldLogger) ClassifierService {
	return &classifierService{backend: &llmLabeler{model: model}, log: log}
}

// Classify never fails: backend errors degrade to a non-food result so the
// caller can still answer the user.
func (s *classifierService) Classify(ctx context.Context, image domain.MealImage) domain.ClassificationResult {
	res, err := s.backend.label(ctx, image)
	if err != nil {
		s.log.WithFields(logrus.Fields{"task": "classify"}).Warnf("classification degraded: %v", err)
		return Degraded()
	}
	return res
}

func (l *llmLabeler) label(ctx context.Context, image domain.MealImage) (domain.ClassificationResult, error) {
	raw, err := l.model.Generate(ctx, llm.Request{
		SystemPrompt: classifySystemPrompt,
		Prompt:       "Classify this image.",
		Image:        image.Data,
		MimeType:     image.MimeType,
		Temperature:  0.2,
		MaxTokens:    200,
		JSONMode:     true,
	})
	if err != nil {
		return domain.ClassificationResult{}, err
	}
	return parseClassification(raw)
}

func parseClassification(raw string) (domain.ClassificationResult, error) {
	body := llm.ExtractJSON(raw)
	var res domain.ClassificationResult
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidModelResponse, err)
	}
	res.DetectedObject = strings.ToLower(strings.TrimSpace(res.DetectedObject))
	if res.DetectedObject == "" {
		res.DetectedObject = "unclear"
	}
	if res.Confidence < 0 {
		res.Confidence = 0
	} else if res.Confidence > 1 {
		res.Confidence = 1
	}
	return res, nil
}
