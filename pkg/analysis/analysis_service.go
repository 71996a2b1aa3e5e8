package analysis

import (
	"context"
	"time"

	"beautyfood-backend/domain"
	"beautyfood-backend/pkg/llm"

	"github.com/sirupsen/logrus"
)

const (
	DefaultMaxAttempts = 3
	DefaultBackoffBase = 2 * time.Second
)

type (
	AnalysisService interface {
		Analyze(ctx context.Context, image domain.MealImage, profile domain.UserProfile) (domain.AnalysisResult, error)
	}

	// Sleeper waits for d or until ctx is done.
	Sleeper func(ctx context.Context, d time.Duration) error

	Options struct {
		MaxAttempts int
		BackoffBase time.Duration
		Sleep       Sleeper
	}

	analysisService struct {
		model       llm.VisionModel
		maxAttempts int
		backoffBase time.Duration
		sleep       Sleeper
		log         logrus.FieldLogger
	}
)

func NewAnalysisService(model llm.VisionModel, opts Options, log logrus.FieldLogger) AnalysisService {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = DefaultBackoffBase
	}
	if opts.Sleep == nil {
		opts.Sleep = SleepContext
	}
	return &analysisService{
		model:       model,
		maxAttempts: opts.MaxAttempts,
		backoffBase: opts.BackoffBase,
		sleep:       opts.Sleep,
		log:         log,
	}
}

func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Backoff returns the wait before the attempt following attempt n (1-based):
// base, 2*base, 4*base, ...
func Backoff(base time.Duration, n int) time.Duration {
	return base << (n - 1)
}

func (s *analysisService) Analyze(ctx context.Context, image domain.MealImage, profile domain.UserProfile) (domain.AnalysisResult, error) {
	if len(profile.BeautyFocus) == 0 {
		return domain.AnalysisResult{}, domain.ErrEmptyBeautyFocus
	}
	if len(image.Data) == 0 {
		return domain.AnalysisResult{}, domain.ErrInvalidImage
	}

	req := llm.Request{
		SystemPrompt: systemPrompt,
		Prompt:       BuildPrompt(profile),
		Image:        image.Data,
		MimeType:     image.MimeType,
		Temperature:  0.1,
		MaxTokens:    1500,
		JSONMode:     true,
	}

	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		attempts = attempt
		result, err := s.attempt(ctx, req)
		if err == nil {
			return result, nil
		}
		lastErr = err
		s.log.WithFields(logrus.Fields{"task": "analyze", "attempt": attempt, "model": s.model.Name()}).
			Warnf("analysis attempt failed: %v", err)

		if attempt == s.maxAttempts {
			break
		}
		if err := s.sleep(ctx, Backoff(s.backoffBase, attempt)); err != nil {
			lastErr = err
			break
		}
	}
	return domain.AnalysisResult{}, &domain.AnalysisError{Attempts: attempts, Err: lastErr}
}

func (s *analysisService) attempt(ctx context.Context, req llm.Request) (domain.AnalysisResult, error) {
	raw, err := s.model.Generate(ctx, req)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	return ParseResponse(raw)
}
