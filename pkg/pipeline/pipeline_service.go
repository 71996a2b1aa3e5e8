package pipeline

import (
	"context"
	"time"

	"beautyfood-backend/domain"
	"beautyfood-backend/internal/utils/broker"
	"beautyfood-backend/pkg/analysis"
	"beautyfood-backend/pkg/blob"
	"beautyfood-backend/pkg/meal"
	"beautyfood-backend/pkg/stats"
	"beautyfood-backend/pkg/vision"

	"github.com/sirupsen/logrus"
)

const DefaultFreeDailyQuota = 3

type (
	// PipelineService runs one meal photo through classify, analyze, upload,
	// persist and stats, strictly in that order. Only ErrQuotaExceeded,
	// *domain.AnalysisError and *domain.PersistError are returned; every other
	// failure is absorbed and logged.
	PipelineService interface {
		AnalyzeMeal(ctx context.Context, user domain.UserContext, input domain.AnalyzeMealInput) (domain.AnalyzeMealResponse, error)
	}

	Options struct {
		FreeDailyQuota int
	}

	// MealAnalyzedEvent is published after a run completes.
	MealAnalyzedEvent struct {
		MealID       string            `json:"meal_id"`
		UserID       string            `json:"user_id,omitempty"`
		Guest        bool              `json:"guest"`
		MealTiming   domain.MealTiming `json:"meal_timing"`
		OverallScore int               `json:"overall_score"`
		CapturedAt   time.Time         `json:"captured_at"`
		AnalyzedAt   time.Time         `json:"analyzed_at"`
	}

	pipelineService struct {
		classifier vision.ClassifierService
		analysis   analysis.AnalysisService
		blob       blob.BlobService
		meals      meal.MealService
		stats      stats.StatsService
		publisher  broker.Publisher
		quota      int
		now        func() time.Time
		log        logrus.FieldLogger
	}
)

func NewPipelineService(
	classifier vision.ClassifierService,
	analysisService analysis.AnalysisService,
	blobService blob.BlobService,
	mealService meal.MealService,
	statsService stats.StatsService,
	publisher broker.Publisher,
	opts Options,
	log logrus.FieldLogger,
) PipelineService {
	if opts.FreeDailyQuota <= 0 {
		opts.FreeDailyQuota = DefaultFreeDailyQuota
	}
	return &pipelineService{
		classifier: classifier,
		analysis:   analysisService,
		blob:       blobService,
		meals:      mealService,
		stats:      statsService,
		publisher:  publisher,
		quota:      opts.FreeDailyQuota,
		now:        time.Now,
		log:        log,
	}
}

func (s *pipelineService) AnalyzeMeal(ctx context.Context, user domain.UserContext, input domain.AnalyzeMealInput) (domain.AnalyzeMealResponse, error) {
	logger := s.log.WithFields(logrus.Fields{"task": "analyze_meal", "user_id": user.String()})

	if input.CapturedAt.IsZero() {
		input.CapturedAt = s.now()
	}
	if input.MealTiming == "" {
		input.MealTiming = domain.InferMealTiming(input.CapturedAt)
	}

	if err := s.checkQuota(ctx, user); err != nil {
		return domain.AnalyzeMealResponse{}, err
	}

	classification := s.classifier.Classify(ctx, input.Image)
	if !classification.IsFood {
		logger.Infof("non-food image: %s", classification.DetectedObject)
		return domain.AnalyzeMealResponse{
			Classification: classification,
			CannedResponse: vision.CannedResponse(classification),
		}, nil
	}

	result, err := s.analysis.Analyze(ctx, input.Image, input.Profile)
	if err != nil {
		logger.Errorf("analysis failed: %v", err)
		return domain.AnalyzeMealResponse{}, err
	}

	image := s.blob.Upload(ctx, user, input.Image)

	record, err := s.meals.CreateMealRecord(ctx, user, image, input.MealTiming, input.CapturedAt)
	if err != nil {
		logger.Errorf("failed to create meal record: %v", err)
		if derr := s.blob.Delete(ctx, image); derr != nil {
			logger.Warnf("failed to remove orphaned image %s: %v", image.Path, derr)
		}
		return domain.AnalyzeMealResponse{}, &domain.PersistError{Err: err}
	}
	logger = logger.WithField("meal_id", record.ID)

	if err := s.meals.PersistAnalysis(ctx, record, result); err != nil {
		logger.Errorf("failed to persist analysis: %v", err)
		return domain.AnalyzeMealResponse{}, err
	}
	record.Status = domain.StatusCompleted

	if !user.IsGuest() {
		if err := s.stats.UpdateDailyStats(ctx, user, result, s.now()); err != nil {
			logger.Errorf("failed to update daily stats: %v", err)
		}
	}

	s.publish(ctx, logger, user, record, result)

	return domain.AnalyzeMealResponse{
		Classification: classification,
		Meal:           s.toResponse(ctx, logger, record),
		Analysis:       &result,
	}, nil
}

// checkQuota rejects free-tier users who already have the daily number of
// pending or completed analyses. Guests and premium users are not limited.
func (s *pipelineService) checkQuota(ctx context.Context, user domain.UserContext) error {
	userID, ok := user.UserID()
	if !ok || user.IsPremium() {
		return nil
	}

	count, err := s.meals.CountToday(ctx, userID)
	if err != nil {
		// lookup failures fail open
		s.log.WithFields(logrus.Fields{"task": "quota", "user_id": userID}).
			Warnf("quota lookup failed, allowing request: %v", err)
		return nil
	}
	if count >= int64(s.quota) {
		return domain.ErrQuotaExceeded
	}
	return nil
}

func (s *pipelineService) publish(ctx context.Context, logger logrus.FieldLogger, user domain.UserContext, record domain.MealRecord, result domain.AnalysisResult) {
	event := MealAnalyzedEvent{
		MealID:       record.ID.String(),
		Guest:        user.IsGuest(),
		MealTiming:   record.MealTiming,
		OverallScore: result.BeautyScore.Overall,
		CapturedAt:   record.CapturedAt,
		AnalyzedAt:   s.now(),
	}
	if id, ok := user.UserID(); ok {
		event.UserID = id.String()
	}
	if err := s.publisher.Publish(ctx, broker.RoutingMealAnalyzed, event); err != nil {
		logger.Warnf("failed to publish %s event: %v", broker.RoutingMealAnalyzed, err)
	}
}

func (s *pipelineService) toResponse(ctx context.Context, logger logrus.FieldLogger, record domain.MealRecord) *domain.MealRecordResponse {
	res := &domain.MealRecordResponse{
		ID:         record.ID.String(),
		CapturedAt: record.CapturedAt,
		MealTiming: record.MealTiming,
		Status:     record.Status,
		Guest:      record.User.IsGuest(),
	}
	url, err := s.blob.Resolve(ctx, record.Image)
	if err != nil {
		logger.Warnf("failed to sign image url: %v", err)
		return res
	}
	res.ImageURL = url
	return res
}
