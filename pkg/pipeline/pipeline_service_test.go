package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"beautyfood-backend/domain"
	"beautyfood-backend/entities"
	"beautyfood-backend/internal/testdb"
	"beautyfood-backend/internal/utils/broker"
	"beautyfood-backend/internal/utils/logger"
	"beautyfood-backend/pkg/blob"
	"beautyfood-backend/pkg/meal"
	"beautyfood-backend/pkg/stats"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeClassifier struct {
	result domain.ClassificationResult
	calls  int
}

func (f *fakeClassifier) Classify(context.Context, domain.MealImage) domain.ClassificationResult {
	f.calls++
	return f.result
}

type fakeAnalysis struct {
	results []domain.AnalysisResult
	err     error
	calls   int
}

func (f *fakeAnalysis) Analyze(context.Context, domain.MealImage, domain.UserProfile) (domain.AnalysisResult, error) {
	f.calls++
	if f.err != nil {
		return domain.AnalysisResult{}, f.err
	}
	return f.results[(f.calls-1)%len(f.results)], nil
}

type fakeS3 struct {
	uploadErr error
	keys      []string
}

func (f *fakeS3) UploadBytes(_ context.Context, key string, _ []byte, _ string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakeS3) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://bucket.example/" + key + "?sig", nil
}

func (f *fakeS3) DeleteObject(context.Context, string) error { return nil }

type fakePublisher struct {
	err    error
	events []MealAnalyzedEvent
}

func (f *fakePublisher) Publish(_ context.Context, routingKey string, payload any) error {
	if routingKey == broker.RoutingMealAnalyzed {
		f.events = append(f.events, payload.(MealAnalyzedEvent))
	}
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

type fixture struct {
	db         *gorm.DB
	classifier *fakeClassifier
	analysis   *fakeAnalysis
	s3         *fakeS3
	publisher  *fakePublisher
	stats      stats.StatsService
	svc        PipelineService
}

func food() domain.ClassificationResult {
	return domain.ClassificationResult{IsFood: true, DetectedObject: "salmon bowl", Confidence: 0.95}
}

func scored(overall int) domain.AnalysisResult {
	return domain.AnalysisResult{
		DetectedFoods: []domain.DetectedFood{{Name: "salmon", Category: domain.FoodProtein, EstimatedAmount: "150g", Confidence: 0.9}},
		NutritionAnalysis: domain.NutritionAnalysis{
			Calories: 420, Protein: 30, Fiber: 8,
		},
		BeautyScore: domain.BeautyScore{
			CategoryScores: domain.CategoryScores{SkinCare: overall, AntiAging: overall, Detox: overall, Circulation: overall, HairNails: overall},
			Overall:        overall,
		},
		ImmediateAdvice: "Add greens.",
		NextMealAdvice:  "Try berries.",
	}
}

func setup(t *testing.T, results ...domain.AnalysisResult) *fixture {
	db := testdb.New(t)
	log := logger.Discard()

	f := &fixture{
		db:         db,
		classifier: &fakeClassifier{result: food()},
		analysis:   &fakeAnalysis{results: results},
		s3:         &fakeS3{},
		publisher:  &fakePublisher{},
	}
	blobs := blob.NewBlobService(f.s3, time.Hour, log)
	meals := meal.NewMealService(meal.NewMealRepository(db), blobs, time.UTC, log)
	f.stats = stats.NewStatsService(stats.NewStatsRepository(db), time.UTC, log)
	f.svc = NewPipelineService(f.classifier, f.analysis, blobs, meals, f.stats, f.publisher, Options{}, log)
	return f
}

func input() domain.AnalyzeMealInput {
	return domain.AnalyzeMealInput{
		Image:      domain.MealImage{Data: []byte{0xff, 0xd8, 0xff}, MimeType: "image/jpeg"},
		MealTiming: domain.Lunch,
		CapturedAt: time.Now(),
		Profile:    domain.UserProfile{BeautyFocus: []domain.BeautyCategory{domain.SkinCare}, ExperienceLevel: domain.Beginner},
	}
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func seedRecords(t *testing.T, db *gorm.DB, userID uuid.UUID, status domain.AnalysisStatus, n int) {
	for i := 0; i < n; i++ {
		require.NoError(t, db.Create(&entities.MealRecord{
			UserID:     userID,
			CapturedAt: time.Now(),
			MealTiming: string(domain.Lunch),
			Status:     string(status),
		}).Error)
	}
}

func TestAnalyzeMeal_EndToEnd(t *testing.T) {
	f := setup(t, scored(82), scored(90))
	ctx := context.Background()
	userID := uuid.New()
	user := domain.Authenticated(userID, false)

	res, err := f.svc.AnalyzeMeal(ctx, user, input())
	require.NoError(t, err)
	require.NotNil(t, res.Meal)
	require.NotNil(t, res.Analysis)
	assert.Equal(t, 82, res.Analysis.BeautyScore.Overall)
	assert.Equal(t, domain.StatusCompleted, res.Meal.Status)
	assert.False(t, res.Meal.Guest)
	require.Len(t, f.s3.keys, 1)
	assert.True(t, strings.HasPrefix(f.s3.keys[0], userID.String()+"/"))
	assert.Equal(t, "https://bucket.example/"+f.s3.keys[0]+"?sig", res.Meal.ImageURL)

	stat, err := f.stats.GetDailyStat(ctx, userID, "")
	require.NoError(t, err)
	assert.Equal(t, 82, stat.DailyScore)
	assert.Equal(t, 1, stat.AnalysesCount)

	_, err = f.svc.AnalyzeMeal(ctx, user, input())
	require.NoError(t, err)

	stat, err = f.stats.GetDailyStat(ctx, userID, "")
	require.NoError(t, err)
	assert.Equal(t, 86, stat.DailyScore)
	assert.Equal(t, 2, stat.AnalysesCount)

	var records []entities.MealRecord
	require.NoError(t, f.db.Find(&records).Error)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, string(domain.StatusCompleted), r.Status)
	}
	assert.EqualValues(t, 4, count(t, f.db, &entities.AdviceRecord{}))

	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, userID.String(), f.publisher.events[0].UserID)
	assert.Equal(t, 90, f.publisher.events[1].OverallScore)
}

func TestAnalyzeMeal_NonFoodShortCircuits(t *testing.T) {
	f := setup(t, scored(82))
	f.classifier.result = domain.ClassificationResult{IsFood: false, DetectedObject: "cat", Confidence: 0.9}

	res, err := f.svc.AnalyzeMeal(context.Background(), domain.Authenticated(uuid.New(), false), input())
	require.NoError(t, err)
	assert.Zero(t, f.analysis.calls)
	assert.NotEmpty(t, res.CannedResponse)
	assert.Nil(t, res.Meal)
	assert.Nil(t, res.Analysis)
	assert.Zero(t, count(t, f.db, &entities.MealRecord{}))
	assert.Empty(t, f.publisher.events)
}

func TestAnalyzeMeal_GuestLeavesNoRows(t *testing.T) {
	f := setup(t, scored(82))

	res, err := f.svc.AnalyzeMeal(context.Background(), domain.Guest(), input())
	require.NoError(t, err)
	require.NotNil(t, res.Meal)
	assert.True(t, res.Meal.Guest)
	assert.NotEmpty(t, res.Meal.ID)
	assert.True(t, strings.HasPrefix(res.Meal.ImageURL, "data:image/jpeg;base64,"))
	assert.Empty(t, f.s3.keys)

	assert.Zero(t, count(t, f.db, &entities.MealRecord{}))
	assert.Zero(t, count(t, f.db, &entities.AnalysisResult{}))
	assert.Zero(t, count(t, f.db, &entities.AdviceRecord{}))
	assert.Zero(t, count(t, f.db, &entities.DailyBeautyStat{}))

	require.Len(t, f.publisher.events, 1)
	assert.True(t, f.publisher.events[0].Guest)
	assert.Empty(t, f.publisher.events[0].UserID)
}

func TestAnalyzeMeal_QuotaExceeded(t *testing.T) {
	f := setup(t, scored(82))
	userID := uuid.New()
	seedRecords(t, f.db, userID, domain.StatusCompleted, 3)

	_, err := f.svc.AnalyzeMeal(context.Background(), domain.Authenticated(userID, false), input())
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
	assert.Zero(t, f.analysis.calls)
	assert.Zero(t, f.classifier.calls)
	assert.EqualValues(t, 3, count(t, f.db, &entities.MealRecord{}))
}

func TestAnalyzeMeal_QuotaIgnoresFailedRecords(t *testing.T) {
	f := setup(t, scored(82))
	userID := uuid.New()
	seedRecords(t, f.db, userID, domain.StatusCompleted, 2)
	seedRecords(t, f.db, userID, domain.StatusFailed, 2)

	_, err := f.svc.AnalyzeMeal(context.Background(), domain.Authenticated(userID, false), input())
	require.NoError(t, err)
	assert.Equal(t, 1, f.analysis.calls)
}

func TestAnalyzeMeal_PremiumAndGuestSkipQuota(t *testing.T) {
	f := setup(t, scored(82))
	userID := uuid.New()
	seedRecords(t, f.db, userID, domain.StatusCompleted, 5)

	_, err := f.svc.AnalyzeMeal(context.Background(), domain.Authenticated(userID, true), input())
	require.NoError(t, err)

	_, err = f.svc.AnalyzeMeal(context.Background(), domain.Guest(), input())
	require.NoError(t, err)
	assert.Equal(t, 2, f.analysis.calls)
}

func TestAnalyzeMeal_AnalysisErrorSurfaced(t *testing.T) {
	f := setup(t)
	f.analysis.err = &domain.AnalysisError{Attempts: 3, Err: domain.ErrInvalidModelResponse}

	_, err := f.svc.AnalyzeMeal(context.Background(), domain.Authenticated(uuid.New(), false), input())
	var aerr *domain.AnalysisError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, 3, aerr.Attempts)
	assert.Zero(t, count(t, f.db, &entities.MealRecord{}))
	assert.Empty(t, f.s3.keys)
}

func TestAnalyzeMeal_UploadFailureFallsBackInline(t *testing.T) {
	f := setup(t, scored(82))
	f.s3.uploadErr = errors.New("bucket unavailable")

	res, err := f.svc.AnalyzeMeal(context.Background(), domain.Authenticated(uuid.New(), false), input())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Meal.ImageURL, "data:image/jpeg;base64,"))

	var record entities.MealRecord
	require.NoError(t, f.db.First(&record).Error)
	assert.Empty(t, record.ImagePath)
	assert.True(t, strings.HasPrefix(record.ImageData, "data:image/jpeg;base64,"))
	assert.Equal(t, string(domain.StatusCompleted), record.Status)
}

func TestAnalyzeMeal_PersistFailureMarksRecordFailed(t *testing.T) {
	f := setup(t, scored(82))
	require.NoError(t, f.db.Migrator().DropTable(&entities.AnalysisResult{}))

	_, err := f.svc.AnalyzeMeal(context.Background(), domain.Authenticated(uuid.New(), false), input())
	var perr *domain.PersistError
	require.ErrorAs(t, err, &perr)
	assert.True(t, perr.Compensation.Attempted)
	assert.True(t, perr.Compensation.Succeeded)

	var record entities.MealRecord
	require.NoError(t, f.db.First(&record).Error)
	assert.Equal(t, string(domain.StatusFailed), record.Status)
	assert.Equal(t, record.ID.String(), perr.MealID)
	assert.Zero(t, count(t, f.db, &entities.DailyBeautyStat{}))
	assert.Empty(t, f.publisher.events)
}

func TestAnalyzeMeal_StatsAndPublishFailuresAreSwallowed(t *testing.T) {
	f := setup(t, scored(82))
	require.NoError(t, f.db.Migrator().DropTable(&entities.DailyBeautyStat{}))
	f.publisher.err = errors.New("broker down")

	res, err := f.svc.AnalyzeMeal(context.Background(), domain.Authenticated(uuid.New(), false), input())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, res.Meal.Status)
}

func TestAnalyzeMeal_InfersMealTiming(t *testing.T) {
	f := setup(t, scored(82))
	in := input()
	in.MealTiming = ""
	in.CapturedAt = time.Date(2024, 3, 6, 19, 30, 0, 0, time.UTC)

	res, err := f.svc.AnalyzeMeal(context.Background(), domain.Guest(), in)
	require.NoError(t, err)
	assert.Equal(t, domain.Dinner, res.Meal.MealTiming)
}
