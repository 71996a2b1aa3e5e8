package meal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"beautyfood-backend/domain"
	"beautyfood-backend/entities"
	"beautyfood-backend/pkg/blob"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

type (
	MealService interface {
		CreateMealRecord(ctx context.Context, user domain.UserContext, image domain.ImageRef, timing domain.MealTiming, capturedAt time.Time) (domain.MealRecord, error)
		PersistAnalysis(ctx context.Context, record domain.MealRecord, result domain.AnalysisResult) error
		MarkFailed(ctx context.Context, record domain.MealRecord) error
		CountToday(ctx context.Context, userID uuid.UUID) (int64, error)

		GetMeals(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.MealRecordResponse, int64, error)
		GetMealByID(ctx context.Context, userID uuid.UUID, id string) (domain.MealDetailResponse, error)
		DeleteMeal(ctx context.Context, userID uuid.UUID, id string) error
	}

	mealService struct {
		mealRepository MealRepository
		blob           blob.BlobService
		loc            *time.Location
		now            func() time.Time
		log            logrus.FieldLogger
	}
)

var quotaStatuses = []string{string(domain.StatusPending), string(domain.StatusCompleted)}

func NewMealService(mealRepository MealRepository, blobService blob.BlobService, loc *time.Location, log logrus.FieldLogger) MealService {
	if loc == nil {
		loc = time.Local
	}
	return &mealService{
		mealRepository: mealRepository,
		blob:           blobService,
		loc:            loc,
		now:            time.Now,
		log:            log,
	}
}

func (s *mealService) CreateMealRecord(ctx context.Context, user domain.UserContext, image domain.ImageRef, timing domain.MealTiming, capturedAt time.Time) (domain.MealRecord, error) {
	record := domain.MealRecord{
		ID:         uuid.New(),
		User:       user,
		CapturedAt: capturedAt,
		MealTiming: timing,
		Image:      image,
		Status:     domain.StatusPending,
	}

	userID, ok := user.UserID()
	if !ok {
		return record, nil
	}

	entity := &entities.MealRecord{
		ID:         record.ID,
		UserID:     userID,
		CapturedAt: capturedAt,
		MealTiming: string(timing),
		ImagePath:  image.Path,
		ImageData:  image.Inline,
		Status:     string(domain.StatusPending),
	}
	if err := s.mealRepository.CreateMealRecord(ctx, entity); err != nil {
		return domain.MealRecord{}, fmt.Errorf("create meal record: %w", err)
	}
	return record, nil
}

// PersistAnalysis stores the analysis for an authenticated record. On failure
// the record is moved to failed before the error is returned, and the
// returned *domain.PersistError says whether that worked.
func (s *mealService) PersistAnalysis(ctx context.Context, record domain.MealRecord, result domain.AnalysisResult) error {
	userID, ok := record.User.UserID()
	if !ok {
		return nil
	}

	err := s.persist(ctx, userID, record.ID, result)
	if err == nil {
		return nil
	}

	perr := &domain.PersistError{
		MealID:       record.ID.String(),
		Err:          err,
		Compensation: domain.CompensationOutcome{Attempted: true},
	}
	if cerr := s.mealRepository.MarkFailed(ctx, record.ID); cerr != nil {
		perr.Compensation.Err = cerr
		s.log.WithFields(logrus.Fields{"task": "persist", "user_id": userID, "meal_id": record.ID}).
			Errorf("compensating mark-failed write failed: %v", cerr)
	} else {
		perr.Compensation.Succeeded = true
	}
	return perr
}

func (s *mealService) persist(ctx context.Context, userID, mealID uuid.UUID, result domain.AnalysisResult) error {
	analysis, advice, err := toEntities(userID, result)
	if err != nil {
		return err
	}
	return s.mealRepository.SaveAnalysis(ctx, mealID, analysis, advice)
}

func toEntities(userID uuid.UUID, result domain.AnalysisResult) (*entities.AnalysisResult, []*entities.AdviceRecord, error) {
	foods, err := json.Marshal(result.DetectedFoods)
	if err != nil {
		return nil, nil, fmt.Errorf("encode detected foods: %w", err)
	}
	nutrition, err := json.Marshal(result.NutritionAnalysis)
	if err != nil {
		return nil, nil, fmt.Errorf("encode nutrition: %w", err)
	}

	score := result.BeautyScore
	analysis := &entities.AnalysisResult{
		UserID:           userID,
		DetectedFoods:    datatypes.JSON(foods),
		Nutrition:        datatypes.JSON(nutrition),
		SkinCareScore:    score.SkinCare,
		AntiAgingScore:   score.AntiAging,
		DetoxScore:       score.Detox,
		CirculationScore: score.Circulation,
		HairNailsScore:   score.HairNails,
		OverallScore:     score.Overall,
		ImmediateAdvice:  result.ImmediateAdvice,
		NextMealAdvice:   result.NextMealAdvice,
		BeautyBenefits:   entities.StringList(result.BeautyBenefits),
	}
	advice := []*entities.AdviceRecord{
		{UserID: userID, AdviceType: string(domain.AdviceImmediate), Content: result.ImmediateAdvice},
		{UserID: userID, AdviceType: string(domain.AdviceNextMeal), Content: result.NextMealAdvice},
	}
	return analysis, advice, nil
}

func (s *mealService) MarkFailed(ctx context.Context, record domain.MealRecord) error {
	if record.User.IsGuest() {
		return nil
	}
	return s.mealRepository.MarkFailed(ctx, record.ID)
}

// CountToday counts pending and completed records created since local
// midnight.
func (s *mealService) CountToday(ctx context.Context, userID uuid.UUID) (int64, error) {
	now := s.now().In(s.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	return s.mealRepository.CountMealRecordsBetween(ctx, userID, start, start.AddDate(0, 0, 1), quotaStatuses)
}

func (s *mealService) GetMeals(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.MealRecordResponse, int64, error) {
	records, count, err := s.mealRepository.GetMealRecords(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]domain.MealRecordResponse, 0, len(records))
	for _, r := range records {
		res = append(res, s.toResponse(ctx, r))
	}
	return res, count, nil
}

func (s *mealService) GetMealByID(ctx context.Context, userID uuid.UUID, id string) (domain.MealDetailResponse, error) {
	record, err := s.ownedRecord(ctx, userID, id)
	if err != nil {
		return domain.MealDetailResponse{}, err
	}

	detail := domain.MealDetailResponse{MealRecordResponse: s.toResponse(ctx, record)}
	if record.Analysis != nil {
		analysis, err := fromEntity(record.Analysis)
		if err != nil {
			return domain.MealDetailResponse{}, err
		}
		detail.Analysis = &analysis
	}
	return detail, nil
}

func (s *mealService) DeleteMeal(ctx context.Context, userID uuid.UUID, id string) error {
	record, err := s.ownedRecord(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.mealRepository.DeleteMealRecord(ctx, record.ID); err != nil {
		return err
	}
	if err := s.blob.Delete(ctx, imageRef(record)); err != nil {
		s.log.WithFields(logrus.Fields{"task": "delete_meal", "meal_id": record.ID}).
			Warnf("failed to delete stored image: %v", err)
	}
	return nil
}

func (s *mealService) ownedRecord(ctx context.Context, userID uuid.UUID, id string) (*entities.MealRecord, error) {
	mealID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	record, err := s.mealRepository.GetMealRecordByID(ctx, mealID)
	if err != nil {
		return nil, err
	}
	if record.UserID != userID {
		return nil, domain.ErrUnauthorizedAccess
	}
	return record, nil
}

func (s *mealService) toResponse(ctx context.Context, r *entities.MealRecord) domain.MealRecordResponse {
	res := domain.MealRecordResponse{
		ID:         r.ID.String(),
		CapturedAt: r.CapturedAt,
		MealTiming: domain.MealTiming(r.MealTiming),
		Status:     domain.AnalysisStatus(r.Status),
	}
	url, err := s.blob.Resolve(ctx, imageRef(r))
	if err != nil {
		s.log.WithFields(logrus.Fields{"task": "resolve_image", "meal_id": r.ID}).Warnf("failed to sign image url: %v", err)
	} else {
		res.ImageURL = url
	}
	return res
}

func imageRef(r *entities.MealRecord) domain.ImageRef {
	return domain.ImageRef{Path: r.ImagePath, Inline: r.ImageData}
}

func fromEntity(a *entities.AnalysisResult) (domain.AnalysisResult, error) {
	res := domain.AnalysisResult{
		BeautyScore: domain.BeautyScore{
			CategoryScores: domain.CategoryScores{
				SkinCare:    a.SkinCareScore,
				AntiAging:   a.AntiAgingScore,
				Detox:       a.DetoxScore,
				Circulation: a.CirculationScore,
				HairNails:   a.HairNailsScore,
			},
			Overall: a.OverallScore,
		},
		ImmediateAdvice: a.ImmediateAdvice,
		NextMealAdvice:  a.NextMealAdvice,
		BeautyBenefits:  []string(a.BeautyBenefits),
	}
	if len(a.DetectedFoods) > 0 {
		if err := json.Unmarshal(a.DetectedFoods, &res.DetectedFoods); err != nil {
			return domain.AnalysisResult{}, fmt.Errorf("decode detected foods: %w", err)
		}
	}
	if len(a.Nutrition) > 0 {
		if err := json.Unmarshal(a.Nutrition, &res.NutritionAnalysis); err != nil {
			return domain.AnalysisResult{}, fmt.Errorf("decode nutrition: %w", err)
		}
	}
	return res, nil
}
