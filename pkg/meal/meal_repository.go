package meal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"beautyfood-backend/domain"
	"beautyfood-backend/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errNotPending = errors.New("meal record is not pending")

type (
	MealRepository interface {
		CreateMealRecord(ctx context.Context, record *entities.MealRecord) error
		GetMealRecordByID(ctx context.Context, id uuid.UUID) (*entities.MealRecord, error)
		GetMealRecords(ctx context.Context, userID uuid.UUID, page, limit int) ([]*entities.MealRecord, int64, error)
		// SaveAnalysis writes the analysis, its advice rows and the completed
		// status in one transaction.
		SaveAnalysis(ctx context.Context, mealID uuid.UUID, analysis *entities.AnalysisResult, advice []*entities.AdviceRecord) error
		MarkFailed(ctx context.Context, mealID uuid.UUID) error
		CountMealRecordsBetween(ctx context.Context, userID uuid.UUID, from, to time.Time, statuses []string) (int64, error)
		DeleteMealRecord(ctx context.Context, id uuid.UUID) error
		// PurgeUser hard-deletes every record, analysis and advice row of a
		// user and returns the image paths the records pointed at.
		PurgeUser(ctx context.Context, userID uuid.UUID) ([]string, error)
	}

	mealRepository struct {
		db *gorm.DB
	}
)

func NewMealRepository(db *gorm.DB) MealRepository {
	return &mealRepository{db: db}
}

func (r *mealRepository) CreateMealRecord(ctx context.Context, record *entities.MealRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *mealRepository) GetMealRecordByID(ctx context.Context, id uuid.UUID) (*entities.MealRecord, error) {
	var record entities.MealRecord
	err := r.db.WithContext(ctx).
		Preload("Analysis").
		Preload("Advice").
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMealRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *mealRepository) GetMealRecords(ctx context.Context, userID uuid.UUID, page, limit int) ([]*entities.MealRecord, int64, error) {
	var records []*entities.MealRecord
	var count int64

	offset := (page - 1) * limit
	query := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&entities.MealRecord{}).Where("user_id = ?", userID)
	}

	if err := query().Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query().Preload("Analysis").
		Offset(offset).Limit(limit).
		Order("captured_at desc").
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, count, nil
}

func (r *mealRepository) SaveAnalysis(ctx context.Context, mealID uuid.UUID, analysis *entities.AnalysisResult, advice []*entities.AdviceRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		analysis.MealRecordID = mealID
		if err := tx.Create(analysis).Error; err != nil {
			return fmt.Errorf("save analysis: %w", err)
		}

		for _, a := range advice {
			a.MealRecordID = mealID
		}
		if len(advice) > 0 {
			if err := tx.Create(&advice).Error; err != nil {
				return fmt.Errorf("save advice: %w", err)
			}
		}

		res := tx.Model(&entities.MealRecord{}).
			Where("id = ? AND status = ?", mealID, string(domain.StatusPending)).
			Update("status", string(domain.StatusCompleted))
		if res.Error != nil {
			return fmt.Errorf("complete meal record: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errNotPending
		}
		return nil
	})
}

// MarkFailed only moves pending records; completed and failed are terminal.
func (r *mealRepository) MarkFailed(ctx context.Context, mealID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&entities.MealRecord{}).
		Where("id = ? AND status = ?", mealID, string(domain.StatusPending)).
		Update("status", string(domain.StatusFailed)).Error
}

// CountMealRecordsBetween counts records created in [from, to). Deleted
// records still count so removing a meal does not restore quota.
func (r *mealRepository) CountMealRecordsBetween(ctx context.Context, userID uuid.UUID, from, to time.Time, statuses []string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&entities.MealRecord{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Where("status IN ?", statuses).
		Count(&count).Error
	return count, err
}

func (r *mealRepository) DeleteMealRecord(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meal_record_id = ?", id).Delete(&entities.AdviceRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("meal_record_id = ?", id).Delete(&entities.AnalysisResult{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entities.MealRecord{}).Error
	})
}

func (r *mealRepository) PurgeUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Model(&entities.MealRecord{}).
			Where("user_id = ? AND image_path <> ''", userID).
			Pluck("image_path", &paths).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&entities.AdviceRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&entities.AnalysisResult{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("user_id = ?", userID).Delete(&entities.MealRecord{}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("purge meals of %s: %w", userID, err)
	}
	return paths, nil
}
