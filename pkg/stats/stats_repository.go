package stats

import (
	"context"
	"errors"
	"fmt"

	"beautyfood-backend/domain"
	"beautyfood-backend/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const table = "daily_beauty_stats"

// score pairs a stored rounded mean with the integer sum it is derived from.
var scoreColumns = []struct{ score, sum string }{
	{"daily_score", "overall_sum"},
	{"skin_care_score", "skin_care_sum"},
	{"anti_aging_score", "anti_aging_sum"},
	{"detox_score", "detox_sum"},
	{"circulation_score", "circulation_sum"},
	{"hair_nails_score", "hair_nails_sum"},
	{"protein_balance", "protein_sum"},
	{"fiber_balance", "fiber_sum"},
	{"vitamin_balance", "vitamin_sum"},
	{"mineral_balance", "mineral_sum"},
}

type (
	StatsRepository interface {
		// FoldDaily adds one analysis to the (user, date) row, creating it if
		// needed, in a single statement.
		FoldDaily(ctx context.Context, fold *entities.DailyBeautyStat) error
		GetDaily(ctx context.Context, userID uuid.UUID, date string) (*entities.DailyBeautyStat, error)
		GetRange(ctx context.Context, userID uuid.UUID, from, to string) ([]entities.DailyBeautyStat, error)
		GetMonth(ctx context.Context, userID uuid.UUID, yearMonth string) ([]entities.DailyBeautyStat, error)
		SaveDaily(ctx context.Context, stat *entities.DailyBeautyStat) error
		DeleteForUser(ctx context.Context, userID uuid.UUID) (int64, error)
	}

	statsRepository struct {
		db *gorm.DB
	}
)

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

// foldAssignments builds the ON CONFLICT SET clause. Every right-hand side
// reads the pre-update row, so the new mean is
// round_half_up((sum+new)/(count+1)) computed in integers as
// (2*(sum+new) + count+1) / (2*(count+1)).
func foldAssignments() clause.Set {
	set := clause.Set{
		{Column: clause.Column{Name: "analyses_count"}, Value: gorm.Expr(table + ".analyses_count + 1")},
		{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("excluded.updated_at")},
	}
	for _, c := range scoreColumns {
		newSum := fmt.Sprintf("(%s.%s + excluded.%s)", table, c.sum, c.sum)
		newCount := fmt.Sprintf("(%s.analyses_count + 1)", table)
		set = append(set,
			clause.Assignment{Column: clause.Column{Name: c.sum}, Value: gorm.Expr(newSum)},
			clause.Assignment{Column: clause.Column{Name: c.score}, Value: gorm.Expr(
				fmt.Sprintf("(2 * %s + %s) / (2 * %s)", newSum, newCount, newCount),
			)},
		)
	}
	return set
}

func (r *statsRepository) FoldDaily(ctx context.Context, fold *entities.DailyBeautyStat) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "stat_date"}},
		DoUpdates: foldAssignments(),
	}).Create(fold).Error
}

func (r *statsRepository) GetDaily(ctx context.Context, userID uuid.UUID, date string) (*entities.DailyBeautyStat, error) {
	var stat entities.DailyBeautyStat
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND stat_date = ?", userID, date).
		First(&stat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDailyStatNotFound
		}
		return nil, err
	}
	return &stat, nil
}

func (r *statsRepository) GetRange(ctx context.Context, userID uuid.UUID, from, to string) ([]entities.DailyBeautyStat, error) {
	var stats []entities.DailyBeautyStat
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND stat_date BETWEEN ? AND ?", userID, from, to).
		Order("stat_date asc").
		Find(&stats).Error
	return stats, err
}

func (r *statsRepository) GetMonth(ctx context.Context, userID uuid.UUID, yearMonth string) ([]entities.DailyBeautyStat, error) {
	var stats []entities.DailyBeautyStat
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND year_month = ?", userID, yearMonth).
		Order("stat_date asc").
		Find(&stats).Error
	return stats, err
}

// SaveDaily writes a whole row, replacing any existing one for the same day.
// Used by the seeding tool.
func (r *statsRepository) SaveDaily(ctx context.Context, stat *entities.DailyBeautyStat) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "stat_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"week_start", "year_month", "analyses_count",
			"daily_score", "skin_care_score", "anti_aging_score", "detox_score", "circulation_score", "hair_nails_score",
			"protein_balance", "fiber_balance", "vitamin_balance", "mineral_balance",
			"overall_sum", "skin_care_sum", "anti_aging_sum", "detox_sum", "circulation_sum", "hair_nails_sum",
			"protein_sum", "fiber_sum", "vitamin_sum", "mineral_sum", "updated_at",
		}),
	}).Create(stat).Error
}

func (r *statsRepository) DeleteForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entities.DailyBeautyStat{})
	return res.RowsAffected, res.Error
}
