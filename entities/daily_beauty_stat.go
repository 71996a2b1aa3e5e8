package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailyBeautyStat is the running per-day aggregate for one user. Sum columns
// hold the exact integer totals of every folded analysis; the score columns
// are the rounded means derived from them.
type DailyBeautyStat struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_daily_stat_user_date" json:"user_id"`
	StatDate  string    `gorm:"type:varchar(10);uniqueIndex:idx_daily_stat_user_date" json:"stat_date"`
	WeekStart string    `gorm:"type:varchar(10);index" json:"week_start"`
	YearMonth string    `gorm:"type:varchar(7);index" json:"year_month"`

	AnalysesCount int `gorm:"not null;default:0" json:"daily_analyses_count"`

	DailyScore       int `json:"daily_score"`
	SkinCareScore    int `json:"skin_care_score"`
	AntiAgingScore   int `json:"anti_aging_score"`
	DetoxScore       int `json:"detox_score"`
	CirculationScore int `json:"circulation_score"`
	HairNailsScore   int `json:"hair_nails_score"`

	ProteinBalance int `json:"protein_balance"`
	FiberBalance   int `json:"fiber_balance"`
	VitaminBalance int `json:"vitamin_balance"`
	MineralBalance int `json:"mineral_balance"`

	OverallSum     int `json:"-"`
	SkinCareSum    int `json:"-"`
	AntiAgingSum   int `json:"-"`
	DetoxSum       int `json:"-"`
	CirculationSum int `json:"-"`
	HairNailsSum   int `json:"-"`
	ProteinSum     int `json:"-"`
	FiberSum       int `json:"-"`
	VitaminSum     int `json:"-"`
	MineralSum     int `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *DailyBeautyStat) BeforeCreate(_ *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
