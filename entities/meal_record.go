package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MealRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	CapturedAt time.Time `json:"captured_at"`
	MealTiming string    `gorm:"type:varchar(16)" json:"meal_timing"` // breakfast, lunch, dinner, snack
	ImagePath  string    `json:"image_path,omitempty"`
	ImageData  string    `gorm:"type:text" json:"-"` // inline data URI when the upload was skipped
	Status     string    `gorm:"type:varchar(16);default:pending" json:"status"`

	User     *User           `gorm:"foreignKey:UserID" json:"-"`
	Analysis *AnalysisResult `gorm:"foreignKey:MealRecordID" json:"analysis,omitempty"`
	Advice   []AdviceRecord  `gorm:"foreignKey:MealRecordID" json:"advice,omitempty"`
	Timestamp
}

func (m *MealRecord) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
