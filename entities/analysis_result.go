package entities

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AnalysisResult struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	MealRecordID  uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"meal_record_id"`
	UserID        uuid.UUID      `gorm:"type:uuid;index" json:"user_id"`
	DetectedFoods datatypes.JSON `gorm:"type:jsonb" json:"detected_foods"`
	Nutrition     datatypes.JSON `gorm:"type:jsonb" json:"nutrition_analysis"`

	SkinCareScore    int `json:"skin_care_score"`
	AntiAgingScore   int `json:"anti_aging_score"`
	DetoxScore       int `json:"detox_score"`
	CirculationScore int `json:"circulation_score"`
	HairNailsScore   int `json:"hair_nails_score"`
	OverallScore     int `json:"overall_score"`

	ImmediateAdvice string     `gorm:"type:text" json:"immediate_advice"`
	NextMealAdvice  string     `gorm:"type:text" json:"next_meal_advice"`
	BeautyBenefits  StringList `json:"beauty_benefits"`

	Timestamp
}

func (a *AnalysisResult) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type AdviceRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	MealRecordID uuid.UUID `gorm:"type:uuid;index" json:"meal_record_id"`
	UserID       uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	AdviceType   string    `gorm:"type:varchar(16)" json:"advice_type"` // immediate, next_meal
	Content      string    `gorm:"type:text" json:"content"`

	Timestamp
}

func (a *AdviceRecord) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
