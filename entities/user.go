package entities

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Email           string     `gorm:"uniqueIndex;not null" json:"email"`
	Name            string     `json:"name"`
	IsPremium       bool       `gorm:"default:false" json:"is_premium"`
	BeautyFocus     StringList `json:"beauty_focus"`
	ExperienceLevel string     `gorm:"default:beginner" json:"experience_level"`

	Timestamp
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
