package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User holds identity plus derived gamification stats.
// Points, Level, LevelName, CurrentStreak and LongestStreak are all derived
// from the point_history ledger — they are never edited directly, only
// recomputed when a ledger event is recorded.
type User struct {
	ID    string `gorm:"primaryKey;type:uuid" json:"id"`
	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`

	CurrentEducation *string `json:"current_education,omitempty"`
	CurrentRole      *string `json:"current_role,omitempty"`

	Points        int    `gorm:"default:0" json:"points"`
	Level         int    `gorm:"default:1" json:"level"`
	LevelName     string `gorm:"default:'Novice Seeker'" json:"level_name"`
	CurrentStreak int    `gorm:"default:0" json:"current_streak"`
	LongestStreak int    `gorm:"default:0" json:"longest_streak"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	// UpdatedAt is the streak clock: timestamp of the user's last
	// point-earning activity. Nil until the first event. Advanced by the
	// gamification service only, so autoUpdateTime is disabled.
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`

	Applications    []Application    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	NetworkContacts []NetworkContact `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PointHistory    []PointHistory   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
