package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NetworkContact is a person in the user's professional network.
// ApplicationID links the contact to the application that introduced them;
// a contact may additionally be the referral source of a *different*
// application via Application.ReferralContactID.
type NetworkContact struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;index;not null" json:"user_id"`

	Name             string  `gorm:"not null" json:"name"`
	Email            *string `json:"email,omitempty"`
	Company          *string `json:"company,omitempty"`
	RelationshipType *string `json:"relationship_type,omitempty"`

	// ConnectionStrength ranges 1 (weak tie) to 5 (close contact)
	ConnectionStrength int        `gorm:"default:1" json:"connection_strength"`
	LastContactDate    *time.Time `json:"last_contact_date,omitempty"`
	Notes              *string    `gorm:"type:text" json:"notes,omitempty"`

	ApplicationID *string `gorm:"type:uuid" json:"application_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *NetworkContact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
