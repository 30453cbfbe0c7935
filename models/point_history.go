package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReferenceKind tags the entity type a ledger row points back to
type ReferenceKind string

const (
	ReferenceApplication    ReferenceKind = "application"
	ReferenceNetworkContact ReferenceKind = "network_contact"
)

// PointReference is a typed pointer to the entity that earned the points.
// Stored as the (reference_type, reference_id) column pair but exposed to
// callers as a tagged value so the two columns never drift apart.
type PointReference struct {
	Kind ReferenceKind `json:"kind"`
	ID   string        `json:"id"`
}

// PointHistory is one immutable row of the gamification ledger.
// A user's total points is always the sum of their rows here; the cached
// User.Points counter is kept in lockstep and reconciled against this table,
// never edited on its own.
type PointHistory struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;index;not null" json:"user_id"`

	Points int    `gorm:"not null" json:"points"` // signed, nonzero
	Reason string `gorm:"not null" json:"reason"`

	ReferenceType *string `json:"reference_type,omitempty"`
	ReferenceID   *string `gorm:"type:uuid" json:"reference_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (p *PointHistory) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// SetReference stores ref into the column pair. A nil ref clears both.
func (p *PointHistory) SetReference(ref *PointReference) {
	if ref == nil {
		p.ReferenceType = nil
		p.ReferenceID = nil
		return
	}
	kind := string(ref.Kind)
	id := ref.ID
	p.ReferenceType = &kind
	p.ReferenceID = &id
}

// Reference reads the column pair back as a tagged value, nil if unset.
func (p *PointHistory) Reference() *PointReference {
	if p.ReferenceType == nil || p.ReferenceID == nil {
		return nil
	}
	return &PointReference{Kind: ReferenceKind(*p.ReferenceType), ID: *p.ReferenceID}
}
