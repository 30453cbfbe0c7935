package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApplicationStatus is the workflow state of a job application
type ApplicationStatus string

const (
	StatusApplied         ApplicationStatus = "Applied"
	StatusReplied         ApplicationStatus = "Replied"
	StatusPhoneScreen     ApplicationStatus = "Phone Screen"
	StatusTechnicalRound1 ApplicationStatus = "Technical Round 1"
	StatusTechnicalRound2 ApplicationStatus = "Technical Round 2"
	StatusFinalRound      ApplicationStatus = "Final Round"
	StatusOffer           ApplicationStatus = "Offer"
	StatusRejected        ApplicationStatus = "Rejected"
	StatusGhosted         ApplicationStatus = "Ghosted"
)

// AllStatuses in pipeline order
var AllStatuses = []ApplicationStatus{
	StatusApplied,
	StatusReplied,
	StatusPhoneScreen,
	StatusTechnicalRound1,
	StatusTechnicalRound2,
	StatusFinalRound,
	StatusOffer,
	StatusRejected,
	StatusGhosted,
}

// StatusTransitions maps each status to the set of statuses it may move to.
// Anything not listed here is an illegal transition — no wildcard, no
// same-status moves. Rejected and Ghosted are terminal.
var StatusTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusApplied:         {StatusReplied, StatusRejected, StatusGhosted},
	StatusReplied:         {StatusPhoneScreen, StatusRejected, StatusGhosted},
	StatusPhoneScreen:     {StatusTechnicalRound1, StatusRejected, StatusGhosted},
	StatusTechnicalRound1: {StatusTechnicalRound2, StatusRejected, StatusGhosted},
	StatusTechnicalRound2: {StatusFinalRound, StatusRejected, StatusGhosted},
	StatusFinalRound:      {StatusOffer, StatusRejected, StatusGhosted},
	StatusOffer:           {StatusRejected, StatusGhosted}, // an extended offer can still fall through
	StatusRejected:        {},
	StatusGhosted:         {},
}

// IsValid reports whether s is a member of the status enum.
func (s ApplicationStatus) IsValid() bool {
	_, ok := StatusTransitions[s]
	return ok
}

// IsTerminal reports whether s has no outgoing transitions.
func (s ApplicationStatus) IsTerminal() bool {
	return s.IsValid() && len(StatusTransitions[s]) == 0
}

// CanTransitionTo reports whether s → next is in the transition table.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range StatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Application is one user's candidacy for a role
type Application struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;index;not null" json:"user_id"`

	CompanyName   string `gorm:"not null" json:"company_name"`
	PositionTitle string `gorm:"not null" json:"position_title"`
	Location      string `gorm:"not null" json:"location"`
	Slug          string `gorm:"index" json:"slug"`

	JobURL         *string `json:"job_url,omitempty"`
	SalaryRange    *string `json:"salary_range,omitempty"`
	TechStack      *string `json:"tech_stack,omitempty"`
	JobBoardSource *string `json:"job_board_source,omitempty"`
	PriorityStars  int     `gorm:"default:0" json:"priority_stars"`
	Notes          *string `gorm:"type:text" json:"notes,omitempty"`

	Status      ApplicationStatus `gorm:"type:varchar(32);not null;default:'Applied'" json:"status"`
	AppliedDate time.Time         `json:"applied_date"`

	// ReferralContactID points at the contact who referred this application.
	// Distinct from NetworkContact.ApplicationID (the application that
	// introduced the contact) — the two links are independent.
	ReferralContactID *string `gorm:"type:uuid" json:"referral_contact_id,omitempty"`

	AttachmentURL *string `gorm:"type:text" json:"attachment_url,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	History         []ApplicationHistory `gorm:"constraint:OnDelete:CASCADE" json:"history,omitempty"`
	ReferralContact *NetworkContact      `gorm:"foreignKey:ReferralContactID;constraint:OnDelete:SET NULL" json:"referral_contact,omitempty"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// ApplicationHistory is the immutable audit row for one status change.
// Append-only: rows are never updated, and only removed by cascade when the
// parent application is deleted. OldStatus is nil solely on the genesis row
// written at application creation.
type ApplicationHistory struct {
	ID            string             `gorm:"primaryKey;type:uuid" json:"id"`
	ApplicationID string             `gorm:"type:uuid;index;not null" json:"application_id"`
	OldStatus     *ApplicationStatus `gorm:"type:varchar(32)" json:"old_status"`
	NewStatus     ApplicationStatus  `gorm:"type:varchar(32);not null" json:"new_status"`
	ChangedAt     time.Time          `gorm:"autoCreateTime" json:"changed_at"`
	Notes         *string            `gorm:"type:text" json:"notes,omitempty"`
}

func (h *ApplicationHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}
