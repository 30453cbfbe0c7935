package services

import (
	"errors"
	"fmt"
	"time"

	"job-tracker-system/models"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// ApplicationService owns the application lifecycle: creation, field
// updates, and the status transition engine with its audit trail.
type ApplicationService struct {
	DB           *gorm.DB
	Gamification *GamificationService
}

func NewApplicationService(db *gorm.DB, gamification *GamificationService) *ApplicationService {
	return &ApplicationService{DB: db, Gamification: gamification}
}

// ApplicationInput carries the caller-supplied fields for a new application.
// Status is not an input — every application starts at Applied.
type ApplicationInput struct {
	CompanyName       string     `json:"company_name"`
	PositionTitle     string     `json:"position_title"`
	Location          string     `json:"location"`
	JobURL            *string    `json:"job_url"`
	SalaryRange       *string    `json:"salary_range"`
	TechStack         *string    `json:"tech_stack"`
	JobBoardSource    *string    `json:"job_board_source"`
	PriorityStars     int        `json:"priority_stars"`
	Notes             *string    `json:"notes"`
	AppliedDate       *time.Time `json:"applied_date"`
	ReferralContactID *string    `json:"referral_contact_id"`
}

// ApplicationPatch carries a partial field update; nil means "leave as is".
// Status is deliberately absent — it only moves through UpdateStatus.
type ApplicationPatch struct {
	CompanyName       *string    `json:"company_name"`
	PositionTitle     *string    `json:"position_title"`
	Location          *string    `json:"location"`
	JobURL            *string    `json:"job_url"`
	SalaryRange       *string    `json:"salary_range"`
	TechStack         *string    `json:"tech_stack"`
	JobBoardSource    *string    `json:"job_board_source"`
	PriorityStars     *int       `json:"priority_stars"`
	Notes             *string    `json:"notes"`
	AppliedDate       *time.Time `json:"applied_date"`
	ReferralContactID *string    `json:"referral_contact_id"`
}

// Create inserts a new application at Applied, writes the genesis history
// row (old_status = NULL — the act of applying is the first audit entry)
// and awards the creation points, all in one transaction.
func (s *ApplicationService) Create(userID string, in ApplicationInput) (*models.Application, error) {
	if in.CompanyName == "" || in.PositionTitle == "" || in.Location == "" {
		return nil, validationErr("company_name, position_title and location are required")
	}

	app := &models.Application{
		UserID:         userID,
		CompanyName:    in.CompanyName,
		PositionTitle:  in.PositionTitle,
		Location:       in.Location,
		Slug:           slug.Make(in.CompanyName + " " + in.PositionTitle),
		JobURL:         in.JobURL,
		SalaryRange:    in.SalaryRange,
		TechStack:      in.TechStack,
		JobBoardSource: in.JobBoardSource,
		PriorityStars:  in.PriorityStars,
		Notes:          in.Notes,
		Status:         models.StatusApplied,
	}
	if in.AppliedDate != nil {
		app.AppliedDate = *in.AppliedDate
	} else {
		app.AppliedDate = s.Gamification.Now()
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if in.ReferralContactID != nil {
			if err := s.checkContactOwnership(tx, userID, *in.ReferralContactID); err != nil {
				return err
			}
			app.ReferralContactID = in.ReferralContactID
		}

		if err := tx.Create(app).Error; err != nil {
			return err
		}

		genesisNote := "Initial application creation"
		genesis := models.ApplicationHistory{
			ApplicationID: app.ID,
			OldStatus:     nil,
			NewStatus:     models.StatusApplied,
			Notes:         &genesisNote,
		}
		if err := tx.Create(&genesis).Error; err != nil {
			return err
		}

		ref := &models.PointReference{Kind: models.ReferenceApplication, ID: app.ID}
		reason := fmt.Sprintf("Applied to %s", app.CompanyName)
		return s.Gamification.RecordEvent(tx, &user, PointsCreateApplication, reason, ref)
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// UpdateStatus applies one step of the status workflow. An illegal move
// returns *InvalidTransitionError and leaves every row untouched; a legal
// move updates the application, appends the audit row and awards the
// status-change points atomically.
func (s *ApplicationService) UpdateStatus(userID, appID string, newStatus models.ApplicationStatus, notes *string) (*models.Application, *models.ApplicationHistory, error) {
	if !newStatus.IsValid() {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownStatus, newStatus)
	}

	var app models.Application
	var entry models.ApplicationHistory

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", appID, userID).First(&app).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		oldStatus := app.Status
		if !oldStatus.CanTransitionTo(newStatus) {
			return &InvalidTransitionError{From: oldStatus, To: newStatus}
		}

		app.Status = newStatus
		if err := tx.Save(&app).Error; err != nil {
			return err
		}

		entry = models.ApplicationHistory{
			ApplicationID: app.ID,
			OldStatus:     &oldStatus,
			NewStatus:     newStatus,
			Notes:         notes,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		var user models.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			return err
		}
		ref := &models.PointReference{Kind: models.ReferenceApplication, ID: app.ID}
		reason := fmt.Sprintf("Moved %s to %s", app.CompanyName, newStatus)
		return s.Gamification.RecordEvent(tx, &user, PointsStatusChange, reason, ref)
	})
	if err != nil {
		return nil, nil, err
	}
	return &app, &entry, nil
}

// Update applies a partial field mutation (never status) and awards the
// update points. Field updates do not touch the history table.
func (s *ApplicationService) Update(userID, appID string, patch ApplicationPatch) (*models.Application, error) {
	var app models.Application

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", appID, userID).First(&app).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if patch.CompanyName != nil {
			app.CompanyName = *patch.CompanyName
		}
		if patch.PositionTitle != nil {
			app.PositionTitle = *patch.PositionTitle
		}
		if patch.CompanyName != nil || patch.PositionTitle != nil {
			app.Slug = slug.Make(app.CompanyName + " " + app.PositionTitle)
		}
		if patch.Location != nil {
			app.Location = *patch.Location
		}
		if patch.JobURL != nil {
			app.JobURL = patch.JobURL
		}
		if patch.SalaryRange != nil {
			app.SalaryRange = patch.SalaryRange
		}
		if patch.TechStack != nil {
			app.TechStack = patch.TechStack
		}
		if patch.JobBoardSource != nil {
			app.JobBoardSource = patch.JobBoardSource
		}
		if patch.PriorityStars != nil {
			app.PriorityStars = *patch.PriorityStars
		}
		if patch.Notes != nil {
			app.Notes = patch.Notes
		}
		if patch.AppliedDate != nil {
			app.AppliedDate = *patch.AppliedDate
		}
		if patch.ReferralContactID != nil {
			if err := s.checkContactOwnership(tx, userID, *patch.ReferralContactID); err != nil {
				return err
			}
			app.ReferralContactID = patch.ReferralContactID
		}

		if err := tx.Save(&app).Error; err != nil {
			return err
		}

		var user models.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			return err
		}
		ref := &models.PointReference{Kind: models.ReferenceApplication, ID: app.ID}
		return s.Gamification.RecordEvent(tx, &user, PointsUpdateApplication, "Updated application", ref)
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Get returns one application scoped to its owner.
func (s *ApplicationService) Get(userID, appID string) (*models.Application, error) {
	var app models.Application
	err := s.DB.Where("id = ? AND user_id = ?", appID, userID).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// List returns the user's applications, newest first.
func (s *ApplicationService) List(userID string, offset, limit int) ([]models.Application, error) {
	if limit < 1 || limit > 200 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	var apps []models.Application
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&apps).Error
	return apps, err
}

// History returns the audit rows for one application in changed_at order;
// replaying them reconstructs the exact status sequence.
func (s *ApplicationService) History(userID, appID string) ([]models.ApplicationHistory, error) {
	if _, err := s.Get(userID, appID); err != nil {
		return nil, err
	}
	var rows []models.ApplicationHistory
	err := s.DB.Where("application_id = ?", appID).
		Order("changed_at ASC").
		Find(&rows).Error
	return rows, err
}

// Delete removes an application and, via cascade, its history rows.
// Contacts introduced by it keep existing with their link cleared.
func (s *ApplicationService) Delete(userID, appID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var app models.Application
		if err := tx.Where("id = ? AND user_id = ?", appID, userID).First(&app).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Model(&models.NetworkContact{}).
			Where("application_id = ?", appID).
			Update("application_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("application_id = ?", appID).
			Delete(&models.ApplicationHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&app).Error
	})
}

// SetAttachment stores the uploaded attachment URL on the application.
func (s *ApplicationService) SetAttachment(userID, appID, url string) (*models.Application, error) {
	app, err := s.Get(userID, appID)
	if err != nil {
		return nil, err
	}
	app.AttachmentURL = &url
	if err := s.DB.Save(app).Error; err != nil {
		return nil, err
	}
	return app, nil
}

func (s *ApplicationService) checkContactOwnership(tx *gorm.DB, userID, contactID string) error {
	var count int64
	if err := tx.Model(&models.NetworkContact{}).
		Where("id = ? AND user_id = ?", contactID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("referral contact: %w", ErrNotFound)
	}
	return nil
}
