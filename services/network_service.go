package services

import (
	"errors"
	"fmt"
	"time"

	"job-tracker-system/models"

	"gorm.io/gorm"
)

// NetworkService manages the user's contact list and the points earned for
// growing it.
type NetworkService struct {
	DB           *gorm.DB
	Gamification *GamificationService
}

func NewNetworkService(db *gorm.DB, gamification *GamificationService) *NetworkService {
	return &NetworkService{DB: db, Gamification: gamification}
}

// ContactInput carries caller-supplied fields for a new contact
type ContactInput struct {
	Name               string     `json:"name"`
	Email              *string    `json:"email"`
	Company            *string    `json:"company"`
	RelationshipType   *string    `json:"relationship_type"`
	ConnectionStrength int        `json:"connection_strength"`
	LastContactDate    *time.Time `json:"last_contact_date"`
	Notes              *string    `json:"notes"`
	ApplicationID      *string    `json:"application_id"`
}

// ContactPatch is a partial update; nil means "leave as is"
type ContactPatch struct {
	Name               *string    `json:"name"`
	Email              *string    `json:"email"`
	Company            *string    `json:"company"`
	RelationshipType   *string    `json:"relationship_type"`
	ConnectionStrength *int       `json:"connection_strength"`
	LastContactDate    *time.Time `json:"last_contact_date"`
	Notes              *string    `json:"notes"`
	ApplicationID      *string    `json:"application_id"`
}

func validStrength(n int) bool { return n >= 1 && n <= 5 }

// Create inserts a contact and awards the add-contact points atomically.
func (s *NetworkService) Create(userID string, in ContactInput) (*models.NetworkContact, error) {
	if in.Name == "" {
		return nil, validationErr("contact name is required")
	}
	if in.ConnectionStrength == 0 {
		in.ConnectionStrength = 1
	}
	if !validStrength(in.ConnectionStrength) {
		return nil, validationErr("connection_strength must be between 1 and 5")
	}

	contact := &models.NetworkContact{
		UserID:             userID,
		Name:               in.Name,
		Email:              in.Email,
		Company:            in.Company,
		RelationshipType:   in.RelationshipType,
		ConnectionStrength: in.ConnectionStrength,
		LastContactDate:    in.LastContactDate,
		Notes:              in.Notes,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if in.ApplicationID != nil {
			if err := checkApplicationOwnership(tx, userID, *in.ApplicationID); err != nil {
				return err
			}
			contact.ApplicationID = in.ApplicationID
		}

		if err := tx.Create(contact).Error; err != nil {
			return err
		}

		ref := &models.PointReference{Kind: models.ReferenceNetworkContact, ID: contact.ID}
		return s.Gamification.RecordEvent(tx, &user, PointsAddContact, "Added network contact", ref)
	})
	if err != nil {
		return nil, err
	}
	return contact, nil
}

// Update applies a partial field mutation and awards the update points.
func (s *NetworkService) Update(userID, contactID string, patch ContactPatch) (*models.NetworkContact, error) {
	var contact models.NetworkContact

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", contactID, userID).First(&contact).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if patch.Name != nil {
			contact.Name = *patch.Name
		}
		if patch.Email != nil {
			contact.Email = patch.Email
		}
		if patch.Company != nil {
			contact.Company = patch.Company
		}
		if patch.RelationshipType != nil {
			contact.RelationshipType = patch.RelationshipType
		}
		if patch.ConnectionStrength != nil {
			if !validStrength(*patch.ConnectionStrength) {
				return validationErr("connection_strength must be between 1 and 5")
			}
			contact.ConnectionStrength = *patch.ConnectionStrength
		}
		if patch.LastContactDate != nil {
			contact.LastContactDate = patch.LastContactDate
		}
		if patch.Notes != nil {
			contact.Notes = patch.Notes
		}
		if patch.ApplicationID != nil {
			if err := checkApplicationOwnership(tx, userID, *patch.ApplicationID); err != nil {
				return err
			}
			contact.ApplicationID = patch.ApplicationID
		}

		if err := tx.Save(&contact).Error; err != nil {
			return err
		}

		var user models.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			return err
		}
		ref := &models.PointReference{Kind: models.ReferenceNetworkContact, ID: contact.ID}
		return s.Gamification.RecordEvent(tx, &user, PointsUpdateContact, "Updated network contact", ref)
	})
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// Get returns one contact scoped to its owner.
func (s *NetworkService) Get(userID, contactID string) (*models.NetworkContact, error) {
	var contact models.NetworkContact
	err := s.DB.Where("id = ? AND user_id = ?", contactID, userID).First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// List returns the user's contacts, newest first.
func (s *NetworkService) List(userID string, offset, limit int) ([]models.NetworkContact, error) {
	if limit < 1 || limit > 200 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	var contacts []models.NetworkContact
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&contacts).Error
	return contacts, err
}

// Delete removes a contact. Applications that named it as their referral
// keep existing — the reference is nulled out, never cascaded.
func (s *NetworkService) Delete(userID, contactID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var contact models.NetworkContact
		if err := tx.Where("id = ? AND user_id = ?", contactID, userID).First(&contact).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Model(&models.Application{}).
			Where("referral_contact_id = ?", contactID).
			Update("referral_contact_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&contact).Error
	})
}

func checkApplicationOwnership(tx *gorm.DB, userID, appID string) error {
	var count int64
	if err := tx.Model(&models.Application{}).
		Where("id = ? AND user_id = ?", appID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("application: %w", ErrNotFound)
	}
	return nil
}
