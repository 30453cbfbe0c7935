package services

import (
	"errors"

	"job-tracker-system/models"

	"gorm.io/gorm"
)

// UserService handles profile reads and profile-field updates. Derived
// fields (points, level, streak) pass through read-only; only the
// gamification service may move them.
type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// UserPatch carries profile fields a user may edit directly
type UserPatch struct {
	Name             *string `json:"name"`
	Email            *string `json:"email"`
	CurrentEducation *string `json:"current_education"`
	CurrentRole      *string `json:"current_role"`
}

// Create registers a user with zeroed gamification state.
func (s *UserService) Create(name, email string) (*models.User, error) {
	if name == "" || email == "" {
		return nil, validationErr("name and email are required")
	}
	level, levelName := levelForPoints(0)
	user := &models.User{
		Name:      name,
		Email:     email,
		Level:     level,
		LevelName: levelName,
	}
	if err := s.DB.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Get returns the user with current derived stats.
func (s *UserService) Get(userID string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update edits profile fields only. Derived stats in the patch payload are
// ignored by construction.
func (s *UserService) Update(userID string, patch UserPatch) (*models.User, error) {
	user, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.CurrentEducation != nil {
		user.CurrentEducation = patch.CurrentEducation
	}
	if patch.CurrentRole != nil {
		user.CurrentRole = patch.CurrentRole
	}
	if err := s.DB.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// PointLedger returns a page of the user's ledger, newest first, plus the
// total row count.
func (s *UserService) PointLedger(userID string, page, size int) ([]models.PointHistory, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	var total int64
	if err := s.DB.Model(&models.PointHistory{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.PointHistory
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(size).Offset(offset).
		Find(&rows).Error
	return rows, total, err
}
