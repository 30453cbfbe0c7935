package services

import (
	"errors"
	"log"
	"time"

	"job-tracker-system/models"

	"gorm.io/gorm"
)

// Point values per action (tunable via config later). Every mutating action
// in the tracker maps to exactly one of these — no inline point literals at
// call sites.
const (
	PointsCreateApplication = 2
	PointsStatusChange      = 1
	PointsUpdateApplication = 1
	PointsAddContact        = 1
	PointsUpdateContact     = 1
)

// LevelThreshold maps a minimum point total to a level
type LevelThreshold struct {
	MinPoints int    `json:"min_points"`
	Level     int    `json:"level"`
	Name      string `json:"name"`
}

// Levels in ascending order; a user's level is the highest threshold not
// exceeding their total points.
var Levels = []LevelThreshold{
	{MinPoints: 0, Level: 1, Name: "Novice Seeker"},
	{MinPoints: 100, Level: 2, Name: "Active Applicant"},
	{MinPoints: 300, Level: 3, Name: "Job Hunter"},
	{MinPoints: 600, Level: 4, Name: "Networking Pro"},
	{MinPoints: 1000, Level: 5, Name: "Interview Master"},
	{MinPoints: 1500, Level: 6, Name: "Offer Magnet"},
}

// levelForPoints derives level and name from a point total
func levelForPoints(total int) (int, string) {
	level, name := Levels[0].Level, Levels[0].Name
	for _, t := range Levels {
		if total >= t.MinPoints {
			level, name = t.Level, t.Name
		}
	}
	return level, name
}

// GamificationService is the single entry point for the append-only point
// ledger and the derived fields it feeds (points, level, streak).
type GamificationService struct {
	DB *gorm.DB

	// Now is swappable for tests; defaults to time.Now
	Now func() time.Time
}

func NewGamificationService(db *gorm.DB) *GamificationService {
	return &GamificationService{DB: db, Now: time.Now}
}

// RecordEvent appends a ledger row for user and recomputes the derived
// fields (points, level, streak) on the same tx. It stages writes only —
// the caller owns the transaction boundary, so the ledger row always
// commits or rolls back together with whatever triggered it.
func (s *GamificationService) RecordEvent(tx *gorm.DB, user *models.User, points int, reason string, ref *models.PointReference) error {
	if points == 0 {
		return validationErr("ledger event requires nonzero points")
	}
	if reason == "" {
		return validationErr("ledger event requires a reason")
	}

	record := models.PointHistory{
		UserID: user.ID,
		Points: points,
		Reason: reason,
	}
	record.SetReference(ref)
	if err := tx.Create(&record).Error; err != nil {
		return err
	}

	// Incremental total; Reconcile repairs any drift against the ledger sum.
	user.Points += points
	user.Level, user.LevelName = levelForPoints(user.Points)

	now := s.Now()
	s.applyStreak(user, now)

	return tx.Save(user).Error
}

// applyStreak updates the daily activity streak against the date portion of
// the streak clock (User.UpdatedAt) and advances the clock to now.
func (s *GamificationService) applyStreak(user *models.User, now time.Time) {
	if user.UpdatedAt == nil {
		// first-ever activity
		user.CurrentStreak = 1
		if user.LongestStreak < 1 {
			user.LongestStreak = 1
		}
		user.UpdatedAt = &now
		return
	}

	today := activityDate(now)
	last := activityDate(*user.UpdatedAt)

	switch {
	case last.Equal(today):
		// already active today, streak unchanged
	case last.Equal(today.AddDate(0, 0, -1)):
		user.CurrentStreak++
	case last.After(today):
		// backdated event (clock ahead of the event): leave the streak and
		// the clock alone rather than resetting
		return
	default:
		user.CurrentStreak = 1
	}

	if user.CurrentStreak > user.LongestStreak {
		user.LongestStreak = user.CurrentStreak
	}
	user.UpdatedAt = &now
}

// activityDate truncates t to its UTC calendar date
func activityDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TotalPoints recomputes the user's point total from the ledger alone.
func (s *GamificationService) TotalPoints(userID string) (int, error) {
	var total int64
	err := s.DB.Model(&models.PointHistory{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

// Reconcile re-derives points and level from the ledger sum and repairs the
// cached counter if it drifted. The ledger is the source of truth.
func (s *GamificationService) Reconcile(userID string) (bool, error) {
	repaired := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var total int64
		if err := tx.Model(&models.PointHistory{}).
			Where("user_id = ?", userID).
			Select("COALESCE(SUM(points), 0)").
			Scan(&total).Error; err != nil {
			return err
		}
		sum := int(total)

		if user.Points == sum {
			return nil
		}

		log.Printf("[Reconcile] point drift for user %s: cached=%d ledger=%d — repairing", userID, user.Points, sum)
		user.Points = sum
		user.Level, user.LevelName = levelForPoints(sum)
		repaired = true
		return tx.Save(&user).Error
	})
	return repaired, err
}
