package services

import (
	"fmt"
	"testing"
	"time"

	"job-tracker-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a private in-memory database per test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.NetworkContact{},
		&models.Application{},
		&models.ApplicationHistory{},
		&models.PointHistory{},
	))
	return db
}

type testEnv struct {
	DB           *gorm.DB
	Gamification *GamificationService
	Applications *ApplicationService
	Network      *NetworkService
	Users        *UserService
	User         *models.User
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	gamification := NewGamificationService(db)
	users := NewUserService(db)
	user, err := users.Create("Jamie Doe", fmt.Sprintf("jamie+%s@example.com", uuid.NewString()[:8]))
	require.NoError(t, err)
	return &testEnv{
		DB:           db,
		Gamification: gamification,
		Applications: NewApplicationService(db, gamification),
		Network:      NewNetworkService(db, gamification),
		Users:        users,
		User:         user,
	}
}

// freezeAt pins the gamification clock to a fixed instant
func (e *testEnv) freezeAt(ts time.Time) {
	e.Gamification.Now = func() time.Time { return ts }
}

func (e *testEnv) reloadUser(t *testing.T) *models.User {
	t.Helper()
	var user models.User
	require.NoError(t, e.DB.Where("id = ?", e.User.ID).First(&user).Error)
	return &user
}

func (e *testEnv) historyCount(t *testing.T, appID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.DB.Model(&models.ApplicationHistory{}).
		Where("application_id = ?", appID).Count(&n).Error)
	return n
}

func (e *testEnv) ledgerCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.DB.Model(&models.PointHistory{}).
		Where("user_id = ?", e.User.ID).Count(&n).Error)
	return n
}
