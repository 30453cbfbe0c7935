package services

import (
	"sort"
	"testing"

	"job-tracker-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createApp(t *testing.T, env *testEnv) *models.Application {
	t.Helper()
	app, err := env.Applications.Create(env.User.ID, ApplicationInput{
		CompanyName:   "Acme",
		PositionTitle: "Engineer",
		Location:      "Berlin",
	})
	require.NoError(t, err)
	return app
}

func TestCreateApplicationGenesis(t *testing.T) {
	env := setupEnv(t)
	app := createApp(t, env)

	assert.Equal(t, models.StatusApplied, app.Status)
	assert.Equal(t, "acme-engineer", app.Slug)

	rows, err := env.Applications.History(env.User.ID, app.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].OldStatus, "genesis row records no prior status")
	assert.Equal(t, models.StatusApplied, rows[0].NewStatus)

	user := env.reloadUser(t)
	assert.Equal(t, PointsCreateApplication, user.Points)

	var ledger models.PointHistory
	require.NoError(t, env.DB.Where("user_id = ?", user.ID).First(&ledger).Error)
	assert.Equal(t, "Applied to Acme", ledger.Reason)
	require.NotNil(t, ledger.Reference())
	assert.Equal(t, models.ReferenceApplication, ledger.Reference().Kind)
	assert.Equal(t, app.ID, ledger.Reference().ID)
}

func TestCreateApplicationRequiresFields(t *testing.T) {
	env := setupEnv(t)
	_, err := env.Applications.Create(env.User.ID, ApplicationInput{CompanyName: "Acme"})
	var validationError *ValidationError
	require.ErrorAs(t, err, &validationError)
	assert.Equal(t, int64(0), env.ledgerCount(t))
}

func TestCreateApplicationUnknownUser(t *testing.T) {
	env := setupEnv(t)
	_, err := env.Applications.Create("00000000-0000-0000-0000-000000000000", ApplicationInput{
		CompanyName:   "Acme",
		PositionTitle: "Engineer",
		Location:      "Berlin",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

// Full lifecycle: create, two legal transitions, one illegal attempt.
func TestApplicationLifecycleScenario(t *testing.T) {
	env := setupEnv(t)
	app := createApp(t, env)

	user := env.reloadUser(t)
	assert.Equal(t, 2, user.Points)

	updated, entry, err := env.Applications.UpdateStatus(env.User.ID, app.ID, models.StatusReplied, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReplied, updated.Status)
	require.NotNil(t, entry.OldStatus)
	assert.Equal(t, models.StatusApplied, *entry.OldStatus)
	assert.Equal(t, int64(2), env.historyCount(t, app.ID))

	user = env.reloadUser(t)
	assert.Equal(t, 3, user.Points)
	assert.Equal(t, 1, user.Level)

	_, _, err = env.Applications.UpdateStatus(env.User.ID, app.ID, models.StatusRejected, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), env.historyCount(t, app.ID))

	user = env.reloadUser(t)
	assert.Equal(t, 4, user.Points)

	total, err := env.Gamification.TotalPoints(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Points, total)

	// terminal state: no way back
	_, _, err = env.Applications.UpdateStatus(env.User.ID, app.ID, models.StatusReplied, nil)
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.StatusRejected, transitionErr.From)
	assert.Equal(t, models.StatusReplied, transitionErr.To)

	current, err := env.Applications.Get(env.User.ID, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, current.Status)
	assert.Equal(t, int64(3), env.historyCount(t, app.ID))
	user = env.reloadUser(t)
	assert.Equal(t, 4, user.Points, "failed transitions must not award points")
}

// Every (from, to) pair outside the table must fail and mutate nothing.
func TestTransitionClosure(t *testing.T) {
	env := setupEnv(t)

	for _, from := range models.AllStatuses {
		app := createApp(t, env)
		require.NoError(t, env.DB.Model(&models.Application{}).
			Where("id = ?", app.ID).
			UpdateColumn("status", from).Error)
		historyBefore := env.historyCount(t, app.ID)
		ledgerBefore := env.ledgerCount(t)

		for _, to := range models.AllStatuses {
			if from.CanTransitionTo(to) {
				continue
			}
			_, _, err := env.Applications.UpdateStatus(env.User.ID, app.ID, to, nil)
			var transitionErr *InvalidTransitionError
			require.ErrorAs(t, err, &transitionErr, "%s → %s must be rejected", from, to)

			current, err := env.Applications.Get(env.User.ID, app.ID)
			require.NoError(t, err)
			assert.Equal(t, from, current.Status, "%s → %s must not mutate status", from, to)
		}

		assert.Equal(t, historyBefore, env.historyCount(t, app.ID))
		assert.Equal(t, ledgerBefore, env.ledgerCount(t))
	}
}

// Replaying history rows in changed_at order reconstructs the exact status
// sequence from genesis to the terminal state.
func TestAuditReplay(t *testing.T) {
	env := setupEnv(t)
	app := createApp(t, env)

	pipeline := []models.ApplicationStatus{
		models.StatusReplied,
		models.StatusPhoneScreen,
		models.StatusTechnicalRound1,
		models.StatusTechnicalRound2,
		models.StatusFinalRound,
		models.StatusOffer,
		models.StatusRejected,
	}
	for _, next := range pipeline {
		_, _, err := env.Applications.UpdateStatus(env.User.ID, app.ID, next, nil)
		require.NoError(t, err)
	}

	rows, err := env.Applications.History(env.User.ID, app.ID)
	require.NoError(t, err)
	require.Len(t, rows, len(pipeline)+1)

	sorted := sort.SliceIsSorted(rows, func(i, j int) bool {
		return rows[i].ChangedAt.Before(rows[j].ChangedAt)
	})
	assert.True(t, sorted, "History must return rows in changed_at order")

	assert.Nil(t, rows[0].OldStatus)
	assert.Equal(t, models.StatusApplied, rows[0].NewStatus)
	for i := 1; i < len(rows); i++ {
		require.NotNil(t, rows[i].OldStatus)
		assert.Equal(t, rows[i-1].NewStatus, *rows[i].OldStatus, "row %d must chain from its predecessor", i)
	}
	assert.Equal(t, models.StatusRejected, rows[len(rows)-1].NewStatus)

	user := env.reloadUser(t)
	assert.Equal(t, PointsCreateApplication+len(pipeline)*PointsStatusChange, user.Points)
}

func TestUpdateStatusUnknownStatus(t *testing.T) {
	env := setupEnv(t)
	app := createApp(t, env)
	_, _, err := env.Applications.UpdateStatus(env.User.ID, app.ID, "On Hold", nil)
	assert.ErrorIs(t, err, ErrUnknownStatus)
	assert.Equal(t, int64(1), env.historyCount(t, app.ID))
}

func TestUpdateStatusOtherUsersApplication(t *testing.T) {
	env := setupEnv(t)
	app := createApp(t, env)

	stranger, err := env.Users.Create("Stranger", "stranger@example.com")
	require.NoError(t, err)

	_, _, err = env.Applications.UpdateStatus(stranger.ID, app.ID, models.StatusReplied, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateFieldsAwardsPointWithoutHistory(t *testing.T) {
	env := setupEnv(t)
	app := createApp(t, env)

	newLocation := "Munich"
	updated, err := env.Applications.Update(env.User.ID, app.ID, ApplicationPatch{Location: &newLocation})
	require.NoError(t, err)
	assert.Equal(t, "Munich", updated.Location)
	assert.Equal(t, models.StatusApplied, updated.Status)

	assert.Equal(t, int64(1), env.historyCount(t, app.ID), "field updates bypass the audit trail")
	user := env.reloadUser(t)
	assert.Equal(t, PointsCreateApplication+PointsUpdateApplication, user.Points)
}

func TestUpdateRegeneratesSlug(t *testing.T) {
	env := setupEnv(t)
	app := createApp(t, env)

	newCompany := "Globex Corp."
	updated, err := env.Applications.Update(env.User.ID, app.ID, ApplicationPatch{CompanyName: &newCompany})
	require.NoError(t, err)
	assert.Equal(t, "globex-corp-engineer", updated.Slug)
}

func TestReferralContactMustBeOwned(t *testing.T) {
	env := setupEnv(t)

	stranger, err := env.Users.Create("Stranger", "stranger2@example.com")
	require.NoError(t, err)
	theirContact, err := env.Network.Create(stranger.ID, ContactInput{Name: "Taylor"})
	require.NoError(t, err)

	_, err = env.Applications.Create(env.User.ID, ApplicationInput{
		CompanyName:       "Acme",
		PositionTitle:     "Engineer",
		Location:          "Berlin",
		ReferralContactID: &theirContact.ID,
	})
	assert.ErrorIs(t, err, ErrNotFound)

	// nothing committed: no application, no history, no points
	var appCount int64
	require.NoError(t, env.DB.Model(&models.Application{}).
		Where("user_id = ?", env.User.ID).Count(&appCount).Error)
	assert.Equal(t, int64(0), appCount)
	assert.Equal(t, int64(0), env.ledgerCount(t))
}

func TestDeleteApplicationKeepsContacts(t *testing.T) {
	env := setupEnv(t)
	app := createApp(t, env)

	contact, err := env.Network.Create(env.User.ID, ContactInput{
		Name:          "Recruiter Riley",
		ApplicationID: &app.ID,
	})
	require.NoError(t, err)

	require.NoError(t, env.Applications.Delete(env.User.ID, app.ID))

	_, err = env.Applications.Get(env.User.ID, app.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(0), env.historyCount(t, app.ID), "history cascades with the application")

	kept, err := env.Network.Get(env.User.ID, contact.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.ApplicationID, "contact survives with its link cleared")
}
