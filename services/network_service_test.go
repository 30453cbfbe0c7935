package services

import (
	"testing"

	"job-tracker-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateContactAwardsPoint(t *testing.T) {
	env := setupEnv(t)

	contact, err := env.Network.Create(env.User.ID, ContactInput{Name: "Taylor"})
	require.NoError(t, err)
	assert.Equal(t, 1, contact.ConnectionStrength, "strength defaults to the weakest tie")

	user := env.reloadUser(t)
	assert.Equal(t, PointsAddContact, user.Points)

	var ledger models.PointHistory
	require.NoError(t, env.DB.Where("user_id = ?", user.ID).First(&ledger).Error)
	assert.Equal(t, "Added network contact", ledger.Reason)
	require.NotNil(t, ledger.Reference())
	assert.Equal(t, models.ReferenceNetworkContact, ledger.Reference().Kind)
	assert.Equal(t, contact.ID, ledger.Reference().ID)
}

func TestContactValidation(t *testing.T) {
	env := setupEnv(t)

	_, err := env.Network.Create(env.User.ID, ContactInput{})
	var validationError *ValidationError
	require.ErrorAs(t, err, &validationError)

	_, err = env.Network.Create(env.User.ID, ContactInput{Name: "Taylor", ConnectionStrength: 6})
	require.ErrorAs(t, err, &validationError)

	contact, err := env.Network.Create(env.User.ID, ContactInput{Name: "Taylor", ConnectionStrength: 3})
	require.NoError(t, err)

	bad := 0
	_, err = env.Network.Update(env.User.ID, contact.ID, ContactPatch{ConnectionStrength: &bad})
	require.ErrorAs(t, err, &validationError)

	assert.Equal(t, int64(1), env.ledgerCount(t), "rejected writes must not award points")
}

func TestUpdateContactAwardsPoint(t *testing.T) {
	env := setupEnv(t)

	contact, err := env.Network.Create(env.User.ID, ContactInput{Name: "Taylor"})
	require.NoError(t, err)

	company := "Acme"
	updated, err := env.Network.Update(env.User.ID, contact.ID, ContactPatch{Company: &company})
	require.NoError(t, err)
	require.NotNil(t, updated.Company)
	assert.Equal(t, "Acme", *updated.Company)

	user := env.reloadUser(t)
	assert.Equal(t, PointsAddContact+PointsUpdateContact, user.Points)
}

func TestContactLinksApplicationThatIntroducedIt(t *testing.T) {
	env := setupEnv(t)
	app := createApp(t, env)

	contact, err := env.Network.Create(env.User.ID, ContactInput{
		Name:          "Hiring Manager Harper",
		ApplicationID: &app.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, contact.ApplicationID)
	assert.Equal(t, app.ID, *contact.ApplicationID)

	// the same contact can be the referral source of a different application
	second, err := env.Applications.Create(env.User.ID, ApplicationInput{
		CompanyName:       "Globex",
		PositionTitle:     "Platform Engineer",
		Location:          "Hamburg",
		ReferralContactID: &contact.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, second.ReferralContactID)
	assert.Equal(t, contact.ID, *second.ReferralContactID)
}

func TestDeleteContactNullsReferralReference(t *testing.T) {
	env := setupEnv(t)

	contact, err := env.Network.Create(env.User.ID, ContactInput{Name: "Taylor"})
	require.NoError(t, err)

	app, err := env.Applications.Create(env.User.ID, ApplicationInput{
		CompanyName:       "Acme",
		PositionTitle:     "Engineer",
		Location:          "Berlin",
		ReferralContactID: &contact.ID,
	})
	require.NoError(t, err)

	require.NoError(t, env.Network.Delete(env.User.ID, contact.ID))

	kept, err := env.Applications.Get(env.User.ID, app.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.ReferralContactID, "referral reference is nulled, never cascaded")
}

func TestDeleteContactOtherUser(t *testing.T) {
	env := setupEnv(t)
	contact, err := env.Network.Create(env.User.ID, ContactInput{Name: "Taylor"})
	require.NoError(t, err)

	stranger, err := env.Users.Create("Stranger", "stranger3@example.com")
	require.NoError(t, err)

	assert.ErrorIs(t, env.Network.Delete(stranger.ID, contact.ID), ErrNotFound)
}
