package repositories

import (
	"testing"

	"github.com/pawhub/backend/internal/models"
	"github.com/pawhub/backend/internal/registry"
	"github.com/pawhub/backend/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferencesFromMapDefaults(t *testing.T) {
	prefs, verrs := PreferencesFromMap(nil)
	require.Nil(t, verrs)
	assert.True(t, prefs.Posts)
	assert.True(t, prefs.StatusChanges)
	assert.False(t, prefs.Comments)
}

func TestPreferencesFromMapPartialOverride(t *testing.T) {
	prefs, verrs := PreferencesFromMap(map[string]bool{"posts": false})
	require.Nil(t, verrs)
	assert.False(t, prefs.Posts)
	// Omitted keys keep their defaults.
	assert.True(t, prefs.StatusChanges)
	assert.False(t, prefs.Comments)
}

func TestPreferencesFromMapUnknownKeyRejected(t *testing.T) {
	_, verrs := PreferencesFromMap(map[string]bool{"postz": true})
	require.NotNil(t, verrs)
	assert.True(t, verrs.Has(validation.CodeFollowUnsupportedKey))
}

func TestCreateFollowDuplicateRejected(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresFollowRepository(db)
	user := createTestUser(t, db, "alice")

	follow := &models.Follow{
		UserID:                  user.ID,
		TargetTypeID:            registry.KindAnimalID,
		TargetID:                7,
		NotificationPreferences: models.DefaultNotificationPreferences(),
	}
	require.NoError(t, repo.CreateFollow(follow))

	dup := &models.Follow{
		UserID:                  user.ID,
		TargetTypeID:            registry.KindAnimalID,
		TargetID:                7,
		NotificationPreferences: models.DefaultNotificationPreferences(),
	}
	err := repo.CreateFollow(dup)
	require.Error(t, err)
	verrs, ok := validation.AsErrors(err)
	require.True(t, ok)
	assert.True(t, verrs.Has(validation.CodeFollowAlreadyExists))
}

func TestDeleteFollowIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresFollowRepository(db)
	user := createTestUser(t, db, "alice")

	follow := &models.Follow{
		UserID:                  user.ID,
		TargetTypeID:            registry.KindOrganizationID,
		TargetID:                2,
		NotificationPreferences: models.DefaultNotificationPreferences(),
	}
	require.NoError(t, repo.CreateFollow(follow))

	removed, err := repo.DeleteFollow(user.ID, registry.KindOrganizationID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	removed, err = repo.DeleteFollow(user.ID, registry.KindOrganizationID, 2)
	require.NoError(t, err)
	assert.Zero(t, removed)

	id, err := repo.IsFollowing(user.ID, registry.KindOrganizationID, 2)
	require.NoError(t, err)
	assert.Zero(t, id)
}

func TestIsFollowingReturnsFollowID(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresFollowRepository(db)
	user := createTestUser(t, db, "alice")

	id, err := repo.IsFollowing(user.ID, registry.KindAnimalID, 7)
	require.NoError(t, err)
	assert.Zero(t, id)

	follow := &models.Follow{
		UserID:                  user.ID,
		TargetTypeID:            registry.KindAnimalID,
		TargetID:                7,
		NotificationPreferences: models.DefaultNotificationPreferences(),
	}
	require.NoError(t, repo.CreateFollow(follow))

	id, err = repo.IsFollowing(user.ID, registry.KindAnimalID, 7)
	require.NoError(t, err)
	assert.Equal(t, follow.ID, id)
}

func TestFollowersCount(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresFollowRepository(db)

	for _, name := range []string{"a", "b", "c"} {
		user := createTestUser(t, db, name)
		require.NoError(t, repo.CreateFollow(&models.Follow{
			UserID:                  user.ID,
			TargetTypeID:            registry.KindAnimalID,
			TargetID:                7,
			NotificationPreferences: models.DefaultNotificationPreferences(),
		}))
	}

	count, err := repo.FollowersCount(registry.KindAnimalID, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = repo.FollowersCount(registry.KindAnimalID, 8)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUpdateFollowPreferences(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresFollowRepository(db)
	user := createTestUser(t, db, "alice")

	follow := &models.Follow{
		UserID:                  user.ID,
		TargetTypeID:            registry.KindAnimalID,
		TargetID:                7,
		NotificationPreferences: models.DefaultNotificationPreferences(),
	}
	require.NoError(t, repo.CreateFollow(follow))

	follow.NotificationPreferences.Posts = false
	follow.NotificationPreferences.Comments = true
	require.NoError(t, repo.UpdateFollow(follow))

	got, err := repo.GetFollowByID(follow.ID)
	require.NoError(t, err)
	assert.False(t, got.NotificationPreferences.Posts)
	assert.True(t, got.NotificationPreferences.Comments)
	assert.True(t, got.NotificationPreferences.StatusChanges)
}
