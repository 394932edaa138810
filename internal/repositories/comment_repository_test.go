package repositories

import (
	"testing"

	"github.com/pawhub/backend/internal/models"
	"github.com/pawhub/backend/internal/registry"
	"github.com/pawhub/backend/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func intPtr(v int) *int { return &v }

func orgComment(user *models.User, orgID uint, body string, rating *int) *models.Comment {
	return &models.Comment{
		UserID:        &user.ID,
		ContentTypeID: registry.KindOrganizationID,
		ObjectID:      orgID,
		Body:          body,
		Rating:        rating,
	}
}

func TestCreateCommentCollectsAllViolations(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresCommentRepository(db)
	owner := createTestUser(t, db, "owner")
	reviewer := createTestUser(t, db, "reviewer")
	org := createTestOrganization(t, db, owner, "Happy Paws")

	// Short body and missing rating at the same time: both must be reported.
	err := repo.CreateComment(orgComment(reviewer, org.ID, "  a ", nil))
	require.Error(t, err)

	verrs, ok := validation.AsErrors(err)
	require.True(t, ok)
	assert.True(t, verrs.Has(validation.CodeCommentTooShort))
	assert.True(t, verrs.Has(validation.CodeCommentRatingRequired))

	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&count).Error)
	assert.Zero(t, count, "no comment row may persist after validation failure")
}

func TestCommentBodyLengthCountsCharactersNotBytes(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresCommentRepository(db)
	owner := createTestUser(t, db, "owner")
	reviewer := createTestUser(t, db, "reviewer")
	org := createTestOrganization(t, db, owner, "Happy Paws")

	// Two multibyte characters are four bytes but still too short.
	err := repo.CreateComment(orgComment(reviewer, org.ID, "ąę", intPtr(4)))
	require.Error(t, err)
	verrs, ok := validation.AsErrors(err)
	require.True(t, ok)
	assert.True(t, verrs.Has(validation.CodeCommentTooShort))

	// Exactly three characters passes regardless of byte count.
	assert.NoError(t, repo.CreateComment(orgComment(reviewer, org.ID, "ąęł", intPtr(4))))
}

func TestCreateCommentRatingRequiredForOrganizations(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresCommentRepository(db)
	owner := createTestUser(t, db, "owner")
	reviewer := createTestUser(t, db, "reviewer")
	org := createTestOrganization(t, db, owner, "Happy Paws")

	err := repo.CreateComment(orgComment(reviewer, org.ID, "great shelter", nil))
	require.Error(t, err)
	verrs, ok := validation.AsErrors(err)
	require.True(t, ok)
	assert.True(t, verrs.Has(validation.CodeCommentRatingRequired))

	// Non-organization targets take plain comments without ratings.
	err = repo.CreateComment(&models.Comment{
		UserID:        &reviewer.ID,
		ContentTypeID: registry.KindPostID,
		ObjectID:      1,
		Body:          "nice post",
	})
	assert.NoError(t, err)
}

func TestCreateCommentSecondRatingRejected(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresCommentRepository(db)
	owner := createTestUser(t, db, "owner")
	reviewer := createTestUser(t, db, "reviewer")
	org := createTestOrganization(t, db, owner, "Happy Paws")

	require.NoError(t, repo.CreateComment(orgComment(reviewer, org.ID, "first review", intPtr(4))))

	err := repo.CreateComment(orgComment(reviewer, org.ID, "second review", intPtr(5)))
	require.Error(t, err)
	verrs, ok := validation.AsErrors(err)
	require.True(t, ok)
	assert.True(t, verrs.Has(validation.CodeCommentRatingAlreadyExists))

	// A rating from a different user is fine.
	other := createTestUser(t, db, "other")
	assert.NoError(t, repo.CreateComment(orgComment(other, org.ID, "another view", intPtr(5))))
}

func TestOrganizationRatingRoundsHalfToEven(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresCommentRepository(db)
	owner := createTestUser(t, db, "owner")
	org := createTestOrganization(t, db, owner, "Happy Paws")

	a := createTestUser(t, db, "a")
	b := createTestUser(t, db, "b")

	require.NoError(t, repo.CreateComment(orgComment(a, org.ID, "decent place", intPtr(4))))
	require.NoError(t, repo.CreateComment(orgComment(b, org.ID, "lovely place", intPtr(5))))

	var got models.Organization
	require.NoError(t, db.First(&got, org.ID).Error)
	require.NotNil(t, got.Rating)
	// mean 4.5 rounds half to even: 4, not 5
	assert.Equal(t, 4, *got.Rating)

	c := createTestUser(t, db, "c")
	require.NoError(t, repo.CreateComment(orgComment(c, org.ID, "best place", intPtr(5))))

	require.NoError(t, db.First(&got, org.ID).Error)
	require.NotNil(t, got.Rating)
	// mean 14/3 = 4.67 rounds to 5
	assert.Equal(t, 5, *got.Rating)
}

func TestDeletingLastRatedCommentClearsAggregate(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresCommentRepository(db)
	owner := createTestUser(t, db, "owner")
	reviewer := createTestUser(t, db, "reviewer")
	org := createTestOrganization(t, db, owner, "Happy Paws")

	comment := orgComment(reviewer, org.ID, "only review", intPtr(3))
	require.NoError(t, repo.CreateComment(comment))

	var got models.Organization
	require.NoError(t, db.First(&got, org.ID).Error)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 3, *got.Rating)

	require.NoError(t, repo.DeleteComment(comment.ID))

	require.NoError(t, db.First(&got, org.ID).Error)
	assert.Nil(t, got.Rating)

	_, err := repo.GetCommentByID(comment.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateCommentRecomputesAggregate(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresCommentRepository(db)
	owner := createTestUser(t, db, "owner")
	reviewer := createTestUser(t, db, "reviewer")
	org := createTestOrganization(t, db, owner, "Happy Paws")

	comment := orgComment(reviewer, org.ID, "changing my mind", intPtr(2))
	require.NoError(t, repo.CreateComment(comment))

	comment.Rating = intPtr(5)
	require.NoError(t, repo.UpdateComment(comment))

	var got models.Organization
	require.NoError(t, db.First(&got, org.ID).Error)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 5, *got.Rating)
}

func TestListByTargetNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresCommentRepository(db)
	reviewer := createTestUser(t, db, "reviewer")

	for _, body := range []string{"first", "second", "third"} {
		require.NoError(t, repo.CreateComment(&models.Comment{
			UserID:        &reviewer.ID,
			ContentTypeID: registry.KindPostID,
			ObjectID:      42,
			Body:          body,
		}))
	}

	comments, err := repo.ListByTarget(registry.KindPostID, 42, 2, 0)
	require.NoError(t, err)
	assert.Len(t, comments, 2)

	all, err := repo.ListByTarget(registry.KindPostID, 42, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
