package repositories

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/pawhub/backend/internal/models"
	"github.com/pawhub/backend/internal/registry"
	"github.com/pawhub/backend/internal/validation"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations.
// Create and Update return validation.Errors with every applicable violation
// collected, so the API can present them together.
type CommentRepository interface {
	CreateComment(comment *models.Comment) error
	UpdateComment(comment *models.Comment) error
	DeleteComment(id uint) error
	GetCommentByID(id uint) (*models.Comment, error)
	ListByTarget(kindID, objectID uint, limit, offset int) ([]models.Comment, error)
	RefreshOrganizationRating(orgID uint) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

func (r *PostgresCommentRepository) isOrganizationComment(comment *models.Comment) bool {
	return comment.ContentTypeID == registry.KindOrganizationID
}

// validate collects every violation instead of stopping at the first one.
func (r *PostgresCommentRepository) validate(comment *models.Comment) validation.Errors {
	verrs := make(validation.Errors)

	// Characters, not bytes: "ąę" is two characters long.
	if utf8.RuneCountInString(strings.TrimSpace(comment.Body)) < models.MinCommentBodyLength {
		verrs.Add("body", validation.CodeCommentTooShort, "comment body must have at least 3 characters")
	}

	if r.isOrganizationComment(comment) {
		if comment.Rating == nil {
			verrs.Add("rating", validation.CodeCommentRatingRequired, "a rating is required for organization reviews")
		} else if comment.UserID != nil {
			query := r.db.Model(&models.Comment{}).
				Where("user_id = ? AND content_type_id = ? AND object_id = ? AND rating IS NOT NULL",
					*comment.UserID, comment.ContentTypeID, comment.ObjectID)
			if comment.ID != 0 {
				query = query.Where("id <> ?", comment.ID)
			}
			var count int64
			if err := query.Count(&count).Error; err == nil && count > 0 {
				verrs.Add("rating", validation.CodeCommentRatingAlreadyExists, "a user may submit only one rating for this organization")
			}
		}
	}

	if len(verrs) > 0 {
		return verrs
	}
	return nil
}

// CreateComment validates, persists, and recomputes the organization's
// aggregate rating when the comment carries one.
func (r *PostgresCommentRepository) CreateComment(comment *models.Comment) error {
	if verrs := r.validate(comment); verrs != nil {
		return verrs
	}
	if err := r.db.Create(comment).Error; err != nil {
		return err
	}
	return r.refreshRatingForComment(comment)
}

func (r *PostgresCommentRepository) UpdateComment(comment *models.Comment) error {
	if verrs := r.validate(comment); verrs != nil {
		return verrs
	}
	if err := r.db.Save(comment).Error; err != nil {
		return err
	}
	return r.refreshRatingForComment(comment)
}

// DeleteComment hard-deletes the row, then recomputes the organization
// aggregate if the comment targeted one.
func (r *PostgresCommentRepository) DeleteComment(id uint) error {
	comment, err := r.GetCommentByID(id)
	if err != nil {
		return err
	}
	if err := r.db.Delete(&models.Comment{}, id).Error; err != nil {
		return err
	}
	return r.refreshRatingForComment(comment)
}

func (r *PostgresCommentRepository) GetCommentByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *PostgresCommentRepository) ListByTarget(kindID, objectID uint, limit, offset int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Where("content_type_id = ? AND object_id = ?", kindID, objectID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&comments).Error
	return comments, err
}

func (r *PostgresCommentRepository) refreshRatingForComment(comment *models.Comment) error {
	if !r.isOrganizationComment(comment) {
		return nil
	}
	return r.RefreshOrganizationRating(comment.ObjectID)
}

// RefreshOrganizationRating recomputes the organization's aggregate rating as
// the round-half-to-even mean of all rating-bearing, non-deleted comments, or
// null when none remain. A vanished organization row is not an error; the
// aggregate simply has nowhere to live.
func (r *PostgresCommentRepository) RefreshOrganizationRating(orgID uint) error {
	var org models.Organization
	if err := r.db.First(&org, orgID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}

	var avg *float64
	err := r.db.Model(&models.Comment{}).
		Where("content_type_id = ? AND object_id = ? AND rating IS NOT NULL AND deleted_at IS NULL",
			registry.KindOrganizationID, orgID).
		Select("AVG(rating)").Scan(&avg).Error
	if err != nil {
		return err
	}

	var rating *int
	if avg != nil {
		rounded := int(math.RoundToEven(*avg))
		rating = &rounded
	}
	return r.db.Model(&models.Organization{}).Where("id = ?", orgID).Update("rating", rating).Error
}
