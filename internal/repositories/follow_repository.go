package repositories

import (
	"fmt"

	"github.com/pawhub/backend/internal/models"
	"github.com/pawhub/backend/internal/validation"
	"gorm.io/gorm"
)

// allowed notification preference keys, exactly as accepted on the wire.
var allowedPreferenceKeys = map[string]bool{
	"posts":          true,
	"status_changes": true,
	"comments":       true,
}

// PreferencesFromMap validates a loose preference map against the recognized
// key set and merges it over the defaults. Unknown keys are rejected;
// omitted keys keep their default values.
func PreferencesFromMap(prefs map[string]bool) (models.NotificationPreferences, validation.Errors) {
	merged := models.DefaultNotificationPreferences()
	if prefs == nil {
		return merged, nil
	}

	verrs := make(validation.Errors)
	for key := range prefs {
		if !allowedPreferenceKeys[key] {
			verrs.Add("notification_preferences", validation.CodeFollowUnsupportedKey,
				fmt.Sprintf("unsupported notification preference key: %s", key))
		}
	}
	if len(verrs) > 0 {
		return merged, verrs
	}

	if v, ok := prefs["posts"]; ok {
		merged.Posts = v
	}
	if v, ok := prefs["status_changes"]; ok {
		merged.StatusChanges = v
	}
	if v, ok := prefs["comments"]; ok {
		merged.Comments = v
	}
	return merged, nil
}

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(follow *models.Follow) error
	DeleteFollow(userID, kindID, targetID uint) (int64, error)
	IsFollowing(userID, kindID, targetID uint) (uint, error)
	FollowersCount(kindID, targetID uint) (int64, error)
	ListByUser(userID uint) ([]models.Follow, error)
	ListFollowers(kindID, targetID uint) ([]models.Follow, error)
	GetFollowByID(id uint) (*models.Follow, error)
	UpdateFollow(follow *models.Follow) error
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// CreateFollow persists the follow, surfacing a duplicate (user, target) pair
// as a validation error.
func (r *PostgresFollowRepository) CreateFollow(follow *models.Follow) error {
	var count int64
	err := r.db.Model(&models.Follow{}).
		Where("user_id = ? AND target_type_id = ? AND target_id = ?",
			follow.UserID, follow.TargetTypeID, follow.TargetID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		verrs := make(validation.Errors)
		verrs.Add("target_id", validation.CodeFollowAlreadyExists, "already following this target")
		return verrs
	}
	return r.db.Create(follow).Error
}

// DeleteFollow is idempotent: unfollowing an absent follow returns count zero.
func (r *PostgresFollowRepository) DeleteFollow(userID, kindID, targetID uint) (int64, error) {
	res := r.db.Where("user_id = ? AND target_type_id = ? AND target_id = ?", userID, kindID, targetID).
		Delete(&models.Follow{})
	return res.RowsAffected, res.Error
}

// IsFollowing returns the follow id, or 0 when the user does not follow the
// target. Never errors on "not found".
func (r *PostgresFollowRepository) IsFollowing(userID, kindID, targetID uint) (uint, error) {
	var follow models.Follow
	err := r.db.Select("id").
		Where("user_id = ? AND target_type_id = ? AND target_id = ?", userID, kindID, targetID).
		First(&follow).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return follow.ID, nil
}

func (r *PostgresFollowRepository) FollowersCount(kindID, targetID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).
		Where("target_type_id = ? AND target_id = ?", kindID, targetID).
		Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) ListByUser(userID uint) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&follows).Error
	return follows, err
}

// ListFollowers returns every follow row pointing at the target; the fan-out
// filters them by notification preference.
func (r *PostgresFollowRepository) ListFollowers(kindID, targetID uint) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.Where("target_type_id = ? AND target_id = ?", kindID, targetID).Find(&follows).Error
	return follows, err
}

func (r *PostgresFollowRepository) GetFollowByID(id uint) (*models.Follow, error) {
	var follow models.Follow
	if err := r.db.First(&follow, id).Error; err != nil {
		return nil, err
	}
	return &follow, nil
}

func (r *PostgresFollowRepository) UpdateFollow(follow *models.Follow) error {
	return r.db.Save(follow).Error
}
