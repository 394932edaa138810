package repositories

import (
	"github.com/pawhub/backend/internal/models"
	"github.com/pawhub/backend/internal/validation"
	"gorm.io/gorm"
)

// ReactionRepository defines the interface for reaction data operations
type ReactionRepository interface {
	CreateReaction(reaction *models.Reaction) error
	UpdateReactionType(reaction *models.Reaction, newType string) error
	GetReactionByID(id uint) (*models.Reaction, error)
	DeleteReaction(id uint) error
	DeleteLike(userID, kindID, objectID uint) (int64, error)
	HasReaction(userID uint, reactionType string, kindID, objectID uint) (uint, error)
	CountLikes(kindID, objectID uint) (int64, error)
	ListByTarget(kindID, objectID uint) ([]models.Reaction, error)
}

// PostgresReactionRepository implements ReactionRepository for PostgreSQL
type PostgresReactionRepository struct {
	db *gorm.DB
}

// NewPostgresReactionRepository creates a new PostgresReactionRepository
func NewPostgresReactionRepository(db *gorm.DB) *PostgresReactionRepository {
	return &PostgresReactionRepository{db: db}
}

// CreateReaction persists the reaction, surfacing a duplicate
// (user, reaction_type, target) triple as a validation error rather than a
// bare unique-constraint failure.
func (r *PostgresReactionRepository) CreateReaction(reaction *models.Reaction) error {
	verrs := make(validation.Errors)
	if !models.IsValidReactionType(reaction.ReactionType) {
		verrs.Add("reaction_type", validation.CodeReactionInvalidType, "invalid reaction type")
		return verrs
	}

	if reaction.UserID != nil {
		var count int64
		err := r.db.Model(&models.Reaction{}).
			Where("user_id = ? AND reaction_type = ? AND reactable_type_id = ? AND reactable_id = ?",
				*reaction.UserID, reaction.ReactionType, reaction.ReactableTypeID, reaction.ReactableID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			verrs.Add("reaction_type", validation.CodeReactionAlreadyExists, "this reaction already exists for the target")
			return verrs
		}
	}

	return r.db.Create(reaction).Error
}

// UpdateReactionType switches an existing reaction to a new type, enforcing
// the same uniqueness rule as creation. Switching to the current type is a
// no-op.
func (r *PostgresReactionRepository) UpdateReactionType(reaction *models.Reaction, newType string) error {
	verrs := make(validation.Errors)
	if !models.IsValidReactionType(newType) {
		verrs.Add("reaction_type", validation.CodeReactionInvalidType, "invalid reaction type")
		return verrs
	}
	if reaction.ReactionType == newType {
		return nil
	}

	if reaction.UserID != nil {
		var count int64
		err := r.db.Model(&models.Reaction{}).
			Where("user_id = ? AND reaction_type = ? AND reactable_type_id = ? AND reactable_id = ?",
				*reaction.UserID, newType, reaction.ReactableTypeID, reaction.ReactableID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			verrs.Add("reaction_type", validation.CodeReactionAlreadyExists, "this reaction already exists for the target")
			return verrs
		}
	}

	err := r.db.Model(&models.Reaction{}).
		Where("id = ?", reaction.ID).
		Update("reaction_type", newType).Error
	if err != nil {
		return err
	}
	reaction.ReactionType = newType
	return nil
}

func (r *PostgresReactionRepository) GetReactionByID(id uint) (*models.Reaction, error) {
	var reaction models.Reaction
	if err := r.db.First(&reaction, id).Error; err != nil {
		return nil, err
	}
	return &reaction, nil
}

func (r *PostgresReactionRepository) DeleteReaction(id uint) error {
	return r.db.Delete(&models.Reaction{}, id).Error
}

// DeleteLike removes the user's LIKE for the target. Idempotent: removing an
// absent like is not an error, the returned count is simply zero.
func (r *PostgresReactionRepository) DeleteLike(userID, kindID, objectID uint) (int64, error) {
	res := r.db.Where("user_id = ? AND reaction_type = ? AND reactable_type_id = ? AND reactable_id = ?",
		userID, models.ReactionLike, kindID, objectID).Delete(&models.Reaction{})
	return res.RowsAffected, res.Error
}

// HasReaction returns the reaction id when the user has reacted with the
// given type, or 0 when they have not. Never errors on "not found".
func (r *PostgresReactionRepository) HasReaction(userID uint, reactionType string, kindID, objectID uint) (uint, error) {
	var reaction models.Reaction
	err := r.db.Select("id").
		Where("user_id = ? AND reaction_type = ? AND reactable_type_id = ? AND reactable_id = ?",
			userID, reactionType, kindID, objectID).
		First(&reaction).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return reaction.ID, nil
}

func (r *PostgresReactionRepository) CountLikes(kindID, objectID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Reaction{}).
		Where("reaction_type = ? AND reactable_type_id = ? AND reactable_id = ?",
			models.ReactionLike, kindID, objectID).
		Count(&count).Error
	return count, err
}

func (r *PostgresReactionRepository) ListByTarget(kindID, objectID uint) ([]models.Reaction, error) {
	var reactions []models.Reaction
	err := r.db.Where("reactable_type_id = ? AND reactable_id = ?", kindID, objectID).
		Order("created_at DESC").Find(&reactions).Error
	return reactions, err
}
