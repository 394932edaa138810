package models

import "time"

// Reaction types a user can express toward an entity
const (
	ReactionLike  = "LIKE"
	ReactionLove  = "LOVE"
	ReactionWow   = "WOW"
	ReactionSad   = "SAD"
	ReactionAngry = "ANGRY"
)

// ReactionTypes lists every recognized reaction type.
var ReactionTypes = []string{ReactionLike, ReactionLove, ReactionWow, ReactionSad, ReactionAngry}

// IsValidReactionType reports whether value is a recognized reaction type.
func IsValidReactionType(value string) bool {
	for _, t := range ReactionTypes {
		if t == value {
			return true
		}
	}
	return false
}

// Reaction records one user's typed emotional response to one entity.
// At most one row may exist per (user, reaction_type, target).
type Reaction struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	UserID          *uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_reaction_target"`
	ReactionType    string     `json:"reaction_type" gorm:"size:10;default:'LIKE';uniqueIndex:idx_user_reaction_target"`
	ReactableTypeID uint       `json:"reactable_type" gorm:"index:idx_reaction_target;uniqueIndex:idx_user_reaction_target"`
	ReactableID     uint       `json:"reactable_id" gorm:"index:idx_reaction_target;uniqueIndex:idx_user_reaction_target"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}

// CreateReactionRequest accepts the target kind either as a numeric registry
// id or a "namespace.name" string.
type CreateReactionRequest struct {
	ReactableType any    `json:"reactable_type" validate:"required"`
	ReactableID   uint   `json:"reactable_id" validate:"required"`
	ReactionType  string `json:"reaction_type" validate:"omitempty,oneof=LIKE LOVE WOW SAD ANGRY"`
}

// UpdateReactionRequest replaces the type of an existing reaction.
type UpdateReactionRequest struct {
	ReactionType string `json:"reaction_type" validate:"required,oneof=LIKE LOVE WOW SAD ANGRY"`
}
