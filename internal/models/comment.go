package models

import "time"

// MinCommentBodyLength is the minimum number of trimmed characters a comment
// body must contain.
const MinCommentBodyLength = 3

// Comment is free-text feedback attached to any registered entity kind,
// optionally carrying a 1-5 star rating. Rating-bearing comments targeting an
// organization drive the organization's aggregate rating.
type Comment struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	UserID        *uint      `json:"user_id" gorm:"index"` // nullable: kept when the author is removed
	ContentTypeID uint       `json:"content_type" gorm:"index:idx_comment_target"`
	ObjectID      uint       `json:"object_id" gorm:"index:idx_comment_target"`
	Body          string     `json:"body" gorm:"type:text"`
	Rating        *int       `json:"rating"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// CreateCommentRequest accepts the target kind either as a numeric registry id
// or a "namespace.name" string, matching the public API contract.
type CreateCommentRequest struct {
	ContentType any    `json:"content_type" validate:"required"`
	ObjectID    uint   `json:"object_id" validate:"required"`
	Body        string `json:"body" validate:"required"`
	Rating      *int   `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}

type UpdateCommentRequest struct {
	Body   string `json:"body,omitempty"`
	Rating *int   `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}
