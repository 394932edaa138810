package models

import "time"

// Post is an update published on an animal's or organization's timeline.
// Exactly one of AnimalID / OrganizationID must be set; the parent determines
// which followers the post fans out to.
type Post struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Content        string     `json:"content" gorm:"type:text"`
	AuthorID       uint       `json:"author_id" gorm:"index"`
	AnimalID       *uint      `json:"animal_id,omitempty" gorm:"index"`
	OrganizationID *uint      `json:"organization_id,omitempty" gorm:"index"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}

type CreatePostRequest struct {
	Content        string `json:"content" validate:"required,min=1"`
	AnimalID       *uint  `json:"animal_id,omitempty"`
	OrganizationID *uint  `json:"organization_id,omitempty"`
}

type UpdatePostRequest struct {
	Content string `json:"content,omitempty" validate:"omitempty,min=1"`
}
