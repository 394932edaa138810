package models

import "time"

// Animal adoption statuses
const (
	AnimalStatusAvailable = "available"
	AnimalStatusReserved  = "reserved"
	AnimalStatusAdopted   = "adopted"
)

// Animal represents a pet listed for adoption, owned by a user and optionally
// attached to an organization.
type Animal struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name"`
	Species        string    `json:"species" gorm:"size:50"`
	Gender         string    `json:"gender" gorm:"size:10"`
	Status         string    `json:"status" gorm:"size:20;default:'available'"`
	OwnerID        uint      `json:"owner_id" gorm:"index"`
	OrganizationID *uint     `json:"organization_id,omitempty" gorm:"index"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CreateAnimalRequest struct {
	Name           string `json:"name" validate:"required,min=1,max=100"`
	Species        string `json:"species" validate:"required,min=2,max=50"`
	Gender         string `json:"gender" validate:"omitempty,oneof=male female"`
	OrganizationID *uint  `json:"organization_id,omitempty"`
}

type UpdateAnimalRequest struct {
	Name   string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Status string `json:"status,omitempty" validate:"omitempty,oneof=available reserved adopted"`
}
