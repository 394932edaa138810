package models

import "time"

// Organization types mirror the admin-managed registry of shelters and breeders
const (
	OrganizationTypeShelter    = "shelter"
	OrganizationTypeBreeder    = "breeder"
	OrganizationTypeFoundation = "foundation"
)

// Member roles within an organization
const (
	MemberRoleOwner  = "owner"
	MemberRoleAdmin  = "admin"
	MemberRoleMember = "member"
)

// Organization represents a shelter/breeder account owned by a user.
// Rating is a derived aggregate: the rounded mean of all rating-bearing
// comments targeting the organization, nil when none exist.
type Organization struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Type      string    `json:"type" gorm:"size:30"`
	Name      string    `json:"name" gorm:"uniqueIndex"`
	Email     string    `json:"email" gorm:"uniqueIndex"`
	Rating    *int      `json:"rating"`
	UserID    uint      `json:"user_id" gorm:"index"` // owning user
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrganizationMember is the user <-> organization join table with role-based
// membership. Invitations start unconfirmed and are confirmed or accepted
// through the membership endpoints.
type OrganizationMember struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	UserID              uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_org"`
	OrganizationID      uint      `json:"organization_id" gorm:"index;uniqueIndex:idx_user_org"`
	Role                string    `json:"role" gorm:"size:20;default:'member'"`
	InvitationConfirmed bool      `json:"invitation_confirmed" gorm:"default:false"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type CreateOrganizationRequest struct {
	Type  string `json:"type" validate:"required,oneof=shelter breeder foundation"`
	Name  string `json:"name" validate:"required,min=2,max=255"`
	Email string `json:"email" validate:"required,email"`
}

type InviteMemberRequest struct {
	UserID uint   `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"omitempty,oneof=admin member"`
}
