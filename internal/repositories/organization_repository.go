package repositories

import (
	"github.com/pawhub/backend/internal/models"
	"gorm.io/gorm"
)

// OrganizationRepository defines the interface for organization and
// membership data operations
type OrganizationRepository interface {
	CreateOrganization(org *models.Organization) error
	GetOrganizationByID(id uint) (*models.Organization, error)
	ListOrganizations(limit, offset int) ([]models.Organization, error)
	UpdateRating(orgID uint, rating *int) error

	CreateMember(member *models.OrganizationMember) error
	GetMember(userID, orgID uint) (*models.OrganizationMember, error)
	GetMemberByID(id uint) (*models.OrganizationMember, error)
	UpdateMember(member *models.OrganizationMember) error
	DeleteMember(id uint) error
	ListMembers(orgID uint) ([]models.OrganizationMember, error)
}

// PostgresOrganizationRepository implements OrganizationRepository for PostgreSQL
type PostgresOrganizationRepository struct {
	db *gorm.DB
}

// NewPostgresOrganizationRepository creates a new PostgresOrganizationRepository
func NewPostgresOrganizationRepository(db *gorm.DB) *PostgresOrganizationRepository {
	return &PostgresOrganizationRepository{db: db}
}

// CreateOrganization creates the organization and its owner membership in one
// step, mirroring the invariant that every organization has a confirmed owner
// member from birth.
func (r *PostgresOrganizationRepository) CreateOrganization(org *models.Organization) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return err
		}
		owner := &models.OrganizationMember{
			UserID:              org.UserID,
			OrganizationID:      org.ID,
			Role:                models.MemberRoleOwner,
			InvitationConfirmed: true,
		}
		return tx.Create(owner).Error
	})
}

func (r *PostgresOrganizationRepository) GetOrganizationByID(id uint) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *PostgresOrganizationRepository) ListOrganizations(limit, offset int) ([]models.Organization, error) {
	var orgs []models.Organization
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&orgs).Error
	return orgs, err
}

func (r *PostgresOrganizationRepository) UpdateRating(orgID uint, rating *int) error {
	return r.db.Model(&models.Organization{}).Where("id = ?", orgID).Update("rating", rating).Error
}

func (r *PostgresOrganizationRepository) CreateMember(member *models.OrganizationMember) error {
	return r.db.Create(member).Error
}

func (r *PostgresOrganizationRepository) GetMember(userID, orgID uint) (*models.OrganizationMember, error) {
	var member models.OrganizationMember
	if err := r.db.Where("user_id = ? AND organization_id = ?", userID, orgID).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *PostgresOrganizationRepository) GetMemberByID(id uint) (*models.OrganizationMember, error) {
	var member models.OrganizationMember
	if err := r.db.First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *PostgresOrganizationRepository) UpdateMember(member *models.OrganizationMember) error {
	return r.db.Save(member).Error
}

func (r *PostgresOrganizationRepository) DeleteMember(id uint) error {
	return r.db.Delete(&models.OrganizationMember{}, id).Error
}

func (r *PostgresOrganizationRepository) ListMembers(orgID uint) ([]models.OrganizationMember, error) {
	var members []models.OrganizationMember
	err := r.db.Where("organization_id = ?", orgID).Find(&members).Error
	return members, err
}
