package repositories

import (
	"errors"

	"github.com/pawhub/backend/internal/models"
	"gorm.io/gorm"
)

// ErrPostParentRequired is returned when a post does not name exactly one of
// animal / organization as its parent.
var ErrPostParentRequired = errors.New("post must target exactly one of animal or organization")

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(post *models.Post) error
	GetPostByID(id uint) (*models.Post, error)
	ListPostsByAnimal(animalID uint, limit, offset int) ([]models.Post, error)
	ListPostsByOrganization(orgID uint, limit, offset int) ([]models.Post, error)
	UpdatePost(post *models.Post) error
	DeletePost(id uint) error
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) CreatePost(post *models.Post) error {
	if (post.AnimalID == nil) == (post.OrganizationID == nil) {
		return ErrPostParentRequired
	}
	return r.db.Create(post).Error
}

func (r *PostgresPostRepository) GetPostByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostgresPostRepository) ListPostsByAnimal(animalID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Where("animal_id = ?", animalID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&posts).Error
	return posts, err
}

func (r *PostgresPostRepository) ListPostsByOrganization(orgID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Where("organization_id = ?", orgID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&posts).Error
	return posts, err
}

func (r *PostgresPostRepository) UpdatePost(post *models.Post) error {
	return r.db.Save(post).Error
}

func (r *PostgresPostRepository) DeletePost(id uint) error {
	return r.db.Delete(&models.Post{}, id).Error
}
