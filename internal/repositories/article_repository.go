package repositories

import (
	"github.com/pawhub/backend/internal/models"
	"gorm.io/gorm"
)

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	CreateArticle(article *models.Article) error
	GetArticleByID(id uint) (*models.Article, error)
	ListArticles(limit, offset int) ([]models.Article, error)
	DeleteArticle(id uint) error
}

// PostgresArticleRepository implements ArticleRepository for PostgreSQL
type PostgresArticleRepository struct {
	db *gorm.DB
}

// NewPostgresArticleRepository creates a new PostgresArticleRepository
func NewPostgresArticleRepository(db *gorm.DB) *PostgresArticleRepository {
	return &PostgresArticleRepository{db: db}
}

func (r *PostgresArticleRepository) CreateArticle(article *models.Article) error {
	return r.db.Create(article).Error
}

func (r *PostgresArticleRepository) GetArticleByID(id uint) (*models.Article, error) {
	var article models.Article
	if err := r.db.First(&article, id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *PostgresArticleRepository) ListArticles(limit, offset int) ([]models.Article, error) {
	var articles []models.Article
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&articles).Error
	return articles, err
}

func (r *PostgresArticleRepository) DeleteArticle(id uint) error {
	return r.db.Delete(&models.Article{}, id).Error
}
