package repositories

import (
	"github.com/pawhub/backend/internal/models"
	"gorm.io/gorm"
)

// AnimalRepository defines the interface for animal data operations
type AnimalRepository interface {
	CreateAnimal(animal *models.Animal) error
	GetAnimalByID(id uint) (*models.Animal, error)
	ListAnimals(limit, offset int) ([]models.Animal, error)
	UpdateAnimal(animal *models.Animal) error
	DeleteAnimal(id uint) error
}

// PostgresAnimalRepository implements AnimalRepository for PostgreSQL
type PostgresAnimalRepository struct {
	db *gorm.DB
}

// NewPostgresAnimalRepository creates a new PostgresAnimalRepository
func NewPostgresAnimalRepository(db *gorm.DB) *PostgresAnimalRepository {
	return &PostgresAnimalRepository{db: db}
}

func (r *PostgresAnimalRepository) CreateAnimal(animal *models.Animal) error {
	return r.db.Create(animal).Error
}

func (r *PostgresAnimalRepository) GetAnimalByID(id uint) (*models.Animal, error) {
	var animal models.Animal
	if err := r.db.First(&animal, id).Error; err != nil {
		return nil, err
	}
	return &animal, nil
}

func (r *PostgresAnimalRepository) ListAnimals(limit, offset int) ([]models.Animal, error) {
	var animals []models.Animal
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&animals).Error
	return animals, err
}

func (r *PostgresAnimalRepository) UpdateAnimal(animal *models.Animal) error {
	return r.db.Save(animal).Error
}

func (r *PostgresAnimalRepository) DeleteAnimal(id uint) error {
	return r.db.Delete(&models.Animal{}, id).Error
}
