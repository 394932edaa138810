package repositories

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/pawhub/backend/internal/models"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	err = db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.OrganizationMember{},
		&models.Animal{},
		&models.Post{},
		&models.Article{},
		&models.Comment{},
		&models.Reaction{},
		&models.Follow{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	user := &models.User{
		FirstName: name,
		Email:     fmt.Sprintf("%s@example.com", name),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user %s: %v", name, err)
	}
	return user
}

func createTestOrganization(t *testing.T, db *gorm.DB, owner *models.User, name string) *models.Organization {
	t.Helper()

	org := &models.Organization{
		Type:   models.OrganizationTypeShelter,
		Name:   name,
		Email:  fmt.Sprintf("%s@example.org", name),
		UserID: owner.ID,
	}
	if err := db.Create(org).Error; err != nil {
		t.Fatalf("failed creating test organization %s: %v", name, err)
	}
	return org
}
