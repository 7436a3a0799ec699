package repository

import (
	"context"
	"testing"

	"quill/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory sqlite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.Comment{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// createTestUser inserts a confirmed user (and their self-follow edge)
// through the repository.
func createTestUser(t *testing.T, db *gorm.DB, username, email string) *models.User {
	t.Helper()

	repo := NewUserRepository(db)
	user := &models.User{
		Username:      username,
		Email:         email,
		PasswordHash:  "not-a-real-hash",
		Confirmed:     true,
		AcceptedTerms: true,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}
