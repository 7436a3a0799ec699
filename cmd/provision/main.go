// Command main applies the role table and repairs missing self-follow
// edges. Safe to run repeatedly; both passes are idempotent.
package main

import (
	"context"
	"log"

	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/models"
	"quill/internal/repository"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	ctx := context.Background()

	roleRepo := repository.NewRoleRepository(db)
	if err := roleRepo.InsertRoles(ctx, models.DefaultRoleTable); err != nil {
		log.Fatalf("Role provisioning failed: %v", err)
	}
	log.Printf("Provisioned %d roles", len(models.DefaultRoleTable))

	followRepo := repository.NewFollowRepository(db)
	repaired, err := followRepo.ReconcileSelfFollows(ctx)
	if err != nil {
		log.Fatalf("Self-follow reconciliation failed: %v", err)
	}
	log.Printf("Repaired %d missing self-follow edges", repaired)
}
