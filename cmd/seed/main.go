package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"flightbooking/internal/auth"
	"flightbooking/internal/config"
	"flightbooking/internal/db"
	"flightbooking/internal/model"
	"flightbooking/internal/repository"
)

func main() {
	log.Println("Starting seed script...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Admin.Password == "" {
		log.Fatal("ADMIN_PASSWORD is required to seed the admin account")
	}

	// Connect to database
	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	// Run migrations to ensure schema is up to date
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	users := repository.NewUserRepository(gormDB)

	created, err := seedAdmin(context.Background(), users, hasher, cfg.Admin)
	if err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}

	if created {
		log.Printf("Seed completed: admin %s created", cfg.Admin.Email)
	} else {
		log.Printf("Seed completed: admin %s updated", cfg.Admin.Email)
	}
}

// seedAdmin creates the bootstrap admin, or resets the password, role and
// status of an existing account with the same email.
func seedAdmin(ctx context.Context, repo repository.UserRepository, hasher auth.PasswordHasher, admin config.AdminConfig) (created bool, err error) {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	hashed, err := hasher.Hash(admin.Password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	existing, err := repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("error checking admin %s: %w", email, err)
	}

	if existing != nil {
		existing.PasswordHash = hashed
		existing.Role = model.RoleAdmin
		existing.IsActive = true
		if err := repo.Update(ctx, existing); err != nil {
			return false, fmt.Errorf("error updating admin %s: %w", email, err)
		}
		return false, nil
	}

	user := &model.User{
		Name:         strings.TrimSpace(admin.Name),
		Email:        email,
		PasswordHash: hashed,
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := repo.Create(ctx, user); err != nil {
		return false, fmt.Errorf("error creating admin %s: %w", email, err)
	}
	return true, nil
}
