// Command reset-password restores the seeded admin's password from ADMIN_PASSWORD.
package main

import (
	"log"

	"go-stock-tracker/internal/model"
	"go-stock-tracker/internal/repository"
	"go-stock-tracker/pkg/config"
	"go-stock-tracker/pkg/database"
)

func main() {
	// 1. Load Config
	cfg := config.Load()
	if cfg.AdminPassword == "" {
		log.Fatal("ADMIN_PASSWORD is not set")
	}

	// 2. Setup Database
	db := database.ConnectDB(cfg)
	userRepo := repository.NewUserRepo(db)

	// 3. Find Admin
	user, err := userRepo.FindByEmail(cfg.AdminEmail)
	if err != nil {
		log.Fatalf("User %s not found in database: %v", cfg.AdminEmail, err)
	}

	// 4. Hash new password
	if err := user.SetPassword(cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	// 5. Update, making sure the account can log in again
	user.Role = model.RoleAdmin
	user.IsActive = true
	if err := userRepo.Update(user); err != nil {
		log.Fatalf("Failed to update password in DB: %v", err)
	}

	log.Printf("Password for %s has been reset from ADMIN_PASSWORD", cfg.AdminEmail)
}
