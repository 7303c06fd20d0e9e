package service

import (
	"fmt"

	"github.com/portal-dev/portal/shared/domain"
	"github.com/portal-dev/portal/shared/errors"
	"github.com/portal-dev/portal/shared/logger"
	"golang.org/x/crypto/bcrypt"
)

const demoPassword = "password123"

// DemoUsers are created on startup when backend.seed_demo_users is set.
var DemoUsers = []domain.User{
	{Email: "test@example.com", Name: "Test User", Role: domain.RoleUser},
	{Email: "admin@example.com", Name: "Admin", Role: domain.RoleAdmin},
	{Email: "user1@example.com", Name: "User One", Role: domain.RoleUser},
	{Email: "user2@example.com", Name: "User Two", Role: domain.RoleUser},
}

// SeedDemoUsers inserts the demo accounts that do not exist yet. Existing accounts are left alone.
func SeedDemoUsers(storage AuthStorage) error {
	passHash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	for _, u := range DemoUsers {
		_, err := storage.User(u.Email)
		if err == nil {
			continue
		}
		if !errors.IsNotFound(err) {
			return err
		}
		u.PassHash = string(passHash)
		if _, err := storage.SaveUser(u); err != nil {
			return fmt.Errorf("failed to seed %s: %w", u.Email, err)
		}
		logger.Log.Info("seeded demo user", "email", u.Email, "role", u.Role)
	}
	return nil
}
