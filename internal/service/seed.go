package service

import (
	"SmartMusic/internal/model"
	"SmartMusic/internal/repo"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// SeedDocument возвращает SeedFunc, создающий документ с единственным администратором.
func SeedDocument(adminEmail, adminPassword string) repo.SeedFunc {
	return func() (*model.Document, error) {
		if adminPassword == "" {
			return nil, errors.New("admin password is not configured")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		admin := model.User{
			ID:           model.AdminID,
			Username:     "Admin",
			Email:        normalizeEmail(adminEmail),
			PasswordHash: string(hash),
			Role:         model.RoleAdmin,
			Bio:          "Lead Developer & Admin of Smart Music",
		}
		return model.NewDocument(admin), nil
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
