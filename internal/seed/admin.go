package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"foodtruck/pos/domain"
	"foodtruck/pos/internal/store"
)

// EnsureAdmin creates the first admin account when no profile exists yet, so
// a fresh install can log in and register cashiers.
func EnsureAdmin(ctx context.Context, st *store.Store, email, password string, log *zap.Logger) (bool, error) {
	n, err := st.CountProfiles(ctx)
	if err != nil {
		return false, fmt.Errorf("count profiles: %w", err)
	}
	if n > 0 || email == "" || password == "" {
		return false, nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	admin := &domain.Profile{Email: email, Password: string(hashed), FullName: "Administrator", Role: domain.RoleAdmin}
	if err := st.CreateProfile(ctx, admin); err != nil {
		return false, err
	}
	log.Warn("created initial admin account, change its password", zap.String("email", admin.Email))
	return true, nil
}
