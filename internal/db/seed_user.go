package db

import (
	"context"
	"errors"
	"strings"

	"github.com/kumarshivu12/advanced-todo/internal/config"
	"github.com/kumarshivu12/advanced-todo/internal/domain/user"
	"github.com/kumarshivu12/advanced-todo/internal/security"
)

type SeedUserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, p user.CreateParams) (user.User, error)
}

// EnsureSeedUser creates the configured demo account if it does not exist.
// It does nothing unless both SEED_USER_EMAIL and SEED_USER_PASSWORD are set.
func EnsureSeedUser(ctx context.Context, store SeedUserStore, cfg config.Config) (bool, error) {
	if cfg.SeedUserEmail == "" || cfg.SeedUserPassword == "" {
		return false, nil
	}

	email := strings.ToLower(strings.TrimSpace(cfg.SeedUserEmail))

	_, err := store.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return false, err
	}

	hash, err := security.HashPassword(cfg.SeedUserPassword)
	if err != nil {
		return false, err
	}

	_, err = store.Create(ctx, user.CreateParams{
		Name:         cfg.SeedUserName,
		Email:        email,
		PasswordHash: hash,
	})
	if errors.Is(err, user.ErrEmailTaken) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}
