package auth

import (
	"context"
	"fmt"

	"github.com/kumarshivu12/advanced-todo/internal/domain/user"
)

// RefreshTokenStore persists the current refresh token on the user record. The
// stored value is the only one the server treats as a live session.
type RefreshTokenStore interface {
	SetRefreshToken(ctx context.Context, userID, token string) error
}

type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// Service issues session tokens and records the refresh secret.
type Service struct {
	jwt   *Manager
	store RefreshTokenStore
}

func NewService(jwt *Manager, store RefreshTokenStore) *Service {
	return &Service{jwt: jwt, store: store}
}

// IssueTokens mints an access and a refresh token for u and overwrites the
// refresh token stored for u.
func (s *Service) IssueTokens(ctx context.Context, u user.User) (Tokens, error) {
	access, err := s.jwt.GenerateAccessToken(u)
	if err != nil {
		return Tokens{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := s.jwt.GenerateRefreshToken(u)
	if err != nil {
		return Tokens{}, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.store.SetRefreshToken(ctx, u.ID, refresh); err != nil {
		return Tokens{}, fmt.Errorf("store refresh token: %w", err)
	}

	return Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

// Cookie names the session tokens travel in.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)
