package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kumarshivu12/advanced-todo/internal/domain/ids"
	"github.com/kumarshivu12/advanced-todo/internal/domain/user"
)

type UsersRepo struct {
	mu      sync.RWMutex
	items   map[string]user.User
	byEmail map[string]string
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items:   make(map[string]user.User),
		byEmail: make(map[string]string),
	}
}

func (r *UsersRepo) Create(ctx context.Context, p user.CreateParams) (user.User, error) {
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	key := p.Email
	if _, ok := r.byEmail[key]; ok {
		return user.User{}, user.ErrEmailTaken
	}

	u := user.User{
		ID:           ids.New(),
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.items[u.ID] = u
	r.byEmail[key] = u.ID

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return r.items[id], nil
}

func (r *UsersRepo) GetPublicByID(ctx context.Context, id string) (user.Public, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.Public{}, user.ErrNotFound
	}
	return u.Public(), nil
}

// GetByID returns the full record, secrets included. Only tests and the seed
// path need it.
func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) SetRefreshToken(ctx context.Context, id, token string) error {
	return r.setRefreshToken(id, &token)
}

func (r *UsersRepo) UnsetRefreshToken(ctx context.Context, id string) error {
	return r.setRefreshToken(id, nil)
}

func (r *UsersRepo) setRefreshToken(id string, token *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.ErrNotFound
	}
	u.RefreshToken = token
	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u
	return nil
}

func (r *UsersRepo) Ping(ctx context.Context) error { return nil }
