package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kumarshivu12/advanced-todo/internal/domain/ids"
	"github.com/kumarshivu12/advanced-todo/internal/domain/user"
	"github.com/kumarshivu12/advanced-todo/internal/observability"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	obs  observability.DBObserver
}

func NewUsersRepo(pool *pgxpool.Pool, obs observability.DBObserver) *UsersRepo {
	if obs == nil {
		obs = observability.NopDBObserver{}
	}
	return &UsersRepo{pool: pool, obs: obs}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *UsersRepo) Create(ctx context.Context, p user.CreateParams) (user.User, error) {
	now := time.Now().UTC()

	u := user.User{
		ID:           ids.New(),
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.obs.ObserveDB("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.obs.ObserveDB("users.get_by_email", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, name, email, password_hash, refresh_token, created_at, updated_at
			FROM users
			WHERE email = $1`,
			email,
		).Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.PasswordHash,
			&u.RefreshToken,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("select user by email: %w", err)
	}
	return u, nil
}

// GetPublicByID never selects the password hash or the refresh token.
func (r *UsersRepo) GetPublicByID(ctx context.Context, id string) (user.Public, error) {
	var u user.Public

	err := r.obs.ObserveDB("users.get_public", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, name, email, created_at, updated_at FROM users WHERE id = $1`,
			id,
		).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.Public{}, user.ErrNotFound
		}
		return user.Public{}, fmt.Errorf("select user by id: %w", err)
	}
	return u, nil
}

func (r *UsersRepo) SetRefreshToken(ctx context.Context, id, token string) error {
	return r.setRefreshToken(ctx, "users.set_refresh", id, &token)
}

// UnsetRefreshToken stores NULL, never an empty string.
func (r *UsersRepo) UnsetRefreshToken(ctx context.Context, id string) error {
	return r.setRefreshToken(ctx, "users.unset_refresh", id, nil)
}

func (r *UsersRepo) setRefreshToken(ctx context.Context, op, id string, token *string) error {
	var tag pgconn.CommandTag

	err := r.obs.ObserveDB(op, func() error {
		var err error
		tag, err = r.pool.Exec(ctx,
			`UPDATE users SET refresh_token = $2, updated_at = NOW() WHERE id = $1`,
			id, token,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
