package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kumarshivu12/advanced-todo/internal/auth"
	"github.com/kumarshivu12/advanced-todo/internal/config"
	"github.com/kumarshivu12/advanced-todo/internal/domain/user"
	"github.com/kumarshivu12/advanced-todo/internal/http/response"
	"github.com/kumarshivu12/advanced-todo/internal/observability"
	"github.com/kumarshivu12/advanced-todo/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, p user.CreateParams) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	UnsetRefreshToken(ctx context.Context, id string) error
}

type TokenIssuer interface {
	IssueTokens(ctx context.Context, u user.User) (auth.Tokens, error)
}

// CookieConfig controls the session cookies. Secure is a deployment setting.
type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type AuthHandler struct {
	users   UserStore
	tokens  TokenIssuer
	cookies CookieConfig
	prom    *observability.Prom
}

func NewAuthHandler(users UserStore, tokens TokenIssuer, cookies CookieConfig, prom *observability.Prom) *AuthHandler {
	return &AuthHandler{
		users:   users,
		tokens:  tokens,
		cookies: cookies,
		prom:    prom,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,notblank"`
	Email    string `json:"email" binding:"required,notblank"`
	Password string `json:"password" binding:"required,notblank,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,notblank"`
	Password string `json:"password" binding:"required,notblank"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (h *AuthHandler) Register(ctx *gin.Context) (*response.Result, error) {
	var req RegisterRequest

	if err := BindJSON(ctx, &req); err != nil {
		return nil, err
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	email := normalizeEmail(req.Email)

	_, err := h.users.GetByEmail(cctx, email)
	if err == nil {
		return nil, response.Conflict("user already exists")
	}
	if !errors.Is(err, user.ErrNotFound) {
		return nil, response.Internal("something went wrong while registering user", err)
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		// max=72 counts runes, bcrypt counts bytes
		if errors.Is(err, security.ErrPasswordTooLong) {
			return nil, response.BadRequest("password must be at most 72 bytes")
		}
		return nil, response.Internal("something went wrong while registering user", err)
	}

	u, err := h.users.Create(cctx, user.CreateParams{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		// a concurrent registration can still win the unique index
		if errors.Is(err, user.ErrEmailTaken) {
			return nil, response.Conflict("user already exists")
		}
		return nil, response.Internal("something went wrong while registering user", err)
	}

	return response.Created(u.Public(), "user created successfully"), nil
}

func (h *AuthHandler) Login(ctx *gin.Context) (*response.Result, error) {
	var req LoginRequest

	if err := BindJSON(ctx, &req); err != nil {
		return nil, err
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			security.CheckDummy(req.Password)
			h.prom.ObserveLogin("invalid_credentials")
			return nil, response.BadRequest("invalid user credentials")
		}
		h.prom.ObserveLogin("error")
		return nil, response.Internal("something went wrong while logging in", err)
	}

	if !security.CheckPassword(foundUser.PasswordHash, req.Password) {
		h.prom.ObserveLogin("invalid_credentials")
		return nil, response.BadRequest("invalid user credentials")
	}

	tokens, err := h.tokens.IssueTokens(cctx, foundUser)
	if err != nil {
		h.prom.ObserveLogin("error")
		return nil, response.Internal("something went wrong while generating tokens", err)
	}

	h.setSessionCookies(ctx, tokens)
	h.prom.ObserveLogin("success")

	return response.OK(foundUser.Public(), "user logged in successfully"), nil
}

// Logout forgets the stored refresh token. Access tokens already handed out
// stay valid until they expire.
func (h *AuthHandler) Logout(ctx *gin.Context, me user.Public) (*response.Result, error) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	err := h.users.UnsetRefreshToken(cctx, me.ID)
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return nil, response.Internal("something went wrong while logging out", err)
	}

	h.clearSessionCookies(ctx)

	return response.OK(gin.H{}, "user logged out successfully"), nil
}

func (h *AuthHandler) CheckAuth(ctx *gin.Context, me user.Public) (*response.Result, error) {
	return response.OK(me, "user authorized"), nil
}

func (h *AuthHandler) sameSite() http.SameSite {
	// cross site front-ends only receive the cookies when they are secure
	if h.cookies.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (h *AuthHandler) setSessionCookies(ctx *gin.Context, tokens auth.Tokens) {
	ctx.SetSameSite(h.sameSite())

	ctx.SetCookie(
		auth.AccessTokenCookie,
		tokens.AccessToken,
		int(h.cookies.AccessTTL.Seconds()),
		"/",
		"",
		h.cookies.Secure,
		true, // HttpOnly.
	)
	ctx.SetCookie(
		auth.RefreshTokenCookie,
		tokens.RefreshToken,
		int(h.cookies.RefreshTTL.Seconds()),
		"/",
		"",
		h.cookies.Secure,
		true,
	)
}

func (h *AuthHandler) clearSessionCookies(ctx *gin.Context) {
	ctx.SetSameSite(h.sameSite())
	for _, name := range []string{auth.AccessTokenCookie, auth.RefreshTokenCookie} {
		ctx.SetCookie(name, "", -1, "/", "", h.cookies.Secure, true)
	}
}
