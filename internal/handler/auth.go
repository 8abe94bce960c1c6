package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dholimara/homestay-api/internal/apperr"
	"github.com/dholimara/homestay-api/internal/config"
	"github.com/dholimara/homestay-api/internal/logger"
	"github.com/dholimara/homestay-api/internal/media"
	"github.com/dholimara/homestay-api/internal/middleware"
	"github.com/dholimara/homestay-api/internal/model"
	"github.com/dholimara/homestay-api/internal/repository"
	"github.com/dholimara/homestay-api/internal/utils"
)

// TokenStore persists refresh token hashes.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	Rotate(ctx context.Context, oldHash, newHash string, exp time.Time) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// UserStore is the user persistence the auth and profile handlers share.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateProfile(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id uint64) error
}

// AuthHandler issues and revokes tokens.
type AuthHandler struct {
	cfg    config.Config
	users  UserStore
	tokens TokenStore
	media  media.Resolver
	log    *logger.Logger
}

func NewAuthHandler(cfg config.Config, users UserStore, tokens TokenStore, resolver media.Resolver, log *logger.Logger) *AuthHandler {
	if users == nil || tokens == nil || log == nil {
		panic("nil dependency passed to NewAuthHandler")
	}
	return &AuthHandler{cfg: cfg, users: users, tokens: tokens, media: resolver, log: log}
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User    *model.User `json:"user"`
	Access  tokenPart   `json:"access"`
	Refresh tokenPart   `json:"refresh"`
}

// Login checks email and password and returns a fresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrUserNotFound) || (err == nil && !utils.VerifyPassword(u.PasswordHash, req.Password)) {
		h.log.Info("login failed", "email", strings.ToLower(req.Email), "ip", c.RealIP())
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if err != nil {
		return fail(c, err)
	}
	if !u.IsActive {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account disabled"})
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		return fail(c, err)
	}
	resp.User.ProfileImage = h.media.ForRequest(c)(resp.User.ProfileImage)
	return c.JSON(http.StatusOK, resp)
}

// Refresh rotates a refresh token: the old one is revoked and a new pair
// is returned.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := bind(c, &req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	next, err := utils.NewRefreshToken(h.cfg.RefreshTTLDays)
	if err != nil {
		return fail(c, err)
	}
	uid, err := h.tokens.Rotate(ctx, utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken)), utils.HashRefreshRaw(next.Raw), next.Exp)
	if errors.Is(err, repository.ErrTokenInvalid) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err != nil {
		return fail(c, err)
	}
	u, err := h.users.GetByID(ctx, uid)
	if errors.Is(err, repository.ErrUserNotFound) || (err == nil && !u.IsActive) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err != nil {
		return fail(c, err)
	}
	access, err := utils.NewAccessToken(h.cfg.JWTSecret, u.ID, u.Role(), h.cfg.AccessTTLMin)
	if err != nil {
		return fail(c, err)
	}
	u.ProfileImage = h.media.ForRequest(c)(u.ProfileImage)
	return c.JSON(http.StatusOK, authResp{
		User:    u,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: next.Raw, Expires: next.Exp},
	})
}

// Logout revokes the refresh token in the body, or every refresh token of
// the authenticated caller when the body carries none.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = bind(c, &req)
	raw := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := dbCtx(c)
	defer cancel()

	if raw != "" {
		hash := utils.HashRefreshRaw(raw)
		if _, err := h.tokens.ValidateRefresh(ctx, hash); err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		if err := h.tokens.RevokeByHash(ctx, hash); err != nil {
			return fail(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
	if uid, ok := middleware.UserID(c); ok {
		if err := h.tokens.RevokeAllForUser(ctx, uid); err != nil {
			return fail(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
}

// issue signs an access token and stores a new refresh token for u.
func (h *AuthHandler) issue(ctx context.Context, u *model.User) (*authResp, error) {
	access, err := utils.NewAccessToken(h.cfg.JWTSecret, u.ID, u.Role(), h.cfg.AccessTTLMin)
	if err != nil {
		return nil, apperr.Internal("issue access token", err)
	}
	refresh, err := utils.NewRefreshToken(h.cfg.RefreshTTLDays)
	if err != nil {
		return nil, apperr.Internal("issue refresh token", err)
	}
	if err := h.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, apperr.Internal("store refresh token", err)
	}
	return &authResp{
		User:    u,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	}, nil
}
