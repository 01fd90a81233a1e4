package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-lot-reservation/internal/config"
	"github.com/iliyamo/parking-lot-reservation/internal/middleware"
	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
	"github.com/iliyamo/parking-lot-reservation/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	PinCode  string `json:"pin_code"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID       uint64 `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// issue mints an access/refresh pair for u and stores the refresh hash.
func (h *AuthHandler) issue(c echo.Context, u model.User, status int) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "issue access failed")
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "issue refresh failed")
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return fail(c, http.StatusInternalServerError, "save refresh failed")
	}
	return c.JSON(status, authResp{
		User:    userPart{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}

// Register creates a driver account (role USER) and returns tokens
// immediately.  Admin accounts are only seeded from configuration.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "email/password required")
	}
	if !strings.Contains(req.Email, "@") {
		return fail(c, http.StatusBadRequest, "invalid email")
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	u := model.User{
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    strings.TrimSpace(req.Phone),
		Address:  strings.TrimSpace(req.Address),
		PinCode:  strings.TrimSpace(req.PinCode),
		Role:     model.RoleUser,
	}
	uid, err := h.Users.Create(ctx, u, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return fail(c, http.StatusConflict, "email already exists")
		}
		return fail(c, http.StatusInternalServerError, "create user failed")
	}
	u.ID = uid
	return h.issue(c, u, http.StatusCreated)
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "email/password required")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusUnauthorized, "invalid credentials")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}
	return h.issue(c, u, http.StatusOK)
}

// refreshOwner resolves the user owning a raw refresh token.  On failure
// it has already written the response and returns ok=false.
func (h *AuthHandler) refreshOwner(ctx context.Context, c echo.Context, hash string) (model.User, bool, error) {
	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return model.User{}, false, fail(c, http.StatusUnauthorized, "invalid refresh")
	}
	u, err := h.Users.GetByID(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return model.User{}, false, fail(c, http.StatusUnauthorized, "invalid refresh")
	case err != nil:
		return model.User{}, false, fail(c, http.StatusInternalServerError, "load user failed")
	}
	return u, true, nil
}

func bindRefresh(c echo.Context) (string, bool) {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return "", false
	}
	raw := strings.TrimSpace(req.RefreshToken)
	return raw, raw != ""
}

// Refresh rotates a refresh token: the presented one is revoked and a
// new pair is issued.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw, ok := bindRefresh(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "refresh_token required")
	}
	hash := utils.HashRefreshRaw(raw)

	ctx, cancel := requestCtx(c)
	defer cancel()

	u, ok, err := h.refreshOwner(ctx, c, hash)
	if !ok {
		return err
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		log.Printf("auth: revoke refresh for user=%d: %v", u.ID, err)
	}
	return h.issue(c, u, http.StatusOK)
}

// RefreshAccess returns a new access token without rotating the
// refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	raw, ok := bindRefresh(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "refresh_token required")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	u, ok, err := h.refreshOwner(ctx, c, utils.HashRefreshRaw(raw))
	if !ok {
		return err
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "issue access failed")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes either the refresh token in the body (one session) or,
// when only a valid Bearer token is supplied, every session of that user.
func (h *AuthHandler) Logout(c echo.Context) error {
	var uid uint64
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer ")); err == nil {
			uid = claims.UserID
		}
	}
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := requestCtx(c)
	defer cancel()

	switch {
	case refreshToken != "":
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return fail(c, http.StatusUnauthorized, "invalid refresh token")
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return fail(c, http.StatusInternalServerError, "logout failed")
		}
		return c.NoContent(http.StatusNoContent)
	case uid != 0:
		if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
			return fail(c, http.StatusInternalServerError, "logout failed")
		}
		return c.NoContent(http.StatusNoContent)
	}
	return fail(c, http.StatusBadRequest, "provide Authorization header or refresh_token")
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusNotFound, "user not found")
		}
		return fail(c, http.StatusInternalServerError, "load user failed")
	}
	return c.JSON(http.StatusOK, u)
}
