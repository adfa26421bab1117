package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/moviegoer/rottenpotatoes/internal/config"
	"github.com/moviegoer/rottenpotatoes/internal/identity"
	"github.com/moviegoer/rottenpotatoes/internal/model"
	"github.com/moviegoer/rottenpotatoes/internal/repository"
	"github.com/moviegoer/rottenpotatoes/internal/utils"
)

// localProvider is the provider tag for password-based accounts. All
// other providers arrive through the external callback route.
const localProvider = "local"

// AuthHandler bundles dependencies for session endpoints. External
// logins resolve through the identity resolver; local accounts keep a
// bcrypt hash on the moviegoer row.
type AuthHandler struct {
	Cfg        config.Config
	Resolver   *identity.Resolver
	Moviegoers *repository.MoviegoerRepo
	Tokens     *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, res *identity.Resolver, m *repository.MoviegoerRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Resolver: res, Moviegoers: m, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type callbackReq struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type moviegoerPart struct {
	ID       uint64 `json:"id"`
	Provider string `json:"provider"`
	Name     string `json:"name"`
}
type authResp struct {
	Moviegoer moviegoerPart `json:"moviegoer"`
	Access    tokenPart     `json:"access"`
	Refresh   tokenPart     `json:"refresh"`
}

// issueTokens mints an access/refresh pair for a moviegoer and stores
// the refresh hash.
func (h *AuthHandler) issueTokens(ctx context.Context, m model.Moviegoer) (*authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, m.ID, m.Name, h.Cfg.AccessTTLMin)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return nil, err
	}
	if err := h.Tokens.StoreRefresh(ctx, m.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, err
	}
	return &authResp{
		Moviegoer: moviegoerPart{ID: m.ID, Provider: m.Provider, Name: m.Name},
		Access:    tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh:   tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

// Register creates a local-provider moviegoer and returns tokens
// immediately. The normalized email doubles as the provider-scoped uid.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = req.Email
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
	}
	m := model.Moviegoer{Provider: localProvider, UID: req.Email, Name: name, PasswordHash: &hash}
	if err := h.Moviegoers.Create(ctx, &m); err != nil {
		if errors.Is(err, repository.ErrIdentityExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "account already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create account failed"})
	}

	resp, err := h.issueTokens(ctx, m)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies local credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Moviegoers.FindByProviderUID(ctx, localProvider, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if m.PasswordHash == nil || !utils.VerifyPassword(*m.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	resp, err := h.issueTokens(ctx, m)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// Callback completes an external login. The deployment fronts this
// route with the provider's OAuth callback proxy, which validates the
// handshake; by the time the request lands here the assertion
// {provider, uid, name} is trusted. The resolver returns the existing
// moviegoer or creates one on first sight.
func (h *AuthHandler) Callback(c echo.Context) error {
	provider := strings.ToLower(strings.TrimSpace(c.Param("provider")))
	if provider == "" || provider == localProvider {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown provider"})
	}
	var req callbackReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Resolver.Resolve(ctx, provider, strings.TrimSpace(req.UID), strings.TrimSpace(req.Name))
	if err != nil {
		if errors.Is(err, identity.ErrInvalidAssertion) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "uid required"})
		}
		// Includes the lost duplicate-identity race; fatal for this
		// request, never retried here.
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "resolve identity failed"})
	}

	resp, err := h.issueTokens(ctx, m)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh validates a refresh token by hash, revokes it and issues a
// fresh pair (rotation).
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	moviegoerID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	m, err := h.Moviegoers.GetByID(ctx, moviegoerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load moviegoer failed"})
	}

	resp, err := h.issueTokens(ctx, m)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout ends a session. With a refresh_token in the body that single
// session is revoked; with only a valid bearer token every session for
// the moviegoer is revoked.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if refreshToken != "" {
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.JSON(http.StatusOK, echo.Map{"notice": "Logged out successfully."})
	}

	if uid, ok := bearerSubject(c, h.Cfg.JWTSecret); ok {
		if err := h.Tokens.RevokeAllForMoviegoer(ctx, uid); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.JSON(http.StatusOK, echo.Map{"notice": "Logged out successfully."})
	}

	return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
}

// Me reports the authenticated identity. Protected route.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"moviegoer_id": c.Get("moviegoer_id"),
		"name":         c.Get("moviegoer_name"),
	})
}

// bearerSubject parses the Authorization header without requiring the
// JWT middleware, returning the subject claim when the token is valid.
func bearerSubject(c echo.Context, secret string) (uint64, bool) {
	authHeader := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return 0, false
	}
	raw := strings.TrimPrefix(authHeader, "Bearer ")
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	if sub, ok := claims["sub"].(float64); ok && sub > 0 {
		return uint64(sub), true
	}
	return 0, false
}
