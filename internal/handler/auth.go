package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/game-rental/internal/utils"
)

// requestTimeout bounds the store work of a single request.
const requestTimeout = 5 * time.Second

// Authenticator is implemented by *service.AuthService.
type Authenticator interface {
	CreateUser(ctx context.Context, username, password string) (utils.AccessToken, error)
	AuthenticateUser(ctx context.Context, username, password string) (utils.AccessToken, error)
}

// AuthHandler serves /api/auth.
type AuthHandler struct {
	Auth Authenticator
}

func NewAuthHandler(a Authenticator) *AuthHandler {
	return &AuthHandler{Auth: a}
}

// Create registers a user and returns a token (201).
func (h *AuthHandler) Create(c echo.Context) error {
	var req credentialsReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	tok, err := h.Auth.CreateUser(ctx, req.Username, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, tokenResp{Token: tok.Token})
}

// Authenticate exchanges credentials for a token (200).
func (h *AuthHandler) Authenticate(c echo.Context) error {
	var req credentialsReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	tok, err := h.Auth.AuthenticateUser(ctx, req.Username, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, tokenResp{Token: tok.Token})
}
