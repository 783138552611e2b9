package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/game-rental/internal/middleware"
	"github.com/iliyamo/game-rental/internal/model"
	"github.com/iliyamo/game-rental/internal/service"
)

// Catalog is implemented by *service.CatalogService.
type Catalog interface {
	GetGames(ctx context.Context, sortBy model.SortBy) ([]model.GameView, error)
	SearchGame(ctx context.Context, title string) ([]model.GameView, error)
	SubmitGame(ctx context.Context, title string, genre model.Genre, platform model.Platform, username string) (*model.Game, error)
	GamesSubmittedBy(ctx context.Context, username string) ([]model.GameView, error)
}

// GameHandler serves /api/games.
type GameHandler struct {
	Catalog Catalog
}

func NewGameHandler(c Catalog) *GameHandler {
	return &GameHandler{Catalog: c}
}

// List returns the catalog ordered by sortBy. A bearer token is optional.
func (h *GameHandler) List(c echo.Context) error {
	var req getGamesReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	games, err := h.Catalog.GetGames(ctx, req.SortBy)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, gamesResp{Games: games})
}

// Search runs a free-text title search over ?title=.
func (h *GameHandler) Search(c echo.Context) error {
	var req searchReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	games, err := h.Catalog.SearchGame(ctx, req.Title)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, gamesResp{Games: games})
}

// Submit adds a game on behalf of the caller (201).
func (h *GameHandler) Submit(c echo.Context) error {
	username, ok := middleware.Username(c)
	if !ok {
		return writeError(c, &service.Error{Kind: service.KindUserUnauthorized, Message: "authentication required"})
	}
	var req submitGameReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	g, err := h.Catalog.SubmitGame(ctx, req.Title, req.Genre, req.Platform, username)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, submitGameResp{Title: g.Title, Genre: g.Genre, Platform: g.Platform})
}

// Mine lists the games the caller has submitted.
func (h *GameHandler) Mine(c echo.Context) error {
	username, ok := middleware.Username(c)
	if !ok {
		return writeError(c, &service.Error{Kind: service.KindUserUnauthorized, Message: "authentication required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	games, err := h.Catalog.GamesSubmittedBy(ctx, username)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, gamesResp{Games: games})
}
