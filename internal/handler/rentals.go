package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/game-rental/internal/middleware"
	"github.com/iliyamo/game-rental/internal/model"
	"github.com/iliyamo/game-rental/internal/service"
)

// Rentals is implemented by *service.RentalService.
type Rentals interface {
	RentGame(ctx context.Context, gameID uint64, username string) (*model.Rental, error)
	GetRentals(ctx context.Context, status model.RentalStatus, username string) ([]model.RentalView, error)
	ReturnGame(ctx context.Context, rentalID uint64) error
}

// RentalHandler serves /api/rentals. Every route requires a bearer token.
type RentalHandler struct {
	Rentals Rentals
}

func NewRentalHandler(r Rentals) *RentalHandler {
	return &RentalHandler{Rentals: r}
}

// Rent rents a game to the caller (201).
func (h *RentalHandler) Rent(c echo.Context) error {
	username, ok := middleware.Username(c)
	if !ok {
		return writeError(c, &service.Error{Kind: service.KindUserUnauthorized, Message: "authentication required"})
	}
	var req rentGameReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	r, err := h.Rentals.RentGame(ctx, req.GameID, username)
	if err != nil {
		return writeError(c, err)
	}
	resp := rentGameResp{RentalID: r.ID, DateRented: model.PrettyDate(r.RentalDate)}
	if r.Game != nil {
		resp.GameTitle = r.Game.Title
	}
	return c.JSON(http.StatusCreated, resp)
}

// List returns the caller's rentals in the requested status.
func (h *RentalHandler) List(c echo.Context) error {
	username, ok := middleware.Username(c)
	if !ok {
		return writeError(c, &service.Error{Kind: service.KindUserUnauthorized, Message: "authentication required"})
	}
	var req getRentalsReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	rentals, err := h.Rentals.GetRentals(ctx, req.RentalStatus, username)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rentalsResp{Rentals: rentals})
}

// Return closes a rental (204).
func (h *RentalHandler) Return(c echo.Context) error {
	var req returnGameReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Rentals.ReturnGame(ctx, req.RentalID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
