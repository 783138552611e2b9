package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/game-rental/internal/model"
	"github.com/iliyamo/game-rental/internal/utils"
)

type fakeAuth struct {
	createFn func(ctx context.Context, username, password string) (utils.AccessToken, error)
	authFn   func(ctx context.Context, username, password string) (utils.AccessToken, error)
}

func (f *fakeAuth) CreateUser(ctx context.Context, u, p string) (utils.AccessToken, error) {
	return f.createFn(ctx, u, p)
}

func (f *fakeAuth) AuthenticateUser(ctx context.Context, u, p string) (utils.AccessToken, error) {
	return f.authFn(ctx, u, p)
}

type fakeCatalog struct {
	getFn    func(ctx context.Context, sortBy model.SortBy) ([]model.GameView, error)
	searchFn func(ctx context.Context, title string) ([]model.GameView, error)
	submitFn func(ctx context.Context, title string, g model.Genre, p model.Platform, username string) (*model.Game, error)
	mineFn   func(ctx context.Context, username string) ([]model.GameView, error)
}

func (f *fakeCatalog) GetGames(ctx context.Context, s model.SortBy) ([]model.GameView, error) {
	return f.getFn(ctx, s)
}

func (f *fakeCatalog) SearchGame(ctx context.Context, t string) ([]model.GameView, error) {
	return f.searchFn(ctx, t)
}

func (f *fakeCatalog) SubmitGame(ctx context.Context, t string, g model.Genre, p model.Platform, u string) (*model.Game, error) {
	return f.submitFn(ctx, t, g, p, u)
}

func (f *fakeCatalog) GamesSubmittedBy(ctx context.Context, u string) ([]model.GameView, error) {
	return f.mineFn(ctx, u)
}

type fakeRentals struct {
	rentFn   func(ctx context.Context, gameID uint64, username string) (*model.Rental, error)
	listFn   func(ctx context.Context, status model.RentalStatus, username string) ([]model.RentalView, error)
	returnFn func(ctx context.Context, rentalID uint64) error
}

func (f *fakeRentals) RentGame(ctx context.Context, id uint64, u string) (*model.Rental, error) {
	return f.rentFn(ctx, id, u)
}

func (f *fakeRentals) GetRentals(ctx context.Context, s model.RentalStatus, u string) ([]model.RentalView, error) {
	return f.listFn(ctx, s, u)
}

func (f *fakeRentals) ReturnGame(ctx context.Context, id uint64) error {
	return f.returnFn(ctx, id)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// call builds a request with an optional JSON body and, when username is
// set, the identity JWTAuth would have stored.
func call(e *echo.Echo, h echo.HandlerFunc, method, target, body, username string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if username != "" {
		c.Set("username", username)
	}
	_ = h(c)
	return rec
}
