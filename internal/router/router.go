package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/game-rental/internal/config"
	"github.com/iliyamo/game-rental/internal/handler"
	"github.com/iliyamo/game-rental/internal/middleware"
	"github.com/iliyamo/game-rental/internal/model"
)

// Deps carries everything the routes need. Redis may be nil, which turns
// rate limiting and the search cache off.
type Deps struct {
	Auth    *handler.AuthHandler
	Games   *handler.GameHandler
	Rentals *handler.RentalHandler
	Tokens  middleware.TokenParser
	DB      handler.Pinger
	Metrics http.Handler

	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
}

// RegisterRoutes registers the operational endpoints.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)
	if d.DB != nil {
		e.GET("/readyz", handler.Ready(d.DB))
	}
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics))
	}
}

// RegisterAPI registers the /api surface. Auth endpoints are public,
// listing and search accept an optional token, and everything that acts on
// behalf of a user requires a USER token. The rate limiter is attached per
// route after authentication so it buckets by the caller, not only by IP.
func RegisterAPI(e *echo.Echo, d Deps) {
	api := e.Group("/api")
	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis)
	optionalUser := middleware.OptionalJWT(d.Tokens)
	requireUser := []echo.MiddlewareFunc{middleware.JWTAuth(d.Tokens), middleware.RequireRole(model.RoleUser)}
	purge := middleware.PurgeCache(d.Cache, d.Redis)

	auth := api.Group("/auth")
	auth.POST("/create", d.Auth.Create, limit)
	auth.POST("/authenticate", d.Auth.Authenticate, limit)

	games := api.Group("/games")
	games.GET("", d.Games.List, optionalUser, limit)
	games.GET("/search", d.Games.Search, optionalUser, limit, middleware.NewRedisCache(d.Cache, d.Redis))
	games.POST("/submit", d.Games.Submit, chain(requireUser, limit, purge)...)
	games.GET("/mine", d.Games.Mine, chain(requireUser, limit)...)

	// Renting and returning change status and rental counts shown in
	// search results, so they purge the cache as well.
	rentals := api.Group("/rentals", requireUser...)
	rentals.GET("", d.Rentals.List, limit)
	rentals.POST("/rent", d.Rentals.Rent, limit, purge)
	rentals.PUT("/return", d.Rentals.Return, limit, purge)
}

// chain copies base before appending so shared slices are never aliased.
func chain(base []echo.MiddlewareFunc, more ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(base)+len(more))
	out = append(out, base...)
	return append(out, more...)
}
