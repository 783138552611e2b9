package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/game-rental/internal/service"
)

// statusByKind is the single place domain error kinds become HTTP statuses.
var statusByKind = map[service.Kind]int{
	service.KindValidation:       http.StatusBadRequest,
	service.KindUserExists:       http.StatusConflict,
	service.KindGameSubmission:   http.StatusBadRequest,
	service.KindGameRented:       http.StatusConflict,
	service.KindGameReturned:     http.StatusConflict,
	service.KindNoGamesFound:     http.StatusNotFound,
	service.KindNoRentalsFound:   http.StatusNotFound,
	service.KindUserUnauthorized: http.StatusUnauthorized,
}

// writeError renders err as {"error": kind, "message": msg}. Errors that
// are not domain errors are logged and reported as a bare 500.
func writeError(c echo.Context, err error) error {
	var derr *service.Error
	if errors.As(err, &derr) {
		if status, ok := statusByKind[derr.Kind]; ok {
			return c.JSON(status, echo.Map{"error": derr.Kind, "message": derr.Message})
		}
	}
	log.WithError(err).WithFields(log.Fields{
		"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
		"route":      c.Path(),
	}).Error("unhandled error")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "INTERNAL", "message": "internal server error"})
}

// bindAndValidate binds the request into req and runs the registered
// validator. Failures come back as KindValidation errors.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		msg := "invalid request body"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			if s, ok := he.Message.(string); ok {
				msg = s
			}
		}
		return &service.Error{Kind: service.KindValidation, Message: msg, Err: err}
	}
	if err := c.Validate(req); err != nil {
		return &service.Error{Kind: service.KindValidation, Message: describe(err), Err: err}
	}
	return nil
}
