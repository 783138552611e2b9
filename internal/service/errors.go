package service

import (
	"errors"
	"fmt"
)

// Kind classifies domain failures. Handlers map kinds to HTTP statuses.
type Kind string

const (
	KindValidation       Kind = "VALIDATION"
	KindUserExists       Kind = "USER_EXISTS"
	KindGameSubmission   Kind = "GAME_SUBMISSION"
	KindGameRented       Kind = "GAME_RENTED"
	KindGameReturned     Kind = "GAME_RETURNED"
	KindNoGamesFound     Kind = "NO_GAMES_FOUND"
	KindNoRentalsFound   Kind = "NO_RENTALS_FOUND"
	KindUserUnauthorized Kind = "USER_UNAUTHORIZED"
)

// Error is a domain failure with a message that is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error // optional cause, never shown to clients
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Message }

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when
// err is not a domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Messages shared between operations.
const (
	msgNoGamesInStock = "No games in stock, check back at a later time!"
	msgNoSearchHits   = "No games found matching %q."
	msgOwnGame        = "You cannot rent a game that you submitted."
	msgNotAvailable   = "This game is not currently available to rent."
	msgNoRentals      = "Looks like you don't have any %s rentals."
	msgAlreadyReturn  = "This game has already been returned by you"
	msgBadCredentials = "invalid username or password"
	msgUnknownUser    = "user %s could not be found"
)
