// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow the service layer to
// distinguish between missing rows, uniqueness violations and lost
// conditional updates without inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrUsernameExists is returned when inserting a username that is
// already taken.
var ErrUsernameExists = errors.New("username already exists")

// ErrGameNotFound is returned when no game matches the lookup.
var ErrGameNotFound = errors.New("game not found")

// ErrRentalNotFound is returned when no rental matches the lookup.
var ErrRentalNotFound = errors.New("rental not found")

// ErrConflict is returned when a conditional update matched no row
// because the record changed state underneath the caller (e.g. a game
// that was rented by a concurrent request).
var ErrConflict = errors.New("conflict")

// isDuplicateKey reports whether err is MySQL error 1062 (ER_DUP_ENTRY).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
