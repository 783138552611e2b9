package model

import "time"

// RentalStatus is the lifecycle state of a rental record.  ACTIVE moves to
// RETURNED exactly once; RETURNED is terminal.
type RentalStatus string

const (
	RentalActive   RentalStatus = "ACTIVE"
	RentalReturned RentalStatus = "RETURNED"
)

// Valid reports whether s is a known rental status.
func (s RentalStatus) Valid() bool { return s == RentalActive || s == RentalReturned }

// Describe returns the adjective used in user facing messages.
func (s RentalStatus) Describe() string {
	if s == RentalActive {
		return "active"
	}
	return "past"
}

// Rental mirrors the `rentals` table.
//
// Fields:
//  ID         – primary key identifier.
//  Status     – ACTIVE or RETURNED.
//  UserID     – renting user (users.id).
//  GameID     – rented game (games.id).
//  RentedBy   – denormalised username of the renter.
//  RentalDate – when the rental started.
//  ReturnDate – set when the rental is returned (nil while ACTIVE).
type Rental struct {
	ID         uint64       // rentals.id
	Status     RentalStatus // rentals.status
	UserID     uint64       // rentals.user_id
	GameID     uint64       // rentals.game_id
	RentedBy   string       // rentals.rented_by
	RentalDate time.Time    // rentals.rental_date
	ReturnDate *time.Time   // rentals.return_date (nullable)

	// Game is the game row as it was after the rent transition.  Populated
	// by RentalService.RentGame so callers can render the title.
	Game *Game
}

// RentalView is the ledger projection returned to clients, hydrated with
// the rented game's catalog fields.
type RentalView struct {
	ID           uint64       `json:"id"`
	RentalStatus RentalStatus `json:"rentalStatus"`
	GameID       uint64       `json:"gameId"`
	GameTitle    string       `json:"gameTitle"`
	GameGenre    Genre        `json:"gameGenre"`
	GamePlatform Platform     `json:"gamePlatform"`
	RentalDate   time.Time    `json:"-"`
	ReturnDate   *time.Time   `json:"-"`
	DateRented   string       `json:"dateRented"`
	DateReturned string       `json:"dateReturned,omitempty"`
}

// PrettyDateLayout renders dates as e.g. "March 07 2024".
const PrettyDateLayout = "January 02 2006"

// PrettyDate formats t in UTC using PrettyDateLayout.
func PrettyDate(t time.Time) string {
	return t.UTC().Format(PrettyDateLayout)
}
