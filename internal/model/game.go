package model

import "time"

// Genre is the catalog genre of a game.
type Genre string

const (
	GenreAction      Genre = "ACTION"
	GenreAdventure   Genre = "ADVENTURE"
	GenreBattleRoyal Genre = "BATTLE_ROYAL"
	GenreRPG         Genre = "RPG"
	GenreSimulation  Genre = "SIMULATION"
	GenreSports      Genre = "SPORTS"
	GenreShooter     Genre = "SHOOTER"
)

// Genres lists every accepted genre in declaration order.
var Genres = []Genre{GenreAction, GenreAdventure, GenreBattleRoyal, GenreRPG, GenreSimulation, GenreSports, GenreShooter}

// Valid reports whether g is one of Genres.
func (g Genre) Valid() bool {
	for _, v := range Genres {
		if g == v {
			return true
		}
	}
	return false
}

// Platform is the console or PC a game copy runs on.
type Platform string

const (
	PlatformPC             Platform = "PC"
	PlatformPS4            Platform = "PS4"
	PlatformPS5            Platform = "PS5"
	PlatformNintendoSwitch Platform = "NINTENDO_SWITCH"
	PlatformXboxOne        Platform = "XBOX_ONE"
	PlatformXbox360        Platform = "XBOX_360"
)

// Platforms lists every accepted platform in declaration order.
var Platforms = []Platform{PlatformPC, PlatformPS4, PlatformPS5, PlatformNintendoSwitch, PlatformXboxOne, PlatformXbox360}

// Valid reports whether p is one of Platforms.
func (p Platform) Valid() bool {
	for _, v := range Platforms {
		if p == v {
			return true
		}
	}
	return false
}

// GameStatus tracks whether the single copy of a game can be rented.
type GameStatus string

const (
	GameAvailable   GameStatus = "AVAILABLE"
	GameUnavailable GameStatus = "UNAVAILABLE"
)

// SortBy selects the catalog ordering.
type SortBy string

const (
	SortByPopularity SortBy = "POPULARITY"
	SortByTitle      SortBy = "TITLE"
)

// Valid reports whether s is a supported ordering.
func (s SortBy) Valid() bool { return s == SortByPopularity || s == SortByTitle }

// Game mirrors the `games` table.  SubmittedBy is the id of the owning
// user; the username is joined in by read queries that return GameView.
//
// Fields:
//  ID              – primary key identifier.
//  Title           – free-text indexed title.
//  Genre           – catalog genre.
//  Platform        – target platform.
//  Status          – AVAILABLE or UNAVAILABLE.
//  NumberOfRentals – lifetime rental counter; never decremented.
//  SubmittedBy     – users.id of the submitter.
//  CreatedAt       – submission timestamp.
type Game struct {
	ID              uint64     // games.id
	Title           string     // games.title
	Genre           Genre      // games.genre
	Platform        Platform   // games.platform
	Status          GameStatus // games.status
	NumberOfRentals uint32     // games.number_of_rentals
	SubmittedBy     uint64     // games.submitted_by (references users.id)
	CreatedAt       time.Time  // games.created_at
}

// GameView is the catalog projection returned to clients.  It carries the
// submitter's username instead of the raw foreign key.
type GameView struct {
	ID              uint64     `json:"id"`
	Title           string     `json:"title"`
	Genre           Genre      `json:"genre"`
	Platform        Platform   `json:"platform"`
	Status          GameStatus `json:"status"`
	NumberOfRentals uint32     `json:"numberOfRentals"`
	SubmittedBy     string     `json:"submittedBy"`
}
