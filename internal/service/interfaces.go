// Package service holds the domain logic of the rental backend. Stores,
// token issuing and event publishing are reached through the interfaces in
// this file; the concrete MySQL, JWT and broker implementations live in
// sibling packages.
package service

import (
	"context"
	"time"

	"github.com/iliyamo/game-rental/internal/model"
	"github.com/iliyamo/game-rental/internal/queue"
	"github.com/iliyamo/game-rental/internal/utils"
)

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

type GameStore interface {
	Create(ctx context.Context, g *model.Game) error
	GetByID(ctx context.Context, id uint64) (*model.Game, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*model.Game, error)
	ListOrdered(ctx context.Context, sortBy model.SortBy) ([]model.GameView, error)
	ListBySubmitter(ctx context.Context, userID uint64) ([]model.GameView, error)
	Search(ctx context.Context, title string) ([]model.GameView, error)
	MarkRented(ctx context.Context, id uint64) error
	MarkReturned(ctx context.Context, id uint64) error
}

type RentalStore interface {
	Create(ctx context.Context, r *model.Rental) error
	GetByID(ctx context.Context, id uint64) (*model.Rental, error)
	MarkReturned(ctx context.Context, id uint64, at time.Time) error
	ListByUserAndStatus(ctx context.Context, userID uint64, status model.RentalStatus) ([]model.RentalView, error)
}

// Transactor runs fn in a single unit of work. Store calls made with the
// ctx passed to fn join that unit of work.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type TokenIssuer interface {
	Issue(username, role string) (utils.AccessToken, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// EventPublisher is satisfied by every publisher in package queue.
type EventPublisher = queue.Publisher

// Observer receives rental lifecycle counts. *metrics.Recorder satisfies it.
type Observer interface {
	RentalTransition(event string)
	PublishFailed()
}
