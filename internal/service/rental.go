package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/game-rental/internal/model"
	"github.com/iliyamo/game-rental/internal/queue"
	"github.com/iliyamo/game-rental/internal/repository"
)

// defaultPublishTimeout bounds how long a request waits on the broker
// after the transition has already been committed.
const defaultPublishTimeout = 3 * time.Second

// RentalService rents and returns games.
type RentalService struct {
	auth     *AuthService
	catalog  *CatalogService
	rentals  RentalStore
	tx       Transactor
	events   EventPublisher
	observer Observer
	now      func() time.Time

	publishTimeout time.Duration
}

// NewRentalService wires the rental flow. events and observer may be nil.
func NewRentalService(auth *AuthService, catalog *CatalogService, rentals RentalStore, tx Transactor, events EventPublisher, observer Observer) *RentalService {
	if events == nil {
		events = queue.Noop{}
	}
	return &RentalService{
		auth:     auth,
		catalog:  catalog,
		rentals:  rentals,
		tx:       tx,
		events:   events,
		observer: observer,
		now:      time.Now,

		publishTimeout: defaultPublishTimeout,
	}
}

// RentGame rents gameID to username. The checks run against the locked
// game row in this order: game exists, renter is not the submitter, game
// is AVAILABLE. Flipping the game and inserting the ACTIVE rental commit
// together.
func (s *RentalService) RentGame(ctx context.Context, gameID uint64, username string) (*model.Rental, error) {
	renter, err := s.auth.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}

	var rental *model.Rental
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		game, err := s.catalog.findGameForUpdate(ctx, gameID)
		if err != nil {
			return err
		}
		if game == nil {
			return newErr(KindNoGamesFound, "Game with id %d was not found", gameID)
		}
		if game.SubmittedBy == renter.ID {
			return newErr(KindGameSubmission, msgOwnGame)
		}
		if game.Status == model.GameUnavailable {
			return newErr(KindGameRented, msgNotAvailable)
		}

		rented, err := s.catalog.RentGameCopy(ctx, game)
		if err != nil {
			return err
		}
		rental = &model.Rental{
			Status:     model.RentalActive,
			UserID:     renter.ID,
			GameID:     rented.ID,
			RentedBy:   renter.Username,
			RentalDate: s.timestamp(),
			Game:       rented,
		}
		return s.rentals.Create(ctx, rental)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"rental_id": rental.ID, "game_id": gameID, "username": username}).Info("game rented")
	s.record(ctx, queue.EventRented, rental, rental.Game.Title)
	return rental, nil
}

// GetRentals lists username's rentals in the given status, newest first.
func (s *RentalService) GetRentals(ctx context.Context, status model.RentalStatus, username string) ([]model.RentalView, error) {
	if !status.Valid() {
		return nil, newErr(KindValidation, "rentalStatus must be ACTIVE or RETURNED")
	}
	user, err := s.auth.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}
	views, err := s.rentals.ListByUserAndStatus(ctx, user.ID, status)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, newErr(KindNoRentalsFound, msgNoRentals, status.Describe())
	}
	for i := range views {
		views[i].DateRented = model.PrettyDate(views[i].RentalDate)
		if views[i].ReturnDate != nil {
			views[i].DateReturned = model.PrettyDate(*views[i].ReturnDate)
		}
	}
	return views, nil
}

// ReturnGame closes an ACTIVE rental and makes its game AVAILABLE again.
// A RETURNED rental is never touched a second time.
func (s *RentalService) ReturnGame(ctx context.Context, rentalID uint64) error {
	var (
		rental *model.Rental
		game   *model.Game
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		rental, err = s.rentals.GetByID(ctx, rentalID)
		if errors.Is(err, repository.ErrRentalNotFound) {
			return newErr(KindNoRentalsFound, "Rental with id %d was not found", rentalID)
		}
		if err != nil {
			return err
		}
		if rental.Status == model.RentalReturned {
			return newErr(KindGameReturned, msgAlreadyReturn)
		}

		at := s.timestamp()
		if err := s.rentals.MarkReturned(ctx, rental.ID, at); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return newErr(KindGameReturned, msgAlreadyReturn)
			}
			return fmt.Errorf("mark rental %d returned: %w", rental.ID, err)
		}
		rental.Status = model.RentalReturned
		rental.ReturnDate = &at

		game, err = s.catalog.FindGameByID(ctx, rental.GameID)
		if err != nil {
			return err
		}
		if game == nil {
			return fmt.Errorf("rental %d references missing game %d", rental.ID, rental.GameID)
		}
		return s.catalog.ReturnGameCopy(ctx, game)
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{"rental_id": rentalID, "game_id": game.ID}).Info("game returned")
	s.record(ctx, queue.EventReturned, rental, game.Title)
	return nil
}

// timestamp is truncated to the millisecond precision of the rentals table.
func (s *RentalService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// record counts the transition and publishes its event. Failures are
// logged only; the transition is already committed.
func (s *RentalService) record(ctx context.Context, eventType string, r *model.Rental, title string) {
	if s.observer != nil {
		s.observer.RentalTransition(eventType)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()
	ev := queue.RentalEvent{
		Type:       eventType,
		RentalID:   r.ID,
		GameID:     r.GameID,
		GameTitle:  title,
		Username:   r.RentedBy,
		OccurredAt: s.now().UTC().Format(time.RFC3339),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		log.WithError(err).WithFields(log.Fields{"event": eventType, "rental_id": r.ID}).Warn("publish rental event failed")
		if s.observer != nil {
			s.observer.PublishFailed()
		}
	}
}
