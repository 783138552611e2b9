package service

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/game-rental/internal/model"
	"github.com/iliyamo/game-rental/internal/repository"
)

// CatalogService manages the game catalog.
type CatalogService struct {
	auth  *AuthService
	games GameStore
}

func NewCatalogService(auth *AuthService, games GameStore) *CatalogService {
	return &CatalogService{auth: auth, games: games}
}

// SubmitGame adds an AVAILABLE game with zero rentals, submitted by username.
func (s *CatalogService) SubmitGame(ctx context.Context, title string, genre model.Genre, platform model.Platform, username string) (*model.Game, error) {
	if !genre.Valid() {
		return nil, newErr(KindValidation, "unknown genre %q", genre)
	}
	if !platform.Valid() {
		return nil, newErr(KindValidation, "unknown platform %q", platform)
	}
	user, err := s.auth.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}

	g := &model.Game{
		Title:       title,
		Genre:       genre,
		Platform:    platform,
		Status:      model.GameAvailable,
		SubmittedBy: user.ID,
	}
	if err := s.games.Create(ctx, g); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"game_id": g.ID, "title": g.Title, "username": username}).Info("game submitted")
	return g, nil
}

// GetGames lists the whole catalog. POPULARITY orders by rental count
// descending, TITLE alphabetically.
func (s *CatalogService) GetGames(ctx context.Context, sortBy model.SortBy) ([]model.GameView, error) {
	if !sortBy.Valid() {
		return nil, newErr(KindValidation, "sortBy must be POPULARITY or TITLE")
	}
	games, err := s.games.ListOrdered(ctx, sortBy)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		log.Warn("store is out of stock, no games were found")
		return nil, newErr(KindNoGamesFound, msgNoGamesInStock)
	}
	return games, nil
}

// SearchGame returns games whose titles match any whitespace-separated
// token of title, most relevant first.
func (s *CatalogService) SearchGame(ctx context.Context, title string) ([]model.GameView, error) {
	games, err := s.games.Search(ctx, title)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, newErr(KindNoGamesFound, msgNoSearchHits, title)
	}
	return games, nil
}

// GamesSubmittedBy lists the games username has submitted.
func (s *CatalogService) GamesSubmittedBy(ctx context.Context, username string) ([]model.GameView, error) {
	user, err := s.auth.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}
	games, err := s.games.ListBySubmitter(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, newErr(KindNoGamesFound, "You have not submitted any games yet.")
	}
	return games, nil
}

// FindGameByID returns the game or nil when it does not exist.
func (s *CatalogService) FindGameByID(ctx context.Context, id uint64) (*model.Game, error) {
	return nilIfMissing(s.games.GetByID(ctx, id))
}

// findGameForUpdate is FindGameByID with a row lock held for the rest of
// the surrounding transaction.
func (s *CatalogService) findGameForUpdate(ctx context.Context, id uint64) (*model.Game, error) {
	return nilIfMissing(s.games.GetByIDForUpdate(ctx, id))
}

// RentGameCopy flips game to UNAVAILABLE and bumps its rental count. It
// fails with KindGameRented when another rental got there first.
func (s *CatalogService) RentGameCopy(ctx context.Context, game *model.Game) (*model.Game, error) {
	if err := s.games.MarkRented(ctx, game.ID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, newErr(KindGameRented, msgNotAvailable)
		}
		return nil, fmt.Errorf("mark game %d rented: %w", game.ID, err)
	}
	updated := *game
	updated.Status = model.GameUnavailable
	updated.NumberOfRentals++
	return &updated, nil
}

// ReturnGameCopy makes game AVAILABLE again. The rental count is kept.
func (s *CatalogService) ReturnGameCopy(ctx context.Context, game *model.Game) error {
	err := s.games.MarkReturned(ctx, game.ID)
	if errors.Is(err, repository.ErrConflict) {
		log.WithField("game_id", game.ID).Warn("returned game was already available")
		return nil
	}
	if err != nil {
		return fmt.Errorf("mark game %d returned: %w", game.ID, err)
	}
	return nil
}

func nilIfMissing(g *model.Game, err error) (*model.Game, error) {
	if errors.Is(err, repository.ErrGameNotFound) {
		return nil, nil
	}
	return g, err
}
