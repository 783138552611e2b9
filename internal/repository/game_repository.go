// Package repository contains data access logic for the catalog. This file
// defines GameRepo, which stores games in the `games` table. Titles carry a
// FULLTEXT index used by Search; list queries join the submitter's username
// so callers receive ready-to-render GameView projections.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/iliyamo/game-rental/internal/model"
)

// GameRepo manages persistence for games.
type GameRepo struct{ db *sql.DB }

// NewGameRepo returns a GameRepo bound to db.
func NewGameRepo(db *sql.DB) *GameRepo { return &GameRepo{db: db} }

const gameColumns = "id, title, genre, platform, status, number_of_rentals, submitted_by, created_at"

// viewSelect selects the GameView columns; callers append WHERE/ORDER BY.
const viewSelect = `SELECT g.id, g.title, g.genre, g.platform, g.status, g.number_of_rentals, u.username
	FROM games g
	JOIN users u ON u.id = g.submitted_by`

// Create inserts a new game and populates its ID and created_at.
func (r *GameRepo) Create(ctx context.Context, g *model.Game) error {
	q := pick(ctx, r.db)
	const ins = `INSERT INTO games (title, genre, platform, status, number_of_rentals, submitted_by) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := q.ExecContext(ctx, ins, g.Title, g.Genre, g.Platform, g.Status, g.NumberOfRentals, g.SubmittedBy)
	if err != nil {
		return fmt.Errorf("insert game %q: %w", g.Title, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	return q.QueryRowContext(ctx, "SELECT created_at FROM games WHERE id = ?", g.ID).Scan(&g.CreatedAt)
}

// GetByID loads a game. Returns ErrGameNotFound when absent.
func (r *GameRepo) GetByID(ctx context.Context, id uint64) (*model.Game, error) {
	return r.getOne(ctx, "SELECT "+gameColumns+" FROM games WHERE id = ?", id)
}

// GetByIDForUpdate loads a game and locks its row until the surrounding
// transaction ends. Outside a transaction it behaves like GetByID.
func (r *GameRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*model.Game, error) {
	return r.getOne(ctx, "SELECT "+gameColumns+" FROM games WHERE id = ? FOR UPDATE", id)
}

func (r *GameRepo) getOne(ctx context.Context, query string, id uint64) (*model.Game, error) {
	var g model.Game
	err := pick(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.Title, &g.Genre, &g.Platform, &g.Status, &g.NumberOfRentals, &g.SubmittedBy, &g.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query game %d: %w", id, err)
	}
	return &g, nil
}

// ListOrdered returns every game ordered by the requested key.
// POPULARITY sorts by number_of_rentals descending, TITLE by title
// ascending. Ties fall back to title then id so the order is stable.
func (r *GameRepo) ListOrdered(ctx context.Context, sortBy model.SortBy) ([]model.GameView, error) {
	order := " ORDER BY g.title ASC, g.id ASC"
	if sortBy == model.SortByPopularity {
		order = " ORDER BY g.number_of_rentals DESC, g.title ASC, g.id ASC"
	}
	return r.listViews(ctx, viewSelect+order)
}

// ListBySubmitter returns the games submitted by the given user, newest first.
func (r *GameRepo) ListBySubmitter(ctx context.Context, userID uint64) ([]model.GameView, error) {
	return r.listViews(ctx, viewSelect+" WHERE g.submitted_by = ? ORDER BY g.created_at DESC, g.id DESC", userID)
}

// ftMinTokenLen mirrors InnoDB's default innodb_ft_min_token_size. Shorter
// words are not in the FULLTEXT index.
const ftMinTokenLen = 3

// Search runs a natural-language FULLTEXT query over titles. The query is
// split on whitespace and any token may match; rows come back ordered by
// relevance score, highest first. Tokens too short for the index ("Go",
// the "23" of "FIFA 23") are matched as whole words with REGEXP_LIKE and
// rank after full-text hits.
func (r *GameRepo) Search(ctx context.Context, title string) ([]model.GameView, error) {
	query, args := searchQuery(title)
	if query == "" {
		return []model.GameView{}, nil
	}
	return r.listViews(ctx, query, args...)
}

// searchQuery builds the SQL and arguments for Search. An empty query
// means there is nothing to search for.
func searchQuery(title string) (string, []any) {
	var long, short []string
	for _, tok := range strings.Fields(title) {
		if len(tok) < ftMinTokenLen {
			short = append(short, tok)
		} else {
			long = append(long, tok)
		}
	}
	if len(long) == 0 && len(short) == 0 {
		return "", nil
	}

	const score = "MATCH(g.title) AGAINST (? IN NATURAL LANGUAGE MODE)"
	var (
		conds []string
		args  []any
		order = "g.title ASC, g.id ASC"
	)
	if len(long) > 0 {
		conds = append(conds, score)
		args = append(args, strings.Join(long, " "))
		order = score + " DESC, " + order
	}
	for _, tok := range short {
		conds = append(conds, "REGEXP_LIKE(g.title, ?, 'i')")
		args = append(args, `\b`+regexp.QuoteMeta(tok)+`\b`)
	}
	if len(long) > 0 {
		args = append(args, strings.Join(long, " "))
	}
	q := viewSelect + "\n\tWHERE " + strings.Join(conds, " OR ") +
		"\n\tORDER BY " + order
	return q, args
}

func (r *GameRepo) listViews(ctx context.Context, query string, args ...any) ([]model.GameView, error) {
	rows, err := pick(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	out := make([]model.GameView, 0)
	for rows.Next() {
		var v model.GameView
		if err := rows.Scan(&v.ID, &v.Title, &v.Genre, &v.Platform, &v.Status, &v.NumberOfRentals, &v.SubmittedBy); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRented flips an AVAILABLE game to UNAVAILABLE and increments its
// rental counter in one conditional statement. ErrConflict means the game
// was not AVAILABLE (or does not exist) when the update ran.
func (r *GameRepo) MarkRented(ctx context.Context, id uint64) error {
	const q = `UPDATE games SET status = 'UNAVAILABLE', number_of_rentals = number_of_rentals + 1
		WHERE id = ? AND status = 'AVAILABLE'`
	return execOne(ctx, pick(ctx, r.db), q, id)
}

// MarkReturned flips a game back to AVAILABLE. The rental counter is left
// untouched.
func (r *GameRepo) MarkReturned(ctx context.Context, id uint64) error {
	const q = `UPDATE games SET status = 'AVAILABLE' WHERE id = ? AND status = 'UNAVAILABLE'`
	return execOne(ctx, pick(ctx, r.db), q, id)
}

// execOne runs an UPDATE that must touch exactly one row.
func execOne(ctx context.Context, q querier, query string, args ...any) error {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}
