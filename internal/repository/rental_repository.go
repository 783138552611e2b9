package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/game-rental/internal/model"
)

// RentalRepo provides the rental ledger stored in the `rentals` table.
// Rows are appended on rent and mutated once on return. All timestamps
// are stored in UTC.
type RentalRepo struct {
	db *sql.DB
}

// NewRentalRepo returns a new RentalRepo bound to the given database.
func NewRentalRepo(db *sql.DB) *RentalRepo { return &RentalRepo{db: db} }

// Create inserts a new rental and populates the generated ID.
func (r *RentalRepo) Create(ctx context.Context, rt *model.Rental) error {
	const q = `INSERT INTO rentals (status, user_id, game_id, rented_by, rental_date, return_date) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := pick(ctx, r.db).ExecContext(ctx, q, rt.Status, rt.UserID, rt.GameID, rt.RentedBy, rt.RentalDate, rt.ReturnDate)
	if err != nil {
		return fmt.Errorf("insert rental: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rt.ID = uint64(id)
	return nil
}

// GetByID loads a rental. Returns ErrRentalNotFound when absent.
func (r *RentalRepo) GetByID(ctx context.Context, id uint64) (*model.Rental, error) {
	const q = `SELECT id, status, user_id, game_id, rented_by, rental_date, return_date
		FROM rentals WHERE id = ? FOR UPDATE`
	var (
		rt       model.Rental
		returned sql.NullTime
	)
	err := pick(ctx, r.db).QueryRowContext(ctx, q, id).Scan(
		&rt.ID, &rt.Status, &rt.UserID, &rt.GameID, &rt.RentedBy, &rt.RentalDate, &returned,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRentalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query rental %d: %w", id, err)
	}
	if returned.Valid {
		t := returned.Time
		rt.ReturnDate = &t
	}
	return &rt, nil
}

// MarkReturned moves an ACTIVE rental to RETURNED with the given return
// date. ErrConflict means the rental was no longer ACTIVE.
func (r *RentalRepo) MarkReturned(ctx context.Context, id uint64, at time.Time) error {
	const q = `UPDATE rentals SET status = 'RETURNED', return_date = ? WHERE id = ? AND status = 'ACTIVE'`
	return execOne(ctx, pick(ctx, r.db), q, at, id)
}

// ListByUserAndStatus returns the user's rentals in the given status,
// most recent rental first, joined with the rented game's catalog fields.
func (r *RentalRepo) ListByUserAndStatus(ctx context.Context, userID uint64, status model.RentalStatus) ([]model.RentalView, error) {
	const q = `SELECT r.id, r.status, r.game_id, g.title, g.genre, g.platform, r.rental_date, r.return_date
		FROM rentals r
		JOIN games g ON g.id = r.game_id
		WHERE r.user_id = ? AND r.status = ?
		ORDER BY r.rental_date DESC, r.id DESC`
	rows, err := pick(ctx, r.db).QueryContext(ctx, q, userID, status)
	if err != nil {
		return nil, fmt.Errorf("list rentals: %w", err)
	}
	defer rows.Close()

	out := make([]model.RentalView, 0)
	for rows.Next() {
		var (
			v        model.RentalView
			returned sql.NullTime
		)
		if err := rows.Scan(&v.ID, &v.RentalStatus, &v.GameID, &v.GameTitle, &v.GameGenre, &v.GamePlatform, &v.RentalDate, &returned); err != nil {
			return nil, err
		}
		if returned.Valid {
			t := returned.Time
			v.ReturnDate = &t
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
