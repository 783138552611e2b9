package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/game-rental/internal/model"
)

// UserRepo persists accounts in the `users` table.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = "id, username, password_hash, role, created_at"

// Create inserts u and populates its generated ID and created_at.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	q := pick(ctx, r.db)
	res, err := q.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, role) VALUES (?,?,?)",
		u.Username, u.PasswordHash, u.Role)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrUsernameExists
		}
		return fmt.Errorf("insert user %q: %w", u.Username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return q.QueryRowContext(ctx, "SELECT created_at FROM users WHERE id=?", u.ID).Scan(&u.CreatedAt)
}

// GetByUsername fetches a user by username. Returns ErrUserNotFound when
// absent.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username)
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg string) (*model.User, error) {
	var u model.User
	err := pick(ctx, r.db).QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}
