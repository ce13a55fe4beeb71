package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"user_service/internal/models"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// timestampLayout is fixed width so that stored values sort lexicographically.
const timestampLayout = "2006-01-02 15:04:05.000000"

type UserSQLite struct {
	db *sqlx.DB
}

func NewUserSQLite(db *sqlx.DB) *UserSQLite {
	return &UserSQLite{db: db}
}

// Ensure implementation of UserStore interface at compile time.
var _ UserStore = (*UserSQLite)(nil)

const (
	userColumns        = `id, email, name, password_hash, created_at, updated_at`
	insertUserSQL      = `INSERT INTO users (email, name, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	selectUserByIDSQL  = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	selectUserByEmail  = `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	selectAllUsersSQL  = `SELECT ` + userColumns + ` FROM users ORDER BY id ASC`
	deleteUserByIDSQL  = `DELETE FROM users WHERE id = ?`
	updateUserSQLStart = `UPDATE users SET `
)

// Create inserts a new user and returns it with the assigned ID and timestamps.
func (r *UserSQLite) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	stamp := now.Format(timestampLayout)

	res, err := r.db.ExecContext(ctx, insertUserSQL, u.Email, u.Name, u.PasswordHash, stamp, stamp)
	if err != nil {
		return models.User{}, fmt.Errorf("insert user %q: %w", u.Email, mapWriteErr(err))
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("get last insert id for user %q: %w", u.Email, err)
	}

	u.ID = int(lastID)
	u.CreatedAt = now.Truncate(time.Microsecond)
	u.UpdatedAt = u.CreatedAt
	return u, nil
}

// GetByID fetches a user by id. Returns ErrNotFound if missing.
func (r *UserSQLite) GetByID(ctx context.Context, id int) (models.User, error) {
	var u models.User
	if err := r.db.GetContext(ctx, &u, selectUserByIDSQL, id); err != nil {
		return models.User{}, fmt.Errorf("select user %d: %w", id, mapReadErr(err))
	}
	return normalizeTimes(u), nil
}

// GetByEmail fetches a user by email. Returns ErrNotFound if missing.
func (r *UserSQLite) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	if err := r.db.GetContext(ctx, &u, selectUserByEmail, email); err != nil {
		return models.User{}, fmt.Errorf("select user %q: %w", email, mapReadErr(err))
	}
	return normalizeTimes(u), nil
}

// List returns all users ordered by id.
func (r *UserSQLite) List(ctx context.Context) ([]models.User, error) {
	out := make([]models.User, 0, 16)
	if err := r.db.SelectContext(ctx, &out, selectAllUsersSQL); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	for i := range out {
		out[i] = normalizeTimes(out[i])
	}
	return out, nil
}

// Update applies the non-nil changes and returns the stored row.
func (r *UserSQLite) Update(ctx context.Context, id int, ch UserChanges) (models.User, error) {
	q, args := buildUpdate(id, ch, time.Now().UTC())

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return models.User{}, fmt.Errorf("update user %d: %w", id, mapWriteErr(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.User{}, fmt.Errorf("rows affected for user %d: %w", id, err)
	}
	if n == 0 {
		return models.User{}, fmt.Errorf("update user %d: %w", id, ErrNotFound)
	}
	return r.GetByID(ctx, id)
}

// Delete removes a user. Returns ErrNotFound if no row matched.
func (r *UserSQLite) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deleteUserByIDSQL, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for user %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete user %d: %w", id, ErrNotFound)
	}
	return nil
}

// buildUpdate always bumps updated_at, so an empty change set only touches the timestamp.
func buildUpdate(id int, ch UserChanges, now time.Time) (string, []any) {
	var (
		sets []string
		args []any
	)
	if ch.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *ch.Email)
	}
	if ch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *ch.Name)
	}
	if ch.PasswordHash != nil {
		sets = append(sets, "password_hash = ?")
		args = append(args, *ch.PasswordHash)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, now.Format(timestampLayout), id)

	return updateUserSQLStart + strings.Join(sets, ", ") + " WHERE id = ?", args
}

func mapReadErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// codedError is the extended result code accessor of driver errors.
type codedError interface {
	error
	Code() int
}

var _ codedError = (*sqlite.Error)(nil)

// mapWriteErr turns unique violations into ErrConflict while keeping the driver error in the chain.
func mapWriteErr(err error) error {
	var ce codedError
	if errors.As(err, &ce) && ce.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}

func normalizeTimes(u models.User) models.User {
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u
}
