package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"user_service/internal/models"

	"github.com/jmoiron/sqlx"
)

// Store-level failure conditions. Implementations wrap these so callers can use errors.Is.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("unique constraint violated")
)

// UserChanges lists the columns an update touches. Nil fields are left unchanged.
type UserChanges struct {
	Email        *string
	Name         *string
	PasswordHash *string
}

// UserStore persists User records keyed by integer id with a unique email.
type UserStore interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id int) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id int, ch UserChanges) (models.User, error)
	Delete(ctx context.Context, id int) error
}

// EventFilter narrows an event listing. Zero values mean no bound.
type EventFilter struct {
	From   time.Time
	To     time.Time
	Type   string
	UserID int
}

type EventRepo interface {
	Append(ctx context.Context, e models.UserEvent) error
	List(ctx context.Context, f EventFilter) ([]models.UserEvent, error)
}

type Repository struct {
	Users     UserStore
	EventRepo EventRepo
}

// NewRepository builds sqlite-backed repositories over an already opened handle.
// The handle stays owned by the caller.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Users:     NewUserSQLite(sqlx.NewDb(db, "sqlite")),
		EventRepo: NewEventSQLite(db),
	}
}
