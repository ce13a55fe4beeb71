// user_repo_test.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"user_service/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	sqlite3 "modernc.org/sqlite/lib"
)

func newMockRepo(t *testing.T) (*UserSQLite, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	repo := NewUserSQLite(sqlx.NewDb(db, "sqlmock"))
	cleanup := func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	}
	return repo, mock, cleanup
}

// driverErr mimics the coded errors returned by the sqlite driver.
type driverErr struct {
	msg  string
	code int
}

func (e *driverErr) Error() string { return e.msg }
func (e *driverErr) Code() int     { return e.code }

func uniqueViolation() error {
	return &driverErr{msg: "constraint failed: UNIQUE constraint failed: users.email (2067)", code: sqlite3.SQLITE_CONSTRAINT_UNIQUE}
}

var userRowColumns = []string{"id", "email", "name", "password_hash", "created_at", "updated_at"}

func TestUserSQLite_Create(t *testing.T) {
	tests := []struct {
		name           string
		user           models.User
		mockExpect     func(sqlmock.Sqlmock)
		wantID         int
		wantErr        error
		errContainsStr string
	}{
		{
			name: "success",
			user: models.User{Email: "alice@example.com", Name: "alice", PasswordHash: "h123"},
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("alice@example.com", "alice", "h123", sqlmock.AnyArg(), sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(42, 1))
			},
			wantID: 42,
		},
		{
			name: "duplicate email",
			user: models.User{Email: "dup@example.com", Name: "bob", PasswordHash: "h456"},
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("dup@example.com", "bob", "h456", sqlmock.AnyArg(), sqlmock.AnyArg()).
					WillReturnError(uniqueViolation())
			},
			wantErr:        ErrConflict,
			errContainsStr: "insert user",
		},
		{
			name: "exec error",
			user: models.User{Email: "carol@example.com", Name: "carol", PasswordHash: "h789"},
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WillReturnError(errors.New("db exec failed"))
			},
			errContainsStr: "insert user",
		},
		{
			name: "constraint text without unique code",
			user: models.User{Email: "erin@example.com", Name: "erin", PasswordHash: "h111"},
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WillReturnError(errors.New("UNIQUE constraint failed: users.email"))
			},
			errContainsStr: "insert user",
		},
		{
			name: "last insert id error",
			user: models.User{Email: "dave@example.com", Name: "dave", PasswordHash: "h000"},
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WillReturnResult(sqlmock.NewErrorResult(errors.New("no last id")))
			},
			errContainsStr: "get last insert id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := newMockRepo(t)
			defer cleanup()

			tt.mockExpect(mock)

			u, err := repo.Create(context.Background(), tt.user)

			if tt.errContainsStr != "" {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContainsStr) {
					t.Fatalf("expected error to contain %q, got %q", tt.errContainsStr, err.Error())
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected errors.Is(%v), got %v", tt.wantErr, err)
				}
				if tt.wantErr == nil && errors.Is(err, ErrConflict) {
					t.Fatalf("plain exec error must not map to ErrConflict: %v", err)
				}
				if u.ID != 0 {
					t.Fatalf("expected zero user on error, got %+v", u)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if u.ID != tt.wantID {
				t.Fatalf("unexpected id: want %d, got %d", tt.wantID, u.ID)
			}
			if u.PasswordHash != tt.user.PasswordHash || u.Email != tt.user.Email {
				t.Fatalf("stored fields not echoed back: %+v", u)
			}
			if u.CreatedAt.IsZero() || !u.CreatedAt.Equal(u.UpdatedAt) {
				t.Fatalf("expected matching non-zero timestamps, got %v / %v", u.CreatedAt, u.UpdatedAt)
			}
		})
	}
}

func TestUserSQLite_GetByID(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		repo, mock, cleanup := newMockRepo(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(selectUserByIDSQL)).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(7, "a@x.io", "alice", "h123", now, now))

		u, err := repo.GetByID(context.Background(), 7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if u.ID != 7 || u.Email != "a@x.io" || u.Name != "alice" || u.PasswordHash != "h123" {
			t.Fatalf("unexpected user: %+v", u)
		}
		if !u.CreatedAt.Equal(now) {
			t.Fatalf("created_at: want %v, got %v", now, u.CreatedAt)
		}
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := newMockRepo(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(selectUserByIDSQL)).
			WithArgs(99).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(context.Background(), 99)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock, cleanup := newMockRepo(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(selectUserByIDSQL)).
			WithArgs(1).
			WillReturnError(errors.New("db query failed"))

		_, err := repo.GetByID(context.Background(), 1)
		if err == nil || errors.Is(err, ErrNotFound) {
			t.Fatalf("expected plain query error, got %v", err)
		}
		if !strings.Contains(err.Error(), "select user") {
			t.Fatalf("expected error to mention select user, got %q", err.Error())
		}
	})
}

func TestUserSQLite_GetByEmail_NotFound(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectUserByEmail)).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserSQLite_List(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	now := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(selectAllUsersSQL)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(1, "a@x.io", "a", "h1", now, now).
			AddRow(2, "b@x.io", "b", "h2", now, now))

	users, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 2 || users[0].ID != 1 || users[1].ID != 2 {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestBuildUpdate(t *testing.T) {
	email := "new@x.io"
	hash := "h2"
	now := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	q, args := buildUpdate(5, UserChanges{Email: &email, PasswordHash: &hash}, now)

	wantQ := `UPDATE users SET email = ?, password_hash = ?, updated_at = ? WHERE id = ?`
	if q != wantQ {
		t.Fatalf("query:\n got %q\nwant %q", q, wantQ)
	}
	if len(args) != 4 || args[0] != email || args[1] != hash || args[2] != now.Format(timestampLayout) || args[3] != 5 {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestUserSQLite_Update(t *testing.T) {
	name := "renamed"
	updateQ := `UPDATE users SET name = ?, updated_at = ? WHERE id = ?`
	now := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	t.Run("success re-reads row", func(t *testing.T) {
		repo, mock, cleanup := newMockRepo(t)
		defer cleanup()

		mock.ExpectExec(regexp.QuoteMeta(updateQ)).
			WithArgs("renamed", sqlmock.AnyArg(), 3).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta(selectUserByIDSQL)).
			WithArgs(3).
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(3, "c@x.io", "renamed", "h", now, now))

		u, err := repo.Update(context.Background(), 3, UserChanges{Name: &name})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if u.Name != "renamed" {
			t.Fatalf("expected renamed user, got %+v", u)
		}
	})

	t.Run("missing row", func(t *testing.T) {
		repo, mock, cleanup := newMockRepo(t)
		defer cleanup()

		mock.ExpectExec(regexp.QuoteMeta(updateQ)).
			WithArgs("renamed", sqlmock.AnyArg(), 404).
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := repo.Update(context.Background(), 404, UserChanges{Name: &name})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("email conflict", func(t *testing.T) {
		repo, mock, cleanup := newMockRepo(t)
		defer cleanup()

		email := "taken@x.io"
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET email = ?, updated_at = ? WHERE id = ?`)).
			WithArgs(email, sqlmock.AnyArg(), 3).
			WillReturnError(uniqueViolation())

		_, err := repo.Update(context.Background(), 3, UserChanges{Email: &email})
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})
}

func TestUserSQLite_Delete(t *testing.T) {
	cases := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "deleted", affected: 1},
		{name: "missing", affected: 0, wantErr: ErrNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock, cleanup := newMockRepo(t)
			defer cleanup()

			mock.ExpectExec(regexp.QuoteMeta(deleteUserByIDSQL)).
				WithArgs(8).
				WillReturnResult(sqlmock.NewResult(0, tc.affected))

			err := repo.Delete(context.Background(), 8)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}
