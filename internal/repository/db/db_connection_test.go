package db

import (
	"path/filepath"
	"testing"
)

func TestInitDB_AppliesMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")

	db, err := InitDB(path)
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer func() { _ = db.Close() }()

	for _, table := range []string{"users", "user_events"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}

func TestInitDB_ReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")

	first, err := InitDB(path)
	if err != nil {
		t.Fatalf("first InitDB: %v", err)
	}
	if _, err := first.Exec(`INSERT INTO users (email, name, password_hash) VALUES ('a@b.c', 'a', 'h')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_ = first.Close()

	second, err := InitDB(path)
	if err != nil {
		t.Fatalf("second InitDB: %v", err)
	}
	defer func() { _ = second.Close() }()

	var n int
	if err := second.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected data to survive reopen, got %d rows", n)
	}
}

func TestInitDB_UniqueEmail(t *testing.T) {
	db, err := InitDB(filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer func() { _ = db.Close() }()

	const q = `INSERT INTO users (email, name, password_hash) VALUES ('dup@example.com', 'x', 'h')`
	if _, err := db.Exec(q); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := db.Exec(q); err == nil {
		t.Fatalf("expected unique constraint violation on second insert")
	}
}
