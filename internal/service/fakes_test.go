package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"user_service/internal/credentials"
	"user_service/internal/models"
	"user_service/internal/repository"
)

// fakeCreds is a deterministic credentials.Provider with fault switches.
type fakeCreds struct {
	hashErr  error
	tokenErr error
	parseErr error
	claims   credentials.Claims

	hashCalls  int
	tokenCalls int
	tokenFor   []int
}

func (f *fakeCreds) HashPassword(plaintext string) (string, error) {
	f.hashCalls++
	if f.hashErr != nil {
		return "", f.hashErr
	}
	return "hashed:" + plaintext, nil
}

func (f *fakeCreds) ComparePassword(plaintext, hash string) bool {
	return hash == "hashed:"+plaintext
}

func (f *fakeCreds) GenerateToken(userID int, email string) (string, error) {
	f.tokenCalls++
	f.tokenFor = append(f.tokenFor, userID)
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return fmt.Sprintf("token-%d-%s", userID, email), nil
}

func (f *fakeCreds) ParseToken(token string) (credentials.Claims, error) {
	if f.parseErr != nil {
		return credentials.Claims{}, f.parseErr
	}
	return f.claims, nil
}

// memStore is an in-memory repository.UserStore enforcing unique emails.
type memStore struct {
	mu     sync.Mutex
	nextID int
	byID   map[int]models.User

	createErr error
	listErr   error
	creates   int
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, byID: map[int]models.User{}}
}

func (m *memStore) emailTaken(email string, except int) bool {
	for id, u := range m.byID {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (m *memStore) Create(ctx context.Context, u models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.createErr != nil {
		return models.User{}, m.createErr
	}
	if m.emailTaken(u.Email, 0) {
		return models.User{}, fmt.Errorf("insert user %q: %w", u.Email, repository.ErrConflict)
	}
	u.ID = m.nextID
	m.nextID++
	m.byID[u.ID] = u
	return u, nil
}

func (m *memStore) GetByID(ctx context.Context, id int) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return models.User{}, fmt.Errorf("select user %d: %w", id, repository.ErrNotFound)
	}
	return u, nil
}

func (m *memStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("select user %q: %w", email, repository.ErrNotFound)
}

func (m *memStore) List(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) Update(ctx context.Context, id int, ch repository.UserChanges) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	if ch.Email != nil {
		if m.emailTaken(*ch.Email, id) {
			return models.User{}, repository.ErrConflict
		}
		u.Email = *ch.Email
	}
	if ch.Name != nil {
		u.Name = *ch.Name
	}
	if ch.PasswordHash != nil {
		u.PasswordHash = *ch.PasswordHash
	}
	m.byID[id] = u
	return u, nil
}

func (m *memStore) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

var errBoom = errors.New("boom")
