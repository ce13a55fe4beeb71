package service

import (
	"context"
	"fmt"
	"sort"

	"user_service/internal/credentials"
	"user_service/internal/logger"
	"user_service/internal/models"
	"user_service/internal/repository"
)

type UserService struct {
	users repository.UserStore
	creds credentials.Provider
	reg   Registration
	audit auditor
}

func NewUserService(users repository.UserStore, creds credentials.Provider, reg Registration, events repository.EventRepo, log *logger.Logger) *UserService {
	return &UserService{
		users: users,
		creds: creds,
		reg:   reg,
		audit: auditor{events: events, log: log},
	}
}

var _ Users = (*UserService)(nil)

func (s *UserService) List(ctx context.Context) ([]models.PublicUser, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, id int) (models.PublicUser, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.PublicUser{}, err
	}
	return u.Public(), nil
}

// Create goes through the registration pipeline so the password is hashed and a token issued.
func (s *UserService) Create(ctx context.Context, in RegisterInput) (models.AuthResult, error) {
	return s.reg.RegisterUser(ctx, in)
}

// Update applies the patch. A new password is hashed before it reaches the store.
func (s *UserService) Update(ctx context.Context, id int, p models.UserPatch) (models.PublicUser, error) {
	if p.IsEmpty() {
		return models.PublicUser{}, ErrEmptyPatch
	}

	ch := repository.UserChanges{Email: p.Email, Name: p.Name}
	changed := make([]string, 0, 3)
	if p.Email != nil {
		changed = append(changed, "email")
	}
	if p.Name != nil {
		changed = append(changed, "name")
	}
	if p.Password != nil {
		hash, err := s.creds.HashPassword(*p.Password)
		if err != nil {
			return models.PublicUser{}, fmt.Errorf("update user %d: %w", id, err)
		}
		ch.PasswordHash = &hash
		changed = append(changed, "password")
	}

	u, err := s.users.Update(ctx, id, ch)
	if err != nil {
		return models.PublicUser{}, err
	}

	sort.Strings(changed)
	s.audit.record(ctx, models.EventUserUpdated, intPtr(id), "user updated", map[string]any{"fields": changed})
	return u.Public(), nil
}

func (s *UserService) Delete(ctx context.Context, id int) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.record(ctx, models.EventUserDeleted, intPtr(id), "user deleted", nil)
	return nil
}
