package service

import (
	"context"
	"errors"

	"user_service/internal/credentials"
	"user_service/internal/logger"
	"user_service/internal/models"
	"user_service/internal/repository"
)

// RegistrationService runs the hash -> persist -> token pipeline.
type RegistrationService struct {
	users repository.UserStore
	creds credentials.Provider
	audit auditor
}

func NewRegistrationService(users repository.UserStore, creds credentials.Provider, events repository.EventRepo, log *logger.Logger) *RegistrationService {
	return &RegistrationService{
		users: users,
		creds: creds,
		audit: auditor{events: events, log: log},
	}
}

var _ Registration = (*RegistrationService)(nil)

// RegisterUser hashes the password, stores the user and issues a token bound to
// the assigned id. The steps are strictly ordered: the token needs the id.
//
// If token generation fails the stored row is left in place and the call still
// fails; there is no compensating delete.
func (s *RegistrationService) RegisterUser(ctx context.Context, in RegisterInput) (models.AuthResult, error) {
	hash, err := s.creds.HashPassword(in.Password)
	if err != nil {
		kind := KindCrypto
		if isPasswordRejected(err) {
			kind = KindValidation
		}
		return s.fail(ctx, in.Email, nil, kind, err)
	}

	user, err := s.users.Create(ctx, models.User{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
	})
	if err != nil {
		kind := KindStore
		if errors.Is(err, repository.ErrConflict) {
			kind = KindConflict
		}
		return s.fail(ctx, in.Email, nil, kind, err)
	}

	token, err := s.creds.GenerateToken(user.ID, user.Email)
	if err != nil {
		return s.fail(ctx, in.Email, intPtr(user.ID), KindCrypto, err)
	}

	s.audit.record(ctx, models.EventUserRegistered, intPtr(user.ID), "user registered", nil)

	return models.AuthResult{
		User:  user.Public(),
		Token: token,
	}, nil
}

func (s *RegistrationService) fail(ctx context.Context, email string, userID *int, kind ErrorKind, cause error) (models.AuthResult, error) {
	s.audit.record(ctx, models.EventRegistrationFailed, userID, "registration failed", map[string]any{
		"kind":  string(kind),
		"email": email,
	})
	return models.AuthResult{}, &RegistrationError{Kind: kind, Err: cause}
}

// isPasswordRejected reports whether the hasher refused the input itself.
func isPasswordRejected(err error) bool {
	return errors.Is(err, credentials.ErrEmptyPassword) || errors.Is(err, credentials.ErrPasswordTooLong)
}
