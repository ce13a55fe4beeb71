package service

import (
	"context"
	"errors"
	"fmt"

	"user_service/internal/credentials"
	"user_service/internal/logger"
	"user_service/internal/models"
	"user_service/internal/repository"
)

// AuthService handles login and token verification.
type AuthService struct {
	users repository.UserStore
	creds credentials.Provider
	audit auditor
}

func NewAuthService(users repository.UserStore, creds credentials.Provider, events repository.EventRepo, log *logger.Logger) *AuthService {
	return &AuthService{users: users, creds: creds, audit: auditor{events: events, log: log}}
}

var _ Authorization = (*AuthService)(nil)

// Login validates credentials and returns the user with a fresh token.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.AuthResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.AuthResult{}, ErrInvalidCredentials
		}
		return models.AuthResult{}, fmt.Errorf("login %q: %w", email, err)
	}

	if !s.creds.ComparePassword(password, u.PasswordHash) {
		return models.AuthResult{}, ErrInvalidCredentials
	}

	token, err := s.creds.GenerateToken(u.ID, u.Email)
	if err != nil {
		return models.AuthResult{}, fmt.Errorf("login %q: %w", email, err)
	}

	s.audit.record(ctx, models.EventUserLogin, intPtr(u.ID), "user logged in", nil)
	return models.AuthResult{User: u.Public(), Token: token}, nil
}

// ParseToken returns the claims of a valid token.
func (s *AuthService) ParseToken(accessToken string) (credentials.Claims, error) {
	return s.creds.ParseToken(accessToken)
}
