package service

import (
	"context"

	"user_service/internal/credentials"
	"user_service/internal/logger"
	"user_service/internal/models"
	"user_service/internal/repository"
)

// Registration turns a signup request into a stored user and a token.
type Registration interface {
	RegisterUser(ctx context.Context, in RegisterInput) (models.AuthResult, error)
}

type Authorization interface {
	Login(ctx context.Context, email, password string) (models.AuthResult, error)
	ParseToken(accessToken string) (credentials.Claims, error)
}

// Users exposes CRUD over accounts. Returned values never carry the password hash.
type Users interface {
	List(ctx context.Context) ([]models.PublicUser, error)
	Get(ctx context.Context, id int) (models.PublicUser, error)
	Create(ctx context.Context, in RegisterInput) (models.AuthResult, error)
	Update(ctx context.Context, id int, p models.UserPatch) (models.PublicUser, error)
	Delete(ctx context.Context, id int) error
}

// EventLog exposes the append-only audit history with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.UserEvent, error)
}

// Service aggregates all sub-services for the HTTP layer.
type Service struct {
	Registration
	Authorization
	Users
	EventLog
}

// NewService wires repositories and the credential provider into concrete services.
// log may be nil.
func NewService(repos *repository.Repository, creds credentials.Provider, log *logger.Logger) *Service {
	reg := NewRegistrationService(repos.Users, creds, repos.EventRepo, log)
	return &Service{
		Registration:  reg,
		Authorization: NewAuthService(repos.Users, creds, repos.EventRepo, log),
		Users:         NewUserService(repos.Users, creds, reg, repos.EventRepo, log),
		EventLog:      NewEventLogService(repos.EventRepo),
	}
}
