package service

import "time"

// LogFilter supports audit history filtering by time range, type and user.
type LogFilter struct {
	From   time.Time // inclusive; zero means no lower bound
	To     time.Time // inclusive; zero means no upper bound
	Type   string    // "", "USER_REGISTERED", "USER_UPDATED", "USER_DELETED", "USER_LOGIN", "REGISTRATION_FAILED"
	UserID int       // 0 means any user
}

// RegisterInput is the raw registration request. Validation happens upstream.
type RegisterInput struct {
	Email    string
	Name     string
	Password string // plaintext, never persisted or logged
}
