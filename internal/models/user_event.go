package models

import "time"

const (
	EventUserRegistered     = "USER_REGISTERED"
	EventUserUpdated        = "USER_UPDATED"
	EventUserDeleted        = "USER_DELETED"
	EventUserLogin          = "USER_LOGIN"
	EventRegistrationFailed = "REGISTRATION_FAILED"
)

// UserEvent is a single audit log entry.
type UserEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`              // USER_REGISTERED | USER_UPDATED | USER_DELETED | USER_LOGIN | REGISTRATION_FAILED
	UserID      *int      `json:"user_id,omitempty"` // nil for failed registrations
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
