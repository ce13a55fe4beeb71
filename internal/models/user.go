package models

import "time"

// User is the stored account record. PasswordHash never leaves the service layer.
type User struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"` // don’t expose hash
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// PublicUser is the caller-facing view of a User, without the credential hash.
type PublicUser struct {
	ID        int       `json:"id" example:"1"`
	Email     string    `json:"email" example:"magenta@gmail.com"`
	Name      string    `json:"name" example:"magenta"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public strips the password hash.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// AuthResult is returned by registration and login.
type AuthResult struct {
	User  PublicUser `json:"user"`
	Token string     `json:"token"`
}

// UserPatch carries the optional fields of an update. Nil means unchanged.
type UserPatch struct {
	Email    *string
	Name     *string
	Password *string // plaintext; hashed before it reaches the store
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Email == nil && p.Name == nil && p.Password == nil
}
