package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is an account that can submit stories. Role determines authorization
// outcomes; ADMIN additionally moderates.
type User struct {
	ID           uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Name         string    `json:"name" db:"name" gorm:"type:text;not null"`
	Email        string    `json:"email" db:"email" gorm:"type:text;not null;unique"`
	PasswordHash string    `json:"-" db:"password_hash" gorm:"type:text;not null"`
	Role         Role      `json:"role" db:"role" gorm:"type:text;not null;default:'USER'"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP"`
}

// Author is the public projection of a story's author. Story payloads embed
// this instead of the full User so listings never carry emails, roles, or
// password hashes.
type Author struct {
	ID   uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name string    `json:"name"`
}

// Author rows live in the users table; only the public columns are selected.
func (Author) TableName() string {
	return "users"
}

// Actor is the already-resolved identity performing an operation. A nil
// *Actor means the request is anonymous.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}
