package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string
type UserStatus string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"

	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

// User mirrors the identity issued by the hosted auth provider. Rows are
// provisioned at first sign-in; credentials themselves never live here.
type User struct {
	Id        uuid.UUID
	Email     string
	FullName  string
	Role      UserRole
	Status    UserStatus
	AvatarURL *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
