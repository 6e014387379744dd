package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleTenant   Role = "tenant"
	RoleLandlord Role = "landlord"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Principal is the authenticated caller. It is always passed explicitly into
// service operations, never read from ambient state.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

func (p Principal) Is(role Role) bool {
	return p.Role == role
}
