package domain

import (
	"strings"
	"time"
)

// Role is the coarse permission tier assigned to an account.
type Role string

const (
	RoleVolunteer    Role = "VOLUNTEER"
	RoleEventManager Role = "EVENT_MANAGER"
	RoleAdmin        Role = "ADMIN"
)

// ParseRole normalizes a role string, falling back to VOLUNTEER.
func ParseRole(s string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleEventManager:
		return RoleEventManager
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleVolunteer
	}
}

// CanManageEvents reports whether the role may create or mutate events.
func (r Role) CanManageEvents() bool {
	return r == RoleEventManager || r == RoleAdmin
}

// User is the domain model for accounts. RefreshToken is a single slot:
// issuing a new refresh token supersedes the previous one.
type User struct {
	ID                    int64
	Email                 string
	FullName              string
	PasswordHash          string
	Role                  Role
	IsActive              bool
	RefreshToken          *string
	RefreshTokenExpiresAt *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// UserProfile is the minimal projection returned to clients. Password
// material never leaves the service layer.
type UserProfile struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

// Profile builds the public projection of the user.
func (u *User) Profile() UserProfile {
	return UserProfile{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role}
}
