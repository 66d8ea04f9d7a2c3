package user

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"   // full access, bypasses permission lookups
	RoleManager Role = "manager" // can view team data and correct attendance
	RoleMember  Role = "member"  // regular team member
)

type User struct {
	ID              string
	Email           string
	FullName        string
	PasswordHash    *string
	Role            Role
	Active          bool
	OAuthProvider   *string
	OAuthProviderID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsAdmin checks if user is an administrator
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsManager checks if user is manager or admin
func (u *User) IsManager() bool {
	return u.Role == RoleManager || u.Role == RoleAdmin
}
