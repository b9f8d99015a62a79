// Package models holds the domain types shared by the auth service, its
// repositories and its transports.
package models

import "time"

// Role is the closed set of user roles.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// User is a stored account. PasswordHash never leaves the server; use
// ToPublic for anything sent to a client.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// PublicUser is the outward projection of User.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) ToPublic() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// LoginUser is the user as returned by login on every transport. It
// carries the same fields as the token claims and no timestamps.
type LoginUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

func (u *User) ToLogin() *LoginUser {
	return &LoginUser{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// AuthResponse is the result of a successful login.
type AuthResponse struct {
	Token string     `json:"token"`
	User  *LoginUser `json:"user"`
}
