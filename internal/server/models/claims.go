package models

// TokenClaims is the identity snapshot embedded in an issued token. It is
// not refreshed when the user record changes.
type TokenClaims struct {
	UserID string
	Email  string
	Name   string
	Role   Role
}
