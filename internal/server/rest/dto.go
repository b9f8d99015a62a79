package rest

import (
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Field checks live in the service so both transports report the same
// messages; the JSON binding here only decodes.
type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupResponse struct {
	Message string             `json:"message"`
	User    *models.PublicUser `json:"user"`
}

type loginResponse struct {
	Token string            `json:"token"`
	User  *models.LoginUser `json:"user"`
}

type meResponse struct {
	User *models.PublicUser `json:"user"`
}

type healthResponse struct {
	Status string `json:"status"`
}
