package handler

import "github.com/medidata/dataset-system/internal/core/ports"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// userView is the public projection of a user (no password hash).
type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type registerResponse struct {
	Message string   `json:"message"`
	User    userView `json:"user"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

type validateResponse struct {
	Valid bool               `json:"valid"`
	User  *ports.TokenClaims `json:"user"`
}
