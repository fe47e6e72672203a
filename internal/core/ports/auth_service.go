package ports

import (
	"context"

	"github.com/medidata/dataset-system/internal/core/domain"
)

// TokenClaims is the decoded content of a bearer token.
type TokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// AuthService implements registration, login, and token validation.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// Validate parses and verifies a bearer token, returning its claims.
	Validate(token string) (*TokenClaims, error)
}
