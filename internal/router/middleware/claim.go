package middleware

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ViewerClaims grant read access to the book API.
type ViewerClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

const ScopeBookRead = "book:read"

func NewViewerClaims(subject string, duration time.Duration) *ViewerClaims {
	now := time.Now()
	return &ViewerClaims{
		Scope: ScopeBookRead,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}
}
