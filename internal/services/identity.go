// internal/services/identity.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/localbiz/directory-backend/internal/utils"
)

// Identity is the authenticated caller behind a token.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// IdentityResolver turns an identity token into the caller it represents.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (Identity, error)
}

// JWTIdentityResolver resolves the access tokens issued by AuthService.
type JWTIdentityResolver struct{}

func NewJWTIdentityResolver() *JWTIdentityResolver {
	return &JWTIdentityResolver{}
}

func (r *JWTIdentityResolver) Resolve(ctx context.Context, token string) (Identity, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return Identity{}, validationError("identity token is required")
	}

	claims, err := utils.ValidateJWT(token)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: invalid subject", ErrUnauthorized)
	}

	return Identity{UserID: userID, Email: claims.Email, Role: claims.Role}, nil
}
