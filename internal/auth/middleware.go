package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/travel-desk/itinerary-service/internal/domain"
	"github.com/travel-desk/itinerary-service/internal/repository"
	apperrors "github.com/travel-desk/itinerary-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Identity *domain.Identity
	TokenID  string
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens     *TokenManager
	identities repository.IdentityRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, identities repository.IdentityRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, identities: identities}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("Authentication credentials were not provided.")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseTyped(strings.TrimSpace(parts[1]), domain.TokenTypeAccess)
	if err != nil {
		return apperrors.NewUnauthorized("Given token not valid for any token type")
	}

	identity, err := m.identities.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("User not found")
		}
		return apperrors.MapError(err)
	}
	if !identity.IsActive {
		return apperrors.NewUnauthorized("User is inactive")
	}

	c.Locals(principalKey, &Principal{Identity: identity, TokenID: claims.ID})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal.Identity != nil
}

// RequireIdentity returns the caller identity or an UNAUTHORIZED error.
func RequireIdentity(c *fiber.Ctx) (*domain.Identity, error) {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("Authentication credentials were not provided.")
	}
	return principal.Identity, nil
}
