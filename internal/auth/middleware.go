package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ticket-mgt/ticket-api/internal/domain"
	apperrors "github.com/ticket-mgt/ticket-api/pkg/util"
)

const userKey = "auth_user"

const bearerPrefix = "bearer "

// TokenLookup resolves a bearer token to its user. A nil user with a nil
// error means no user holds the token.
type TokenLookup interface {
	FindByToken(ctx context.Context, token string) (*domain.User, error)
}

// Guard validates bearer tokens against the credential store.
type Guard struct {
	lookup TokenLookup
}

// NewGuard constructs the guard.
func NewGuard(lookup TokenLookup) *Guard {
	return &Guard{lookup: lookup}
}

// RequireAuth resolves the caller from an Authorization header value.
func (g *Guard) RequireAuth(ctx context.Context, authHeader string) (*domain.User, error) {
	token := BearerToken(authHeader)
	if token == "" {
		return nil, apperrors.NewUnauthorized("authorization token required")
	}
	user, err := g.lookup.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	return user, nil
}

// Handle enforces authentication for protected routes.
func (g *Guard) Handle(c *fiber.Ctx) error {
	user, err := g.RequireAuth(c.UserContext(), c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}
	c.Locals(userKey, user)
	return c.Next()
}

// BearerToken strips an optional, case-insensitive "Bearer " prefix.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if strings.EqualFold(header, strings.TrimSpace(bearerPrefix)) {
		return ""
	}
	if len(header) >= len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		header = header[len(bearerPrefix):]
	}
	return strings.TrimSpace(header)
}

// UserFromContext retrieves the authenticated user.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(userKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}
