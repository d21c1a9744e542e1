package middleware

import (
	"context"
	"errors"
	"strings"

	"courtside/internal/auth"
	"courtside/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AccessCookie and RefreshCookie are the cookie names carrying session tokens.
const (
	AccessCookie  = "access"
	RefreshCookie = "refresh"
)

// Authenticator resolves the current user from the access cookie or a Bearer header.
type Authenticator struct {
	tokens *auth.Manager
}

// NewAuthenticator returns an Authenticator backed by the token manager.
func NewAuthenticator(tokens *auth.Manager) *Authenticator {
	return &Authenticator{tokens: tokens}
}

func accessToken(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Cookies(AccessCookie)
}

func (a *Authenticator) resolve(c *fiber.Ctx) (*auth.Claims, error) {
	token := accessToken(c)
	if token == "" {
		return nil, errors.New("authorization required")
	}
	return a.tokens.Parse(c.UserContext(), token, auth.KindAccess)
}

func setUser(c *fiber.Ctx, userID uint) {
	c.Locals("userID", userID)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
}

// Required rejects requests without a valid, unrevoked access token.
func (a *Authenticator) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := a.resolve(c)
		if err != nil {
			msg := "Invalid or expired token"
			switch {
			case errors.Is(err, auth.ErrRevoked):
				msg = "Token has been revoked"
			case accessToken(c) == "":
				msg = "Authorization required"
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(msg))
		}
		userID, err := claims.UserID()
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}
		setUser(c, userID)
		return c.Next()
	}
}

// Optional records the viewer when a valid token is present and carries on anonymously otherwise.
func (a *Authenticator) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, err := a.resolve(c); err == nil {
			if userID, err := claims.UserID(); err == nil {
				setUser(c, userID)
			}
		}
		return c.Next()
	}
}

// Viewer returns the authenticated user id, or nil for anonymous requests.
func Viewer(c *fiber.Ctx) *uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return &uid
	}
	return nil
}
