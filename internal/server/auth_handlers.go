package server

import (
	"strings"
	"time"

	"courtside/internal/auth"
	"courtside/internal/middleware"
	"courtside/internal/models"
	"courtside/internal/notifications"

	"github.com/gofiber/fiber/v2"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) cookie(name, value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   s.config.CookieDomain,
		Expires:  expires,
		Secure:   s.config.CookieSecure,
		HTTPOnly: true,
		SameSite: s.config.CookieSameSite,
	}
}

func (s *Server) setSessionCookies(c *fiber.Ctx, pair auth.Pair) {
	c.Cookie(s.cookie(middleware.AccessCookie, pair.Access, pair.AccessExpires))
	c.Cookie(s.cookie(middleware.RefreshCookie, pair.Refresh, pair.RefreshExpires))
}

func (s *Server) clearSessionCookies(c *fiber.Ctx) {
	expired := time.Unix(0, 0)
	c.Cookie(s.cookie(middleware.AccessCookie, "", expired))
	c.Cookie(s.cookie(middleware.RefreshCookie, "", expired))
}

// Login godoc
// @Summary Log in
// @Description Authenticate with username and password; session tokens are set as HTTP-only cookies
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, pair, err := s.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return fail(c, err)
	}
	s.setSessionCookies(c, pair)
	return renderOne(c, fiber.StatusOK, user, sessionUserView)
}

// Logout godoc
// @Summary Log out
// @Description Revoke the refresh token and clear session cookies
// @Tags auth
// @Success 204
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.authService.Logout(c.UserContext(), c.Cookies(middleware.RefreshCookie)); err != nil {
		return fail(c, err)
	}
	s.clearSessionCookies(c)
	return c.SendStatus(fiber.StatusNoContent)
}

// Refresh godoc
// @Summary Refresh session
// @Description Rotate both session cookies using the refresh cookie
// @Tags auth
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/refresh [post]
func (s *Server) Refresh(c *fiber.Ctx) error {
	ctx := c.UserContext()
	pair, err := s.authService.Refresh(ctx, c.Cookies(middleware.RefreshCookie))
	if err != nil {
		s.clearSessionCookies(c)
		return fail(c, err)
	}

	claims, err := s.tokens.Parse(ctx, pair.Access, auth.KindAccess)
	if err != nil {
		return fail(c, models.NewInternalError(err))
	}
	userID, err := claims.UserID()
	if err != nil {
		return fail(c, models.NewInternalError(err))
	}
	user, err := s.userService.Me(ctx, userID)
	if err != nil {
		return fail(c, err)
	}

	s.setSessionCookies(c, pair)
	return renderOne(c, fiber.StatusCreated, user, sessionUserView)
}

// ConnectionToken godoc
// @Summary Websocket connection token
// @Description Short-lived token for opening /api/ws
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /auth/websocket-access [get]
func (s *Server) ConnectionToken(c *fiber.Ctx) error {
	userID := *middleware.Viewer(c)
	token, err := s.tokens.ConnectionToken(userID)
	if err != nil {
		return fail(c, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"token": token})
}

// SubscriptionToken godoc
// @Summary Channel subscription token
// @Description Short-lived token granting a subscription to one realtime channel
// @Tags auth
// @Produce json
// @Param channel query string true "Channel name, e.g. events:team:1610612747"
// @Success 200 {object} map[string]string
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /auth/subscription [get]
func (s *Server) SubscriptionToken(c *fiber.Ctx) error {
	channel := strings.TrimSpace(c.Query("channel"))
	if !notifications.ValidChannel(channel) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid channel"))
	}
	userID := *middleware.Viewer(c)
	token, err := s.tokens.SubscriptionToken(userID, channel)
	if err != nil {
		return fail(c, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"token": token})
}
