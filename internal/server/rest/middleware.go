package rest

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/nyayguru/internal/common"
	"github.com/dmitrijs2005/nyayguru/internal/server/auth"
	"github.com/dmitrijs2005/nyayguru/internal/server/users"
	"github.com/dmitrijs2005/nyayguru/internal/shared"
	"github.com/gofiber/fiber/v2"
)

const (
	localsUser   = "user"
	localsClaims = "claims"
)

// bearer resolves the Authorization header to a user and stores it in the
// request locals.
func (s *Server) bearer(c *fiber.Ctx) error {
	token, err := bearerToken(c.Get(common.AuthorizationHeaderName))
	if err != nil {
		return err
	}

	u, claims, err := s.users.Authenticate(c.UserContext(), token)
	if err != nil {
		return err
	}

	c.Locals(localsUser, u)
	c.Locals(localsClaims, claims)
	return c.Next()
}

func bearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) || strings.TrimSpace(token) == "" {
		return "", shared.ErrorInvalidAuthheaderFormat
	}
	return strings.TrimSpace(token), nil
}

func currentUser(c *fiber.Ctx) *users.User {
	u, _ := c.Locals(localsUser).(*users.User)
	return u
}

func currentClaims(c *fiber.Ctx) *auth.Claims {
	cl, _ := c.Locals(localsClaims).(*auth.Claims)
	return cl
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		status = statusOf(err)
	}
	s.logger.Debug(c.UserContext(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", time.Since(start),
	)
	return err
}
