package rest

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/nyayguru/internal/shared"
	"github.com/gofiber/fiber/v2"
)

// errorHandler renders every error as {"detail": "..."}.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	status := statusOf(err)
	if status >= fiber.StatusInternalServerError {
		s.logger.Error(c.UserContext(), "request failed", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"detail": detailOf(err)})
}

func statusOf(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, shared.ErrorInvalidLoginPassword),
		errors.Is(err, shared.ErrorInvalidToken),
		errors.Is(err, shared.ErrorTokenExpired),
		errors.Is(err, shared.ErrorTokenRevoked),
		errors.Is(err, shared.ErrorInvalidAuthheaderFormat):
		return fiber.StatusUnauthorized
	case errors.Is(err, shared.ErrorAlreadyExists):
		return fiber.StatusConflict
	case errors.Is(err, shared.ErrorValidation):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, shared.ErrorUnsupportedProvider):
		return fiber.StatusBadRequest
	case errors.Is(err, shared.ErrorNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func detailOf(err error) string {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Message
	case errors.Is(err, shared.ErrorInvalidLoginPassword):
		return "Incorrect email or password"
	case errors.Is(err, shared.ErrorTokenExpired):
		return "Token has expired"
	case errors.Is(err, shared.ErrorInvalidToken),
		errors.Is(err, shared.ErrorTokenRevoked),
		errors.Is(err, shared.ErrorInvalidAuthheaderFormat):
		return "Could not validate credentials"
	case errors.Is(err, shared.ErrorAlreadyExists):
		return "Email already registered"
	case errors.Is(err, shared.ErrorValidation):
		return strings.TrimPrefix(err.Error(), shared.ErrorValidation.Error()+": ")
	case errors.Is(err, shared.ErrorUnsupportedProvider):
		return "Unsupported identity provider"
	case errors.Is(err, shared.ErrorNotFound):
		return "User not found"
	default:
		return "Internal server error"
	}
}
