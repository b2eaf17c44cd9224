package rest

import (
	"encoding/json"
	"io"
	"path"
	"strings"

	"github.com/dmitrijs2005/nyayguru/internal/server/users"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var errInvalidBody = fiber.NewError(fiber.StatusUnprocessableEntity, "Invalid request body")

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type assertionRequest struct {
	Provider string `json:"provider"`
	Token    string `json:"token"`
}

type tokenResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	User        map[string]any `json:"user"`
}

func newTokenResponse(res *users.TokenResult) tokenResponse {
	return tokenResponse{AccessToken: res.AccessToken, TokenType: "bearer", User: res.User.Record()}
}

func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return errInvalidBody
	}

	res, err := s.users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(newTokenResponse(res))
}

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &body); err != nil || body == nil {
		return errInvalidBody
	}

	in := users.RegisterInput{Extra: make(map[string]json.RawMessage)}
	for k, v := range body {
		var dst *string
		switch k {
		case "username":
			dst = &in.Username
		case "full_name":
			dst = &in.FullName
		case "email":
			dst = &in.Email
		case "password":
			dst = &in.Password
		case "id", "isAdmin", "is_admin", "avatar_url", "created_at":
			continue
		default:
			in.Extra[k] = v
			continue
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return errInvalidBody
		}
	}

	res, err := s.users.Register(c.UserContext(), in)
	if err != nil {
		return err
	}

	s.logger.Info(c.UserContext(), "user registered", "user_id", res.User.ID)
	return c.Status(fiber.StatusCreated).JSON(newTokenResponse(res))
}

// handleGoogle answers inside a "data" envelope.
func (s *Server) handleGoogle(c *fiber.Ctx) error {
	var req assertionRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return errInvalidBody
	}
	if req.Provider == "" {
		req.Provider = "google"
	}

	res, err := s.users.LoginWithAssertion(c.UserContext(), req.Provider, req.Token)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"token": res.AccessToken,
		"user":  res.User.Record(),
	}})
}

func (s *Server) handleValidateToken(c *fiber.Ctx) error {
	return c.JSON(currentUser(c).Record())
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	s.users.Logout(c.UserContext(), currentClaims(c))
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleUpdateProfile(c *fiber.Ctx) error {
	var patch map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &patch); err != nil || patch == nil {
		return errInvalidBody
	}

	u, err := s.users.UpdateProfile(c.UserContext(), currentUser(c).ID, patch)
	if err != nil {
		return err
	}
	return c.JSON(u.Record())
}

// handleUploadAvatar accepts the file and reports where it would be served.
// Nothing is stored.
func (s *Server) handleUploadAvatar(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "File is required")
	}
	if fh.Size > maxAvatarSize {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "File is too large")
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(io.Discard, f); err != nil {
		return err
	}

	name := strings.ReplaceAll(path.Base(fh.Filename), " ", "_")
	url := s.uploadBaseURL + "/uploads/" + uuid.NewString() + "_" + name

	u, err := s.users.SetAvatar(c.UserContext(), currentUser(c).ID, url)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"avatar_url": u.AvatarURL})
}
