// Package rest exposes the development auth service over HTTP. The routes
// and payloads follow the NyayGuru REST API the session client talks to.
package rest

import (
	"context"
	"net"
	"strings"

	"github.com/dmitrijs2005/nyayguru/internal/logging"
	"github.com/dmitrijs2005/nyayguru/internal/server/users"
	"github.com/gofiber/fiber/v2"
)

const maxAvatarSize = 5 << 20

type Server struct {
	address       string
	users         *users.Service
	logger        logging.Logger
	uploadBaseURL string
	app           *fiber.App
}

func NewServer(a string, l logging.Logger, us *users.Service, uploadBaseURL string) *Server {
	s := &Server{
		address:       a,
		logger:        l.With("module", "rest_server"),
		users:         us,
		uploadBaseURL: strings.TrimRight(uploadBaseURL, "/"),
	}

	s.app = fiber.New(fiber.Config{
		ErrorHandler:          s.errorHandler,
		DisableStartupMessage: true,
		BodyLimit:             maxAvatarSize + 1<<20,
	})
	s.routes()
	return s
}

// App returns the underlying fiber application, e.g. for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) routes() {
	s.app.Use(s.requestLogger)

	api := s.app.Group("/api")

	a := api.Group("/auth")
	a.Get("/test", s.handlePing)
	a.Post("/login", s.handleLogin)
	a.Post("/register", s.handleRegister)
	a.Post("/google", s.handleGoogle)
	a.Get("/validate-token", s.bearer, s.handleValidateToken)
	a.Post("/logout", s.bearer, s.handleLogout)

	u := api.Group("/users", s.bearer)
	u.Put("/profile", s.handleUpdateProfile)
	u.Post("/profile/avatar", s.handleUploadAvatar)
}

// Run serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping REST server...")
		if err := s.app.Shutdown(); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting REST server", "address", listen.Addr().String())

	return s.app.Listener(listen)
}
