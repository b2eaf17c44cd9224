// Package server initializes and runs the development auth service: an
// in-memory user store behind the REST API the session client talks to.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/nyayguru/internal/logging"
	"github.com/dmitrijs2005/nyayguru/internal/server/config"
	"github.com/dmitrijs2005/nyayguru/internal/server/rest"
	"github.com/dmitrijs2005/nyayguru/internal/server/users"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	userService *users.Service
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.New(c.LogLevel, "json", os.Stdout)

	us := users.NewService(users.NewMemoryRepository(), c)
	if err := us.EnsureAdmin(context.Background(), c.AdminEmail, c.AdminPassword); err != nil {
		return nil, fmt.Errorf("admin seed error: %w", err)
	}

	return &App{config: c, logger: logger, userService: us}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startRESTServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := rest.NewServer(app.config.Addr, app.logger, app.userService, app.config.UploadBaseURL)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "admin", app.config.AdminEmail)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startRESTServer(ctx, cancelFunc)
	}()

	wg.Wait()

}
