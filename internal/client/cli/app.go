package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/nyayguru/internal/client/client"
	"github.com/dmitrijs2005/nyayguru/internal/client/config"
	"github.com/dmitrijs2005/nyayguru/internal/client/guard"
	"github.com/dmitrijs2005/nyayguru/internal/client/repositories/storage"
	"github.com/dmitrijs2005/nyayguru/internal/client/services"
	"github.com/dmitrijs2005/nyayguru/internal/logging"
	"github.com/google/uuid"
)

// Mode tells whether the auth service answered the last request.
type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	session  services.SessionService
	api      client.Client
	guard    *guard.Guard
	redirect *guard.AdminRedirector
	watcher  *storage.Watcher
	store    storage.Repository
	db       *sql.DB
	reader   *bufio.Reader
	out      io.Writer

	mu       sync.Mutex
	location string
	from     string
	Mode     Mode
}

// NewApp opens the session store and wires the session manager, the HTTP
// client and the route guard.
func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := client.InitDatabase(ctx, c.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing session store: %w", err)
	}

	origin := uuid.NewString()
	logger = logger.With("origin", origin)

	watcher := storage.NewWatcher(db, origin, c.SyncInterval, logger)
	repo := storage.NewSQLiteRepository(db, origin, watcher)

	// each session call carries its own deadline
	api, err := client.NewHTTPClient(c.APIBaseURL, repo, 0)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	sm := services.NewSessionManager(api, repo, services.SessionOptions{
		Logger:         logger,
		AuthTimeout:    c.AuthTimeout,
		RequestTimeout: c.RequestTimeout,
		Changes:        watcher,
		Origin:         origin,
	})

	return &App{
		config:   c,
		logger:   logger,
		session:  sm,
		api:      api,
		guard:    guard.New(guard.MustTable(guard.DefaultRoutes), guard.DefaultPaths),
		redirect: guard.NewAdminRedirector(guard.DefaultPaths.Admin),
		watcher:  watcher,
		store:    repo,
		db:       db,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

// Run validates the stored session and serves the REPL until the user exits
// or ctx is done.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.close()

	if a.watcher != nil {
		go a.watcher.Run(ctx)
	}

	updates, unsubscribe := a.session.Subscribe()
	defer unsubscribe()
	go a.redirect.Watch(ctx, updates, a)

	fmt.Fprintln(a.out, "Welcome to NyayGuru (type 'help' for commands)")

	s := a.session.Initialize(ctx)
	if s.LastError != "" {
		fmt.Fprintln(a.out, s.LastError)
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

func (a *App) close() {
	a.session.Close()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error(context.Background(), "failed to close session store", "error", err)
		}
	}
}

// Navigate implements guard.Navigator.
func (a *App) Navigate(ctx context.Context, path string) {
	a.mu.Lock()
	a.location = path
	a.mu.Unlock()

	fmt.Fprintf(a.out, "-> %s\n", path)
}

func (a *App) currentLocation() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.location
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(ctx, "auth service reachability changed", "mode", mode)
	}
}

// noteResult updates the mode from the outcome of a remote call.
func (a *App) noteResult(ctx context.Context, err error) {
	switch {
	case err == nil:
		a.setMode(ctx, ModeOnline)
	case errors.Is(err, client.ErrUnavailable), errors.Is(err, services.ErrTimeout):
		a.setMode(ctx, ModeOffline)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().Authenticated()
}

func (a *App) getStatus() string {
	s := a.session.Snapshot()

	status := string(s.Status)
	if s.Authenticated() {
		status = s.User.Username
		if s.IsAdmin() {
			status += " admin"
		}
	}

	a.mu.Lock()
	mode, location := a.Mode, a.location
	a.mu.Unlock()

	if mode != "" {
		status += " " + string(mode)
	}
	if location != "" {
		status += " " + location
	}
	return fmt.Sprintf("(%s)", status)
}
