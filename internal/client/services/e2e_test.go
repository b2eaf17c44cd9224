package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/nyayguru/internal/client/client"
	"github.com/dmitrijs2005/nyayguru/internal/client/models"
	"github.com/dmitrijs2005/nyayguru/internal/client/repositories/storage"
	"github.com/dmitrijs2005/nyayguru/internal/client/services"
	"github.com/dmitrijs2005/nyayguru/internal/common"
	"github.com/dmitrijs2005/nyayguru/internal/logging"
	"github.com/dmitrijs2005/nyayguru/internal/server/config"
	"github.com/dmitrijs2005/nyayguru/internal/server/rest"
	"github.com/dmitrijs2005/nyayguru/internal/server/users"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "root@example.com"
	adminPassword = "Admin12345"
)

type stack struct {
	baseURL string
	path    string
}

// startStack runs the dev auth service behind a real HTTP listener.
func startStack(t *testing.T) *stack {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	us := users.NewService(users.NewMemoryRepository(), cfg)
	require.NoError(t, us.EnsureAdmin(context.Background(), adminEmail, adminPassword))

	srv := httptest.NewServer(adaptor.FiberApp(rest.NewServer("", logging.Discard(), us, "http://cdn.test").App()))
	t.Cleanup(srv.Close)

	return &stack{baseURL: srv.URL + "/api", path: filepath.Join(t.TempDir(), "session.db")}
}

// open is one browser context on the shared store.
func (s *stack) open(t *testing.T) (*services.SessionManager, storage.Repository) {
	t.Helper()

	db, err := client.InitDatabase(context.Background(), s.path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := storage.NewSQLiteRepository(db, t.Name(), nil)
	api, err := client.NewHTTPClient(s.baseURL, repo, 5*time.Second)
	require.NoError(t, err)

	m := services.NewSessionManager(api, repo, services.SessionOptions{
		AuthTimeout:    5 * time.Second,
		RequestTimeout: 5 * time.Second,
	})
	t.Cleanup(m.Close)
	return m, repo
}

func TestE2E_SignupReloadLogout(t *testing.T) {
	s := startStack(t)
	ctx := context.Background()
	m, repo := s.open(t)

	require.Equal(t, models.StatusAnonymous, m.Initialize(ctx).Status)

	u, err := m.Signup(ctx, models.Profile{
		FirstName: "Asha",
		LastName:  "Rao",
		Email:     "asha@example.com",
		Password:  "Secret123",
		Extra:     models.Record{"city": json.RawMessage(`"Pune"`)},
		Avatar:    &models.Avatar{Filename: "me.png", Data: []byte("png")},
	})
	require.NoError(t, err)
	assert.Equal(t, "asharao", u.Username)

	avatar, ok := u.Attr("avatar_url")
	require.True(t, ok, "avatar url must be merged into the user")
	assert.Contains(t, string(avatar), "http://cdn.test/uploads/")

	// перезагрузка: новый контекст на том же хранилище
	reloaded, _ := s.open(t)
	snap := reloaded.Initialize(ctx)
	require.Equal(t, models.StatusAuthenticated, snap.Status)
	assert.Equal(t, "asharao", snap.User.Username)
	assert.False(t, snap.IsAdmin())
	city, _ := snap.User.Attr("city")
	assert.JSONEq(t, `"Pune"`, string(city))

	token := snap.Token
	require.Equal(t, models.StatusAnonymous, reloaded.Logout(ctx).Status)

	got, err := repo.GetMany(ctx, common.SessionKeys...)
	require.NoError(t, err)
	assert.Empty(t, got)

	// the revoked token no longer validates
	require.NoError(t, repo.SetMany(ctx, map[string][]byte{
		common.StorageKeyToken: []byte(token),
		common.StorageKeyUser:  []byte(`{"id":1,"username":"asharao"}`),
	}))
	snap = m.Initialize(ctx)
	assert.Equal(t, models.StatusAnonymous, snap.Status)
	assert.Equal(t, "Your session has expired. Please log in again.", snap.LastError)
}

func TestE2E_LoginFailureCarriesDetail(t *testing.T) {
	s := startStack(t)
	m, _ := s.open(t)

	_, err := m.Login(context.Background(), models.Credentials{Identifier: adminEmail, Secret: "wrong"})
	require.ErrorIs(t, err, services.ErrInvalidCredentials)
	assert.Equal(t, "Incorrect email or password", err.Error())
	assert.Equal(t, "Incorrect email or password", m.Snapshot().LastError)
}

func TestE2E_AdminLogin(t *testing.T) {
	s := startStack(t)
	m, _ := s.open(t)

	u, err := m.Login(context.Background(), models.Credentials{Identifier: adminEmail, Secret: adminPassword})
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)
	assert.True(t, m.Snapshot().IsAdmin())
}

func TestE2E_GoogleAssertion(t *testing.T) {
	s := startStack(t)
	m, _ := s.open(t)

	idToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "gina@example.com", "name": "Gina"}).SignedString([]byte("k"))
	require.NoError(t, err)

	u, err := m.Login(context.Background(), models.ExternalAssertion{Provider: "google", Token: idToken})
	require.NoError(t, err)
	assert.Equal(t, "gina", u.Username)
	assert.Equal(t, models.StatusAuthenticated, m.Snapshot().Status)
}

func TestE2E_UpdateProfile(t *testing.T) {
	s := startStack(t)
	ctx := context.Background()
	m, repo := s.open(t)

	_, err := m.Login(ctx, models.Credentials{Identifier: adminEmail, Secret: adminPassword})
	require.NoError(t, err)

	u, err := m.UpdateProfile(ctx, models.Record{"bio": json.RawMessage(`"maintainer"`)})
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Username)
	bio, _ := u.Attr("bio")
	assert.JSONEq(t, `"maintainer"`, string(bio))

	raw, err := repo.Get(ctx, common.StorageKeyUser)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "maintainer")

	_, err = m.UpdateProfile(ctx, models.Record{"username": json.RawMessage(`""`)})
	require.ErrorIs(t, err, services.ErrInvalidInput)
	assert.Equal(t, "Username is required", err.Error())
	assert.Equal(t, "admin", m.Snapshot().User.Username)
}

func TestE2E_Unreachable(t *testing.T) {
	s := startStack(t)
	s.baseURL = "http://127.0.0.1:1/api"
	m, _ := s.open(t)

	_, err := m.Login(context.Background(), models.Credentials{Identifier: adminEmail, Secret: adminPassword})
	require.ErrorIs(t, err, services.ErrNetwork)
	assert.Equal(t, models.StatusAnonymous, m.Snapshot().Status)
}

func TestE2E_TransportDeadlineIsTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := storage.NewSQLiteRepository(db, t.Name(), nil)

	// the client gives up before the session deadline does
	api, err := client.NewHTTPClient(srv.URL+"/api", repo, 100*time.Millisecond)
	require.NoError(t, err)
	m := services.NewSessionManager(api, repo, services.SessionOptions{
		AuthTimeout:    5 * time.Second,
		RequestTimeout: 5 * time.Second,
	})
	t.Cleanup(m.Close)

	_, err = m.Login(context.Background(), models.Credentials{Identifier: adminEmail, Secret: adminPassword})
	require.ErrorIs(t, err, services.ErrTimeout)
	assert.Equal(t, "Login request timed out. Please try again later.", err.Error())
	assert.Equal(t, models.StatusAnonymous, m.Snapshot().Status)
}
