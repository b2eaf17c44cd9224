package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/nyayguru/internal/client/client"
	"github.com/dmitrijs2005/nyayguru/internal/client/guard"
	"github.com/dmitrijs2005/nyayguru/internal/client/models"
	"github.com/dmitrijs2005/nyayguru/internal/logging"
)

type fakeSession struct {
	mu   sync.Mutex
	snap models.Session

	loginIn   models.LoginInput
	loginUser models.User
	loginErr  error

	signupIn   models.SignupInput
	signupUser models.User
	signupErr  error

	patch     models.Record
	patchUser models.User
	patchErr  error

	initialized bool
	loggedOut   bool
	closed      bool
	subs        []chan models.Session
}

func (f *fakeSession) Initialize(context.Context) models.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initialized = true
	return f.snap
}

func (f *fakeSession) Login(_ context.Context, in models.LoginInput) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginIn = in
	if f.loginErr != nil {
		return models.User{}, f.loginErr
	}
	f.authenticate(f.loginUser)
	return f.loginUser, nil
}

func (f *fakeSession) Signup(_ context.Context, in models.SignupInput) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signupIn = in
	if f.signupErr != nil {
		return models.User{}, f.signupErr
	}
	f.authenticate(f.signupUser)
	return f.signupUser, nil
}

func (f *fakeSession) Logout(context.Context) models.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut = true
	f.snap = models.Session{Status: models.StatusAnonymous}
	return f.snap
}

func (f *fakeSession) UpdateProfile(_ context.Context, patch models.Record) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patch = patch
	return f.patchUser, f.patchErr
}

func (f *fakeSession) Snapshot() models.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeSession) Subscribe() (<-chan models.Session, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan models.Session, 1)
	ch <- f.snap
	f.subs = append(f.subs, ch)
	return ch, func() {}
}

func (f *fakeSession) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeSession) authenticate(u models.User) {
	f.snap = models.Session{Status: models.StatusAuthenticated, Token: "tok", User: &u}
}

type fakeAPI struct {
	client.Client
	pingErr error
}

func (f *fakeAPI) Ping(context.Context) error { return f.pingErr }

func newTestApp(t *testing.T, sess *fakeSession, input string) (*App, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	return &App{
		logger:   logging.Discard(),
		session:  sess,
		api:      &fakeAPI{},
		guard:    guard.New(guard.MustTable(guard.DefaultRoutes), guard.DefaultPaths),
		redirect: guard.NewAdminRedirector(guard.DefaultPaths.Admin),
		reader:   bufio.NewReader(strings.NewReader(input)),
		out:      out,
	}, out
}

func authenticated(username string, admin bool) models.Session {
	return models.Session{
		Status: models.StatusAuthenticated,
		Token:  "tok",
		User:   &models.User{ID: "1", Username: username, IsAdmin: admin},
	}
}

// stubInputs answers prompts by text; prompts without an answer get "".
func stubInputs(t *testing.T, answers map[string]string, password []byte) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
		return answers[prompt], nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) {
		return append([]byte(nil), password...), nil
	}
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

func stubMetadata(t *testing.T, lines []string) {
	t.Helper()
	orig := getMetadata
	getMetadata = func(*bufio.Reader, io.Writer) ([]string, error) { return lines, nil }
	t.Cleanup(func() { getMetadata = orig })
}

var errBoom = errors.New("boom")
