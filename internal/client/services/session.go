package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/nyayguru/internal/client/client"
	"github.com/dmitrijs2005/nyayguru/internal/client/models"
	"github.com/dmitrijs2005/nyayguru/internal/client/repositories/storage"
	"github.com/dmitrijs2005/nyayguru/internal/common"
	"github.com/dmitrijs2005/nyayguru/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultAuthTimeout    = 20 * time.Second
	DefaultRequestTimeout = 10 * time.Second

	// a reconciliation restarts when the stored token changes under it
	maxReconcileAttempts = 3
)

// SessionService defines the session operations used by the views.
//
// Contract:
//   - Initialize and Logout never fail; they resolve to a settled state.
//   - Login, Signup and UpdateProfile return *Error after local cleanup.
//   - Token and user are always persisted and cleared together.
type SessionService interface {
	Initialize(ctx context.Context) models.Session
	Login(ctx context.Context, in models.LoginInput) (models.User, error)
	Signup(ctx context.Context, in models.SignupInput) (models.User, error)
	Logout(ctx context.Context) models.Session
	UpdateProfile(ctx context.Context, patch models.Record) (models.User, error)
	Snapshot() models.Session
	Subscribe() (<-chan models.Session, func())
	Close()
}

// SessionOptions tunes a SessionManager. Zero values select defaults.
type SessionOptions struct {
	Logger logging.Logger
	// AuthTimeout bounds login and signup even when the call ignores its context.
	AuthTimeout time.Duration
	// RequestTimeout bounds validation, logout, avatar and profile calls.
	RequestTimeout time.Duration
	// Changes delivers writes made by other contexts; nil disables sync.
	Changes storage.Notifier
	// Origin identifies this context; its own writes are not redelivered.
	Origin string
}

// SessionManager owns the session of one browser context and keeps it
// reconciled with the persistent store and the auth service.
type SessionManager struct {
	client         client.Client
	store          storage.Repository
	logger         logging.Logger
	authTimeout    time.Duration
	requestTimeout time.Duration
	now            func() time.Time

	// writeMu serializes store writes with the in-memory update that follows,
	// so memory always mirrors the last write made through this manager.
	writeMu sync.Mutex

	mu    sync.Mutex
	state models.Session
	busy  int
	subs  map[chan models.Session]struct{}

	changes   *storage.Subscription
	stop      context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ SessionService = (*SessionManager)(nil)

// NewSessionManager creates a manager in the Uninitialized state. When
// opts.Changes is set the manager subscribes to token/user changes right away
// and reconciles on each of them until Close.
func NewSessionManager(c client.Client, store storage.Repository, opts SessionOptions) *SessionManager {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.AuthTimeout <= 0 {
		opts.AuthTimeout = DefaultAuthTimeout
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}

	m := &SessionManager{
		client:         c,
		store:          store,
		logger:         opts.Logger,
		authTimeout:    opts.AuthTimeout,
		requestTimeout: opts.RequestTimeout,
		now:            time.Now,
		state:          models.Session{Status: models.StatusUninitialized},
		subs:           make(map[chan models.Session]struct{}),
	}

	if opts.Changes != nil {
		ctx, cancel := context.WithCancel(context.Background())
		m.stop = cancel
		m.changes = opts.Changes.Subscribe(opts.Origin, common.SessionKeys...)
		m.wg.Add(1)
		go m.follow(ctx)
	}
	return m
}

func (m *SessionManager) follow(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case c, ok := <-m.changes.C:
			if !ok {
				return
			}
			m.logger.Debug(ctx, "session keys changed elsewhere", "origin", c.Origin, "revision", c.Revision)
			m.Initialize(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Close releases the change subscription and closes subscriber channels.
func (m *SessionManager) Close() {
	m.closeOnce.Do(func() {
		if m.changes != nil {
			m.stop()
			m.changes.Cancel()
			m.wg.Wait()
		}

		m.mu.Lock()
		for ch := range m.subs {
			close(ch)
		}
		m.subs = nil
		m.mu.Unlock()
	})
}

// Snapshot returns the current state.
func (m *SessionManager) Snapshot() models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe returns a channel holding the latest state; intermediate states
// may be skipped by a slow reader. The current state is delivered first.
func (m *SessionManager) Subscribe() (<-chan models.Session, func()) {
	ch := make(chan models.Session, 1)

	m.mu.Lock()
	ch <- m.state
	if m.subs == nil {
		close(ch)
	} else {
		m.subs[ch] = struct{}{}
	}
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.subs[ch]; ok {
			delete(m.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// Initialize reconciles the session with the store and the validator. It
// never fails: every problem resolves to Anonymous with LastError set.
func (m *SessionManager) Initialize(ctx context.Context) models.Session {
	m.update(ctx, "initialize", func(s *models.Session) {
		s.Status = models.StatusValidating
	})

	for attempt := 1; ; attempt++ {
		s, ok := m.reconcile(ctx, attempt >= maxReconcileAttempts)
		if ok {
			return s
		}
		m.logger.Debug(ctx, "stored session changed during validation", "attempt", attempt)
	}
}

func (m *SessionManager) reconcile(ctx context.Context, last bool) (models.Session, bool) {
	m.writeMu.Lock()
	stored, err := m.store.GetMany(ctx, common.SessionKeys...)
	if err != nil {
		m.writeMu.Unlock()
		m.logger.Error(ctx, "failed to read stored session", "error", err)
		return m.apply(ctx, anonymous(msgStorage), "storage read failed"), true
	}

	token := string(stored[common.StorageKeyToken])
	if token == "" {
		defer m.writeMu.Unlock()
		return m.purgeLocked(ctx, stored, "", "no stored token"), true
	}
	if m.expired(token) {
		defer m.writeMu.Unlock()
		m.logger.Info(ctx, "stored token expired")
		return m.purgeLocked(ctx, stored, msgExpired, "token expired"), true
	}
	m.writeMu.Unlock()

	user, err := callWithTimeout(ctx, m.requestTimeout, func(ctx context.Context) (*models.User, error) {
		return m.client.ValidateToken(client.WithToken(ctx, token))
	})
	if err == nil && !user.Valid() {
		err = fmt.Errorf("%w: %w", client.ErrMalformedResponse, models.ErrMissingUser)
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	current, rerr := m.store.GetMany(ctx, common.SessionKeys...)
	if rerr != nil {
		m.logger.Error(ctx, "failed to read stored session", "error", rerr)
		return m.apply(ctx, anonymous(msgStorage), "storage read failed"), true
	}
	if string(current[common.StorageKeyToken]) != token {
		if !last {
			return models.Session{}, false
		}
		return m.settleFromStoreLocked(ctx, current), true
	}

	if err != nil {
		e := classify(opValidate, err)
		m.logger.Warn(ctx, "token validation failed", "kind", e.Kind, "error", err)
		return m.purgeLocked(ctx, current, e.Message, "validation failed"), true
	}

	ub, err := json.Marshal(user)
	if err != nil {
		m.logger.Error(ctx, "failed to encode user", "error", err)
		return m.purgeLocked(ctx, current, msgStorage, "encode user failed"), true
	}
	// rewriting identical bytes would wake every other context again
	if !bytes.Equal(ub, current[common.StorageKeyUser]) {
		if err := m.store.SetMany(ctx, sessionValues(token, ub)); err != nil {
			m.logger.Error(ctx, "failed to persist session", "error", err)
			return m.purgeLocked(ctx, current, msgStorage, "persist failed"), true
		}
	}

	return m.apply(ctx, models.Session{
		Status: models.StatusAuthenticated,
		Token:  token,
		User:   user,
	}, "token validated"), true
}

// settleFromStoreLocked adopts whatever another writer left behind after
// validation kept racing with it.
func (m *SessionManager) settleFromStoreLocked(ctx context.Context, stored map[string][]byte) models.Session {
	token := string(stored[common.StorageKeyToken])
	var u models.User
	if token != "" && json.Unmarshal(stored[common.StorageKeyUser], &u) == nil && u.Valid() {
		return m.apply(ctx, models.Session{
			Status: models.StatusAuthenticated,
			Token:  token,
			User:   &u,
		}, "adopted concurrent write")
	}
	return m.purgeLocked(ctx, stored, "", "adopted concurrent write")
}

// Login authenticates with credentials or an external assertion. On failure
// both stored keys are cleared and the session becomes Anonymous.
func (m *SessionManager) Login(ctx context.Context, in models.LoginInput) (models.User, error) {
	if in == nil {
		return models.User{}, newError(KindInvalidInput, "Login details are required", nil)
	}
	if err := in.Validate(); err != nil {
		return models.User{}, invalidInput(err)
	}

	var call func(context.Context) (*models.AuthResult, error)
	switch in := in.(type) {
	case models.Credentials:
		call = func(ctx context.Context) (*models.AuthResult, error) {
			return m.client.Login(ctx, in.Identifier, in.Secret)
		}
	case models.ExternalAssertion:
		call = func(ctx context.Context) (*models.AuthResult, error) {
			return m.client.LoginWithAssertion(ctx, in)
		}
	default:
		return models.User{}, newError(KindInvalidInput, "Unsupported login method", fmt.Errorf("%T", in))
	}

	m.begin()
	defer m.end()

	res, err := callWithTimeout(ctx, m.authTimeout, call)
	if err == nil {
		err = checkResult(res)
	}
	if err != nil {
		return models.User{}, m.fail(ctx, opLogin, err)
	}
	return m.adopt(ctx, opLogin, res.Token, *res.User)
}

// Signup creates an account from a profile or an external assertion. A
// profile avatar is uploaded with the new token before the session is saved;
// a failed upload does not fail the signup.
func (m *SessionManager) Signup(ctx context.Context, in models.SignupInput) (models.User, error) {
	if in == nil {
		return models.User{}, newError(KindInvalidInput, "Signup details are required", nil)
	}
	if err := in.Validate(); err != nil {
		return models.User{}, invalidInput(err)
	}

	var (
		call   func(context.Context) (*models.AuthResult, error)
		avatar *models.Avatar
	)
	switch in := in.(type) {
	case models.Profile:
		avatar = in.Avatar
		call = func(ctx context.Context) (*models.AuthResult, error) {
			return m.client.Register(ctx, in)
		}
	case models.ExternalAssertion:
		call = func(ctx context.Context) (*models.AuthResult, error) {
			return m.client.LoginWithAssertion(ctx, in)
		}
	default:
		return models.User{}, newError(KindInvalidInput, "Unsupported signup method", fmt.Errorf("%T", in))
	}

	m.begin()
	defer m.end()

	res, err := callWithTimeout(ctx, m.authTimeout, call)
	if err == nil {
		err = checkResult(res)
	}
	if err != nil {
		return models.User{}, m.fail(ctx, opSignup, err)
	}

	user := *res.User
	if avatar != nil {
		user = m.uploadAvatar(ctx, res.Token, *avatar, user)
	}
	return m.adopt(ctx, opSignup, res.Token, user)
}

func (m *SessionManager) uploadAvatar(ctx context.Context, token string, a models.Avatar, user models.User) models.User {
	rec, err := callWithTimeout(ctx, m.requestTimeout, func(ctx context.Context) (models.Record, error) {
		return m.client.UploadAvatar(client.WithToken(ctx, token), a)
	})
	if err != nil {
		m.logger.Warn(ctx, "avatar upload failed", "error", err)
		return user
	}
	merged, err := user.Merge(rec)
	if err != nil || !merged.Valid() {
		m.logger.Warn(ctx, "avatar response ignored", "error", err)
		return user
	}
	return merged
}

// Logout invalidates the token remotely on a best-effort basis, then clears
// the stored session unconditionally.
func (m *SessionManager) Logout(ctx context.Context) models.Session {
	token, err := m.store.Get(ctx, common.StorageKeyToken)
	if err != nil {
		m.logger.Error(ctx, "failed to read stored token", "error", err)
		token = []byte(m.Snapshot().Token)
	}

	if len(token) > 0 {
		_, err := callWithTimeout(ctx, m.requestTimeout, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, m.client.Logout(client.WithToken(ctx, string(token)))
		})
		if err != nil {
			m.logger.Warn(ctx, "remote logout failed", "error", err)
		}
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if err := m.store.DeleteMany(ctx, common.SessionKeys...); err != nil {
		m.logger.Error(ctx, "failed to clear stored session", "error", err)
	}
	return m.apply(ctx, anonymous(""), "logout")
}

// UpdateProfile sends patch and merges the answer into the user currently in
// the store. A remote failure leaves the session untouched.
func (m *SessionManager) UpdateProfile(ctx context.Context, patch models.Record) (models.User, error) {
	s := m.Snapshot()
	if !s.Authenticated() {
		return models.User{}, newError(KindNotAuthenticated, msgNotAuthenticated, nil)
	}
	if len(patch) == 0 {
		return *s.User, nil
	}

	m.begin()
	defer m.end()

	rec, err := callWithTimeout(ctx, m.requestTimeout, func(ctx context.Context) (models.Record, error) {
		return m.client.UpdateProfile(client.WithToken(ctx, s.Token), patch)
	})
	if err != nil {
		e := classify(opProfile, err)
		m.logger.Warn(ctx, "profile update failed", "kind", e.Kind, "error", err)
		m.update(ctx, "profile update failed", func(cur *models.Session) {
			cur.LastError = e.Message
		})
		return models.User{}, e
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	stored, err := m.store.GetMany(ctx, common.SessionKeys...)
	if err != nil {
		m.logger.Error(ctx, "failed to read stored session", "error", err)
		return models.User{}, newError(KindStorage, msgStorage, err)
	}

	token := string(stored[common.StorageKeyToken])
	switch {
	case token == "":
		m.purgeLocked(ctx, stored, msgSessionEnded, "session vanished during profile update")
		return models.User{}, newError(KindNotAuthenticated, msgSessionEnded, nil)
	case token != s.Token:
		// another context switched accounts; its change notification settles the state
		return models.User{}, newError(KindNotAuthenticated, msgSessionChanged, nil)
	}

	var base models.User
	if err := json.Unmarshal(stored[common.StorageKeyUser], &base); err != nil || !base.Valid() {
		m.logger.Error(ctx, "stored user is unreadable", "error", err)
		m.purgeLocked(ctx, stored, msgStorage, "stored user unreadable")
		return models.User{}, newError(KindStorage, msgStorage, err)
	}

	merged, err := base.Merge(rec)
	if err == nil && !merged.Valid() {
		err = models.ErrMissingUser
	}
	if err != nil {
		m.logger.Warn(ctx, "profile response rejected", "error", err)
		return models.User{}, newError(KindMalformedResponse, opProfile.failure, err)
	}

	ub, err := json.Marshal(merged)
	if err == nil {
		err = m.store.SetMany(ctx, sessionValues(token, ub))
	}
	if err != nil {
		m.logger.Error(ctx, "failed to persist profile", "error", err)
		m.purgeLocked(ctx, stored, msgStorage, "persist failed")
		return models.User{}, newError(KindStorage, msgStorage, err)
	}

	m.apply(ctx, models.Session{
		Status: models.StatusAuthenticated,
		Token:  token,
		User:   &merged,
	}, "profile updated")
	return merged, nil
}

// adopt persists a fresh session.
func (m *SessionManager) adopt(ctx context.Context, op operation, token string, user models.User) (models.User, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	ub, err := json.Marshal(user)
	if err == nil {
		err = m.store.SetMany(ctx, sessionValues(token, ub))
	}
	if err != nil {
		m.logger.Error(ctx, "failed to persist session", "op", op.name, "error", err)
		m.purgeLocked(ctx, nil, msgStorage, op.name+" persist failed")
		return models.User{}, newError(KindStorage, msgStorage, err)
	}

	m.apply(ctx, models.Session{
		Status: models.StatusAuthenticated,
		Token:  token,
		User:   &user,
	}, op.name+" succeeded")
	return user, nil
}

// fail clears any stored session after a failed login or signup.
func (m *SessionManager) fail(ctx context.Context, op operation, err error) error {
	e := classify(op, err)
	m.logger.Warn(ctx, op.name+" failed", "kind", e.Kind, "error", err)

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	m.purgeLocked(ctx, nil, e.Message, op.name+" failed")
	return e
}

// purgeLocked clears both keys and settles to Anonymous. stored is the last
// read of the keys; an empty read skips the delete so that nothing is
// announced to other contexts. nil forces the delete.
func (m *SessionManager) purgeLocked(ctx context.Context, stored map[string][]byte, lastError, reason string) models.Session {
	if stored == nil || len(stored) > 0 {
		if err := m.store.DeleteMany(ctx, common.SessionKeys...); err != nil {
			m.logger.Error(ctx, "failed to clear stored session", "error", err)
		}
	}
	return m.apply(ctx, anonymous(lastError), reason)
}

func (m *SessionManager) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// opaque tokens are left to the validator
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(m.now())
}

func (m *SessionManager) apply(ctx context.Context, next models.Session, reason string) models.Session {
	m.mu.Lock()
	prev := m.state
	next.Busy = m.busy > 0
	m.state = next
	m.broadcastLocked()
	m.mu.Unlock()

	if prev.Status != next.Status {
		m.logger.Info(ctx, "session transition", "from", prev.Status, "to", next.Status, "reason", reason)
	}
	return next
}

func (m *SessionManager) update(ctx context.Context, reason string, fn func(s *models.Session)) {
	m.mu.Lock()
	prev := m.state.Status
	fn(&m.state)
	next := m.state.Status
	m.broadcastLocked()
	m.mu.Unlock()

	if prev != next {
		m.logger.Info(ctx, "session transition", "from", prev, "to", next, "reason", reason)
	}
}

func (m *SessionManager) begin() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busy++
	m.state.Busy = true
	m.broadcastLocked()
}

func (m *SessionManager) end() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busy--
	m.state.Busy = m.busy > 0
	m.broadcastLocked()
}

func (m *SessionManager) broadcastLocked() {
	for ch := range m.subs {
		select {
		case ch <- m.state:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- m.state:
		default:
		}
	}
}

func anonymous(lastError string) models.Session {
	return models.Session{Status: models.StatusAnonymous, LastError: lastError}
}

func sessionValues(token string, user []byte) map[string][]byte {
	return map[string][]byte{
		common.StorageKeyToken: []byte(token),
		common.StorageKeyUser:  user,
	}
}

func checkResult(res *models.AuthResult) error {
	if err := res.Validate(); err != nil {
		return fmt.Errorf("%w: %w", client.ErrMalformedResponse, err)
	}
	return nil
}

var errTimedOut = errors.New("call did not settle in time")

// callWithTimeout runs fn with a deadline and gives up waiting when the
// deadline passes, even if fn ignores its context. A late result is dropped.
func callWithTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(callCtx)
		done <- result{v: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			r.err = fmt.Errorf("%w: %w", errTimedOut, r.err)
		}
		return r.v, r.err
	case <-callCtx.Done():
		var zero T
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return zero, errTimedOut
		}
		return zero, callCtx.Err()
	}
}
