package guard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/nyayguru/internal/client/models"
	"github.com/stretchr/testify/require"
)

type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNavigator) Navigate(_ context.Context, path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *recordingNavigator) seen() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

func TestAdminRedirector_FiresOncePerTransition(t *testing.T) {
	r := NewAdminRedirector("/admin")
	validating := models.Session{Status: models.StatusValidating}

	require.False(t, r.Observe(models.Session{Status: models.StatusUninitialized}))
	require.False(t, r.Observe(anonymousSession))
	require.True(t, r.Observe(adminSession))
	require.False(t, r.Observe(adminSession), "still admin")
	require.False(t, r.Observe(validating), "revalidation")
	require.False(t, r.Observe(adminSession), "revalidated admin")
	require.False(t, r.Observe(userSession))
	require.True(t, r.Observe(adminSession), "new transition")
	require.False(t, r.Observe(anonymousSession))
}

func TestAdminRedirector_FiresOnNewAdminToken(t *testing.T) {
	r := NewAdminRedirector("/admin")
	relogin := adminSession
	relogin.Token = "t2"

	require.True(t, r.Observe(adminSession))
	// выход и повторный вход слились в одно обновление
	require.True(t, r.Observe(relogin))
	require.False(t, r.Observe(relogin))
}

func TestAdminRedirector_WatchCoalescedRelogin(t *testing.T) {
	r := NewAdminRedirector("/admin")
	nav := &recordingNavigator{}
	updates := make(chan models.Session, 1)
	relogin := adminSession
	relogin.Token = "t2"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		r.Watch(ctx, updates, nav)
		close(done)
	}()

	updates <- adminSession
	updates <- relogin
	close(updates)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return")
	}
	require.Equal(t, []string{"/admin", "/admin"}, nav.seen())
}

func TestAdminRedirector_Watch(t *testing.T) {
	r := NewAdminRedirector("/admin")
	nav := &recordingNavigator{}
	updates := make(chan models.Session)

	done := make(chan struct{})
	go func() {
		r.Watch(context.Background(), updates, nav)
		close(done)
	}()

	updates <- anonymousSession
	updates <- adminSession
	updates <- adminSession
	close(updates)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return")
	}
	require.Equal(t, []string{"/admin"}, nav.seen())
}

func TestAdminRedirector_WatchStopsOnCancel(t *testing.T) {
	r := NewAdminRedirector("/admin")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Watch(ctx, make(chan models.Session), &recordingNavigator{})
}
