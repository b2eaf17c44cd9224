package guard

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/nyayguru/internal/client/models"
)

// Navigator performs a navigation.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// AdminRedirector sends the user to the admin dashboard whenever the session
// becomes an authenticated admin, once per such transition.
//
// Session subscriptions keep only the latest state, so a logout followed by
// a new admin login may arrive as two admin states in a row. Every login
// issues a new token, so a changed admin token counts as a transition too.
type AdminRedirector struct {
	path string

	mu    sync.Mutex
	was   bool
	token string
}

func NewAdminRedirector(adminPath string) *AdminRedirector {
	return &AdminRedirector{path: adminPath}
}

// Observe feeds a session state and reports whether the redirect fires now.
// Unsettled states are skipped, so a revalidation of an admin session does
// not fire again.
func (r *AdminRedirector) Observe(s models.Session) bool {
	if !s.Status.Settled() {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := s.IsAdmin()
	fire := now && (!r.was || s.Token != r.token)
	r.was = now
	r.token = ""
	if now {
		r.token = s.Token
	}
	return fire
}

// Watch observes updates until the channel closes or ctx is done.
func (r *AdminRedirector) Watch(ctx context.Context, updates <-chan models.Session, nav Navigator) {
	for {
		select {
		case s, ok := <-updates:
			if !ok {
				return
			}
			if r.Observe(s) {
				nav.Navigate(ctx, r.path)
			}
		case <-ctx.Done():
			return
		}
	}
}
