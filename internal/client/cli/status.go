package cli

import (
	"context"
	"fmt"
	"time"
)

// Status prints the current session snapshot.
func (a *App) Status(ctx context.Context) error {
	s := a.session.Snapshot()

	fmt.Fprintf(a.out, "Session: %s\n", s.Status)
	if s.User != nil {
		fmt.Fprintf(a.out, "User: %s", s.User.Username)
		if s.User.Email != "" {
			fmt.Fprintf(a.out, " <%s>", s.User.Email)
		}
		fmt.Fprintln(a.out)
		fmt.Fprintf(a.out, "Admin: %t\n", s.IsAdmin())
	}
	if loc := a.currentLocation(); loc != "" {
		fmt.Fprintf(a.out, "Location: %s\n", loc)
	}
	if s.LastError != "" {
		fmt.Fprintf(a.out, "Last error: %s\n", s.LastError)
	}
	return nil
}

const defaultPingTimeout = 5 * time.Second

// Ping checks whether the auth service is reachable.
func (a *App) Ping(ctx context.Context) error {
	timeout := defaultPingTimeout
	if a.config != nil && a.config.RequestTimeout > 0 {
		timeout = a.config.RequestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := a.api.Ping(ctx)
	if err != nil {
		a.setMode(ctx, ModeOffline)
		fmt.Fprintln(a.out, "Auth service unavailable")
		return nil
	}
	a.setMode(ctx, ModeOnline)
	fmt.Fprintln(a.out, "Auth service online")
	return nil
}
