package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/nyayguru/internal/client/guard"
)

var ErrPathRequired = errors.New("path is required")

// Open runs the route guard for a path and follows its decision.
func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrPathRequired
	}
	target := args[0]

	d := a.guard.Check(a.session.Snapshot(), target)
	switch d.Outcome {
	case guard.Pending:
		fmt.Fprintln(a.out, "Loading... the session is being verified")
	case guard.Redirect:
		if d.PreserveTarget {
			a.mu.Lock()
			a.from = d.From
			a.mu.Unlock()
		}
		fmt.Fprintf(a.out, "Redirected from %s\n", target)
		a.Navigate(ctx, d.Path)
	default:
		a.Navigate(ctx, target)
	}
	return nil
}
