package cli

import (
	"context"
	"fmt"
)

// Reset wipes the local session store, including keys the session does not
// own, and settles the session again. Other running clients see the removal
// through the store watcher.
func (a *App) Reset(ctx context.Context) error {
	all, err := a.store.List(ctx)
	if err != nil {
		return err
	}
	if err := a.store.Clear(ctx); err != nil {
		return err
	}
	a.logger.Info(ctx, "local store cleared", "keys", len(all))

	s := a.session.Initialize(ctx)
	fmt.Fprintf(a.out, "Cleared %d saved key(s), session: %s\n", len(all), s.Status)
	return nil
}
