package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/nyayguru/internal/client/models"
)

// Profile updates profile fields given as name=value pairs. Without
// arguments the fields are read one per line.
func (a *App) Profile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		lines, err := getMetadata(a.reader, a.out)
		if err != nil {
			return err
		}
		args = lines
	}
	if len(args) == 0 {
		return nil
	}

	patch, err := models.RecordFromArgs(args)
	if err != nil {
		return err
	}

	u, err := a.session.UpdateProfile(ctx, patch)
	a.noteResult(ctx, err)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Profile updated")
	return printUser(a, u)
}

func printUser(a *App, u models.User) error {
	b, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, string(b))
	return nil
}
