package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/nyayguru/internal/client/models"
	"github.com/dmitrijs2005/nyayguru/internal/filex"
)

// input seams, replaced in tests
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMetadata   = GetMetadata
	readFile      = filex.ReadFileLimited
)

const (
	providerGoogle = "google"
	maxAvatarSize  = 5 << 20
)

// Login prompts for email and password and opens a session.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	pw, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer clear(pw)

	return a.login(ctx, models.Credentials{Identifier: email, Secret: string(pw)})
}

// Google exchanges a Google ID token for a session.
func (a *App) Google(ctx context.Context, args []string) error {
	var token string
	if len(args) > 0 {
		token = args[0]
	} else {
		t, err := getSimpleText(a.reader, "Enter Google ID token", a.out)
		if err != nil {
			return err
		}
		token = t
	}

	return a.login(ctx, models.ExternalAssertion{Provider: providerGoogle, Token: token})
}

func (a *App) login(ctx context.Context, in models.LoginInput) error {
	u, err := a.session.Login(ctx, in)
	a.noteResult(ctx, err)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", u.Username)
	a.afterLogin(ctx)
	return nil
}

// Signup prompts for the registration form and opens a session for the new
// account.
func (a *App) Signup(ctx context.Context) error {
	var p models.Profile
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Enter first name", &p.FirstName},
		{"Enter last name", &p.LastName},
		{"Enter username (empty to derive from name)", &p.Username},
		{"Enter email", &p.Email},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	pw, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer clear(pw)
	p.Password = string(pw)

	avatarPath, err := getSimpleText(a.reader, "Avatar file (empty to skip)", a.out)
	if err != nil {
		return err
	}
	if avatarPath = strings.TrimSpace(avatarPath); avatarPath != "" {
		data, err := readFile(avatarPath, maxAvatarSize)
		if err != nil {
			return fmt.Errorf("error reading avatar: %w", err)
		}
		p.Avatar = &models.Avatar{Filename: filepath.Base(avatarPath), Data: data}
	}

	lines, err := getMetadata(a.reader, a.out)
	if err != nil {
		return err
	}
	if len(lines) > 0 {
		extra, err := models.RecordFromArgs(lines)
		if err != nil {
			return err
		}
		p.Extra = extra
	}

	u, err := a.session.Signup(ctx, p)
	a.noteResult(ctx, err)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Account created, logged in as %s\n", u.Username)
	a.afterLogin(ctx)
	return nil
}

// afterLogin returns the user to the page they were sent away from. Admins
// are moved by the redirector instead.
func (a *App) afterLogin(ctx context.Context) {
	s := a.session.Snapshot()
	if s.IsAdmin() {
		return
	}

	a.mu.Lock()
	from := a.from
	a.from = ""
	a.mu.Unlock()

	a.Navigate(ctx, a.guard.ReturnTarget(s, from))
}

// Logout ends the session. The local session is cleared even when the auth
// service cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	a.Navigate(ctx, a.guard.Paths().Login)
	return nil
}
