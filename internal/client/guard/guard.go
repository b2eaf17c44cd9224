package guard

import (
	"fmt"

	"github.com/dmitrijs2005/nyayguru/internal/client/models"
)

// RouteClass is the access class of a view.
type RouteClass int

const (
	Public RouteClass = iota
	ProtectedAny
	ProtectedAdmin
	// AuthOnly views (login, signup) make no sense for a signed-in user.
	AuthOnly
)

func (c RouteClass) String() string {
	switch c {
	case Public:
		return "public"
	case ProtectedAny:
		return "protected"
	case ProtectedAdmin:
		return "admin"
	case AuthOnly:
		return "auth-only"
	}
	return fmt.Sprintf("RouteClass(%d)", int(c))
}

type Outcome int

const (
	Allow Outcome = iota
	Redirect
	// Pending means the session is not settled yet: show a loading state and
	// decide again later.
	Pending
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Pending:
		return "pending"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Decision is the guard's answer. Path and PreserveTarget are only set for
// Redirect; From is the original target when it should be returned to after
// login.
type Decision struct {
	Outcome        Outcome
	Path           string
	PreserveTarget bool
	From           string
}

// Paths names the routes the guard redirects to.
type Paths struct {
	Login   string
	Landing string
	Admin   string
}

var DefaultPaths = Paths{
	Login:   "/login",
	Landing: "/",
	Admin:   "/admin",
}

// Decide applies DefaultPaths.
func Decide(s models.Session, class RouteClass) Decision {
	return DefaultPaths.Decide(s, class)
}

// Decide maps a session and a target class to a navigation decision.
func (p Paths) Decide(s models.Session, class RouteClass) Decision {
	if class == Public {
		return Decision{Outcome: Allow}
	}
	if !s.Status.Settled() {
		return Decision{Outcome: Pending}
	}

	authenticated := s.Authenticated()
	switch class {
	case AuthOnly:
		if authenticated {
			return Decision{Outcome: Redirect, Path: p.Landing}
		}
	case ProtectedAny:
		if !authenticated {
			return Decision{Outcome: Redirect, Path: p.Login, PreserveTarget: true}
		}
	case ProtectedAdmin:
		// no separate forbidden page: non-admins go to login as well
		if !authenticated || !s.User.IsAdmin {
			return Decision{Outcome: Redirect, Path: p.Login, PreserveTarget: true}
		}
	}
	return Decision{Outcome: Allow}
}

// Guard resolves concrete paths through a Table before deciding.
type Guard struct {
	table *Table
	paths Paths
}

func New(table *Table, paths Paths) *Guard {
	return &Guard{table: table, paths: paths}
}

func (g *Guard) Paths() Paths {
	return g.paths
}

// Check decides a navigation to target.
func (g *Guard) Check(s models.Session, target string) Decision {
	d := g.paths.Decide(s, g.table.Class(target))
	if d.PreserveTarget {
		d.From = target
	}
	return d
}

// ReturnTarget is where to go after a successful login: admins always land on
// the admin dashboard, everyone else on the preserved target when there is a
// usable one.
func (g *Guard) ReturnTarget(s models.Session, from string) string {
	if s.IsAdmin() {
		return g.paths.Admin
	}
	if from == "" || g.table.Class(from) == AuthOnly {
		return g.paths.Landing
	}
	return from
}
