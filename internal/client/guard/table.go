package guard

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// Route binds a path pattern in httprouter syntax to an access class.
type Route struct {
	Pattern string
	Class   RouteClass
}

// DefaultRoutes is the application's router table. Anything else is Public.
var DefaultRoutes = []Route{
	{Pattern: "/login", Class: AuthOnly},
	{Pattern: "/signup", Class: AuthOnly},
	{Pattern: "/forgot-password", Class: AuthOnly},

	{Pattern: "/admin", Class: ProtectedAdmin},

	{Pattern: "/", Class: ProtectedAny},
	{Pattern: "/chat", Class: ProtectedAny},
	{Pattern: "/chat/lawyer/:lawyerId", Class: ProtectedAny},
	{Pattern: "/category/:category", Class: ProtectedAny},
	{Pattern: "/profile", Class: ProtectedAny},
	{Pattern: "/dictionary", Class: ProtectedAny},
	{Pattern: "/documents", Class: ProtectedAny},
	{Pattern: "/lawyers", Class: ProtectedAny},
	{Pattern: "/lawyers/:id", Class: ProtectedAny},
	{Pattern: "/lawyer-registration", Class: ProtectedAny},
}

// Table resolves paths to route classes.
type Table struct {
	router *httprouter.Router
}

// classRecorder carries the matched class out of a route handle.
type classRecorder struct {
	http.ResponseWriter
	class RouteClass
}

// NewTable builds a table; conflicting patterns are reported as an error.
func NewTable(routes []Route) (t *Table, err error) {
	r := httprouter.New()

	defer func() {
		if rec := recover(); rec != nil {
			t, err = nil, fmt.Errorf("invalid route table: %v", rec)
		}
	}()

	for _, rt := range routes {
		class := rt.Class
		r.GET(rt.Pattern, func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			w.(*classRecorder).class = class
		})
	}
	return &Table{router: r}, nil
}

// MustTable is NewTable for static tables.
func MustTable(routes []Route) *Table {
	t, err := NewTable(routes)
	if err != nil {
		panic(err)
	}
	return t
}

// Class returns the class of path. Query strings and fragments are ignored,
// a trailing slash is tolerated, unknown paths are Public.
func (t *Table) Class(path string) RouteClass {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	h, ps, tsr := t.router.Lookup(http.MethodGet, path)
	if h == nil && tsr {
		if strings.HasSuffix(path, "/") {
			path = strings.TrimSuffix(path, "/")
		} else {
			path += "/"
		}
		h, ps, _ = t.router.Lookup(http.MethodGet, path)
	}
	if h == nil {
		return Public
	}

	rec := &classRecorder{}
	h(rec, nil, ps)
	return rec.class
}
