// Package navigation matches UI paths against the route table, applies the
// auth guards and keeps the navigation history.
package navigation

import (
	"errors"
	"net/http"
	"net/url"
	"path"

	"github.com/go-chi/chi/v5"
)

const (
	HomePath = "/"
	AuthPath = "/auth"

	// RedirectParam carries the original path when a guard sends the user to
	// the login page
	RedirectParam = "redirect"
)

var ErrInvalidPath = errors.New("invalid navigation path")

// Route is one entry of the route table
type Route struct {
	Name    string
	Pattern string
	Title   string
	// GuestOnly routes are closed to authenticated users
	GuestOnly bool
	// RequiresAuth routes are closed to anonymous users
	RequiresAuth bool
}

// DefaultRoutes is the application route table
func DefaultRoutes() []Route {
	return []Route{
		{Name: "home", Pattern: "/", Title: "Home"},
		{Name: "auth", Pattern: "/auth", Title: "Authentication", GuestOnly: true},
		{Name: "register", Pattern: "/register", Title: "Authentication", GuestOnly: true},
		{Name: "rooms", Pattern: "/rooms", Title: "Rooms"},
		{Name: "room-create", Pattern: "/rooms/create", Title: "Create room", RequiresAuth: true},
		{Name: "room-detail", Pattern: "/rooms/{slug}", Title: "Room"},
		{Name: "room-edit", Pattern: "/rooms/{slug}/edit", Title: "Edit room", RequiresAuth: true},
	}
}

// Match is the result of resolving a path
type Match struct {
	Route  Route
	Params map[string]string
}

// Router matches paths with a chi routing tree. Handlers are never served;
// the tree is only used for lookup.
type Router struct {
	mux       *chi.Mux
	byPattern map[string]Route
}

// NewRouter builds a Router for routes
func NewRouter(routes []Route) *Router {
	r := &Router{
		mux:       chi.NewRouter(),
		byPattern: make(map[string]Route, len(routes)),
	}
	for _, rt := range routes {
		r.mux.Get(rt.Pattern, http.NotFound)
		r.byPattern[rt.Pattern] = rt
	}
	return r
}

// Resolve looks up p. ok is false when no route matches.
func (r *Router) Resolve(p string) (Match, bool) {
	rctx := chi.NewRouteContext()
	if !r.mux.Match(rctx, http.MethodGet, p) {
		return Match{}, false
	}
	rt, ok := r.byPattern[rctx.RoutePattern()]
	if !ok {
		return Match{}, false
	}

	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		params[k] = rctx.URLParams.Values[i]
	}
	return Match{Route: rt, Params: params}, true
}

// splitPath parses raw into a cleaned path and its query
func splitPath(raw string) (string, url.Values, error) {
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "", nil, ErrInvalidPath
	}
	p := u.Path
	if p == "" || p[0] != '/' {
		p = "/" + p
	}
	return path.Clean(p), u.Query(), nil
}
