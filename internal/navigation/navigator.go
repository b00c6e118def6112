package navigation

import (
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"rooms-client/internal/observability"
)

// Location is where the navigator ended up after guards and redirects
type Location struct {
	Path   string
	Query  url.Values
	Route  Route
	Params map[string]string
	// Requested is the path that was asked for when a guard or the
	// catch-all redirected
	Requested string
}

// URL renders the location with its query
func (l Location) URL() string {
	if len(l.Query) == 0 {
		return l.Path
	}
	return l.Path + "?" + l.Query.Encode()
}

// Navigator applies the guards on every move and keeps a back/forward
// history. It is safe for concurrent use.
type Navigator struct {
	router          *Router
	isAuthenticated func() bool

	mu      sync.Mutex
	history []Location
	cursor  int
	nextID  int
	fns     map[int]func(Location)
}

// NewNavigator creates a Navigator positioned on the home page.
// isAuthenticated is consulted on every move; nil means never.
func NewNavigator(router *Router, isAuthenticated func() bool) *Navigator {
	if isAuthenticated == nil {
		isAuthenticated = func() bool { return false }
	}
	n := &Navigator{
		router:          router,
		isAuthenticated: isAuthenticated,
		fns:             make(map[int]func(Location)),
	}
	home, _ := n.resolve(HomePath)
	n.history = []Location{home}
	return n
}

// resolve applies the catch-all redirect and the guards
func (n *Navigator) resolve(raw string) (Location, error) {
	p, query, err := splitPath(raw)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %q", ErrInvalidPath, raw)
	}

	m, ok := n.router.Resolve(p)
	if !ok {
		return n.redirect(raw, HomePath, nil), nil
	}

	authed := n.isAuthenticated()
	switch {
	case m.Route.GuestOnly && authed:
		return n.redirect(raw, HomePath, nil), nil
	case m.Route.RequiresAuth && !authed:
		return n.redirect(raw, AuthPath, url.Values{RedirectParam: {p}}), nil
	}

	return Location{Path: p, Query: query, Route: m.Route, Params: m.Params}, nil
}

func (n *Navigator) redirect(requested, to string, query url.Values) Location {
	m, _ := n.router.Resolve(to)
	return Location{Path: to, Query: query, Route: m.Route, Params: m.Params, Requested: requested}
}

// Push navigates to p, dropping any forward history
func (n *Navigator) Push(p string) error {
	loc, err := n.resolve(p)
	if err != nil {
		return err
	}
	n.apply(func() {
		n.history = append(n.history[:n.cursor+1], loc)
		n.cursor = len(n.history) - 1
	}, loc)
	return nil
}

// Replace navigates to p in place of the current entry
func (n *Navigator) Replace(p string) error {
	loc, err := n.resolve(p)
	if err != nil {
		return err
	}
	n.apply(func() { n.history[n.cursor] = loc }, loc)
	return nil
}

// Back moves one entry back. It reports false at the start of the history.
func (n *Navigator) Back() bool {
	return n.step(-1)
}

// Forward moves one entry forward. It reports false at the end.
func (n *Navigator) Forward() bool {
	return n.step(1)
}

func (n *Navigator) step(delta int) bool {
	n.mu.Lock()
	next := n.cursor + delta
	if next < 0 || next >= len(n.history) {
		n.mu.Unlock()
		return false
	}
	target := n.history[next].URL()
	n.mu.Unlock()

	// guards are re-applied, the session may have changed since
	loc, err := n.resolve(target)
	if err != nil {
		return false
	}
	n.apply(func() {
		n.cursor = next
		n.history[next] = loc
	}, loc)
	return true
}

func (n *Navigator) apply(fn func(), loc Location) {
	n.mu.Lock()
	fn()
	fns := make([]func(Location), 0, len(n.fns))
	for _, f := range n.fns {
		fns = append(fns, f)
	}
	n.mu.Unlock()

	if loc.Requested != "" {
		observability.Debug("navigation redirected",
			slog.String("requested", loc.Requested),
			slog.String("path", loc.Path))
	}
	for _, f := range fns {
		f(loc)
	}
}

// Current returns the current location
func (n *Navigator) Current() Location {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.history[n.cursor]
}

func (n *Navigator) CanGoBack() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cursor > 0
}

func (n *Navigator) CanGoForward() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cursor < len(n.history)-1
}

// Subscribe registers fn to be called after every move
func (n *Navigator) Subscribe(fn func(Location)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.fns[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.fns, id)
	}
}
