package navigation

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_Resolve(t *testing.T) {
	r := NewRouter(DefaultRoutes())

	tests := []struct {
		path     string
		wantName string
		params   map[string]string
		found    bool
	}{
		{"/", "home", map[string]string{}, true},
		{"/auth", "auth", map[string]string{}, true},
		{"/register", "register", map[string]string{}, true},
		{"/rooms", "rooms", map[string]string{}, true},
		{"/rooms/create", "room-create", map[string]string{}, true},
		{"/rooms/lobby", "room-detail", map[string]string{"slug": "lobby"}, true},
		{"/rooms/lobby/edit", "room-edit", map[string]string{"slug": "lobby"}, true},
		{"/nowhere", "", nil, false},
		{"/rooms/lobby/extra/deep", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m, ok := r.Resolve(tt.path)
			require.Equal(t, tt.found, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantName, m.Route.Name)
			assert.Equal(t, tt.params, m.Params)
		})
	}
}

func newNav(authed *atomic.Bool) *Navigator {
	return NewNavigator(NewRouter(DefaultRoutes()), authed.Load)
}

func TestNavigator_StartsAtHome(t *testing.T) {
	n := NewNavigator(NewRouter(DefaultRoutes()), nil)
	assert.Equal(t, "/", n.Current().Path)
	assert.Equal(t, "home", n.Current().Route.Name)
	assert.False(t, n.CanGoBack())
}

func TestNavigator_UnknownPathRedirectsHome(t *testing.T) {
	var authed atomic.Bool
	n := newNav(&authed)

	require.NoError(t, n.Push("/does/not/exist"))
	loc := n.Current()
	assert.Equal(t, "/", loc.Path)
	assert.Equal(t, "/does/not/exist", loc.Requested)
}

func TestNavigator_GuestOnlyRoutes(t *testing.T) {
	var authed atomic.Bool
	n := newNav(&authed)

	require.NoError(t, n.Push("/auth"))
	assert.Equal(t, "/auth", n.Current().Path)
	assert.Equal(t, "Authentication", n.Current().Route.Title)

	authed.Store(true)
	require.NoError(t, n.Push("/register"))
	assert.Equal(t, "/", n.Current().Path)
}

func TestNavigator_AuthRoutes(t *testing.T) {
	var authed atomic.Bool
	n := newNav(&authed)

	require.NoError(t, n.Push("/rooms/lobby/edit"))
	loc := n.Current()
	assert.Equal(t, "/auth", loc.Path)
	assert.Equal(t, "/rooms/lobby/edit", loc.Query.Get(RedirectParam))
	assert.Equal(t, "/auth?redirect=%2Frooms%2Flobby%2Fedit", loc.URL())

	authed.Store(true)
	require.NoError(t, n.Push("/rooms/lobby/edit"))
	loc = n.Current()
	assert.Equal(t, "/rooms/lobby/edit", loc.Path)
	assert.Equal(t, "lobby", loc.Params["slug"])
	assert.Empty(t, loc.Requested)
}

func TestNavigator_CleansPathsAndKeepsQuery(t *testing.T) {
	var authed atomic.Bool
	n := newNav(&authed)

	require.NoError(t, n.Push("/rooms/?page=2"))
	loc := n.Current()
	assert.Equal(t, "/rooms", loc.Path)
	assert.Equal(t, "2", loc.Query.Get("page"))

	assert.ErrorIs(t, n.Push("https://evil.example/rooms"), ErrInvalidPath)
}

func TestNavigator_History(t *testing.T) {
	var authed atomic.Bool
	authed.Store(true)
	n := newNav(&authed)

	require.NoError(t, n.Push("/rooms"))
	require.NoError(t, n.Push("/rooms/lobby"))
	assert.True(t, n.CanGoBack())

	require.True(t, n.Back())
	assert.Equal(t, "/rooms", n.Current().Path)
	assert.True(t, n.CanGoForward())

	require.True(t, n.Forward())
	assert.Equal(t, "/rooms/lobby", n.Current().Path)
	assert.False(t, n.Forward())

	require.True(t, n.Back())
	require.NoError(t, n.Push("/rooms/create"))
	assert.False(t, n.CanGoForward())

	require.NoError(t, n.Replace("/rooms/other"))
	assert.Equal(t, "/rooms/other", n.Current().Path)
	require.True(t, n.Back())
	require.True(t, n.Back())
	assert.Equal(t, "/", n.Current().Path)
	assert.False(t, n.Back())
}

func TestNavigator_BackReappliesGuards(t *testing.T) {
	var authed atomic.Bool
	authed.Store(true)
	n := newNav(&authed)

	require.NoError(t, n.Push("/rooms/create"))
	require.NoError(t, n.Push("/rooms"))

	authed.Store(false)
	require.True(t, n.Back())
	assert.Equal(t, "/auth", n.Current().Path)
}

func TestNavigator_Subscribe(t *testing.T) {
	var authed atomic.Bool
	n := newNav(&authed)

	var got []string
	unsubscribe := n.Subscribe(func(l Location) { got = append(got, l.Path) })

	require.NoError(t, n.Push("/rooms"))
	require.NoError(t, n.Push("/rooms/create"))
	unsubscribe()
	require.NoError(t, n.Push("/"))

	assert.Equal(t, []string{"/rooms", "/auth"}, got)
}
