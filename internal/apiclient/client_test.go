package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rooms-client/internal/domain"
	"rooms-client/internal/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens string

func (s staticTokens) Token(context.Context) (string, error) {
	return string(s), nil
}

type failingTokens struct{ err error }

func (f failingTokens) Token(context.Context) (string, error) {
	return "", f.err
}

func newTestClient(t *testing.T, baseURL string, tokens TokenSource) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: baseURL, Tokens: tokens, Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func TestNew_InvalidBaseURL(t *testing.T) {
	tests := []string{"", "localhost:5215", "://bad", "/relative"}
	for _, tt := range tests {
		t.Run(tt, func(t *testing.T) {
			_, err := New(Config{BaseURL: tt})
			assert.ErrorIs(t, err, ErrInvalidBaseURL)
		})
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[],"page":1,"pageSize":10,"totalCount":0,"totalPages":0}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL+"/", nil)
	_, err := NewRoomsClient(c).ListRooms(context.Background(), domain.RoomQuery{})
	require.NoError(t, err)
	assert.Equal(t, "/api/rooms", gotPath)
}

func TestClient_SetsHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","slug":"lobby","name":"Lobby","userLimit":10,"isOpen":true}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, staticTokens("tok-123"))
	_, err := NewRoomsClient(c).CreateRoom(context.Background(), domain.CreateRoomRequest{
		Name: "Lobby", Slug: "lobby", Color: "#1976d2", Icon: "mdi-home", UserLimit: 10, IsOpen: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Len(t, got.Get(RequestIDHeader), 36)
}

func TestClient_OptionalAuthOmitsEmptyToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[],"page":1,"pageSize":10,"totalCount":0,"totalPages":0}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, staticTokens(""))
	_, err := NewRoomsClient(c).ListRooms(context.Background(), domain.RoomQuery{})
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestClient_TokenSourceError(t *testing.T) {
	boom := errors.New("store unavailable")
	c := newTestClient(t, "http://127.0.0.1:1", failingTokens{err: boom})

	_, err := NewRoomsClient(c).ListRooms(context.Background(), domain.RoomQuery{})
	assert.ErrorIs(t, err, boom)
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url, nil)
	_, err := NewRoomsClient(c).ListRooms(context.Background(), domain.RoomQuery{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Equal(t, "network error: check your internet connection", domain.Message(err))
}

func TestClient_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := newTestClient(t, srv.URL, nil)
	_, err := NewRoomsClient(c).ListRooms(ctx, domain.RoomQuery{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, domain.ErrNetwork)
}

func TestClient_ErrorEnvelope(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantType    string
	}{
		{
			name:        "detail wins",
			status:      http.StatusBadRequest,
			body:        `{"type":"validation","title":"Bad Request","detail":"slug is taken","status":400}`,
			wantMessage: "slug is taken",
			wantType:    "validation",
		},
		{
			name:        "title when no detail",
			status:      http.StatusForbidden,
			body:        `{"title":"Forbidden","status":403}`,
			wantMessage: "Forbidden",
		},
		{
			name:        "message field",
			status:      http.StatusUnauthorized,
			body:        `{"message":"invalid credentials"}`,
			wantMessage: "invalid credentials",
		},
		{
			name:        "unparsable body",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantMessage: "HTTP error 502",
			wantType:    "UnknownError",
		},
		{
			name:        "empty body",
			status:      http.StatusInternalServerError,
			body:        ``,
			wantMessage: "HTTP error 500",
			wantType:    "UnknownError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL, nil)
			_, err := NewRoomsClient(c).GetRoom(context.Background(), "lobby")
			require.Error(t, err)

			var apiErr *domain.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMessage, domain.Message(err))
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, apiErr.Type)
			}
		})
	}
}

func TestClient_InvalidBodyIsRejectedLocally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, staticTokens("tok"))
	_, err := NewAuthClient(c).Login(context.Background(), domain.LoginCredentials{UsernameOrEmail: "bob"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestClient_RecordsMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	before := testutil.ToFloat64(observability.APIRequestsTotal.WithLabelValues("get_room", "418"))

	c := newTestClient(t, srv.URL, nil)
	_, _ = NewRoomsClient(c).GetRoom(context.Background(), "lobby")

	after := testutil.ToFloat64(observability.APIRequestsTotal.WithLabelValues("get_room", "418"))
	assert.Equal(t, before+1, after)
}

func TestClient_RateLimitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[],"page":1,"pageSize":10,"totalCount":0,"totalPages":0}`))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, RateLimit: 0.001, RateBurst: 1})
	require.NoError(t, err)
	rooms := NewRoomsClient(c)

	_, err = rooms.ListRooms(context.Background(), domain.RoomQuery{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = rooms.ListRooms(ctx, domain.RoomQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}
