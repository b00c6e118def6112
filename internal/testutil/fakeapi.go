package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"rooms-client/internal/domain"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	problemContentType = "application/problem+json"
	fakeSigningKey     = "fake-api-signing-key"
	DefaultTokenTTL    = time.Hour
)

type fakeAccount struct {
	user     domain.User
	password string
}

// FakeAPI is an in-memory rooms API served over httptest. It issues HS256
// JWTs so clients can read the expiry.
type FakeAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	accounts map[string]*fakeAccount // by user id
	tokens   map[string]string       // token -> user id
	rooms    []*domain.Room
	ttl      time.Duration
	failures map[string]fakeFailure // "METHOD /pattern" -> failure
	hits     map[string]int
}

type fakeFailure struct {
	status int
	body   string
}

// NewFakeAPI starts a FakeAPI and closes it when the test ends
func NewFakeAPI(t testing.TB) *FakeAPI {
	t.Helper()
	f := &FakeAPI{
		accounts: make(map[string]*fakeAccount),
		tokens:   make(map[string]string),
		ttl:      DefaultTokenTTL,
		failures: make(map[string]fakeFailure),
		hits:     make(map[string]int),
	}
	f.Server = httptest.NewServer(f.routes())
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the base URL of the server
func (f *FakeAPI) URL() string {
	return f.Server.URL
}

func (f *FakeAPI) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Post("/auth/login", f.login)
	r.Post("/auth/register", f.register)
	r.Get("/api/rooms", f.listRooms)
	r.Get("/api/rooms/{slug}", f.getRoom)

	r.Group(func(r chi.Router) {
		r.Use(f.bearer)
		r.Get("/auth/me", f.me)
		r.Post("/api/rooms", f.createRoom)
		r.Put("/api/rooms/{slug}", f.updateRoom)
		r.Delete("/api/rooms/{id}", f.deleteRoom)
	})
	return r
}

// SetTokenTTL changes the lifetime of tokens issued from now on
func (f *FakeAPI) SetTokenTTL(ttl time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ttl = ttl
}

// AddUser registers an account and returns the stored user
func (f *FakeAPI) AddUser(user *domain.User, password string) *domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[user.ID] = &fakeAccount{user: *user, password: password}
	return user
}

// IssueToken returns a valid token for userID
func (f *FakeAPI) IssueToken(userID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok, _ := f.issueLocked(userID)
	return tok
}

// RevokeTokens invalidates every issued token
func (f *FakeAPI) RevokeTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = make(map[string]string)
}

// AddRooms appends rooms in creation order
func (f *FakeAPI) AddRooms(rooms ...*domain.Room) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms = append(f.rooms, rooms...)
}

// Rooms returns a copy of the stored rooms
func (f *FakeAPI) Rooms() []domain.Room {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Room, 0, len(f.rooms))
	for _, r := range f.rooms {
		out = append(out, *r)
	}
	return out
}

// Fail makes every request matching method and pattern (e.g. "GET",
// "/api/rooms/{slug}") answer with status and raw body
func (f *FakeAPI) Fail(method, pattern string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+pattern] = fakeFailure{status: status, body: body}
}

// Hits returns how many requests reached the handler for method and
// pattern. Requests rejected by the bearer check are not counted.
func (f *FakeAPI) Hits(method, pattern string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[method+" "+pattern]
}

// intercept records the hit and serves a configured failure, if any
func (f *FakeAPI) intercept(w http.ResponseWriter, r *http.Request) bool {
	key := r.Method + " " + chi.RouteContext(r.Context()).RoutePattern()
	f.mu.Lock()
	f.hits[key]++
	fail, ok := f.failures[key]
	f.mu.Unlock()
	if !ok {
		return false
	}
	if strings.HasPrefix(strings.TrimSpace(fail.body), "{") {
		w.Header().Set("Content-Type", problemContentType)
	} else {
		w.Header().Set("Content-Type", "text/plain")
	}
	w.WriteHeader(fail.status)
	_, _ = w.Write([]byte(fail.body))
	return true
}

func (f *FakeAPI) issueLocked(userID string) (string, string) {
	exp := time.Now().Add(f.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(fakeSigningKey))
	if err != nil {
		panic(fmt.Sprintf("fake api: sign token: %v", err))
	}
	f.tokens[tok] = userID
	return tok, exp.UTC().Format(time.RFC3339)
}

type userIDKey struct{}

func contextWithUserID(r *http.Request, userID string) context.Context {
	return context.WithValue(r.Context(), userIDKey{}, userID)
}

func userIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey{}).(string)
	return id
}

func (f *FakeAPI) bearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		f.mu.Lock()
		userID, known := f.tokens[tok]
		f.mu.Unlock()
		if !ok || !known {
			writeProblem(w, http.StatusUnauthorized, "Unauthorized", "")
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithUserID(r, userID)))
	})
}

func (f *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	if f.intercept(w, r) {
		return
	}
	var creds domain.LoginCredentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, acc := range f.accounts {
		if (acc.user.Username == creds.UsernameOrEmail || acc.user.Email == creds.UsernameOrEmail) &&
			acc.password == creds.Password {
			tok, exp := f.issueLocked(acc.user.ID)
			user := acc.user
			writeJSON(w, http.StatusOK, domain.AuthResponse{AccessToken: tok, ExpiresAt: exp, User: &user})
			return
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]any{
		"message": "invalid credentials",
		"status":  http.StatusUnauthorized,
	})
}

func (f *FakeAPI) register(w http.ResponseWriter, r *http.Request) {
	if f.intercept(w, r) {
		return
	}
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, acc := range f.accounts {
		if acc.user.Username == req.Username || acc.user.Email == req.Email {
			writeProblem(w, http.StatusConflict, "Conflict", "username or email already registered")
			return
		}
	}
	user := domain.User{ID: uuid.NewString(), Username: req.Username, Email: req.Email}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	f.accounts[user.ID] = &fakeAccount{user: user, password: req.Password}
	tok, exp := f.issueLocked(user.ID)
	writeJSON(w, http.StatusOK, domain.AuthResponse{AccessToken: tok, ExpiresAt: exp, User: &user})
}

func (f *FakeAPI) me(w http.ResponseWriter, r *http.Request) {
	if f.intercept(w, r) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[userIDFrom(r)]
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	writeJSON(w, http.StatusOK, acc.user)
}

func (f *FakeAPI) listRooms(w http.ResponseWriter, r *http.Request) {
	if f.intercept(w, r) {
		return
	}
	var q domain.RoomQuery
	values := r.URL.Query()
	if v := values.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeProblem(w, http.StatusBadRequest, "Bad Request", "page must be a positive integer")
			return
		}
		q.Page = n
	}
	if v := values.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeProblem(w, http.StatusBadRequest, "Bad Request", "pageSize must be a positive integer")
			return
		}
		q.PageSize = n
	}
	if v := values.Get("isOpen"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Bad Request", "isOpen must be a boolean")
			return
		}
		q.IsOpen = &b
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, PageOf(f.rooms, q))
}

func (f *FakeAPI) getRoom(w http.ResponseWriter, r *http.Request) {
	if f.intercept(w, r) {
		return
	}
	slug := chi.URLParam(r, "slug")
	f.mu.Lock()
	defer f.mu.Unlock()
	room := f.findLocked(func(rm *domain.Room) bool { return rm.Slug == slug })
	if room == nil {
		writeProblem(w, http.StatusNotFound, "Not Found", fmt.Sprintf("room %q was not found", slug))
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (f *FakeAPI) createRoom(w http.ResponseWriter, r *http.Request) {
	if f.intercept(w, r) {
		return
	}
	var req domain.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findLocked(func(rm *domain.Room) bool { return rm.Slug == req.Slug }) != nil {
		writeProblem(w, http.StatusConflict, "Conflict", fmt.Sprintf("slug %q is already taken", req.Slug))
		return
	}
	now := time.Now().UTC().Truncate(time.Second)
	room := &domain.Room{
		RoomSummary: domain.RoomSummary{
			ID:        uuid.NewString(),
			Slug:      req.Slug,
			Name:      req.Name,
			Color:     req.Color,
			Icon:      req.Icon,
			UserLimit: req.UserLimit,
			IsOpen:    req.IsOpen,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.rooms = append(f.rooms, room)
	writeJSON(w, http.StatusCreated, room)
}

func (f *FakeAPI) updateRoom(w http.ResponseWriter, r *http.Request) {
	if f.intercept(w, r) {
		return
	}
	slug := chi.URLParam(r, "slug")
	var req domain.UpdateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	room := f.findLocked(func(rm *domain.Room) bool { return rm.Slug == slug })
	if room == nil {
		writeProblem(w, http.StatusNotFound, "Not Found", fmt.Sprintf("room %q was not found", slug))
		return
	}
	ApplyUpdate(room, req)
	writeJSON(w, http.StatusOK, room)
}

func (f *FakeAPI) deleteRoom(w http.ResponseWriter, r *http.Request) {
	if f.intercept(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, rm := range f.rooms {
		if rm.ID == id {
			f.rooms = append(f.rooms[:i], f.rooms[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeProblem(w, http.StatusNotFound, "Not Found", fmt.Sprintf("room %q was not found", id))
}

func (f *FakeAPI) findLocked(match func(*domain.Room) bool) *domain.Room {
	for _, r := range f.rooms {
		if match(r) {
			return r
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", problemContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   "about:blank",
		Title:  title,
		Detail: detail,
		Status: status,
	})
}
