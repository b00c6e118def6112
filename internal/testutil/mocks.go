// Package testutil provides shared test utilities, mocks, fixtures and an
// in-memory fake of the rooms API for testing rooms-client.
package testutil

import (
	"context"
	"errors"
	"math"
	"net/http"
	"sync"
	"time"

	"rooms-client/internal/domain"

	"github.com/google/uuid"
)

// Common test errors
var (
	ErrMockNotImplemented = errors.New("mock function not implemented")
)

// NotFound builds the envelope the API returns for a missing room
func NotFound(detail string) *domain.APIError {
	return &domain.APIError{
		Type:   "https://tools.ietf.org/html/rfc9110#section-15.5.5",
		Title:  "Not Found",
		Detail: detail,
		Status: http.StatusNotFound,
	}
}

// MockAuthAPI implements the auth calls used by the state containers
type MockAuthAPI struct {
	mu sync.Mutex

	// Function overrides - set these to customize behavior
	LoginFunc       func(ctx context.Context, creds domain.LoginCredentials) (*domain.AuthResponse, error)
	RegisterFunc    func(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error)
	CurrentUserFunc func(ctx context.Context) (*domain.User, error)
	VerifyTokenFunc func(ctx context.Context) (bool, error)

	calls map[string]int
}

// NewMockAuthAPI creates a MockAuthAPI with no overrides
func NewMockAuthAPI() *MockAuthAPI {
	return &MockAuthAPI{calls: make(map[string]int)}
}

func (m *MockAuthAPI) called(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[name]++
}

// Calls returns how many times the named method ran
func (m *MockAuthAPI) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *MockAuthAPI) Login(ctx context.Context, creds domain.LoginCredentials) (*domain.AuthResponse, error) {
	m.called("Login")
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, creds)
	}
	return nil, ErrMockNotImplemented
}

func (m *MockAuthAPI) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	m.called("Register")
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return nil, ErrMockNotImplemented
}

func (m *MockAuthAPI) CurrentUser(ctx context.Context) (*domain.User, error) {
	m.called("CurrentUser")
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc(ctx)
	}
	return nil, ErrMockNotImplemented
}

func (m *MockAuthAPI) VerifyToken(ctx context.Context) (bool, error) {
	m.called("VerifyToken")
	if m.VerifyTokenFunc != nil {
		return m.VerifyTokenFunc(ctx)
	}
	return false, nil
}

// MockRoomsAPI implements the rooms calls used by the state containers.
// Without overrides it serves Rooms from memory.
type MockRoomsAPI struct {
	mu sync.RWMutex

	// Function overrides - set these to customize behavior
	ListRoomsFunc  func(ctx context.Context, q domain.RoomQuery) (*domain.RoomPage, error)
	GetRoomFunc    func(ctx context.Context, slug string) (*domain.Room, error)
	CreateRoomFunc func(ctx context.Context, req domain.CreateRoomRequest) (*domain.Room, error)
	UpdateRoomFunc func(ctx context.Context, slug string, req domain.UpdateRoomRequest) (*domain.Room, error)
	DeleteRoomFunc func(ctx context.Context, id string) (*domain.VoidResponse, error)

	// In-memory storage, in creation order
	Rooms []*domain.Room

	// Queries records every ListRooms call
	Queries []domain.RoomQuery

	// Admin is returned by HasAdminPermissions
	Admin bool
}

// NewMockRoomsAPI creates a MockRoomsAPI serving the given rooms
func NewMockRoomsAPI(rooms ...*domain.Room) *MockRoomsAPI {
	return &MockRoomsAPI{Rooms: rooms}
}

func (m *MockRoomsAPI) ListRooms(ctx context.Context, q domain.RoomQuery) (*domain.RoomPage, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, q)
	m.mu.Unlock()

	if m.ListRoomsFunc != nil {
		return m.ListRoomsFunc(ctx, q)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return PageOf(m.Rooms, q), nil
}

// LastQuery returns the most recent ListRooms query
func (m *MockRoomsAPI) LastQuery() (domain.RoomQuery, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.Queries) == 0 {
		return domain.RoomQuery{}, false
	}
	return m.Queries[len(m.Queries)-1], true
}

func (m *MockRoomsAPI) GetRoom(ctx context.Context, slug string) (*domain.Room, error) {
	if m.GetRoomFunc != nil {
		return m.GetRoomFunc(ctx, slug)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.Rooms {
		if r.Slug == slug {
			cp := *r
			return &cp, nil
		}
	}
	return nil, NotFound("room " + slug + " was not found")
}

func (m *MockRoomsAPI) CreateRoom(ctx context.Context, req domain.CreateRoomRequest) (*domain.Room, error) {
	if m.CreateRoomFunc != nil {
		return m.CreateRoomFunc(ctx, req)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
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
	m.Rooms = append(m.Rooms, room)
	cp := *room
	return &cp, nil
}

func (m *MockRoomsAPI) UpdateRoom(ctx context.Context, slug string, req domain.UpdateRoomRequest) (*domain.Room, error) {
	if m.UpdateRoomFunc != nil {
		return m.UpdateRoomFunc(ctx, slug, req)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.Rooms {
		if r.Slug == slug {
			ApplyUpdate(r, req)
			cp := *r
			return &cp, nil
		}
	}
	return nil, NotFound("room " + slug + " was not found")
}

func (m *MockRoomsAPI) DeleteRoom(ctx context.Context, id string) (*domain.VoidResponse, error) {
	if m.DeleteRoomFunc != nil {
		return m.DeleteRoomFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.Rooms {
		if r.ID == id {
			m.Rooms = append(m.Rooms[:i], m.Rooms[i+1:]...)
			return &domain.VoidResponse{Success: true}, nil
		}
	}
	return nil, NotFound("room " + id + " was not found")
}

func (m *MockRoomsAPI) HasAdminPermissions(ctx context.Context) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Admin
}

// ApplyUpdate copies the set fields of req onto room
func ApplyUpdate(room *domain.Room, req domain.UpdateRoomRequest) {
	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.Color != nil {
		room.Color = *req.Color
	}
	if req.Icon != nil {
		room.Icon = *req.Icon
	}
	if req.UserLimit != nil {
		room.UserLimit = *req.UserLimit
	}
	if req.IsOpen != nil {
		room.IsOpen = *req.IsOpen
	}
	room.UpdatedAt = time.Now().UTC()
}

// PageOf pages rooms the way the API does: isOpen filters first, then page
// and pageSize (defaults 1 and 10) select the slice.
func PageOf(rooms []*domain.Room, q domain.RoomQuery) *domain.RoomPage {
	page, size := q.Page, q.PageSize
	if page < 1 {
		page = domain.DefaultPage
	}
	if size < 1 {
		size = domain.DefaultPageSize
	}

	matched := make([]domain.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		if q.IsOpen != nil && r.IsOpen != *q.IsOpen {
			continue
		}
		matched = append(matched, r.RoomSummary)
	}

	start := (page - 1) * size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}

	return &domain.RoomPage{
		Items:      matched[start:end],
		Page:       page,
		PageSize:   size,
		TotalCount: len(matched),
		TotalPages: int(math.Ceil(float64(len(matched)) / float64(size))),
	}
}
