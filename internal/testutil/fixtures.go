package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"rooms-client/internal/domain"

	"github.com/google/uuid"
)

// Counter for generating unique fixture names
var idCounter atomic.Int64

// UserOptions allows customizing user fixture creation
type UserOptions struct {
	ID          string
	Username    string
	Email       string
	DisplayName string
}

// NewTestUser creates a test user with sensible defaults
// Pass options to override specific fields
func NewTestUser(opts ...func(*UserOptions)) *domain.User {
	n := idCounter.Add(1)
	o := &UserOptions{
		ID:       uuid.NewString(),
		Username: fmt.Sprintf("testuser%d", n),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.Email == "" {
		o.Email = o.Username + "@example.com"
	}

	return &domain.User{
		ID:          o.ID,
		Username:    o.Username,
		Email:       o.Email,
		DisplayName: o.DisplayName,
	}
}

// WithUserID sets the user ID
func WithUserID(id string) func(*UserOptions) {
	return func(o *UserOptions) {
		o.ID = id
	}
}

// WithUsername sets the username
func WithUsername(username string) func(*UserOptions) {
	return func(o *UserOptions) {
		o.Username = username
	}
}

// WithEmail sets the email
func WithEmail(email string) func(*UserOptions) {
	return func(o *UserOptions) {
		o.Email = email
	}
}

// WithDisplayName sets the display name
func WithDisplayName(name string) func(*UserOptions) {
	return func(o *UserOptions) {
		o.DisplayName = name
	}
}

// RoomOptions allows customizing room fixture creation
type RoomOptions struct {
	ID               string
	Slug             string
	Name             string
	Color            string
	Icon             string
	UserLimit        int
	IsOpen           bool
	CurrentUserCount int
	CreatedAt        time.Time
}

// NewTestRoom creates an open test room with sensible defaults
func NewTestRoom(opts ...func(*RoomOptions)) *domain.Room {
	n := idCounter.Add(1)
	o := &RoomOptions{
		ID:        uuid.NewString(),
		Name:      fmt.Sprintf("Test Room %d", n),
		Color:     "#1976d2",
		Icon:      "mdi-gamepad-variant",
		UserLimit: 10,
		IsOpen:    true,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.Slug == "" {
		o.Slug = fmt.Sprintf("test-room-%d", n)
	}

	return &domain.Room{
		RoomSummary: domain.RoomSummary{
			ID:               o.ID,
			Slug:             o.Slug,
			Name:             o.Name,
			Color:            o.Color,
			Icon:             o.Icon,
			UserLimit:        o.UserLimit,
			IsOpen:           o.IsOpen,
			CurrentUserCount: o.CurrentUserCount,
		},
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.CreatedAt,
	}
}

// NewTestRooms creates n rooms with the same options applied to each
func NewTestRooms(n int, opts ...func(*RoomOptions)) []*domain.Room {
	rooms := make([]*domain.Room, 0, n)
	for i := 0; i < n; i++ {
		rooms = append(rooms, NewTestRoom(opts...))
	}
	return rooms
}

// Summaries converts rooms to list entries
func Summaries(rooms []*domain.Room) []domain.RoomSummary {
	out := make([]domain.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.RoomSummary)
	}
	return out
}

// WithRoomID sets the room ID
func WithRoomID(id string) func(*RoomOptions) {
	return func(o *RoomOptions) {
		o.ID = id
	}
}

// WithRoomName sets the room name
func WithRoomName(name string) func(*RoomOptions) {
	return func(o *RoomOptions) {
		o.Name = name
	}
}

// WithSlug sets the room slug
func WithSlug(slug string) func(*RoomOptions) {
	return func(o *RoomOptions) {
		o.Slug = slug
	}
}

// WithOpen sets whether the room is open
func WithOpen(open bool) func(*RoomOptions) {
	return func(o *RoomOptions) {
		o.IsOpen = open
	}
}

// WithUserLimit sets the room capacity
func WithUserLimit(limit int) func(*RoomOptions) {
	return func(o *RoomOptions) {
		o.UserLimit = limit
	}
}

// WithUserCount sets how many users are in the room
func WithUserCount(count int) func(*RoomOptions) {
	return func(o *RoomOptions) {
		o.CurrentUserCount = count
	}
}

// WithColor sets the room color
func WithColor(color string) func(*RoomOptions) {
	return func(o *RoomOptions) {
		o.Color = color
	}
}
