package domain

import (
	"errors"
	"time"
)

var ErrInvalidRoomID = errors.New("room id must be a UUID")

// RoomSummary is one entry of the paginated room list
type RoomSummary struct {
	ID               string `json:"id"`
	Slug             string `json:"slug"`
	Name             string `json:"name"`
	Color            string `json:"color"`
	Icon             string `json:"icon"`
	UserLimit        int    `json:"userLimit"`
	IsOpen           bool   `json:"isOpen"`
	CurrentUserCount int    `json:"currentUserCount"`
}

// Room is the detail view of a room
type Room struct {
	RoomSummary
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RoomPage is the response of GET /api/rooms
type RoomPage struct {
	Items      []RoomSummary `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalCount int           `json:"totalCount"`
	TotalPages int           `json:"totalPages"`
}

// RoomQuery holds the list query parameters. Zero values are not sent.
type RoomQuery struct {
	Page     int   `validate:"omitempty,gte=1"`
	PageSize int   `validate:"omitempty,gte=1,lte=100"`
	IsOpen   *bool `validate:"-"`
}

type CreateRoomRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Slug      string `json:"slug" validate:"required,max=50"`
	Color     string `json:"color" validate:"required"`
	Icon      string `json:"icon" validate:"required,max=100"`
	UserLimit int    `json:"userLimit" validate:"gte=2,lte=50"`
	IsOpen    bool   `json:"isOpen"`
}

// UpdateRoomRequest only carries the fields being changed
type UpdateRoomRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Color     *string `json:"color,omitempty"`
	Icon      *string `json:"icon,omitempty" validate:"omitempty,max=100"`
	UserLimit *int    `json:"userLimit,omitempty" validate:"omitempty,gte=2,lte=50"`
	IsOpen    *bool   `json:"isOpen,omitempty"`
}

// VoidResponse is returned by operations with no body, e.g. delete
type VoidResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
