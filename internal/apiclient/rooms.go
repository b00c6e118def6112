package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"rooms-client/internal/domain"

	"github.com/google/uuid"
)

const roomsPath = "/api/rooms"

// RoomsClient maps the /api/rooms endpoints
type RoomsClient struct {
	client *Client
}

// NewRoomsClient creates a RoomsClient on top of c
func NewRoomsClient(c *Client) *RoomsClient {
	return &RoomsClient{client: c}
}

// ListRooms returns one page of rooms. Unset query fields are not sent.
func (r *RoomsClient) ListRooms(ctx context.Context, q domain.RoomQuery) (*domain.RoomPage, error) {
	if err := r.client.validate.Struct(q); err != nil {
		return nil, fmt.Errorf("list_rooms: %w: %v", ErrInvalidRequest, err)
	}

	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.IsOpen != nil {
		params.Set("isOpen", strconv.FormatBool(*q.IsOpen))
	}

	var out domain.RoomPage
	_, err := r.client.do(ctx, call{
		op:     "list_rooms",
		method: http.MethodGet,
		path:   roomsPath,
		query:  params,
		auth:   authOptional,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRoom fetches a room by slug
func (r *RoomsClient) GetRoom(ctx context.Context, slug string) (*domain.Room, error) {
	if slug == "" {
		return nil, fmt.Errorf("get_room: %w: empty slug", ErrInvalidRequest)
	}
	var out domain.Room
	_, err := r.client.do(ctx, call{
		op:     "get_room",
		method: http.MethodGet,
		path:   roomsPath + "/" + url.PathEscape(slug),
		auth:   authOptional,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRoom creates a room and returns its detail
func (r *RoomsClient) CreateRoom(ctx context.Context, req domain.CreateRoomRequest) (*domain.Room, error) {
	var out domain.Room
	_, err := r.client.do(ctx, call{
		op:     "create_room",
		method: http.MethodPost,
		path:   roomsPath,
		body:   req,
		auth:   authRequired,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRoom changes the fields set in req on the room with the given slug
func (r *RoomsClient) UpdateRoom(ctx context.Context, slug string, req domain.UpdateRoomRequest) (*domain.Room, error) {
	if slug == "" {
		return nil, fmt.Errorf("update_room: %w: empty slug", ErrInvalidRequest)
	}
	var out domain.Room
	_, err := r.client.do(ctx, call{
		op:     "update_room",
		method: http.MethodPut,
		path:   roomsPath + "/" + url.PathEscape(slug),
		body:   req,
		auth:   authRequired,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRoom deletes a room by id. A 204 is reported as success.
func (r *RoomsClient) DeleteRoom(ctx context.Context, id string) (*domain.VoidResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("delete_room: %w", domain.ErrInvalidRoomID)
	}

	var out domain.VoidResponse
	resp, err := r.client.do(ctx, call{
		op:     "delete_room",
		method: http.MethodDelete,
		path:   roomsPath + "/" + id,
		auth:   authRequired,
	}, &out)
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusNoContent || len(resp.body) == 0 {
		return &domain.VoidResponse{Success: true}, nil
	}
	return &out, nil
}

// HasAdminPermissions reports whether room management calls can be made.
// The API has no roles yet, so holding a token is enough.
func (r *RoomsClient) HasAdminPermissions(ctx context.Context) bool {
	return r.client.HasToken(ctx)
}
