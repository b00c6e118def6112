package state

import (
	"context"
	"log/slog"
	"sync"

	"rooms-client/internal/domain"
	"rooms-client/internal/observability"
	"rooms-client/internal/pagination"
)

// Paths used by the controller's navigation side effects
const (
	RoomsListPath  = "/rooms"
	RoomCreatePath = "/rooms/create"
)

func RoomPath(slug string) string     { return RoomsListPath + "/" + slug }
func RoomEditPath(slug string) string { return RoomPath(slug) + "/edit" }

// Navigator moves the UI to a path
type Navigator interface {
	Push(path string) error
}

// RoomsController is the screen-level facade over RoomsStore: it loads on
// first use, navigates after create and delete, and refetches when the page
// or status filter changes.
type RoomsController struct {
	store *RoomsStore
	nav   Navigator

	mu          sync.Mutex
	initialized bool
}

// NewRoomsController creates a controller. nav may be nil when there is
// nothing to navigate.
func NewRoomsController(store *RoomsStore, nav Navigator) *RoomsController {
	return &RoomsController{store: store, nav: nav}
}

func (c *RoomsController) Store() *RoomsStore { return c.store }

func (c *RoomsController) Snapshot() RoomsSnapshot { return c.store.Snapshot() }

func (c *RoomsController) Subscribe(fn func(RoomsSnapshot)) func() {
	return c.store.Subscribe(fn)
}

func (c *RoomsController) IsInitialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// Initialize loads the first page once. Later calls do nothing.
func (c *RoomsController) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return nil
	}
	if _, err := c.store.FetchRooms(ctx, nil); err != nil {
		observability.FromContext(ctx).Error("failed to initialize rooms", slog.String("error", err.Error()))
		return err
	}
	c.initialized = true
	return nil
}

func (c *RoomsController) LoadRooms(ctx context.Context, patch *domain.FilterPatch) (*domain.RoomPage, error) {
	return c.store.FetchRooms(ctx, patch)
}

func (c *RoomsController) LoadRoom(ctx context.Context, slug string) (*domain.Room, error) {
	return c.store.FetchRoomBySlug(ctx, slug)
}

// CreateRoom creates a room and opens its detail page
func (c *RoomsController) CreateRoom(ctx context.Context, req domain.CreateRoomRequest) (*domain.Room, error) {
	room, err := c.store.CreateRoom(ctx, req)
	if err != nil {
		return nil, err
	}
	if room.Slug != "" {
		c.push(ctx, RoomPath(room.Slug))
	}
	return room, nil
}

// UpdateRoom updates a room and reloads it when it is the one being viewed
func (c *RoomsController) UpdateRoom(ctx context.Context, slug string, req domain.UpdateRoomRequest) (*domain.Room, error) {
	room, err := c.store.UpdateRoom(ctx, slug, req)
	if err != nil {
		return nil, err
	}
	if cur := c.store.Snapshot().CurrentRoom; cur != nil && cur.Slug == slug {
		if _, err := c.store.FetchRoomBySlug(ctx, slug); err != nil {
			observability.FromContext(ctx).Warn("failed to reload room", slog.String("error", err.Error()))
		}
	}
	return room, nil
}

// DeleteRoom deletes a room. If it was the one being viewed, the list is
// opened.
func (c *RoomsController) DeleteRoom(ctx context.Context, id string) error {
	cur := c.store.Snapshot().CurrentRoom
	viewing := cur != nil && cur.ID == id

	if err := c.store.DeleteRoom(ctx, id); err != nil {
		return err
	}
	if viewing {
		c.push(ctx, RoomsListPath)
	}
	return nil
}

func (c *RoomsController) UpdateFilters(patch domain.FilterPatch) { c.store.UpdateFilters(patch) }
func (c *RoomsController) ResetFilters()                          { c.store.ResetFilters() }

// ChangePage loads the given page
func (c *RoomsController) ChangePage(ctx context.Context, page int) error {
	c.store.SetPage(page)
	_, err := c.store.FetchRooms(ctx, nil)
	return err
}

// ChangePageSize loads the first page with the new size
func (c *RoomsController) ChangePageSize(ctx context.Context, size int) error {
	c.store.SetPageSize(size)
	_, err := c.store.FetchRooms(ctx, nil)
	return err
}

// SearchRooms filters the loaded page locally; nothing is fetched
func (c *RoomsController) SearchRooms(term string) {
	c.store.SetSearch(term)
}

// FilterByStatus loads the first page with the status filter; nil means any
func (c *RoomsController) FilterByStatus(ctx context.Context, isOpen *bool) error {
	c.store.SetIsOpenFilter(isOpen)
	_, err := c.store.FetchRooms(ctx, nil)
	return err
}

func (c *RoomsController) GoToRoom(ctx context.Context, slug string) {
	if slug != "" {
		c.push(ctx, RoomPath(slug))
	}
}

func (c *RoomsController) GoToEditRoom(ctx context.Context, slug string) {
	if slug != "" {
		c.push(ctx, RoomEditPath(slug))
	}
}

func (c *RoomsController) GoToCreateRoom(ctx context.Context) { c.push(ctx, RoomCreatePath) }
func (c *RoomsController) GoToRoomsList(ctx context.Context)  { c.push(ctx, RoomsListPath) }

func (c *RoomsController) push(ctx context.Context, path string) {
	if c.nav == nil {
		return
	}
	if err := c.nav.Push(path); err != nil {
		observability.FromContext(ctx).Warn("navigation failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
	}
}

func (c *RoomsController) FindRoomBySlug(slug string) (domain.RoomSummary, bool) {
	return c.store.RoomBySlug(slug)
}

func (c *RoomsController) FindRoomByID(id string) (domain.RoomSummary, bool) {
	return c.store.RoomByID(id)
}

func (c *RoomsController) ClearCurrentRoom()       { c.store.ClearCurrentRoom() }
func (c *RoomsController) ClearErrors()            { c.store.ClearErrors() }
func (c *RoomsController) ClearError(op Operation) { c.store.ClearError(op) }

func (c *RoomsController) HasAdminPermissions(ctx context.Context) bool {
	return c.store.HasAdminPermissions(ctx)
}

// RefreshRooms reloads the list; failures are only logged
func (c *RoomsController) RefreshRooms(ctx context.Context) {
	if _, err := c.store.FetchRooms(ctx, nil); err != nil {
		observability.FromContext(ctx).Error("failed to refresh rooms", slog.String("error", err.Error()))
	}
}

// RefreshCurrentRoom reloads the room being viewed; failures are only logged
func (c *RoomsController) RefreshCurrentRoom(ctx context.Context) {
	cur := c.store.Snapshot().CurrentRoom
	if cur == nil || cur.Slug == "" {
		return
	}
	if _, err := c.store.FetchRoomBySlug(ctx, cur.Slug); err != nil {
		observability.FromContext(ctx).Error("failed to refresh room", slog.String("error", err.Error()))
	}
}

// Pagination returns a paginator positioned on the loaded page
func (c *RoomsController) Pagination(maxPageSize int) *pagination.Paginator {
	snap := c.store.Snapshot()
	p := pagination.New(pagination.Options{MaxPageSize: maxPageSize})
	p.SetState(snap.CurrentPage, snap.PageSize, snap.TotalCount)
	return p
}
