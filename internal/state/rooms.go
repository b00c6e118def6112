package state

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"rooms-client/internal/domain"
	"rooms-client/internal/filters"
	"rooms-client/internal/observability"
)

// RoomsAPI is the subset of the rooms client the store needs
type RoomsAPI interface {
	ListRooms(ctx context.Context, q domain.RoomQuery) (*domain.RoomPage, error)
	GetRoom(ctx context.Context, slug string) (*domain.Room, error)
	CreateRoom(ctx context.Context, req domain.CreateRoomRequest) (*domain.Room, error)
	UpdateRoom(ctx context.Context, slug string, req domain.UpdateRoomRequest) (*domain.Room, error)
	DeleteRoom(ctx context.Context, id string) (*domain.VoidResponse, error)
	HasAdminPermissions(ctx context.Context) bool
}

// Operation names a loading/error slot
type Operation string

const (
	OpList   Operation = "list"
	OpDetail Operation = "detail"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Operations lists every slot
var Operations = []Operation{OpList, OpDetail, OpCreate, OpUpdate, OpDelete}

// RoomStats summarises the rooms on the current page
type RoomStats struct {
	Open          int
	Closed        int
	TotalUsers    int
	TotalCapacity int
	// AverageOccupancy is TotalUsers/TotalCapacity as a rounded percentage
	AverageOccupancy int
}

// ComputeStats derives RoomStats from rooms
func ComputeStats(rooms []domain.RoomSummary) RoomStats {
	var st RoomStats
	for _, r := range rooms {
		if r.IsOpen {
			st.Open++
		} else {
			st.Closed++
		}
		st.TotalUsers += r.CurrentUserCount
		st.TotalCapacity += r.UserLimit
	}
	if st.TotalCapacity > 0 {
		st.AverageOccupancy = int(math.Round(float64(st.TotalUsers) / float64(st.TotalCapacity) * 100))
	}
	return st
}

// RoomsSnapshot is a copy of the rooms state
type RoomsSnapshot struct {
	Rooms         []domain.RoomSummary
	FilteredRooms []domain.RoomSummary
	CurrentRoom   *domain.Room
	Filters       domain.FilterCriteria
	Loading       map[Operation]bool
	Errors        map[Operation]string

	TotalCount  int
	TotalPages  int
	CurrentPage int
	PageSize    int
	Stats       RoomStats
}

// IsLoading reports whether any operation is in flight
func (s RoomsSnapshot) IsLoading() bool {
	for _, v := range s.Loading {
		if v {
			return true
		}
	}
	return false
}

// HasErrors reports whether any slot holds an error
func (s RoomsSnapshot) HasErrors() bool {
	for _, v := range s.Errors {
		if v != "" {
			return true
		}
	}
	return false
}

func (s RoomsSnapshot) HasRooms() bool { return len(s.Rooms) > 0 }

// RoomsStore owns the room list, the room being viewed and the list filters.
// Overlapping FetchRooms calls are ordered by a sequence number: only the
// most recently started fetch may change the list.
type RoomsStore struct {
	api RoomsAPI

	mu          sync.RWMutex
	page        *domain.RoomPage
	currentRoom *domain.Room
	filters     domain.FilterCriteria
	loading     map[Operation]bool
	errs        map[Operation]string
	fetchSeq    uint64

	observers observers[RoomsSnapshot]
}

// NewRoomsStore creates an empty RoomsStore with default filters
func NewRoomsStore(api RoomsAPI) *RoomsStore {
	return &RoomsStore{
		api:     api,
		filters: domain.DefaultFilters(),
		loading: make(map[Operation]bool, len(Operations)),
		errs:    make(map[Operation]string, len(Operations)),
	}
}

// Snapshot returns a copy of the current state
func (s *RoomsStore) Snapshot() RoomsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *RoomsStore) snapshotLocked() RoomsSnapshot {
	snap := RoomsSnapshot{
		Filters:     s.filters.Clone(),
		Loading:     make(map[Operation]bool, len(Operations)),
		Errors:      make(map[Operation]string, len(Operations)),
		CurrentPage: domain.DefaultPage,
		PageSize:    domain.DefaultPageSize,
	}
	for _, op := range Operations {
		snap.Loading[op] = s.loading[op]
		snap.Errors[op] = s.errs[op]
	}
	if s.page != nil {
		snap.Rooms = append([]domain.RoomSummary(nil), s.page.Items...)
		snap.TotalCount = s.page.TotalCount
		snap.TotalPages = s.page.TotalPages
		if s.page.Page > 0 {
			snap.CurrentPage = s.page.Page
		}
		if s.page.PageSize > 0 {
			snap.PageSize = s.page.PageSize
		}
	}
	if snap.Rooms == nil {
		snap.Rooms = []domain.RoomSummary{}
	}
	snap.FilteredRooms = filters.FilterRooms(snap.Rooms, s.filters.Search)
	if s.currentRoom != nil {
		r := *s.currentRoom
		snap.CurrentRoom = &r
	}
	snap.Stats = ComputeStats(snap.Rooms)
	return snap
}

// Subscribe registers fn to be called after every state change
func (s *RoomsStore) Subscribe(fn func(RoomsSnapshot)) func() {
	return s.observers.add(fn)
}

func (s *RoomsStore) update(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.observers.notify(snap)
}

func (s *RoomsStore) start(op Operation) {
	s.update(func() {
		s.loading[op] = true
		s.errs[op] = ""
	})
}

// finish clears the loading flag and records err, returning it unchanged
func (s *RoomsStore) finish(op Operation, err error, apply func()) error {
	s.update(func() {
		s.loading[op] = false
		if err != nil {
			s.errs[op] = domain.Message(err)
			return
		}
		if apply != nil {
			apply()
		}
	})
	return err
}

// FetchRooms merges patch into the filters and loads that page. When another
// fetch starts before this one returns, this response is handed back to the
// caller but not applied.
func (s *RoomsStore) FetchRooms(ctx context.Context, patch *domain.FilterPatch) (*domain.RoomPage, error) {
	var (
		seq   uint64
		query domain.RoomQuery
	)
	s.update(func() {
		if patch != nil {
			s.filters = patch.Apply(s.filters)
		}
		s.fetchSeq++
		seq = s.fetchSeq
		s.loading[OpList] = true
		s.errs[OpList] = ""
		query = s.filters.Query()
	})

	page, err := s.api.ListRooms(ctx, query)

	stale := false
	s.update(func() {
		if seq != s.fetchSeq {
			stale = true
			return
		}
		s.loading[OpList] = false
		if err != nil {
			s.errs[OpList] = domain.Message(err)
			return
		}
		s.page = page
	})
	if stale {
		observability.RoomFetchesDiscarded.Inc()
		observability.FromContext(ctx).Debug("discarding stale room list response",
			slog.Uint64("seq", seq))
	}
	return page, err
}

// FetchRoomBySlug loads a room into CurrentRoom
func (s *RoomsStore) FetchRoomBySlug(ctx context.Context, slug string) (*domain.Room, error) {
	s.start(OpDetail)
	room, err := s.api.GetRoom(ctx, slug)
	return room, s.finish(OpDetail, err, func() { s.currentRoom = room })
}

// CreateRoom creates a room and reloads the list
func (s *RoomsStore) CreateRoom(ctx context.Context, req domain.CreateRoomRequest) (*domain.Room, error) {
	s.start(OpCreate)
	room, err := s.api.CreateRoom(ctx, req)
	if err := s.finish(OpCreate, err, nil); err != nil {
		return nil, err
	}
	s.refresh(ctx)
	return room, nil
}

// UpdateRoom updates a room, replaces CurrentRoom when it is the same one and
// reloads the list
func (s *RoomsStore) UpdateRoom(ctx context.Context, slug string, req domain.UpdateRoomRequest) (*domain.Room, error) {
	s.start(OpUpdate)
	room, err := s.api.UpdateRoom(ctx, slug, req)
	err = s.finish(OpUpdate, err, func() {
		if s.currentRoom != nil && s.currentRoom.Slug == slug {
			s.currentRoom = room
		}
	})
	if err != nil {
		return nil, err
	}
	s.refresh(ctx)
	return room, nil
}

// DeleteRoom deletes a room, clears CurrentRoom when it is the same one and
// reloads the list
func (s *RoomsStore) DeleteRoom(ctx context.Context, id string) error {
	s.start(OpDelete)
	_, err := s.api.DeleteRoom(ctx, id)
	err = s.finish(OpDelete, err, func() {
		if s.currentRoom != nil && s.currentRoom.ID == id {
			s.currentRoom = nil
		}
	})
	if err != nil {
		return err
	}
	s.refresh(ctx)
	return nil
}

// refresh reloads the list after a successful mutation. A failure lands in
// the list slot, the mutation itself already succeeded.
func (s *RoomsStore) refresh(ctx context.Context) {
	if _, err := s.FetchRooms(ctx, nil); err != nil {
		observability.FromContext(ctx).Warn("failed to reload rooms", slog.String("error", err.Error()))
	}
}

// UpdateFilters merges patch without fetching
func (s *RoomsStore) UpdateFilters(patch domain.FilterPatch) {
	s.update(func() { s.filters = patch.Apply(s.filters) })
}

func (s *RoomsStore) ResetFilters() {
	s.update(func() { s.filters = domain.DefaultFilters() })
}

func (s *RoomsStore) SetPage(page int) {
	s.update(func() { s.filters.Page = page })
}

// SetPageSize changes the page size and goes back to the first page
func (s *RoomsStore) SetPageSize(size int) {
	s.update(func() {
		s.filters.PageSize = size
		s.filters.Page = domain.DefaultPage
	})
}

// SetSearch changes the local search text. The page is kept because search
// does not go to the API.
func (s *RoomsStore) SetSearch(term string) {
	s.update(func() { s.filters.Search = term })
}

// SetIsOpenFilter changes the status filter and goes back to the first page
func (s *RoomsStore) SetIsOpenFilter(isOpen *bool) {
	s.update(func() {
		s.filters = domain.FilterPatch{IsOpen: isOpen, SetIsOpen: true}.Apply(s.filters)
		s.filters.Page = domain.DefaultPage
	})
}

func (s *RoomsStore) ClearCurrentRoom() {
	s.update(func() { s.currentRoom = nil })
}

// ClearErrors empties every error slot
func (s *RoomsStore) ClearErrors() {
	s.update(func() {
		for _, op := range Operations {
			s.errs[op] = ""
		}
	})
}

func (s *RoomsStore) ClearError(op Operation) {
	s.update(func() { s.errs[op] = "" })
}

// RoomBySlug finds a room on the loaded page
func (s *RoomsStore) RoomBySlug(slug string) (domain.RoomSummary, bool) {
	return s.find(func(r domain.RoomSummary) bool { return r.Slug == slug })
}

// RoomByID finds a room on the loaded page
func (s *RoomsStore) RoomByID(id string) (domain.RoomSummary, bool) {
	return s.find(func(r domain.RoomSummary) bool { return r.ID == id })
}

func (s *RoomsStore) find(match func(domain.RoomSummary) bool) (domain.RoomSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.page == nil {
		return domain.RoomSummary{}, false
	}
	for _, r := range s.page.Items {
		if match(r) {
			return r, true
		}
	}
	return domain.RoomSummary{}, false
}

func (s *RoomsStore) HasAdminPermissions(ctx context.Context) bool {
	return s.api.HasAdminPermissions(ctx)
}
