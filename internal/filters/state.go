// Package filters holds the room list filter criteria with a bounded undo
// history, debounced search input and persistence to the client store.
package filters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"rooms-client/internal/domain"
	"rooms-client/internal/observability"
)

const (
	DefaultStorageKey    = "roomFilters"
	DefaultDebounceDelay = 300 * time.Millisecond
)

var ErrNoStore = errors.New("no filter store configured")

// Options configures a State. Zero fields take the defaults.
type Options struct {
	Initial       domain.FilterPatch
	Store         domain.KeyValueStore
	StorageKey    string
	DebounceDelay time.Duration
	Scheduler     Scheduler
}

// Snapshot is a read-only copy of the holder's state
type Snapshot struct {
	Filters      domain.FilterCriteria
	SearchInput  string
	IsSearching  bool
	CanGoBack    bool
	CanGoForward bool
	HistoryLen   int
}

// State owns the current filters, the history and the pending debounced
// search. It is safe for concurrent use; debounced commits arrive on the
// scheduler's goroutine.
type State struct {
	mu          sync.Mutex
	filters     domain.FilterCriteria
	searchInput string
	searching   bool
	history     *History

	pending    Stopper
	generation uint64

	store     domain.KeyValueStore
	key       string
	delay     time.Duration
	scheduler Scheduler

	listeners map[int]func(Snapshot)
	nextID    int
}

func NewState(opts Options) *State {
	if opts.StorageKey == "" {
		opts.StorageKey = DefaultStorageKey
	}
	if opts.DebounceDelay <= 0 {
		opts.DebounceDelay = DefaultDebounceDelay
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TimerScheduler()
	}

	initial := opts.Initial.Apply(domain.DefaultFilters())
	return &State{
		filters:     initial,
		searchInput: initial.Search,
		history:     NewHistory(initial),
		store:       opts.Store,
		key:         opts.StorageKey,
		delay:       opts.DebounceDelay,
		scheduler:   opts.Scheduler,
		listeners:   make(map[int]func(Snapshot)),
	}
}

// Filters returns a copy of the current criteria
func (s *State) Filters() domain.FilterCriteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters.Clone()
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() Snapshot {
	return Snapshot{
		Filters:      s.filters.Clone(),
		SearchInput:  s.searchInput,
		IsSearching:  s.searching,
		CanGoBack:    s.history.CanGoBack(),
		CanGoForward: s.history.CanGoForward(),
		HistoryLen:   s.history.Len(),
	}
}

// History returns a copy of the recorded snapshots and the cursor position
func (s *State) History() ([]domain.FilterCriteria, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries(), s.history.Cursor()
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned func removes it.
func (s *State) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// mutate runs fn under the lock and notifies listeners afterwards
func (s *State) mutate(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	listeners := make([]func(Snapshot), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (s *State) pushLocked() {
	s.history.Push(s.filters)
}

// UpdateFilters merges patch into the filters and records a history entry.
// A patch with a page or page size below 1 is rejected and false returned.
func (s *State) UpdateFilters(patch domain.FilterPatch) bool {
	if !validPatch(patch) {
		return false
	}
	s.mutate(func() {
		if patch.Search != nil {
			s.cancelPendingLocked()
		}
		s.filters = patch.Apply(s.filters)
		if patch.Search != nil {
			s.searchInput = s.filters.Search
		}
		s.pushLocked()
	})
	return true
}

func validPatch(p domain.FilterPatch) bool {
	return (p.Page == nil || *p.Page >= 1) && (p.PageSize == nil || *p.PageSize >= 1)
}

// SetSearch commits a search term. Any pending debounced search is dropped.
func (s *State) SetSearch(term string) {
	s.mutate(func() {
		s.cancelPendingLocked()
		s.setSearchLocked(term)
	})
}

func (s *State) setSearchLocked(term string) {
	s.filters.Search = term
	s.searchInput = term
	s.pushLocked()
}

// SetStatus sets the open/closed filter (nil for all) and returns to page 1
func (s *State) SetStatus(isOpen *bool) {
	s.mutate(func() {
		s.filters = domain.FilterPatch{Page: domain.Ptr(1), IsOpen: isOpen, SetIsOpen: true}.Apply(s.filters)
		s.pushLocked()
	})
}

// SetPageSize changes the page size and returns to page 1. Sizes below 1
// are rejected.
func (s *State) SetPageSize(n int) bool {
	if n < 1 {
		return false
	}
	s.mutate(func() {
		s.filters.PageSize = n
		s.filters.Page = 1
		s.pushLocked()
	})
	return true
}

// SetPage changes the page. Page moves are not recorded in the history.
// Pages below 1 are rejected.
func (s *State) SetPage(n int) bool {
	if n < 1 {
		return false
	}
	s.mutate(func() {
		s.filters.Page = n
	})
	return true
}

// ApplyQuickFilter applies a preset
func (s *State) ApplyQuickFilter(q QuickFilter) {
	s.UpdateFilters(q.Patch())
}

// ResetFilters restores the defaults and clears the search input
func (s *State) ResetFilters() {
	s.mutate(func() {
		s.cancelPendingLocked()
		s.filters = domain.DefaultFilters()
		s.searchInput = ""
		s.pushLocked()
	})
}

// GoBack restores the previous history entry. It returns false at the
// oldest entry.
func (s *State) GoBack() bool {
	return s.move(s.history.Back)
}

// GoForward restores the next history entry. It returns false at the newest
// entry.
func (s *State) GoForward() bool {
	return s.move(s.history.Forward)
}

func (s *State) move(step func() (domain.FilterCriteria, bool)) bool {
	moved := false
	s.mutate(func() {
		var f domain.FilterCriteria
		if f, moved = step(); moved {
			s.cancelPendingLocked()
			s.filters = f
			s.searchInput = f.Search
		}
	})
	return moved
}

func (s *State) CanGoBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanGoBack()
}

func (s *State) CanGoForward() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanGoForward()
}

// TypeSearch records a keystroke: the input updates now, the search is
// committed once typing pauses for the configured delay.
func (s *State) TypeSearch(raw string) {
	s.DebouncedSearch(raw, s.delay)
}

// DebouncedSearch schedules term to be committed after delay, replacing any
// task still pending
func (s *State) DebouncedSearch(term string, delay time.Duration) {
	s.mutate(func() {
		s.cancelPendingLocked()
		s.searchInput = term
		s.searching = true
		s.generation++
		gen := s.generation
		s.pending = s.scheduler.AfterFunc(delay, func() { s.commitSearch(gen, term) })
	})
}

func (s *State) commitSearch(gen uint64, term string) {
	s.mutate(func() {
		// a newer keystroke or an explicit commit superseded this task
		if gen != s.generation || s.pending == nil {
			return
		}
		s.pending = nil
		s.searching = false
		s.setSearchLocked(term)
	})
}

func (s *State) cancelPendingLocked() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.searching = false
	s.generation++
}

func (s *State) SearchInput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchInput
}

func (s *State) IsSearching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searching
}

// Close drops a pending debounced search
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelPendingLocked()
}

// HasActiveFilters is true when a status, a search or a non-default page
// size is set
func (s *State) HasActiveFilters() bool {
	return s.ActiveFilterCount() > 0
}

// ActiveFilterCount counts the status, search and page size filters in use
func (s *State) ActiveFilterCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return activeCount(s.filters)
}

func activeCount(f domain.FilterCriteria) int {
	n := 0
	if f.IsOpen != nil {
		n++
	}
	if f.Search != "" {
		n++
	}
	if f.PageSize != domain.DefaultPageSize {
		n++
	}
	return n
}

// Description summarises the active filters for display
func (s *State) Description() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Describe(s.filters)
}

// Describe summarises f, e.g. `open only, search: "chess"`
func Describe(f domain.FilterCriteria) string {
	var parts []string
	if f.IsOpen != nil {
		if *f.IsOpen {
			parts = append(parts, "open only")
		} else {
			parts = append(parts, "closed only")
		}
	}
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", f.Search))
	}
	if f.PageSize != domain.DefaultPageSize {
		parts = append(parts, fmt.Sprintf("%d per page", f.PageSize))
	}
	if len(parts) == 0 {
		return "No active filters"
	}
	return strings.Join(parts, ", ")
}

// FilterRoomsLocally applies the committed search to rooms
func (s *State) FilterRoomsLocally(rooms []domain.RoomSummary) []domain.RoomSummary {
	return FilterRooms(rooms, s.Filters().Search)
}

// storedFilters is the persisted form. IsOpen is always written so that
// "any status" survives a round trip.
type storedFilters struct {
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	IsOpen   *bool  `json:"isOpen"`
	Search   string `json:"search"`
}

// Save writes the current filters to the store
func (s *State) Save(ctx context.Context) error {
	if s.store == nil {
		return ErrNoStore
	}
	f := s.Filters()
	data, err := json.Marshal(storedFilters(f))
	if err != nil {
		return fmt.Errorf("failed to encode filters: %w", err)
	}
	if err := s.store.Set(ctx, s.key, string(data)); err != nil {
		observability.FromContext(ctx).Warn("could not save filters",
			slog.String("key", s.key),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to save filters: %w", err)
	}
	return nil
}

// Load merges saved filters over the current ones and records the result in
// the history. Fields missing from the saved value are kept. A missing,
// unreadable or invalid value leaves the state untouched and returns false.
func (s *State) Load(ctx context.Context) bool {
	if s.store == nil {
		return false
	}
	log := observability.FromContext(ctx)

	raw, ok, err := s.store.Get(ctx, s.key)
	if err != nil {
		log.Warn("could not load filters", slog.String("key", s.key), slog.String("error", err.Error()))
		return false
	}
	if !ok || raw == "" {
		return false
	}

	var saved map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		log.Warn("ignoring unreadable saved filters", slog.String("key", s.key), slog.String("error", err.Error()))
		return false
	}
	patch, err := patchFromStored(saved)
	if err != nil {
		log.Warn("ignoring invalid saved filters", slog.String("key", s.key), slog.String("error", err.Error()))
		return false
	}

	s.mutate(func() {
		s.cancelPendingLocked()
		s.filters = patch.Apply(s.filters)
		s.searchInput = s.filters.Search
		s.pushLocked()
	})
	return true
}

func patchFromStored(saved map[string]json.RawMessage) (domain.FilterPatch, error) {
	var p domain.FilterPatch
	if v, ok := saved["page"]; ok {
		var n int
		if err := json.Unmarshal(v, &n); err != nil || n < 1 {
			return p, fmt.Errorf("invalid page %s", v)
		}
		p.Page = &n
	}
	if v, ok := saved["pageSize"]; ok {
		var n int
		if err := json.Unmarshal(v, &n); err != nil || n < 1 {
			return p, fmt.Errorf("invalid pageSize %s", v)
		}
		p.PageSize = &n
	}
	if v, ok := saved["search"]; ok {
		var str string
		if err := json.Unmarshal(v, &str); err != nil {
			return p, fmt.Errorf("invalid search %s", v)
		}
		p.Search = &str
	}
	if v, ok := saved["isOpen"]; ok {
		var b *bool
		if err := json.Unmarshal(v, &b); err != nil {
			return p, fmt.Errorf("invalid isOpen %s", v)
		}
		p.IsOpen = b
		p.SetIsOpen = true
	}
	return p, nil
}

// Clear removes the saved filters
func (s *State) Clear(ctx context.Context) error {
	if s.store == nil {
		return ErrNoStore
	}
	if err := s.store.Delete(ctx, s.key); err != nil {
		observability.FromContext(ctx).Warn("could not clear saved filters",
			slog.String("key", s.key),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to clear filters: %w", err)
	}
	return nil
}
