package filters

import "rooms-client/internal/domain"

// MaxHistory bounds the number of remembered filter snapshots
const MaxHistory = 10

// History is a bounded list of filter snapshots with a cursor for back and
// forward navigation. The cursor always points at a valid entry.
type History struct {
	entries []domain.FilterCriteria
	cursor  int
	limit   int
}

// NewHistory starts a history holding only initial
func NewHistory(initial domain.FilterCriteria) *History {
	return &History{
		entries: []domain.FilterCriteria{initial.Clone()},
		limit:   MaxHistory,
	}
}

// Push records f after the cursor. It is a no-op when f equals the entry at
// the cursor. Entries ahead of the cursor are dropped, and the oldest entry
// is evicted once the limit is exceeded. It reports whether f was added.
func (h *History) Push(f domain.FilterCriteria) bool {
	if h.entries[h.cursor].Equal(f) {
		return false
	}
	h.entries = append(h.entries[:h.cursor+1], f.Clone())
	h.cursor = len(h.entries) - 1

	if len(h.entries) > h.limit {
		h.entries = h.entries[1:]
		h.cursor--
	}
	return true
}

func (h *History) CanGoBack() bool    { return h.cursor > 0 }
func (h *History) CanGoForward() bool { return h.cursor < len(h.entries)-1 }

// Back moves the cursor one entry back and returns that entry
func (h *History) Back() (domain.FilterCriteria, bool) {
	if !h.CanGoBack() {
		return domain.FilterCriteria{}, false
	}
	h.cursor--
	return h.entries[h.cursor].Clone(), true
}

// Forward moves the cursor one entry forward and returns that entry
func (h *History) Forward() (domain.FilterCriteria, bool) {
	if !h.CanGoForward() {
		return domain.FilterCriteria{}, false
	}
	h.cursor++
	return h.entries[h.cursor].Clone(), true
}

func (h *History) Current() domain.FilterCriteria { return h.entries[h.cursor].Clone() }
func (h *History) Cursor() int                    { return h.cursor }
func (h *History) Len() int                       { return len(h.entries) }

// Entries returns a copy of the recorded snapshots, oldest first
func (h *History) Entries() []domain.FilterCriteria {
	out := make([]domain.FilterCriteria, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.Clone()
	}
	return out
}
