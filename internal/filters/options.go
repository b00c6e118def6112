package filters

import (
	"rooms-client/internal/domain"
	"rooms-client/internal/pagination"
)

// StatusOption is one choice of the open/closed selector. A nil Value means
// every room.
type StatusOption struct {
	Title string `json:"title"`
	Value *bool  `json:"value"`
}

func StatusOptions() []StatusOption {
	return []StatusOption{
		{Title: "All rooms", Value: nil},
		{Title: "Open only", Value: domain.Ptr(true)},
		{Title: "Closed only", Value: domain.Ptr(false)},
	}
}

func PageSizeOptions() []pagination.PageSizeOption {
	return pagination.New(pagination.Options{MaxPageSize: 50}).PageSizeOptions()
}

// QuickFilter is a named preset for the status filter. Applying one clears
// the search and returns to the first page.
type QuickFilter struct {
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description,omitempty"`
	IsOpen      *bool  `json:"isOpen"`
}

// Patch is the filter update the preset applies
func (q QuickFilter) Patch() domain.FilterPatch {
	return domain.FilterPatch{
		Page:      domain.Ptr(1),
		Search:    domain.Ptr(""),
		IsOpen:    q.IsOpen,
		SetIsOpen: true,
	}
}

func QuickFilters() []QuickFilter {
	return []QuickFilter{
		{Name: "All", Icon: "mdi-all-inclusive"},
		{Name: "Open", Icon: "mdi-lock-open", IsOpen: domain.Ptr(true)},
		{Name: "Closed", Icon: "mdi-lock", IsOpen: domain.Ptr(false)},
		{Name: "Available", Icon: "mdi-check-circle", IsOpen: domain.Ptr(true), Description: "Open rooms with free seats"},
	}
}

// QuickFilterByName finds a preset case-sensitively
func QuickFilterByName(name string) (QuickFilter, bool) {
	for _, q := range QuickFilters() {
		if q.Name == name {
			return q, true
		}
	}
	return QuickFilter{}, false
}
