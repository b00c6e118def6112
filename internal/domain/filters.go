package domain

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// FilterCriteria is the room list filter. IsOpen is tri-state: nil means
// "any".
type FilterCriteria struct {
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	IsOpen   *bool  `json:"isOpen,omitempty"`
	Search   string `json:"search"`
}

// DefaultFilters returns page 1, 10 per page, no status, no search
func DefaultFilters() FilterCriteria {
	return FilterCriteria{Page: DefaultPage, PageSize: DefaultPageSize}
}

// Equal compares by value, including the pointed-to IsOpen
func (f FilterCriteria) Equal(o FilterCriteria) bool {
	if f.Page != o.Page || f.PageSize != o.PageSize || f.Search != o.Search {
		return false
	}
	if (f.IsOpen == nil) != (o.IsOpen == nil) {
		return false
	}
	return f.IsOpen == nil || *f.IsOpen == *o.IsOpen
}

// Clone returns a copy that does not share the IsOpen pointer
func (f FilterCriteria) Clone() FilterCriteria {
	if f.IsOpen != nil {
		v := *f.IsOpen
		f.IsOpen = &v
	}
	return f
}

// Query converts the criteria to list query parameters
func (f FilterCriteria) Query() RoomQuery {
	return RoomQuery{Page: f.Page, PageSize: f.PageSize, IsOpen: f.Clone().IsOpen}
}

// FilterPatch is a partial update. Nil fields are left untouched; IsOpen is
// only applied when SetIsOpen is true, so it can also be cleared.
type FilterPatch struct {
	Page      *int
	PageSize  *int
	Search    *string
	IsOpen    *bool
	SetIsOpen bool
}

// Apply returns f with the patch merged in
func (p FilterPatch) Apply(f FilterCriteria) FilterCriteria {
	f = f.Clone()
	if p.Page != nil {
		f.Page = *p.Page
	}
	if p.PageSize != nil {
		f.PageSize = *p.PageSize
	}
	if p.Search != nil {
		f.Search = *p.Search
	}
	if p.SetIsOpen {
		if p.IsOpen == nil {
			f.IsOpen = nil
		} else {
			v := *p.IsOpen
			f.IsOpen = &v
		}
	}
	return f
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}
