// Package roomform holds the editable state of a room form and its
// validation rules.
package roomform

import (
	"strings"

	"rooms-client/internal/domain"
)

const (
	DefaultColor     = "#1976d2"
	DefaultIcon      = "mdi-gamepad-variant"
	DefaultUserLimit = 10
)

// Data is the editable content of the form
type Data struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Color     string `json:"color"`
	Icon      string `json:"icon"`
	UserLimit int    `json:"userLimit"`
	IsOpen    bool   `json:"isOpen"`
}

// DefaultData is the content of a fresh form
func DefaultData() Data {
	return Data{
		Color:     DefaultColor,
		Icon:      DefaultIcon,
		UserLimit: DefaultUserLimit,
		IsOpen:    true,
	}
}

// Validation holds the latest result for every field
type Validation struct {
	Name      Result `json:"name"`
	Slug      Result `json:"slug"`
	Color     Result `json:"color"`
	Icon      Result `json:"icon"`
	UserLimit Result `json:"userLimit"`
}

func cleanValidation() Validation {
	ok := Result{Valid: true}
	return Validation{Name: ok, Slug: ok, Color: ok, Icon: ok, UserLimit: ok}
}

// Valid reports whether every field passed its last validation
func (v Validation) Valid() bool {
	return v.Name.Valid && v.Slug.Valid && v.Color.Valid && v.Icon.Valid && v.UserLimit.Valid
}

// Form tracks the data being edited, whether it changed since it was
// initialized, and whether a submit was attempted. Once submitted, every
// setter revalidates its own field. A Form belongs to a single editor and is
// not safe for concurrent use.
type Form struct {
	data       Data
	validation Validation
	dirty      bool
	submitted  bool
}

// New returns a form with default values, or with room's values when room is
// not nil
func New(room *domain.Room) *Form {
	f := &Form{}
	f.Initialize(room)
	return f
}

// Initialize loads room into the form (defaults when nil) and clears the
// dirty, submitted and validation state
func (f *Form) Initialize(room *domain.Room) {
	f.data = DefaultData()
	if room != nil {
		f.data.Name = room.Name
		f.data.Slug = room.Slug
		f.data.UserLimit = room.UserLimit
		f.data.IsOpen = room.IsOpen
		if room.Color != "" {
			f.data.Color = room.Color
		}
		if room.Icon != "" {
			f.data.Icon = room.Icon
		}
	}
	f.dirty = false
	f.submitted = false
	f.ClearValidationErrors()
}

// Reset restores the defaults
func (f *Form) Reset() {
	f.Initialize(nil)
}

func (f *Form) ClearValidationErrors() {
	f.validation = cleanValidation()
}

func (f *Form) Data() Data             { return f.data }
func (f *Form) Validation() Validation { return f.validation }
func (f *Form) IsDirty() bool          { return f.dirty }
func (f *Form) HasBeenSubmitted() bool { return f.submitted }

func (f *Form) SetName(v string) {
	f.data.Name = v
	f.changed(f.ValidateName)
}

func (f *Form) SetSlug(v string) {
	f.data.Slug = v
	f.changed(f.ValidateSlug)
}

func (f *Form) SetColor(v string) {
	f.data.Color = v
	f.changed(f.ValidateColor)
}

func (f *Form) SetIcon(v string) {
	f.data.Icon = v
	f.changed(f.ValidateIcon)
}

func (f *Form) SetUserLimit(v int) {
	f.data.UserLimit = v
	f.changed(f.ValidateUserLimit)
}

func (f *Form) SetIsOpen(v bool) {
	f.data.IsOpen = v
	f.changed(nil)
}

func (f *Form) changed(revalidate func() bool) {
	f.dirty = true
	if f.submitted && revalidate != nil {
		revalidate()
	}
}

func (f *Form) ValidateName() bool {
	f.validation.Name = ValidateName(f.data.Name)
	return f.validation.Name.Valid
}

func (f *Form) ValidateSlug() bool {
	f.validation.Slug = ValidateSlug(f.data.Slug)
	return f.validation.Slug.Valid
}

func (f *Form) ValidateColor() bool {
	f.validation.Color = ValidateColor(f.data.Color)
	return f.validation.Color.Valid
}

func (f *Form) ValidateIcon() bool {
	f.validation.Icon = ValidateIcon(f.data.Icon)
	return f.validation.Icon.Valid
}

func (f *Form) ValidateUserLimit() bool {
	f.validation.UserLimit = ValidateUserLimit(f.data.UserLimit)
	return f.validation.UserLimit.Valid
}

// ValidateForm runs every field validator, without stopping at the first
// failure, and reports whether all passed
func (f *Form) ValidateForm() bool {
	name := f.ValidateName()
	slug := f.ValidateSlug()
	color := f.ValidateColor()
	icon := f.ValidateIcon()
	limit := f.ValidateUserLimit()
	return name && slug && color && icon && limit
}

// FormatSlug rewrites the slug into URL-safe form. With fromName set and a
// non-empty name, the slug is derived from the name instead.
func (f *Form) FormatSlug(fromName bool) {
	src := f.data.Slug
	if fromName && f.data.Name != "" {
		src = f.data.Name
	}
	if slug := Slugify(src); slug != f.data.Slug {
		f.SetSlug(slug)
	}
}

// CanSubmit is true when the form is valid and was edited
func (f *Form) CanSubmit() bool {
	return f.ValidateForm() && f.dirty
}

func (f *Form) MarkAsSubmitted() {
	f.submitted = true
}

// CreateRequest returns the trimmed payload for creating a room
func (f *Form) CreateRequest() domain.CreateRoomRequest {
	return domain.CreateRoomRequest{
		Name:      strings.TrimSpace(f.data.Name),
		Slug:      strings.TrimSpace(f.data.Slug),
		Color:     strings.TrimSpace(f.data.Color),
		Icon:      strings.TrimSpace(f.data.Icon),
		UserLimit: f.data.UserLimit,
		IsOpen:    f.data.IsOpen,
	}
}

// UpdateRequest returns the trimmed payload for updating a room. The slug is
// part of the URL and not sent.
func (f *Form) UpdateRequest() domain.UpdateRoomRequest {
	c := f.CreateRequest()
	return domain.UpdateRoomRequest{
		Name:      &c.Name,
		Color:     &c.Color,
		Icon:      &c.Icon,
		UserLimit: &c.UserLimit,
		IsOpen:    &c.IsOpen,
	}
}
