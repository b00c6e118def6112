package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterCriteria_Equal(t *testing.T) {
	base := DefaultFilters()

	tests := []struct {
		name  string
		other FilterCriteria
		want  bool
	}{
		{"same defaults", DefaultFilters(), true},
		{"different page", FilterCriteria{Page: 2, PageSize: 10}, false},
		{"different search", FilterCriteria{Page: 1, PageSize: 10, Search: "x"}, false},
		{"isOpen set vs unset", FilterCriteria{Page: 1, PageSize: 10, IsOpen: Ptr(true)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Equal(tt.other))
		})
	}

	t.Run("isOpen compared by value", func(t *testing.T) {
		a := FilterCriteria{Page: 1, PageSize: 10, IsOpen: Ptr(false)}
		b := FilterCriteria{Page: 1, PageSize: 10, IsOpen: Ptr(false)}
		assert.True(t, a.Equal(b))
		b.IsOpen = Ptr(true)
		assert.False(t, a.Equal(b))
	})
}

func TestFilterPatch_Apply(t *testing.T) {
	f := FilterCriteria{Page: 3, PageSize: 20, IsOpen: Ptr(true), Search: "chess"}

	t.Run("empty patch keeps everything", func(t *testing.T) {
		assert.True(t, f.Equal(FilterPatch{}.Apply(f)))
	})

	t.Run("clears isOpen explicitly", func(t *testing.T) {
		got := FilterPatch{SetIsOpen: true}.Apply(f)
		assert.Nil(t, got.IsOpen)
		assert.NotNil(t, f.IsOpen, "original must not be modified")
	})

	t.Run("overrides fields", func(t *testing.T) {
		got := FilterPatch{Page: Ptr(1), Search: Ptr("")}.Apply(f)
		assert.Equal(t, 1, got.Page)
		assert.Equal(t, "", got.Search)
		assert.Equal(t, 20, got.PageSize)
	})

	t.Run("result does not alias the input", func(t *testing.T) {
		got := FilterPatch{}.Apply(f)
		*got.IsOpen = false
		assert.True(t, *f.IsOpen)
	})
}
