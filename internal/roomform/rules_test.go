package roomform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		slug  string
		valid bool
	}{
		{"valid-slug-1", true},
		{"abc", true},
		{"abc--def", false},
		{"-abc", false},
		{"abc-", false},
		{"AB", false},
		{"UPPERCASE", false},
		{"has space", false},
		{"", false},
		{strings.Repeat("a", 51), false},
		{strings.Repeat("a", 50), true},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateSlug(tt.slug).Valid)
		})
	}
}

func TestValidateSlug_CollectsAllViolations(t *testing.T) {
	got := ValidateSlug("AB")
	assert.Equal(t, []string{
		"slug must be at least 3 characters",
		"slug may only contain lowercase letters, numbers and hyphens",
	}, got.Errors)

	got = ValidateSlug("-a--")
	assert.Equal(t, []string{
		"slug cannot start or end with a hyphen",
		"slug cannot contain consecutive hyphens",
	}, got.Errors)

	got = ValidateSlug("   ")
	assert.Equal(t, []string{"slug is required"}, got.Errors)
}

func TestValidateColor(t *testing.T) {
	tests := []struct {
		color string
		valid bool
	}{
		{"#1A2B3C", true},
		{"#abcdef", true},
		{"1A2B3C", false},
		{"#1A2B3G", false},
		{"#1A2B3", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateColor(tt.color).Valid)
		})
	}

	assert.Equal(t, []string{"color is required"}, ValidateColor("").Errors)
}

func TestValidateName(t *testing.T) {
	assert.True(t, ValidateName("Chess club").Valid)
	assert.Equal(t, []string{"name is required"}, ValidateName("  ").Errors)
	assert.Equal(t, []string{"name must be at least 3 characters"}, ValidateName("ab").Errors)
	assert.Equal(t, []string{"name must be at most 100 characters"}, ValidateName(strings.Repeat("n", 101)).Errors)
	assert.True(t, ValidateName("Île").Valid, "length counts characters, not bytes")
}

func TestValidateIcon(t *testing.T) {
	assert.True(t, ValidateIcon("mdi-star").Valid)
	assert.Equal(t, []string{`icon must start with "mdi-"`}, ValidateIcon("star").Errors)
	assert.Equal(t, []string{"icon is required"}, ValidateIcon("").Errors)
	assert.Len(t, ValidateIcon("x"+strings.Repeat("i", 100)).Errors, 2)
}

func TestValidateUserLimit(t *testing.T) {
	for _, n := range []int{2, 10, 50} {
		assert.True(t, ValidateUserLimit(n).Valid, "limit %d", n)
	}
	assert.Equal(t, []string{"user limit must be at least 2"}, ValidateUserLimit(1).Errors)
	assert.Equal(t, []string{"user limit must be at most 50"}, ValidateUserLimit(51).Errors)
}
