package roomform

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	nameMinLen   = 3
	nameMaxLen   = 100
	slugMinLen   = 3
	slugMaxLen   = 50
	iconMaxLen   = 100
	iconPrefix   = "mdi-"
	MinUserLimit = 2
	MaxUserLimit = 50
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9-]+$`)
	colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// Result is the outcome of validating one field
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func result(errs []string) Result {
	return Result{Valid: len(errs) == 0, Errors: errs}
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}

// ValidateName checks a room name. An empty name only reports "required".
func ValidateName(name string) Result {
	if strings.TrimSpace(name) == "" {
		return result([]string{"name is required"})
	}
	var errs []string
	if length(name) > nameMaxLen {
		errs = append(errs, "name must be at most 100 characters")
	}
	if length(name) < nameMinLen {
		errs = append(errs, "name must be at least 3 characters")
	}
	return result(errs)
}

// ValidateSlug checks a room slug
func ValidateSlug(slug string) Result {
	if strings.TrimSpace(slug) == "" {
		return result([]string{"slug is required"})
	}
	var errs []string
	if length(slug) > slugMaxLen {
		errs = append(errs, "slug must be at most 50 characters")
	}
	if length(slug) < slugMinLen {
		errs = append(errs, "slug must be at least 3 characters")
	}
	if !slugPattern.MatchString(slug) {
		errs = append(errs, "slug may only contain lowercase letters, numbers and hyphens")
	}
	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		errs = append(errs, "slug cannot start or end with a hyphen")
	}
	if strings.Contains(slug, "--") {
		errs = append(errs, "slug cannot contain consecutive hyphens")
	}
	return result(errs)
}

// ValidateColor checks for a #RRGGBB hex color
func ValidateColor(color string) Result {
	if strings.TrimSpace(color) == "" {
		return result([]string{"color is required"})
	}
	if !colorPattern.MatchString(color) {
		return result([]string{"color must be a hex value (#RRGGBB)"})
	}
	return result(nil)
}

// ValidateIcon checks for a Material Design icon name
func ValidateIcon(icon string) Result {
	if strings.TrimSpace(icon) == "" {
		return result([]string{"icon is required"})
	}
	var errs []string
	if length(icon) > iconMaxLen {
		errs = append(errs, "icon must be at most 100 characters")
	}
	if !strings.HasPrefix(icon, iconPrefix) {
		errs = append(errs, `icon must start with "mdi-"`)
	}
	return result(errs)
}

func ValidateUserLimit(limit int) Result {
	switch {
	case limit < MinUserLimit:
		return result([]string{"user limit must be at least 2"})
	case limit > MaxUserLimit:
		return result([]string{"user limit must be at most 50"})
	}
	return result(nil)
}
