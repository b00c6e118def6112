package filters

import (
	"strings"

	"rooms-client/internal/domain"
)

// FilterRooms keeps the rooms whose name or slug contains search, ignoring
// case and surrounding whitespace. A blank search returns rooms unchanged.
func FilterRooms(rooms []domain.RoomSummary, search string) []domain.RoomSummary {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return rooms
	}

	out := make([]domain.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		if strings.Contains(strings.ToLower(r.Name), term) || strings.Contains(strings.ToLower(r.Slug), term) {
			out = append(out, r)
		}
	}
	return out
}
