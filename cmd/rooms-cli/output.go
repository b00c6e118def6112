package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"rooms-client/internal/domain"
	"rooms-client/internal/filters"
	"rooms-client/internal/pagination"
	"rooms-client/internal/state"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// render writes v as indented JSON, or calls table with a tab-aligned writer
func (a *app) render(v any, table func(w *tabwriter.Writer)) error {
	if a.format == formatJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

func (a *app) printMessage(msg string) error {
	return a.render(map[string]string{"message": msg}, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, msg)
	})
}

type sessionView struct {
	User      *domain.User `json:"user,omitempty"`
	ExpiresAt string       `json:"expiresAt,omitempty"`
}

func (a *app) printSession(resp *domain.AuthResponse) error {
	v := sessionView{User: resp.User}
	if exp := resp.Expiry(); !exp.IsZero() {
		v.ExpiresAt = exp.Format(time.RFC3339)
	}
	return a.render(v, func(w *tabwriter.Writer) {
		if resp.User != nil {
			fmt.Fprintf(w, "Logged in as %s\n", resp.User.Username)
		} else {
			fmt.Fprintln(w, "Logged in")
		}
		if v.ExpiresAt != "" {
			fmt.Fprintf(w, "Session expires\t%s\n", v.ExpiresAt)
		}
	})
}

func (a *app) printUser(u *domain.User, role string) error {
	return a.render(u, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "ID\t%s\n", u.ID)
		fmt.Fprintf(w, "Username\t%s\n", u.Username)
		fmt.Fprintf(w, "Email\t%s\n", u.Email)
		fmt.Fprintf(w, "Role\t%s\n", role)
	})
}

func status(open bool) string {
	if open {
		return "open"
	}
	return "closed"
}

func (a *app) printRoom(r *domain.Room) error {
	return a.render(r, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "ID\t%s\n", r.ID)
		fmt.Fprintf(w, "Slug\t%s\n", r.Slug)
		fmt.Fprintf(w, "Name\t%s\n", r.Name)
		fmt.Fprintf(w, "Status\t%s\n", status(r.IsOpen))
		fmt.Fprintf(w, "Users\t%d/%d\n", r.CurrentUserCount, r.UserLimit)
		fmt.Fprintf(w, "Color\t%s\n", r.Color)
		fmt.Fprintf(w, "Icon\t%s\n", r.Icon)
		if !r.CreatedAt.IsZero() {
			fmt.Fprintf(w, "Created\t%s\n", r.CreatedAt.Format(time.RFC3339))
		}
		if !r.UpdatedAt.IsZero() {
			fmt.Fprintf(w, "Updated\t%s\n", r.UpdatedAt.Format(time.RFC3339))
		}
	})
}

type roomListView struct {
	Rooms      []domain.RoomSummary  `json:"rooms"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	TotalCount int                   `json:"totalCount"`
	TotalPages int                   `json:"totalPages"`
	Filters    domain.FilterCriteria `json:"filters"`
	Stats      statsView             `json:"stats"`
}

type statsView struct {
	Open             int `json:"open"`
	Closed           int `json:"closed"`
	TotalUsers       int `json:"totalUsers"`
	TotalCapacity    int `json:"totalCapacity"`
	AverageOccupancy int `json:"averageOccupancy"`
}

func (a *app) printRoomList(snap state.RoomsSnapshot, p *pagination.Paginator) error {
	v := roomListView{
		Rooms:      snap.FilteredRooms,
		Page:       snap.CurrentPage,
		PageSize:   snap.PageSize,
		TotalCount: snap.TotalCount,
		TotalPages: snap.TotalPages,
		Filters:    snap.Filters,
		Stats:      statsView(snap.Stats),
	}
	return a.render(v, func(w *tabwriter.Writer) {
		if len(v.Rooms) == 0 {
			fmt.Fprintln(w, "No rooms found")
		} else {
			fmt.Fprintln(w, "SLUG\tNAME\tSTATUS\tUSERS\tID")
			for _, r := range v.Rooms {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\n", r.Slug, r.Name, status(r.IsOpen), r.CurrentUserCount, r.UserLimit, r.ID)
			}
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s. %s\n", p.StatusText(), p.PageInfo())
		if pages := p.VisiblePages(); len(pages) > 1 {
			labels := make([]string, len(pages))
			for i, item := range pages {
				labels[i] = item.String()
				if item.Page == p.CurrentPage() && !item.Ellipsis {
					labels[i] = "[" + labels[i] + "]"
				}
			}
			fmt.Fprintf(w, "Pages: %s\n", strings.Join(labels, " "))
		}
		fmt.Fprintf(w, "Filters: %s\n", filters.Describe(v.Filters))
		fmt.Fprintf(w, "Open %d, closed %d, occupancy %d%%\n", v.Stats.Open, v.Stats.Closed, v.Stats.AverageOccupancy)
	})
}

func (a *app) printFilters(f domain.FilterCriteria) error {
	return a.render(f, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, filters.Describe(f))
		fmt.Fprintf(w, "Page size\t%d\n", f.PageSize)
	})
}
