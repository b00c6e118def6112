package pagination

import "strconv"

// PageItem is one cell of the page window: a page number or an ellipsis
type PageItem struct {
	Page     int
	Ellipsis bool
}

func (i PageItem) String() string {
	if i.Ellipsis {
		return "..."
	}
	return strconv.Itoa(i.Page)
}

// PageSizeOption is a selectable page size with its label
type PageSizeOption struct {
	Title string `json:"title"`
	Value int    `json:"value"`
}

// VisiblePages builds the window around current: the first page, up to two
// pages either side of current, and the last page, with an ellipsis wherever
// pages are skipped. Each page number appears at most once.
func VisiblePages(current, totalPages int) []PageItem {
	if totalPages < 1 {
		return nil
	}
	current = clamp(current, 1, totalPages)

	items := []PageItem{{Page: 1}}
	if totalPages == 1 {
		return items
	}

	lo := max(2, current-windowDelta)
	hi := min(totalPages-1, current+windowDelta)

	if lo > 2 {
		items = append(items, PageItem{Ellipsis: true})
	}
	for i := lo; i <= hi; i++ {
		items = append(items, PageItem{Page: i})
	}
	if hi < totalPages-1 {
		items = append(items, PageItem{Ellipsis: true})
	}
	return append(items, PageItem{Page: totalPages})
}
