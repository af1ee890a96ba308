package catalog

// windowSize is the number of consecutive page links shown
const windowSize = 5

// PageItem is an entry of a page-number control: a page or an ellipsis
type PageItem struct {
	Page     int  `json:"page,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// PaginationWindow returns the page links to render for totalPages pages
// with currentPage selected. Up to five consecutive pages are shown around
// the current one; when the last page is out of reach an ellipsis and the
// last page follow.
func PaginationWindow(totalPages, currentPage int) []PageItem {
	if totalPages <= 0 {
		return []PageItem{}
	}
	current := min(max(currentPage, 1), totalPages)

	if totalPages <= windowSize {
		return pageRange(1, totalPages)
	}

	var first int
	switch {
	case current <= 3:
		first = 1
	case current >= totalPages-2:
		first = totalPages - windowSize + 1
	default:
		first = current - 2
	}
	last := first + windowSize - 1

	items := pageRange(first, last)
	if last < totalPages-2 {
		items = append(items, PageItem{Ellipsis: true}, PageItem{Page: totalPages})
	}
	return items
}

func pageRange(first, last int) []PageItem {
	items := make([]PageItem, 0, last-first+1)
	for p := first; p <= last; p++ {
		items = append(items, PageItem{Page: p})
	}
	return items
}
