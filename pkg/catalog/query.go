package catalog

// DefaultPageSize is the number of books per page when none is given
const DefaultPageSize = 12

// Result is one page of a filtered working set
type Result struct {
	Items        []Book `json:"items"`
	TotalMatches int    `json:"totalMatches"`
	TotalPages   int    `json:"totalPages"`
	Page         int    `json:"page"`
	PageSize     int    `json:"pageSize"`
}

// Filter keeps the books accepted by p, preserving their order
func Filter(records []Book, p Predicate) []Book {
	if p == nil {
		p = MatchAll
	}
	out := make([]Book, 0, len(records))
	for _, b := range records {
		if p(b) {
			out = append(out, b)
		}
	}
	return out
}

// RunQuery filters records with p and returns the requested 1-indexed page.
// A page past the end yields no items.
func RunQuery(records []Book, p Predicate, page, pageSize int) Result {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	matches := Filter(records, p)
	totalPages := len(matches) / pageSize
	if len(matches)%pageSize != 0 {
		totalPages++
	}
	res := Result{
		Items:        []Book{},
		TotalMatches: len(matches),
		TotalPages:   totalPages,
		Page:         page,
		PageSize:     pageSize,
	}

	// Checked before multiplying, (page-1)*pageSize may overflow
	if page > totalPages {
		return res
	}
	start := (page - 1) * pageSize
	end := start + min(pageSize, len(matches)-start)
	res.Items = matches[start:end]

	return res
}

// Cursor tracks the filter and page a caller is browsing.
// The zero value starts on page 1 with no filter.
type Cursor struct {
	spec FilterSpec
	pred Predicate
	page int
}

// SetFilter replaces the filter and goes back to the first page
func (c *Cursor) SetFilter(spec FilterSpec) {
	c.spec = spec
	c.pred = BuildPredicate(spec)
	c.page = 1
}

// SetPage moves to page p, values below 1 select the first page
func (c *Cursor) SetPage(p int) {
	c.page = max(p, 1)
}

// Page returns the current page
func (c *Cursor) Page() int {
	return max(c.page, 1)
}

// Filter returns the current filter
func (c *Cursor) Filter() FilterSpec {
	return c.spec
}

// Run executes the current query against records
func (c *Cursor) Run(records []Book, pageSize int) Result {
	return RunQuery(records, c.pred, c.Page(), pageSize)
}
