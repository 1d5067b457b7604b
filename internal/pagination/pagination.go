// Package pagination slices ordered collections into fixed-size pages.
package pagination

import "strconv"

// PostsPerPage is the page size used by every feed.
const PostsPerPage = 10

// Page describes one window into an ordered collection. The item slice itself
// is fetched by the caller using Offset/Limit.
type Page struct {
	Number     int  `json:"number"`
	Size       int  `json:"size"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// New builds a Page for the requested page number over totalItems items.
// rawPage comes straight from the `page` query parameter: empty defaults to
// page 1, anything invalid or out of range falls back to the last valid page.
// An empty collection yields a single empty page 1.
func New(totalItems int, rawPage string, size int) Page {
	if size <= 0 {
		size = PostsPerPage
	}
	if totalItems < 0 {
		totalItems = 0
	}

	totalPages := (totalItems + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}

	number := 1
	if rawPage != "" {
		n, err := strconv.Atoi(rawPage)
		if err != nil || n < 1 || n > totalPages {
			number = totalPages
		} else {
			number = n
		}
	}

	return Page{
		Number:     number,
		Size:       size,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasPrev:    number > 1,
		HasNext:    number < totalPages,
	}
}

// Offset is the number of items preceding this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Limit is the maximum number of items on this page.
func (p Page) Limit() int {
	return p.Size
}
