package catalog

// DefaultPageSize is the number of resources per listing page.
const DefaultPageSize = 5

// maxPlainPages is the page count up to which every page number is shown.
const maxPlainPages = 7

// Page is one page of a list.
type Page[T any] struct {
	Items      []T
	Number     int
	Size       int
	TotalItems int
	TotalPages int
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a next page exists.
func (p Page[T]) HasNext() bool { return p.Number < p.TotalPages }

// PrevPage is the previous page number.
func (p Page[T]) PrevPage() int { return p.Number - 1 }

// NextPage is the next page number.
func (p Page[T]) NextPage() int { return p.Number + 1 }

// Links returns the page number links for the page bar.
func (p Page[T]) Links() []PageLink { return PageNumbers(p.Number, p.TotalPages) }

// Paginate cuts items into pages of size and returns page number page,
// clamped to [1, TotalPages]. TotalPages is at least 1.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size < 1 {
		size = DefaultPageSize
	}

	totalPages := (len(items) + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}

	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := min(start+size, len(items))

	return Page[T]{
		Items:      items[start:end],
		Number:     page,
		Size:       size,
		TotalItems: len(items),
		TotalPages: totalPages,
	}
}

// PageLink is an entry of the page bar: a page number or an ellipsis.
type PageLink struct {
	Number   int
	Ellipsis bool
	Current  bool
}

// PageNumbers lists page links. Up to seven pages are all shown; beyond that
// the first, the last and current±1 stay visible and gaps collapse into an
// ellipsis.
func PageNumbers(current, total int) []PageLink {
	if total < 1 {
		total = 1
	}

	current = max(1, min(current, total))

	links := make([]PageLink, 0, maxPlainPages)
	add := func(n int) {
		links = append(links, PageLink{Number: n, Current: n == current})
	}

	if total <= maxPlainPages {
		for n := 1; n <= total; n++ {
			add(n)
		}

		return links
	}

	add(1)

	lo := max(2, current-1) //nolint:mnd
	hi := min(total-1, current+1)

	if lo > 2 { //nolint:mnd
		links = append(links, PageLink{Ellipsis: true})
	}

	for n := lo; n <= hi; n++ {
		add(n)
	}

	if hi < total-1 {
		links = append(links, PageLink{Ellipsis: true})
	}

	add(total)

	return links
}
