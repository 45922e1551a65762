package repository

// Limit is the page size of a listing: either a bounded number of items or
// everything. I keep the two cases explicit so "no limit" can never be
// confused with a limit the caller forgot to set.
type Limit struct {
	n       int
	bounded bool
}

// Bounded returns a limit of n items per page.
func Bounded(n int) Limit { return Limit{n: n, bounded: true} }

// Unbounded returns a limit that returns every matching item.
func Unbounded() Limit { return Limit{} }

// LimitFromQuery converts the transport convention (0 means everything) into a Limit.
func LimitFromQuery(n int) Limit {
	if n == 0 {
		return Unbounded()
	}
	return Bounded(n)
}

// IsBounded reports whether the limit caps the page size.
func (l Limit) IsBounded() bool { return l.bounded }

// Size returns the page size; it is meaningless for an unbounded limit.
func (l Limit) Size() int { return l.n }

// Page is a 1-indexed window over an ordered listing.
// It performs no validation; callers reject page < 1 before building queries.
type Page struct {
	Number int
	Limit  Limit
}

// NewPage builds a page request.
func NewPage(number int, limit Limit) Page { return Page{Number: number, Limit: limit} }

// Skip is the number of rows to skip before the window starts.
func (p Page) Skip() int {
	if !p.Limit.bounded {
		return 0
	}
	return (p.Number - 1) * p.Limit.n
}

// Take returns the number of rows to fetch, and false when every row should be fetched.
func (p Page) Take() (int, bool) {
	if !p.Limit.bounded {
		return 0, false
	}
	return p.Limit.n, true
}

// TotalPages derives the page count for a listing of total items.
func (p Page) TotalPages(total int64) int {
	if !p.Limit.bounded || p.Limit.n <= 0 {
		return 1
	}
	n := int64(p.Limit.n)
	return int((total + n - 1) / n)
}

// CurrentPage is the page number reported back to clients; an unbounded page is always page 1.
func (p Page) CurrentPage() int {
	if !p.Limit.bounded {
		return 1
	}
	return p.Number
}

// PageResult carries one window of items plus the metadata clients need to paginate.
type PageResult[T any] struct {
	Items       []T   `json:"items"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
}

// NewPageResult assembles a result for page p.
func NewPageResult[T any](p Page, items []T, total int64) PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return PageResult[T]{
		Items:       items,
		Total:       total,
		TotalPages:  p.TotalPages(total),
		CurrentPage: p.CurrentPage(),
	}
}

// MapPageResult projects every item of a result, keeping the metadata.
func MapPageResult[T, U any](in PageResult[T], fn func(T) U) PageResult[U] {
	out := make([]U, len(in.Items))
	for i, it := range in.Items {
		out[i] = fn(it)
	}
	return PageResult[U]{Items: out, Total: in.Total, TotalPages: in.TotalPages, CurrentPage: in.CurrentPage}
}
