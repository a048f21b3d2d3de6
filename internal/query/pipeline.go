package query

import (
	"sort"
	"strings"
	"sync"

	"retail-desk/internal/domain"

	"github.com/google/uuid"
)

// Result is one page of matching sales. Matches holds every matching sale in
// sorted order.
type Result struct {
	Items        []*domain.Sale
	Matches      []*domain.Sale
	TotalMatches int
	Page         int
	PageSize     int
	TotalPages   int
}

// Filter returns the sales satisfying every active criterion, in input order.
// The returned slice is new; the sales themselves are shared, not copied.
func Filter(sales []*domain.Sale, clients domain.ClientIndex, c Criteria) []*domain.Sale {
	needle := strings.ToLower(c.ClientName)

	matched := make([]*domain.Sale, 0, len(sales))
	for _, sale := range sales {
		if sale == nil {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(clients.Name(sale.ClientID)), needle) {
			continue
		}
		if c.Status != "" && sale.Status != c.Status {
			continue
		}
		if c.PaymentMethod != "" && sale.PaymentMethod != c.PaymentMethod {
			continue
		}
		if c.ClientID != uuid.Nil && sale.ClientID != c.ClientID {
			continue
		}
		day := sale.Day()
		if c.DateFrom != "" && day < c.DateFrom {
			continue
		}
		if c.DateTo != "" && day > c.DateTo {
			continue
		}
		if c.AmountMin.Set && sale.Total < c.AmountMin.Value {
			continue
		}
		if c.AmountMax.Set && sale.Total > c.AmountMax.Value {
			continue
		}
		matched = append(matched, sale)
	}

	return matched
}

// SortSales returns a stably sorted copy of sales
func SortSales(sales []*domain.Sale, clients domain.ClientIndex, s Sort) []*domain.Sale {
	s = s.normalize()

	sorted := make([]*domain.Sale, len(sales))
	copy(sorted, sales)

	less := lessFunc(s.Key, clients)
	if s.Order == SortOrderDesc {
		sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[j], sorted[i]) })
	} else {
		sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	}

	return sorted
}

func lessFunc(key SortKey, clients domain.ClientIndex) func(a, b *domain.Sale) bool {
	switch key {
	case SortByClient:
		return func(a, b *domain.Sale) bool {
			return strings.ToLower(clients.Name(a.ClientID)) < strings.ToLower(clients.Name(b.ClientID))
		}
	case SortByTotal:
		return func(a, b *domain.Sale) bool { return a.Total < b.Total }
	case SortByStatus:
		return func(a, b *domain.Sale) bool { return a.Status < b.Status }
	case SortByPaymentMethod:
		return func(a, b *domain.Sale) bool { return a.PaymentMethod < b.PaymentMethod }
	case SortByID:
		return func(a, b *domain.Sale) bool { return a.ID.String() < b.ID.String() }
	default:
		return func(a, b *domain.Sale) bool { return a.Date.Before(b.Date) }
	}
}

// Paginate returns the slice [(n-1)*size, n*size) of sales. A page past the
// end yields an empty slice.
func Paginate(sales []*domain.Sale, p Page) []*domain.Sale {
	return Window(sales, p)
}

// Window is Paginate for any element type
func Window[T any](items []T, p Page) []T {
	p = p.normalize()

	// compare page indexes before multiplying so huge pages cannot overflow
	if p.Number-1 >= TotalPages(len(items), p.Size) {
		return []T{}
	}
	start := (p.Number - 1) * p.Size
	end := len(items)
	if len(items)-start > p.Size {
		end = start + p.Size
	}

	return items[start:end]
}

// TotalPages computes how many pages of size are needed for total items
func TotalPages(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return pages
}

// Run filters, sorts and pages sales in one pass
func Run(sales []*domain.Sale, clients domain.ClientIndex, c Criteria, s Sort, p Page) Result {
	p = p.normalize()

	matched := SortSales(Filter(sales, clients, c), clients, s)

	return Result{
		Items:        Paginate(matched, p),
		Matches:      matched,
		TotalMatches: len(matched),
		Page:         p.Number,
		PageSize:     p.Size,
		TotalPages:   TotalPages(len(matched), p.Size),
	}
}

type memoKey struct {
	version  uint64
	criteria Criteria
	sort     Sort
	page     Page
}

// Pipeline memoizes the last Run. Callers bump version whenever the sale or
// client collections change; any input change recomputes everything.
type Pipeline struct {
	mu     sync.Mutex
	key    memoKey
	result Result
	valid  bool
	hits   int
}

// NewPipeline creates an empty Pipeline
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Run returns the cached result when nothing changed since the previous call
func (pl *Pipeline) Run(version uint64, sales []*domain.Sale, clients domain.ClientIndex, c Criteria, s Sort, p Page) Result {
	key := memoKey{version: version, criteria: c, sort: s.normalize(), page: p.normalize()}

	pl.mu.Lock()
	defer pl.mu.Unlock()

	if pl.valid && pl.key == key {
		pl.hits++
		return pl.result
	}

	pl.result = Run(sales, clients, c, s, p)
	pl.key = key
	pl.valid = true
	return pl.result
}

// Hits returns how many calls were served from the cache
func (pl *Pipeline) Hits() int {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.hits
}
