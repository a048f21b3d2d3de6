package query

import (
	"fmt"
	"math"
	"testing"
	"time"

	"retail-desk/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ana, bruno, carla *domain.Client
	clients           domain.ClientIndex
	sales             []*domain.Sale
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02T15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func newFixture() *fixture {
	f := &fixture{
		ana:   &domain.Client{ID: uuid.New(), Name: "Ana Pérez"},
		bruno: &domain.Client{ID: uuid.New(), Name: "Bruno Díaz"},
		carla: &domain.Client{ID: uuid.New(), Name: "Carla Soto"},
	}
	f.clients = domain.NewClientIndex([]*domain.Client{f.ana, f.bruno, f.carla})

	f.sales = []*domain.Sale{
		{ID: uuid.New(), ClientID: f.ana.ID, Date: day("2026-10-01T09:00"), Status: domain.SaleStatusCompleted, PaymentMethod: domain.PaymentMethodCash, Total: 15000},
		{ID: uuid.New(), ClientID: f.bruno.ID, Date: day("2026-10-02T18:30"), Status: domain.SaleStatusPending, PaymentMethod: domain.PaymentMethodCard, Total: 42000},
		{ID: uuid.New(), ClientID: f.carla.ID, Date: day("2026-10-03T12:00"), Status: domain.SaleStatusCancelled, PaymentMethod: domain.PaymentMethodTransfer, Total: 8000},
		{ID: uuid.New(), ClientID: f.ana.ID, Date: day("2026-10-04T23:59"), Status: domain.SaleStatusCompleted, PaymentMethod: domain.PaymentMethodCard, Total: 99000},
		{ID: uuid.New(), ClientID: uuid.New(), Date: day("2026-10-05T08:00"), Status: domain.SaleStatusPending, PaymentMethod: domain.PaymentMethodCash, Total: 500},
	}
	return f
}

func TestFilter_EmptyCriteriaMatchesAll(t *testing.T) {
	f := newFixture()
	assert.Len(t, Filter(f.sales, f.clients, Criteria{}), len(f.sales))
	assert.True(t, Criteria{}.IsEmpty())
}

func TestFilter_ClientNameCaseInsensitive(t *testing.T) {
	f := newFixture()

	got := Filter(f.sales, f.clients, Criteria{ClientName: "aNA"})
	require.Len(t, got, 2)
	for _, s := range got {
		assert.Equal(t, f.ana.ID, s.ClientID)
	}
}

func TestFilter_ClientNameKeepsSpaces(t *testing.T) {
	f := newFixture()

	got := Filter(f.sales, f.clients, Criteria{ClientName: "a s"})
	require.Len(t, got, 1)
	assert.Equal(t, f.carla.ID, got[0].ClientID)

	assert.Empty(t, Filter(f.sales, f.clients, Criteria{ClientName: " ana"}))
	assert.Empty(t, Filter(f.sales, f.clients, Criteria{ClientName: "ana  "}))
}

func TestFilter_UnknownClientMatchesSentinel(t *testing.T) {
	f := newFixture()

	got := Filter(f.sales, f.clients, Criteria{ClientName: "no encontrado"})
	require.Len(t, got, 1)
	assert.Equal(t, 500.0, got[0].Total)
}

func TestFilter_Conjunctive(t *testing.T) {
	f := newFixture()

	got := Filter(f.sales, f.clients, Criteria{
		Status:        domain.SaleStatusCompleted,
		PaymentMethod: domain.PaymentMethodCard,
	})
	require.Len(t, got, 1)
	assert.Equal(t, 99000.0, got[0].Total)

	got = Filter(f.sales, f.clients, Criteria{ClientID: f.ana.ID, AmountMax: At(20000)})
	require.Len(t, got, 1)
	assert.Equal(t, 15000.0, got[0].Total)
}

func TestFilter_DateRangeIgnoresTimeOfDay(t *testing.T) {
	f := newFixture()

	got := Filter(f.sales, f.clients, Criteria{DateFrom: "2026-10-02", DateTo: "2026-10-04"})
	require.Len(t, got, 3)
	assert.Equal(t, "2026-10-02", got[0].Day())
	assert.Equal(t, "2026-10-04", got[2].Day())
}

func TestFilter_AmountBoundsInclusive(t *testing.T) {
	f := newFixture()

	got := Filter(f.sales, f.clients, Criteria{AmountMin: At(8000), AmountMax: At(42000)})
	assert.Len(t, got, 3)

	got = Filter(f.sales, f.clients, Criteria{AmountMin: At(0)})
	assert.Len(t, got, 5)
}

func TestSortSales_ClientKeyUsesResolvedName(t *testing.T) {
	f := newFixture()

	sorted := SortSales(f.sales, f.clients, Sort{Key: SortByClient, Order: SortOrderAsc})
	names := make([]string, 0, len(sorted))
	for _, s := range sorted {
		names = append(names, f.clients.Name(s.ClientID))
	}
	assert.Equal(t, []string{"Ana Pérez", "Ana Pérez", "Bruno Díaz", "Carla Soto", domain.ClientNotFound}, names)
}

func TestSortSales_DoesNotMutateInput(t *testing.T) {
	f := newFixture()
	first := f.sales[0]

	SortSales(f.sales, f.clients, Sort{Key: SortByTotal, Order: SortOrderDesc})
	assert.Same(t, first, f.sales[0])
}

func TestSortSales_UnknownKeyDefaultsToNewestFirst(t *testing.T) {
	f := newFixture()

	sorted := SortSales(f.sales, f.clients, Sort{Key: "bogus", Order: "sideways"})
	assert.Equal(t, "2026-10-05", sorted[0].Day())
	assert.Equal(t, "2026-10-01", sorted[len(sorted)-1].Day())
}

func TestPaginate_WorkedExample(t *testing.T) {
	sales := make([]*domain.Sale, 25)
	for i := range sales {
		sales[i] = &domain.Sale{ID: uuid.New(), Total: float64(i)}
	}

	assert.Len(t, Paginate(sales, Page{Number: 1, Size: 12}), 12)
	assert.Len(t, Paginate(sales, Page{Number: 2, Size: 12}), 12)
	assert.Len(t, Paginate(sales, Page{Number: 3, Size: 12}), 1)
	assert.Empty(t, Paginate(sales, Page{Number: 4, Size: 12}))
	assert.Equal(t, 3, TotalPages(25, 12))
}

func TestRun_ReportsTotals(t *testing.T) {
	f := newFixture()

	res := Run(f.sales, f.clients, Criteria{Status: domain.SaleStatusPending}, DefaultSort, Page{Number: 1, Size: 1})
	assert.Equal(t, 2, res.TotalMatches)
	assert.Equal(t, 2, res.TotalPages)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "2026-10-05", res.Items[0].Day())
}

func TestPipeline_Memoizes(t *testing.T) {
	f := newFixture()
	pl := NewPipeline()
	c := Criteria{Status: domain.SaleStatusCompleted}

	first := pl.Run(1, f.sales, f.clients, c, DefaultSort, Page{Number: 1, Size: 10})
	second := pl.Run(1, f.sales, f.clients, c, DefaultSort, Page{Number: 1, Size: 10})
	assert.Equal(t, first, second)
	assert.Equal(t, 1, pl.Hits())

	// A new collection version forces a recompute
	f.sales = append(f.sales, &domain.Sale{ID: uuid.New(), ClientID: f.bruno.ID, Date: day("2026-10-06T10:00"), Status: domain.SaleStatusCompleted, Total: 1})
	third := pl.Run(2, f.sales, f.clients, c, DefaultSort, Page{Number: 1, Size: 10})
	assert.Equal(t, 3, third.TotalMatches)
	assert.Equal(t, 1, pl.Hits())
}

func genSales() gopter.Gen {
	return gen.SliceOf(gopter.CombineGens(
		gen.IntRange(0, 3),
		gen.Float64Range(0, 100000),
		gen.IntRange(1, 28),
		gen.IntRange(0, 2),
	).Map(func(v []interface{}) *domain.Sale {
		statuses := []domain.SaleStatus{domain.SaleStatusPending, domain.SaleStatusCompleted, domain.SaleStatusCancelled}
		return &domain.Sale{
			ID:     uuid.New(),
			Status: statuses[v[3].(int)],
			Total:  v[1].(float64),
			Date:   time.Date(2026, time.March, v[2].(int), v[0].(int)*5, 0, 0, 0, time.UTC),
		}
	}))
}

// Property 6: Filtering is idempotent
func TestProperty_FilterIdempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)
	clients := domain.ClientIndex{}

	properties.Property("filter(filter(x)) == filter(x)", prop.ForAll(
		func(sales []*domain.Sale, from, to int, min float64) bool {
			c := Criteria{
				Status:    domain.SaleStatusCompleted,
				DateFrom:  fmt.Sprintf("2026-03-%02d", from),
				DateTo:    fmt.Sprintf("2026-03-%02d", to),
				AmountMin: At(min),
			}
			once := Filter(sales, clients, c)
			twice := Filter(once, clients, c)
			if len(once) != len(twice) {
				return false
			}
			for i := range once {
				if once[i] != twice[i] {
					return false
				}
			}
			return true
		},
		genSales(),
		gen.IntRange(1, 28),
		gen.IntRange(1, 28),
		gen.Float64Range(0, 100000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property 7: Pages cover the filtered set exactly once
func TestProperty_PaginationCoversExactlyOnce(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("concatenated pages equal the input with no overlap", prop.ForAll(
		func(sales []*domain.Sale, size int) bool {
			seen := make(map[*domain.Sale]int)
			pages := TotalPages(len(sales), size)
			var count int
			for n := 1; n <= pages+1; n++ {
				page := Paginate(sales, Page{Number: n, Size: size})
				if n == pages+1 && len(page) != 0 {
					return false
				}
				for i, s := range page {
					if sales[(n-1)*size+i] != s {
						return false
					}
					seen[s]++
					count++
				}
			}
			if count != len(sales) {
				return false
			}
			for _, c := range seen {
				if c != 1 {
					return false
				}
			}
			return true
		},
		genSales(),
		gen.OneGenOf(gen.IntRange(1, 30), gen.IntRange(math.MaxInt/2, math.MaxInt)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property 7b: Any page past the end is empty, however large the page number or size
func TestProperty_PaginationFarPageEmpty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("pages beyond the last are empty without panicking", prop.ForAll(
		func(sales []*domain.Sale, number, size int) bool {
			return len(Paginate(sales, Page{Number: number, Size: size})) == 0
		},
		genSales(),
		gen.IntRange(math.MaxInt/4096, math.MaxInt),
		gen.OneGenOf(gen.IntRange(1, 30), gen.IntRange(math.MaxInt/2, math.MaxInt)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestPaginate_HugePageNumbers(t *testing.T) {
	sales := make([]*domain.Sale, 3)
	for i := range sales {
		sales[i] = &domain.Sale{ID: uuid.New()}
	}

	assert.Empty(t, Paginate(sales, Page{Number: 768614336404564652, Size: 12}))
	assert.Empty(t, Paginate(sales, Page{Number: math.MaxInt, Size: math.MaxInt}))
	assert.Len(t, Paginate(sales, Page{Number: 1, Size: math.MaxInt}), 3)
	assert.Empty(t, Window([]string{"a"}, Page{Number: 2, Size: math.MaxInt}))

	assert.Equal(t, 1, TotalPages(5, math.MaxInt))
	assert.Equal(t, 1, TotalPages(math.MaxInt, math.MaxInt))
	assert.Equal(t, 2, TotalPages(math.MaxInt, math.MaxInt-1))
	assert.Equal(t, 0, TotalPages(0, math.MaxInt))
}

// Property 8: Reversing the direction of a numeric sort reverses the sequence when there are no ties
func TestProperty_SortReverse(t *testing.T) {
	properties := gopter.NewProperties(nil)
	clients := domain.ClientIndex{}

	properties.Property("desc == reverse(asc) for distinct totals", prop.ForAll(
		func(n int) bool {
			sales := make([]*domain.Sale, n)
			for i := range sales {
				// distinct totals, scrambled order
				sales[i] = &domain.Sale{ID: uuid.New(), Total: float64((i * 7919) % 10007)}
			}
			asc := SortSales(sales, clients, Sort{Key: SortByTotal, Order: SortOrderAsc})
			desc := SortSales(sales, clients, Sort{Key: SortByTotal, Order: SortOrderDesc})
			for i := range asc {
				if asc[i] != desc[len(desc)-1-i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 200),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
