// Package workspace holds the locally fetched collections the screens work
// from and keeps them fresh.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"retail-desk/internal/domain"
	"retail-desk/internal/gateway"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Collection names a fetched data set
type Collection string

const (
	Clients    Collection = "clients"
	Products   Collection = "products"
	Categories Collection = "categories"
	Sales      Collection = "sales"
)

// Snapshot is a consistent read of the workspace at one instant. Collections
// may come from different refresh rounds.
type Snapshot struct {
	Clients     []*domain.Client
	Products    []*domain.Product
	Categories  []*domain.Category
	Sales       []*domain.Sale
	ClientIndex domain.ClientIndex
	ProductIdx  domain.ProductIndex
	// Version changes whenever clients or sales change
	Version     uint64
	Errors      map[Collection]error
	RefreshedAt time.Time
}

// Workspace owns the local copies of the gateway collections
type Workspace struct {
	gw     gateway.Gateway
	logger *zap.Logger
	group  singleflight.Group

	mu          sync.RWMutex
	clients     []*domain.Client
	products    []*domain.Product
	categories  []*domain.Category
	sales       []*domain.Sale
	clientIdx   domain.ClientIndex
	productIdx  domain.ProductIndex
	saleIdx     map[uuid.UUID]*domain.Sale
	version     uint64
	errs        map[Collection]error
	refreshedAt time.Time

	// generation is bumped by Invalidate; stored records the generation of
	// the round that last wrote each collection
	generation uint64
	stored     map[Collection]uint64
}

// New creates an empty Workspace
func New(gw gateway.Gateway, logger *zap.Logger) *Workspace {
	return &Workspace{
		gw:         gw,
		logger:     logger,
		clientIdx:  domain.ClientIndex{},
		productIdx: domain.ProductIndex{},
		saleIdx:    map[uuid.UUID]*domain.Sale{},
		errs:       make(map[Collection]error),
		stored:     make(map[Collection]uint64),
	}
}

// Refresh fetches every collection concurrently. Each collection is stored
// as soon as its own fetch completes; a failed fetch keeps the previous
// value and is recorded in Snapshot.Errors. Concurrent calls in the same
// generation share one round. The round is not tied to any caller's ctx: a
// cancelled caller stops waiting while the others still get the result.
func (w *Workspace) Refresh(ctx context.Context) error {
	w.mu.RLock()
	gen := w.generation
	w.mu.RUnlock()

	ch := w.group.DoChan("refresh-"+strconv.FormatUint(gen, 10), func() (interface{}, error) {
		return nil, w.refresh(context.WithoutCancel(ctx), gen)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Invalidate marks the current data as stale after a write. A Refresh called
// afterwards never joins a round that started before.
func (w *Workspace) Invalidate() {
	w.mu.Lock()
	w.generation++
	w.mu.Unlock()
}

func (w *Workspace) refresh(ctx context.Context, gen uint64) error {
	start := time.Now()

	var g errgroup.Group
	g.Go(func() error {
		return load(ctx, w, gen, Clients, w.gw.FetchClients, func(v []*domain.Client) {
			w.clients = v
			w.clientIdx = domain.NewClientIndex(v)
			w.version++
		})
	})
	g.Go(func() error {
		return load(ctx, w, gen, Products, w.gw.FetchProducts, func(v []*domain.Product) {
			w.products = v
			w.productIdx = domain.NewProductIndex(v)
		})
	})
	g.Go(func() error {
		return load(ctx, w, gen, Categories, w.gw.FetchCategories, func(v []*domain.Category) {
			w.categories = v
		})
	})
	g.Go(func() error {
		return load(ctx, w, gen, Sales, w.gw.FetchSales, func(v []*domain.Sale) {
			w.sales = v
			w.saleIdx = make(map[uuid.UUID]*domain.Sale, len(v))
			for _, s := range v {
				w.saleIdx[s.ID] = s
			}
			w.version++
		})
	})

	err := g.Wait()

	w.mu.Lock()
	w.refreshedAt = time.Now()
	w.mu.Unlock()

	w.logger.Debug("Workspace refreshed",
		zap.Duration("duration", time.Since(start)),
		zap.Bool("partial", err != nil),
	)
	return err
}

func load[T any](ctx context.Context, w *Workspace, gen uint64, name Collection, fetch func(context.Context) ([]T, error), store func([]T)) error {
	items, err := fetch(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()

	// a newer round already stored this collection
	if gen < w.stored[name] {
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", name, err)
		}
		return nil
	}
	w.stored[name] = gen

	if err != nil {
		w.errs[name] = err
		w.logger.Warn("Failed to fetch collection", zap.String("collection", string(name)), zap.Error(err))
		return fmt.Errorf("failed to fetch %s: %w", name, err)
	}

	delete(w.errs, name)
	store(items)
	return nil
}

// Snapshot returns the current collections. The slices must not be mutated.
func (w *Workspace) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	errs := make(map[Collection]error, len(w.errs))
	for k, v := range w.errs {
		errs[k] = v
	}

	return Snapshot{
		Clients:     w.clients,
		Products:    w.products,
		Categories:  w.categories,
		Sales:       w.sales,
		ClientIndex: w.clientIdx,
		ProductIdx:  w.productIdx,
		Version:     w.version,
		Errors:      errs,
		RefreshedAt: w.refreshedAt,
	}
}

// Product looks up a product by ID
func (w *Workspace) Product(id uuid.UUID) (*domain.Product, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.productIdx.Get(id)
}

// Sale looks up a sale by ID
func (w *Workspace) Sale(id uuid.UUID) (*domain.Sale, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s, ok := w.saleIdx[id]
	return s, ok
}

// Watch refreshes on every trigger signal until ctx is done
func (w *Workspace) Watch(ctx context.Context, trigger Trigger) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-trigger.Signals():
			if !ok {
				return
			}
			if err := w.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Warn("Triggered refresh incomplete", zap.Error(err))
			}
		}
	}
}
