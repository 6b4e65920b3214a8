// Package catalog provides paginated, cached views over the purchasable catalogs.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/trainerhub/poketrainer/internal"
)

// ErrPageOutOfRange is returned for page numbers outside 1..TotalPages
var ErrPageOutOfRange = errors.New("page out of range")

// Page is one slice of a resource listing
type Page[T any] struct {
	Number     int // 1-based
	TotalPages int
	TotalItems int
	Items      []T
}

// HasNext reports whether a following page exists
func (p Page[T]) HasNext() bool {
	return p.Number < p.TotalPages
}

// HasPrev reports whether a preceding page exists
func (p Page[T]) HasPrev() bool {
	return p.Number > 1
}

// Resource is a lazily loaded, cached listing with pagination and purchase.
// Concurrent loads share one backend call.
type Resource[T any] struct {
	name     string
	pageSize int
	load     func(ctx context.Context) ([]T, error)
	key      func(T) string
	buy      func(ctx context.Context, key string) error

	group singleflight.Group

	mu     sync.Mutex
	items  []T
	loaded bool
	gen    uint64
}

// NewResource creates a resource. key yields the purchase key of an item and
// buy performs the purchase for that key.
func NewResource[T any](name string, pageSize int, load func(ctx context.Context) ([]T, error), key func(T) string, buy func(ctx context.Context, key string) error) *Resource[T] {
	if pageSize <= 0 {
		pageSize = internal.DefaultPageSize
	}
	return &Resource[T]{
		name:     name,
		pageSize: pageSize,
		load:     load,
		key:      key,
		buy:      buy,
	}
}

// Name returns the resource name, e.g. "cards"
func (r *Resource[T]) Name() string {
	return r.name
}

// PageSize returns the number of items per page
func (r *Resource[T]) PageSize() int {
	return r.pageSize
}

// Items returns a copy of the full listing, loading it once
func (r *Resource[T]) Items(ctx context.Context) ([]T, error) {
	r.mu.Lock()
	if r.loaded {
		items := slices.Clone(r.items)
		r.mu.Unlock()
		return items, nil
	}
	gen := r.gen
	r.mu.Unlock()

	v, err, shared := r.group.Do(r.name, func() (interface{}, error) {
		items, err := r.load(ctx)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		if r.gen == gen {
			r.items = items
			r.loaded = true
		}
		r.mu.Unlock()
		return items, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", r.name, err)
	}
	if shared {
		internal.LogDebug("Coalesced %s load", r.name)
	}
	return slices.Clone(v.([]T)), nil
}

// Page returns page n (1-based) of the listing
func (r *Resource[T]) Page(ctx context.Context, n int) (Page[T], error) {
	items, err := r.Items(ctx)
	if err != nil {
		return Page[T]{}, err
	}
	return paginate(items, n, r.pageSize)
}

// Invalidate drops the cached listing so the next read reloads it
func (r *Resource[T]) Invalidate() {
	r.mu.Lock()
	r.items = nil
	r.loaded = false
	r.gen++
	r.mu.Unlock()
	r.group.Forget(r.name)
}

// Key returns the purchase key of item
func (r *Resource[T]) Key(item T) string {
	return r.key(item)
}

// Buy purchases item and invalidates the cached listing
func (r *Resource[T]) Buy(ctx context.Context, item T) error {
	return r.BuyKey(ctx, r.key(item))
}

// BuyKey purchases by raw key and invalidates the cached listing
func (r *Resource[T]) BuyKey(ctx context.Context, key string) error {
	if r.buy == nil {
		return fmt.Errorf("%s cannot be bought", r.name)
	}
	if err := r.buy(ctx, key); err != nil {
		return err
	}
	r.Invalidate()
	return nil
}

func paginate[T any](items []T, n, size int) (Page[T], error) {
	total := (len(items) + size - 1) / size
	if total == 0 {
		total = 1
	}
	if n < 1 || n > total {
		return Page[T]{}, fmt.Errorf("%w: %d not in 1..%d", ErrPageOutOfRange, n, total)
	}

	start := (n - 1) * size
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return Page[T]{
		Number:     n,
		TotalPages: total,
		TotalItems: len(items),
		Items:      items[start:end],
	}, nil
}
