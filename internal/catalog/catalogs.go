package catalog

import (
	"context"
	"strconv"

	"github.com/trainerhub/poketrainer/internal"
)

// Backend is the slice of the REST client the catalogs need
type Backend interface {
	Catalog(ctx context.Context, kind internal.CatalogKind) ([]internal.CatalogItem, error)
	Buy(ctx context.Context, kind internal.CatalogKind, key string) error
	MarketAll(ctx context.Context) ([]internal.MarketListing, error)
	MarketOwned(ctx context.Context) ([]internal.MarketListing, error)
	MarketBuy(ctx context.Context, id string) error
}

// NewCosmetics returns the catalog of kind. Cards and backgrounds are bought
// by name, titles by listing index.
func NewCosmetics(b Backend, kind internal.CatalogKind, pageSize int) *Resource[internal.CatalogItem] {
	key := func(item internal.CatalogItem) string { return item.Name }
	if kind == internal.KindTitle {
		key = func(item internal.CatalogItem) string { return strconv.Itoa(item.Index) }
	}
	return NewResource(string(kind)+"s", pageSize,
		func(ctx context.Context) ([]internal.CatalogItem, error) {
			return b.Catalog(ctx, kind)
		},
		key,
		func(ctx context.Context, k string) error {
			return b.Buy(ctx, kind, k)
		},
	)
}

// NewMarket returns the marketplace listing, bought by listing id
func NewMarket(b Backend, pageSize int) *Resource[internal.MarketListing] {
	return NewResource("market", pageSize,
		b.MarketAll,
		func(l internal.MarketListing) string { return l.ID },
		b.MarketBuy,
	)
}

// NewOwned returns the listings owned by the current trainer. They cannot be bought.
func NewOwned(b Backend, pageSize int) *Resource[internal.MarketListing] {
	return NewResource("owned items", pageSize,
		b.MarketOwned,
		func(l internal.MarketListing) string { return l.ID },
		nil,
	)
}
