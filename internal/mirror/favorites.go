package mirror

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/eddyjj92/compay-storefront/pkg/compay"
	"github.com/eddyjj92/compay-storefront/pkg/logger"
)

// FavoriteItem is one mirrored favorite.
type FavoriteItem struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// FavoritesState is a point-in-time view of the favorites mirror.
type FavoritesState struct {
	Items []FavoriteItem `json:"items"`
	Count int            `json:"count"`
}

// FavoritesTransport confirms favorites mutations against the marketplace.
type FavoritesTransport interface {
	Add(ctx context.Context, productID int) error
	Remove(ctx context.Context, productID int) error
	Clear(ctx context.Context) error
}

// Favorites mirrors the visitor's favorites locally with the same
// optimistic apply / async confirm / snapshot rollback model as the cart.
type Favorites struct {
	transport FavoritesTransport
	logg      *logger.Logger

	mu    sync.Mutex
	items []FavoriteItem

	pending atomic.Int64
	wg      sync.WaitGroup
}

func NewFavorites(transport FavoritesTransport, logg *logger.Logger) *Favorites {
	return &Favorites{transport: transport, logg: logg}
}

func (f *Favorites) State() FavoritesState {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]FavoriteItem, len(f.items))
	copy(items, f.items)
	return FavoritesState{Items: items, Count: len(items)}
}

// IsFavorite reports current membership.
func (f *Favorites) IsFavorite(productID int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.indexOf(productID) >= 0
}

func (f *Favorites) indexOf(productID int) int {
	for i := range f.items {
		if f.items[i].ID == productID {
			return i
		}
	}
	return -1
}

func (f *Favorites) IsProcessing() bool {
	return f.pending.Load() > 0
}

// Wait blocks until every confirmation issued so far has settled.
func (f *Favorites) Wait() {
	f.wg.Wait()
}

// Add marks the product as favorite; already-present products are a no-op.
func (f *Favorites) Add(ctx context.Context, product compay.Product) {
	f.mu.Lock()
	if f.indexOf(product.ID) >= 0 {
		f.mu.Unlock()
		return
	}
	snapshot := make([]FavoriteItem, len(f.items))
	copy(snapshot, f.items)
	f.items = append(f.items, FavoriteItem{ID: product.ID, Name: product.Name, Image: product.Image})
	f.mu.Unlock()

	f.confirm(ctx, snapshot, "favorites.add", func(ctx context.Context) error {
		return f.transport.Add(ctx, product.ID)
	})
}

// Remove drops the product; absent products are a no-op.
func (f *Favorites) Remove(ctx context.Context, productID int) {
	f.mu.Lock()
	i := f.indexOf(productID)
	if i < 0 {
		f.mu.Unlock()
		return
	}
	snapshot := make([]FavoriteItem, len(f.items))
	copy(snapshot, f.items)
	f.items = append(f.items[:i], f.items[i+1:]...)
	f.mu.Unlock()

	f.confirm(ctx, snapshot, "favorites.remove", func(ctx context.Context) error {
		return f.transport.Remove(ctx, productID)
	})
}

// Toggle flips membership and returns the new state synchronously, before
// the confirmation settles.
func (f *Favorites) Toggle(ctx context.Context, product compay.Product) bool {
	if f.IsFavorite(product.ID) {
		f.Remove(ctx, product.ID)
		return false
	}
	f.Add(ctx, product)
	return true
}

// Clear empties the mirror.
func (f *Favorites) Clear(ctx context.Context) {
	f.mu.Lock()
	snapshot := make([]FavoriteItem, len(f.items))
	copy(snapshot, f.items)
	f.items = nil
	f.mu.Unlock()

	f.confirm(ctx, snapshot, "favorites.clear", func(ctx context.Context) error {
		return f.transport.Clear(ctx)
	})
}

func (f *Favorites) confirm(ctx context.Context, snapshot []FavoriteItem, op string, send func(context.Context) error) {
	f.pending.Add(1)
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer f.pending.Add(-1)

		if err := send(ctx); err != nil {
			f.mu.Lock()
			f.items = snapshot
			f.mu.Unlock()
			if f.logg != nil {
				f.logg.Error(ctx, op+"_confirm_failed", err)
			}
		}
	}()
}
