// Package mirror implements the storefront's optimistic mutation model.
// Mutations apply to a local mirror synchronously, confirm against the
// marketplace asynchronously, and roll the mirror back to the exact
// pre-mutation snapshot when the confirmation fails. IsProcessing is an
// outstanding-count gate for the UI, not a lock: new mutations may start
// while others are in flight, and there is no per-product serialization.
package mirror

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/eddyjj92/compay-storefront/pkg/compay"
	"github.com/eddyjj92/compay-storefront/pkg/logger"
)

// CartItem is one mirrored cart line. Price is the discounted unit price
// captured when the product was added.
type CartItem struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image"`
}

// CartState is a point-in-time view of the mirror.
type CartState struct {
	Items []CartItem      `json:"items"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// CartTransport confirms cart mutations against the marketplace.
type CartTransport interface {
	Add(ctx context.Context, productID, quantity int) error
	Update(ctx context.Context, productID, quantity int) error
	Remove(ctx context.Context, productID int) error
	Clear(ctx context.Context) error
}

// Cart mirrors the visitor's cart locally.
type Cart struct {
	transport CartTransport
	logg      *logger.Logger

	mu    sync.Mutex
	items []CartItem

	pending atomic.Int64
	wg      sync.WaitGroup
}

func NewCart(transport CartTransport, logg *logger.Logger) *Cart {
	return &Cart{transport: transport, logg: logg}
}

// State returns the current mirror with aggregates derived from the
// items, so count always equals the quantity sum and total always equals
// the price-weighted sum.
func (c *Cart) State() CartState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return stateOf(c.items)
}

func stateOf(items []CartItem) CartState {
	state := CartState{Items: cloneItems(items), Total: decimal.Zero}
	for _, item := range items {
		state.Count += item.Quantity
		state.Total = state.Total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return state
}

func cloneItems(items []CartItem) []CartItem {
	cloned := make([]CartItem, len(items))
	copy(cloned, items)
	return cloned
}

// IsProcessing reports whether at least one confirmation is outstanding.
func (c *Cart) IsProcessing() bool {
	return c.pending.Load() > 0
}

// Wait blocks until every confirmation issued so far has settled.
func (c *Cart) Wait() {
	c.wg.Wait()
}

// AddToCart inserts the product or increments its quantity, then confirms
// asynchronously. On failure the mirror reverts to the snapshot taken
// before this mutation.
func (c *Cart) AddToCart(ctx context.Context, product compay.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	c.mu.Lock()
	snapshot := cloneItems(c.items)
	found := false
	for i := range c.items {
		if c.items[i].ID == product.ID {
			c.items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		c.items = append(c.items, CartItem{
			ID:       product.ID,
			Name:     product.Name,
			Price:    product.DiscountedPrice(),
			Quantity: quantity,
			Image:    product.Image,
		})
	}
	c.mu.Unlock()

	c.confirm(ctx, snapshot, "cart.add", func(ctx context.Context) error {
		return c.transport.Add(ctx, product.ID, quantity)
	})
}

// UpdateQuantity replaces an entry's quantity. Unknown products are a
// no-op and issue no confirmation.
func (c *Cart) UpdateQuantity(ctx context.Context, productID, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	c.mu.Lock()
	snapshot := cloneItems(c.items)
	found := false
	for i := range c.items {
		if c.items[i].ID == productID {
			c.items[i].Quantity = quantity
			found = true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		return
	}

	c.confirm(ctx, snapshot, "cart.update", func(ctx context.Context) error {
		return c.transport.Update(ctx, productID, quantity)
	})
}

// RemoveFromCart drops an entry. The snapshot restore preserves the
// entry's original position on rollback.
func (c *Cart) RemoveFromCart(ctx context.Context, productID int) {
	c.mu.Lock()
	snapshot := cloneItems(c.items)
	found := false
	for i := range c.items {
		if c.items[i].ID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			found = true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		return
	}

	c.confirm(ctx, snapshot, "cart.remove", func(ctx context.Context) error {
		return c.transport.Remove(ctx, productID)
	})
}

// ClearCart empties the mirror.
func (c *Cart) ClearCart(ctx context.Context) {
	c.mu.Lock()
	snapshot := cloneItems(c.items)
	c.items = nil
	c.mu.Unlock()

	c.confirm(ctx, snapshot, "cart.clear", func(ctx context.Context) error {
		return c.transport.Clear(ctx)
	})
}

func (c *Cart) confirm(ctx context.Context, snapshot []CartItem, op string, send func(context.Context) error) {
	c.pending.Add(1)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.pending.Add(-1)

		if err := send(ctx); err != nil {
			c.mu.Lock()
			c.items = snapshot
			c.mu.Unlock()
			if c.logg != nil {
				c.logg.Error(ctx, op+"_confirm_failed", err)
			}
		}
	}()
}
