// Package cart applies cart mutations to the visitor session and projects
// the stored entries into a view joined against live marketplace products.
package cart

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/eddyjj92/compay-storefront/pkg/cache"
	"github.com/eddyjj92/compay-storefront/pkg/compay"
	"github.com/eddyjj92/compay-storefront/pkg/errors"
	"github.com/eddyjj92/compay-storefront/pkg/logger"
	"github.com/eddyjj92/compay-storefront/pkg/session"
)

// ProductSource resolves products for the view join.
type ProductSource interface {
	GetProduct(ctx context.Context, id int, currency, provinceSlug string, mode cache.Mode) (*compay.Product, error)
}

// Item is one cart line priced at render time.
type Item struct {
	Product  compay.Product  `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// View is the materialized cart.
type View struct {
	Items []Item          `json:"items"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// Line is a sanitized cart entry for upstream order submission.
type Line struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type Service struct {
	products ProductSource
	logg     *logger.Logger
}

func NewService(products ProductSource, logg *logger.Logger) *Service {
	return &Service{products: products, logg: logg}
}

// Add inserts or increments an entry. Quantities below 1 are floored to 1.
func (s *Service) Add(sess *session.Session, productID, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	sess.CartAdd(productID, quantity)
}

// UpdateQuantity replaces an entry's quantity; absent products are
// ignored.
func (s *Service) UpdateQuantity(sess *session.Session, productID, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	sess.CartSetQuantity(productID, quantity)
}

func (s *Service) Remove(sess *session.Session, productID int) {
	sess.CartRemove(productID)
}

func (s *Service) Clear(sess *session.Session) {
	sess.CartClear()
}

// View joins session entries against live products. Prices come from
// DiscountedPrice at render time, never from a stored copy. Products the
// marketplace no longer serves are dropped silently; other upstream
// failures drop the line and log once.
func (s *Service) View(ctx context.Context, sess *session.Session, currency, provinceSlug string) View {
	view := View{Items: []Item{}, Total: decimal.Zero}
	for _, entry := range sess.CartEntries() {
		product, err := s.products.GetProduct(ctx, entry.ID, currency, provinceSlug, cache.For())
		if err != nil {
			if !errors.Is(err, errors.CodeNotFound) && s.logg != nil {
				s.logg.Warn(ctx, "cart.view_product_unavailable")
			}
			continue
		}

		quantity := int(entry.Quantity)
		if quantity < 1 {
			quantity = 1
		}
		price := product.DiscountedPrice()
		item := Item{
			Product:  *product,
			Quantity: quantity,
			Price:    price,
			Subtotal: price.Mul(decimal.NewFromInt(int64(quantity))),
		}
		view.Items = append(view.Items, item)
		view.Count += quantity
		view.Total = view.Total.Add(item.Subtotal)
	}
	return view
}

// Lines returns the session cart sanitized for order submission: ids as
// stored, quantities floored at 1.
func (s *Service) Lines(sess *session.Session) []Line {
	entries := sess.CartEntries()
	lines := make([]Line, 0, len(entries))
	for _, entry := range entries {
		quantity := int(entry.Quantity)
		if quantity < 1 {
			quantity = 1
		}
		lines = append(lines, Line{ProductID: entry.ID, Quantity: quantity})
	}
	return lines
}

// TotalWeight sums item weights for transportation quotes, in kilograms.
func (s *Service) TotalWeight(ctx context.Context, sess *session.Session, currency, provinceSlug string) float64 {
	var total float64
	for _, item := range s.View(ctx, sess, currency, provinceSlug).Items {
		total += item.Product.Weight * float64(item.Quantity)
	}
	return total
}
