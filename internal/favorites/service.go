// Package favorites applies favorites mutations to the visitor session
// and projects the stored markers into a view of live products.
package favorites

import (
	"context"

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

// View is the materialized favorites list.
type View struct {
	Items []compay.Product `json:"items"`
	Count int              `json:"count"`
	IDs   []int            `json:"ids"`
}

type Service struct {
	products ProductSource
	logg     *logger.Logger
}

func NewService(products ProductSource, logg *logger.Logger) *Service {
	return &Service{products: products, logg: logg}
}

func (s *Service) Add(sess *session.Session, productID int) {
	sess.FavoriteAdd(productID)
}

func (s *Service) Remove(sess *session.Session, productID int) {
	sess.FavoriteRemove(productID)
}

func (s *Service) Clear(sess *session.Session) {
	sess.FavoritesClear()
}

// Toggle flips membership and returns the new state.
func (s *Service) Toggle(sess *session.Session, productID int) bool {
	if sess.HasFavorite(productID) {
		sess.FavoriteRemove(productID)
		return false
	}
	sess.FavoriteAdd(productID)
	return true
}

// View joins favorite markers against live products. Vanished products
// are dropped silently but their IDs remain in IDs so the client's
// membership checks stay stable.
func (s *Service) View(ctx context.Context, sess *session.Session, currency, provinceSlug string) View {
	ids := sess.FavoriteIDs()
	view := View{Items: []compay.Product{}, IDs: ids, Count: len(ids)}
	for _, id := range ids {
		product, err := s.products.GetProduct(ctx, id, currency, provinceSlug, cache.For())
		if err != nil {
			if !errors.Is(err, errors.CodeNotFound) && s.logg != nil {
				s.logg.Warn(ctx, "favorites.view_product_unavailable")
			}
			continue
		}
		view.Items = append(view.Items, *product)
	}
	return view
}
