package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/eddyjj92/compay-storefront/internal/page"
	"github.com/eddyjj92/compay-storefront/pkg/cache"
	"github.com/eddyjj92/compay-storefront/pkg/compay"
	"github.com/eddyjj92/compay-storefront/pkg/logger"
	"github.com/eddyjj92/compay-storefront/pkg/session"
)

// Home renders the storefront landing page. Banners and the curated
// product sections are deferred; categories merge across pages for
// infinite scroll. The two curated sections share one marketplace home
// call through a per-request memo.
func Home(client *compay.Client, shared *Shared, renderer *page.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)
		currencyISO, provinceSlug := shared.localeOf(ctx, sess)

		categoryPage := 1
		if raw := r.URL.Query().Get("page"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				categoryPage = parsed
			}
		}

		memo := page.NewMemo()
		marketplaceHome := func(ctx context.Context) (*compay.MarketplaceHome, error) {
			value, err := memo.Do("marketplace_home", func() (any, error) {
				return client.GetMarketplaceHome(ctx, provinceSlug, currencyISO, cache.For())
			})
			if err != nil {
				return nil, err
			}
			return value.(*compay.MarketplaceHome), nil
		}
		categories := func(ctx context.Context) (*compay.Paginator[compay.Category], error) {
			value, err := memo.Do("categories", func() (any, error) {
				return client.GetCategories(ctx, map[string]string{"page": strconv.Itoa(categoryPage)}, cache.For())
			})
			if err != nil {
				return nil, err
			}
			return value.(*compay.Paginator[compay.Category]), nil
		}

		p := page.New("Home").
			Defer("banners", func(ctx context.Context) (any, error) {
				return client.GetBanners(ctx, "active", cache.For())
			}, page.Fallback([]compay.Banner{})).
			DeferMerge("categories", func(ctx context.Context) (any, error) {
				result, err := categories(ctx)
				if err != nil {
					return nil, err
				}
				return result.Data, nil
			}, page.Fallback([]compay.Category{})).
			Defer("categoriesNextPageUrl", func(ctx context.Context) (any, error) {
				result, err := categories(ctx)
				if err != nil {
					return nil, err
				}
				return page.NextPageURL("/", r.URL.Query(), result.CurrentPage, result.LastPage), nil
			}).
			Defer("recommendedProducts", func(ctx context.Context) (any, error) {
				home, err := marketplaceHome(ctx)
				if err != nil {
					return nil, err
				}
				return home.RecommendedProducts, nil
			}, page.Fallback([]compay.Product{})).
			Defer("newArrivals", func(ctx context.Context) (any, error) {
				home, err := marketplaceHome(ctx)
				if err != nil {
					return nil, err
				}
				return home.NewArrivals, nil
			}, page.Fallback([]compay.Product{}))

		shared.Attach(r, p)
		renderer.Render(w, r, p)
	}
}
