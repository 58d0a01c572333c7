package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/eddyjj92/compay-storefront/api/responses"
	"github.com/eddyjj92/compay-storefront/api/validators"
	"github.com/eddyjj92/compay-storefront/internal/page"
	"github.com/eddyjj92/compay-storefront/pkg/cache"
	"github.com/eddyjj92/compay-storefront/pkg/compay"
	"github.com/eddyjj92/compay-storefront/pkg/logger"
	"github.com/eddyjj92/compay-storefront/pkg/session"
)

func productListParams(r *http.Request, sess *session.Session, currencyISO string) map[string]string {
	params := map[string]string{}
	if provinceID, _ := sess.Location(); provinceID > 0 {
		params["province_id"] = strconv.Itoa(provinceID)
	}
	if currencyISO != "" {
		params["currency"] = currencyISO
	}
	query := r.URL.Query()
	if pageNum := query.Get("page"); pageNum != "" {
		params["page"] = pageNum
	}
	if categoryID := query.Get("category_id"); categoryID != "" {
		params["category_id"] = categoryID
	}
	if search := strings.TrimSpace(query.Get("search")); search != "" {
		params["search"] = search
	}
	return params
}

// ProductsIndex renders the catalog listing. The product page is a
// mergeable fragment so the client appends pages while scrolling; the
// next-page URL is always a storefront URL, never the upstream one.
func ProductsIndex(client *compay.Client, shared *Shared, renderer *page.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)
		currencyISO, _ := shared.localeOf(ctx, sess)
		params := productListParams(r, sess, currencyISO)

		memo := page.NewMemo()
		listing := func(ctx context.Context) (*compay.Paginator[compay.Product], error) {
			value, err := memo.Do("products", func() (any, error) {
				return client.GetProducts(ctx, params, cache.For())
			})
			if err != nil {
				return nil, err
			}
			return value.(*compay.Paginator[compay.Product]), nil
		}

		p := page.New("Products/Index").
			Prop("filters", map[string]string{
				"category_id": params["category_id"],
				"search":      params["search"],
			}).
			DeferMerge("products", func(ctx context.Context) (any, error) {
				result, err := listing(ctx)
				if err != nil {
					return nil, err
				}
				return result.Data, nil
			}, page.Fallback([]compay.Product{})).
			Defer("productsNextPageUrl", func(ctx context.Context) (any, error) {
				result, err := listing(ctx)
				if err != nil {
					return nil, err
				}
				return page.NextPageURL("/products", r.URL.Query(), result.CurrentPage, result.LastPage), nil
			}).
			Defer("productsTotal", func(ctx context.Context) (any, error) {
				result, err := listing(ctx)
				if err != nil {
					return nil, err
				}
				return result.Total, nil
			})

		shared.Attach(r, p)
		renderer.Render(w, r, p)
	}
}

// ProductShow renders one product's detail page. An empty upstream
// payload is a storefront 404.
func ProductShow(client *compay.Client, shared *Shared, renderer *page.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)

		id, err := validators.PathInt(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		currencyISO, provinceSlug := shared.localeOf(ctx, sess)
		product, err := client.GetProduct(ctx, id, currencyISO, provinceSlug, cache.For())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		p := page.New("Products/Show").
			Prop("product", product).
			Defer("relatedProducts", func(ctx context.Context) (any, error) {
				if product.Category == nil {
					return []compay.Product{}, nil
				}
				params := productListParams(r, sess, currencyISO)
				params["category_id"] = strconv.Itoa(product.Category.ID)
				related, err := client.GetProducts(ctx, params, cache.For())
				if err != nil {
					return nil, err
				}
				return related.Data, nil
			}, page.Fallback([]compay.Product{}))

		shared.Attach(r, p)
		renderer.Render(w, r, p)
	}
}

// ProductRefresh drops a product's cached detail and re-reads it from the
// marketplace, re-warming the entry. Used when a stored image URL has
// expired.
func ProductRefresh(client *compay.Client, shared *Shared, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)

		id, err := validators.PathInt(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		currencyISO, provinceSlug := shared.localeOf(ctx, sess)
		if err := client.ForgetProduct(ctx, id, currencyISO, provinceSlug); err != nil && logg != nil {
			logg.Warn(ctx, "products.refresh_forget_failed")
		}

		product, err := client.GetProduct(ctx, id, currencyISO, provinceSlug, cache.For())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"success": true,
			"product": product,
		})
	}
}
