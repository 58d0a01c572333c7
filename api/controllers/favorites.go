package controllers

import (
	"net/http"

	"github.com/eddyjj92/compay-storefront/api/responses"
	"github.com/eddyjj92/compay-storefront/api/validators"
	favsvc "github.com/eddyjj92/compay-storefront/internal/favorites"
	"github.com/eddyjj92/compay-storefront/internal/page"
	"github.com/eddyjj92/compay-storefront/pkg/logger"
	"github.com/eddyjj92/compay-storefront/pkg/session"
)

type favoritePayload struct {
	ProductID int `json:"product_id" validate:"required,min=1"`
}

// FavoritesPage renders the favorites list eagerly.
func FavoritesPage(svc *favsvc.Service, shared *Shared, renderer *page.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)
		currencyISO, provinceSlug := shared.localeOf(ctx, sess)

		p := page.New("Favorites").
			Prop("favorites", svc.View(ctx, sess, currencyISO, provinceSlug))
		shared.Attach(r, p)
		renderer.Render(w, r, p)
	}
}

// FavoriteToggle flips membership and reports the new state, matching the
// optimistic client's synchronous toggle.
func FavoriteToggle(svc *favsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)

		var payload favoritePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		favorited := svc.Toggle(sess, payload.ProductID)
		responses.WriteSuccess(w, map[string]any{
			"favorited": favorited,
			"ids":       sess.FavoriteIDs(),
		})
	}
}

// FavoriteRemove confirms a removal.
func FavoriteRemove(svc *favsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)

		productID, err := validators.PathInt(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		svc.Remove(sess, productID)
		responses.WriteSuccess(w, map[string]any{"ids": sess.FavoriteIDs()})
	}
}

// FavoritesClear confirms emptying the favorites list.
func FavoritesClear(svc *favsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		svc.Clear(sess)
		responses.WriteSuccess(w, map[string]any{"ids": []int{}})
	}
}
