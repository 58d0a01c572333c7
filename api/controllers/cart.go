package controllers

import (
	"net/http"

	"github.com/eddyjj92/compay-storefront/api/responses"
	"github.com/eddyjj92/compay-storefront/api/validators"
	cartsvc "github.com/eddyjj92/compay-storefront/internal/cart"
	"github.com/eddyjj92/compay-storefront/internal/page"
	"github.com/eddyjj92/compay-storefront/pkg/compay"
	pkgerrors "github.com/eddyjj92/compay-storefront/pkg/errors"
	"github.com/eddyjj92/compay-storefront/pkg/logger"
	"github.com/eddyjj92/compay-storefront/pkg/session"
)

type cartAddPayload struct {
	ProductID int `json:"product_id" validate:"required,min=1"`
	Quantity  int `json:"quantity" validate:"omitempty,min=1"`
}

type cartUpdatePayload struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// CartPage renders the cart with its view resolved eagerly; the page is
// the confirmation surface, so a stale mirror is not acceptable here.
func CartPage(svc *cartsvc.Service, shared *Shared, renderer *page.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)
		currencyISO, provinceSlug := shared.localeOf(ctx, sess)

		p := page.New("Cart").
			Prop("cart", svc.View(ctx, sess, currencyISO, provinceSlug))
		shared.Attach(r, p)
		renderer.Render(w, r, p)
	}
}

// CartAdd confirms an optimistic add. The response returns the fresh view
// so the client can reconcile totals.
func CartAdd(svc *cartsvc.Service, shared *Shared, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)

		var payload cartAddPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if payload.Quantity == 0 {
			payload.Quantity = 1
		}

		svc.Add(sess, payload.ProductID, payload.Quantity)
		sess.Flash("success", "Producto agregado al carrito")

		currencyISO, provinceSlug := shared.localeOf(ctx, sess)
		responses.WriteSuccess(w, svc.View(ctx, sess, currencyISO, provinceSlug))
	}
}

// CartUpdate confirms a quantity change.
func CartUpdate(svc *cartsvc.Service, shared *Shared, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)

		productID, err := validators.PathInt(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload cartUpdatePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		svc.UpdateQuantity(sess, productID, payload.Quantity)

		currencyISO, provinceSlug := shared.localeOf(ctx, sess)
		responses.WriteSuccess(w, svc.View(ctx, sess, currencyISO, provinceSlug))
	}
}

// CartRemove confirms a removal.
func CartRemove(svc *cartsvc.Service, shared *Shared, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)

		productID, err := validators.PathInt(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		svc.Remove(sess, productID)

		currencyISO, provinceSlug := shared.localeOf(ctx, sess)
		responses.WriteSuccess(w, svc.View(ctx, sess, currencyISO, provinceSlug))
	}
}

// CartClear confirms emptying the cart.
func CartClear(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		svc.Clear(sess)
		responses.WriteSuccess(w, cartsvc.View{})
	}
}

// CartTransportationCost quotes delivery for the visitor's cart weight.
// The quote requires a selected municipality, whose cost ring drives
// pricing; weight defaults to the cart's total when not given.
func CartTransportationCost(client *compay.Client, svc *cartsvc.Service, shared *Shared, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)

		costRingID, err := validators.QueryInt(r, "cost_ring_id", 0)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if costRingID == 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cost_ring_id is required"))
			return
		}

		weightKg, hasWeight, err := validators.QueryFloat(r, "weight_kg")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		currencyISO, provinceSlug := shared.localeOf(ctx, sess)
		if !hasWeight {
			weightKg = svc.TotalWeight(ctx, sess, currencyISO, provinceSlug)
		}

		var totalCost *float64
		if value, ok, err := validators.QueryFloat(r, "total_cost"); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		} else if ok {
			totalCost = &value
		}

		upstream := client
		if token := sess.Token(); token != "" {
			upstream = client.WithToken(token)
		}
		quote, err := upstream.GetTransportationPriceForWeight(ctx, costRingID, weightKg, totalCost)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"price":               quote.Price.String(),
			"price_with_discount": quote.PriceWithDiscount.String(),
			"weight_range":        quote.WeightRange,
			"has_discount":        quote.HasDiscount,
		})
	}
}
