package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/eddyjj92/compay-storefront/api/responses"
	"github.com/eddyjj92/compay-storefront/api/validators"
	cartsvc "github.com/eddyjj92/compay-storefront/internal/cart"
	"github.com/eddyjj92/compay-storefront/internal/page"
	"github.com/eddyjj92/compay-storefront/pkg/compay"
	pkgerrors "github.com/eddyjj92/compay-storefront/pkg/errors"
	"github.com/eddyjj92/compay-storefront/pkg/logger"
	"github.com/eddyjj92/compay-storefront/pkg/session"
)

type checkoutPayload struct {
	Currency       string `json:"currency" validate:"required,len=3"`
	BeneficiaryID  int    `json:"beneficiary_id" validate:"required,min=1"`
	DeliveryTypeID int    `json:"delivery_type_id" validate:"required,min=1"`
	Notes          string `json:"notes" validate:"max=1000"`
}

// CheckoutPage renders the checkout with the cart eager and the
// authenticated account's beneficiaries deferred. Anonymous visitors get
// an empty beneficiary list rather than an error; the order submit is
// where authentication is enforced.
func CheckoutPage(client *compay.Client, svc *cartsvc.Service, shared *Shared, renderer *page.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)
		currencyISO, provinceSlug := shared.localeOf(ctx, sess)
		token := sess.Token()

		p := page.New("Checkout").
			Prop("cart", svc.View(ctx, sess, currencyISO, provinceSlug)).
			Defer("beneficiaries", func(ctx context.Context) (any, error) {
				if token == "" {
					return json.RawMessage(`[]`), nil
				}
				return client.WithToken(token).GetBeneficiaries(ctx, nil)
			}, page.Fallback(json.RawMessage(`[]`)))

		shared.Attach(r, p)
		renderer.Render(w, r, p)
	}
}

// OrdersCheckout places a hosted-payment order from the session cart.
// Rejections: 401 without a token, 422 with an empty cart, 502 when the
// marketplace fails or returns no payment URL.
func OrdersCheckout(client *compay.Client, svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)

		var payload checkoutPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		token := sess.Token()
		if token == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required to place an order"))
			return
		}

		lines := svc.Lines(sess)
		if len(lines) == 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnprocessable, "cart is empty"))
			return
		}

		cart := make([]compay.OrderLine, 0, len(lines))
		for _, line := range lines {
			cart = append(cart, compay.OrderLine{ID: line.ProductID, Quantity: line.Quantity})
		}

		checkout, err := client.WithToken(token).CreateHostedCheckoutOrder(
			ctx,
			strings.ToUpper(payload.Currency),
			payload.BeneficiaryID,
			payload.DeliveryTypeID,
			payload.Notes,
			cart,
		)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "order could not be created"))
			return
		}
		if checkout.RedirectURL == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUpstream, "order created without a payment url"))
			return
		}

		// The cart survives until payment completes on the hosted page.
		responses.WriteSuccess(w, map[string]any{
			"message":      checkout.Message,
			"order":        checkout.Order,
			"redirect_url": checkout.RedirectURL,
		})
	}
}

// OrdersIndex lists the authenticated account's orders.
func OrdersIndex(client *compay.Client, shared *Shared, renderer *page.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)
		token := sess.Token()
		if token == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required"))
			return
		}

		p := page.New("Orders").
			Defer("orders", func(ctx context.Context) (any, error) {
				params := map[string]string{}
				if pageNum := r.URL.Query().Get("page"); pageNum != "" {
					params["page"] = pageNum
				}
				return client.WithToken(token).GetOrders(ctx, params)
			}, page.Fallback(json.RawMessage(`[]`)))

		shared.Attach(r, p)
		renderer.Render(w, r, p)
	}
}
