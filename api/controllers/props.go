// Package controllers holds the storefront HTTP handlers. Page handlers
// compose page documents with eager and deferred props; JSON handlers
// answer the client's mutation confirms.
package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/eddyjj92/compay-storefront/internal/cart"
	"github.com/eddyjj92/compay-storefront/internal/favorites"
	"github.com/eddyjj92/compay-storefront/internal/location"
	"github.com/eddyjj92/compay-storefront/internal/page"
	"github.com/eddyjj92/compay-storefront/pkg/cache"
	"github.com/eddyjj92/compay-storefront/pkg/compay"
	"github.com/eddyjj92/compay-storefront/pkg/logger"
	"github.com/eddyjj92/compay-storefront/pkg/session"
)

// Shared composes the props every page render carries: site settings and
// currencies from the cache, the resolved locale, the authenticated user,
// one-shot flash messages, and deferred cart/favorites views.
type Shared struct {
	Client    *compay.Client
	Locale    *location.Service
	Cart      *cart.Service
	Favorites *favorites.Service
	Logg      *logger.Logger
}

// Attach adds the shared props to a page. Reference-data failures degrade
// to nil props so the shell still renders.
func (s *Shared) Attach(r *http.Request, p *page.Page) *page.Page {
	ctx := r.Context()
	sess := session.FromContext(ctx)
	if sess == nil {
		return p
	}

	settings, err := s.Client.GetSettings(ctx, cache.For())
	if err != nil && s.Logg != nil {
		s.Logg.Warn(ctx, "shared.settings_unavailable")
	}
	currencies, err := s.Client.GetCurrencies(ctx, cache.For())
	if err != nil && s.Logg != nil {
		s.Logg.Warn(ctx, "shared.currencies_unavailable")
	}

	locale := s.Locale.Resolve(ctx, sess)

	var user json.RawMessage
	if raw := sess.User(); len(raw) > 0 {
		user = raw
	}

	p.Prop("settings", settings).
		Prop("currencies", currencies).
		Prop("locale", locale).
		Prop("auth", map[string]any{"user": user}).
		Prop("flash", map[string]string{
			"success": sess.PullFlash("success"),
			"error":   sess.PullFlash("error"),
		})

	currencyISO := ""
	if locale.Currency != nil {
		currencyISO = locale.Currency.ISOCode
	}
	provinceSlug := ""
	if locale.Province != nil {
		provinceSlug = locale.Province.Slug
	}

	p.Defer("cart", func(ctx context.Context) (any, error) {
		return s.Cart.View(ctx, sess, currencyISO, provinceSlug), nil
	}, page.Fallback(cart.View{}))
	p.Defer("favorites", func(ctx context.Context) (any, error) {
		return s.Favorites.View(ctx, sess, currencyISO, provinceSlug), nil
	}, page.Fallback(favorites.View{}))

	return p
}

// localeOf resolves the session's currency and province slug for handlers
// that query the marketplace directly.
func (s *Shared) localeOf(ctx context.Context, sess *session.Session) (currencyISO, provinceSlug string) {
	locale := s.Locale.Resolve(ctx, sess)
	if locale.Currency != nil {
		currencyISO = locale.Currency.ISOCode
	}
	if locale.Province != nil {
		provinceSlug = locale.Province.Slug
	}
	return currencyISO, provinceSlug
}
