// Package location resolves the visitor's currency and delivery location.
// The session stores only stable identifiers; full objects are re-read
// from the marketplace cache on every render so remote updates are never
// shadowed by stale session copies.
package location

import (
	"context"

	"github.com/eddyjj92/compay-storefront/pkg/cache"
	"github.com/eddyjj92/compay-storefront/pkg/compay"
	"github.com/eddyjj92/compay-storefront/pkg/logger"
	"github.com/eddyjj92/compay-storefront/pkg/session"
)

// MarketSource provides the marketplace reference data the resolver needs.
type MarketSource interface {
	GetCurrencies(ctx context.Context, mode cache.Mode) ([]compay.Currency, error)
	GetProvinces(ctx context.Context, status string, mode cache.Mode) ([]compay.Province, error)
}

// Locale is the visitor's resolved currency and location.
type Locale struct {
	Currency     *compay.Currency     `json:"currency"`
	Province     *compay.Province     `json:"province"`
	Municipality *compay.Municipality `json:"municipality"`
}

type Service struct {
	market MarketSource
	logg   *logger.Logger
}

func NewService(market MarketSource, logg *logger.Logger) *Service {
	return &Service{market: market, logg: logg}
}

// Resolve materializes the session's stored identifiers. A session with
// no currency selection adopts the marketplace default and persists the
// ISO code. Identifiers that no longer resolve yield nil fields.
func (s *Service) Resolve(ctx context.Context, sess *session.Session) Locale {
	locale := Locale{}
	locale.Currency = s.resolveCurrency(ctx, sess)
	locale.Province, locale.Municipality = s.resolveLocation(ctx, sess)
	return locale
}

func (s *Service) resolveCurrency(ctx context.Context, sess *session.Session) *compay.Currency {
	currencies, err := s.market.GetCurrencies(ctx, cache.For())
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "location.currencies_unavailable")
		}
		return nil
	}

	iso := sess.CurrencyISO()
	if iso != "" {
		for i := range currencies {
			if currencies[i].ISOCode == iso {
				return &currencies[i]
			}
		}
	}

	for i := range currencies {
		if currencies[i].IsDefault {
			sess.SetCurrencyISO(currencies[i].ISOCode)
			return &currencies[i]
		}
	}
	if len(currencies) > 0 {
		sess.SetCurrencyISO(currencies[0].ISOCode)
		return &currencies[0]
	}
	return nil
}

func (s *Service) resolveLocation(ctx context.Context, sess *session.Session) (*compay.Province, *compay.Municipality) {
	provinceID, municipalityID := sess.Location()
	if provinceID == 0 {
		return nil, nil
	}

	provinces, err := s.market.GetProvinces(ctx, "", cache.For())
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "location.provinces_unavailable")
		}
		return nil, nil
	}

	for i := range provinces {
		if provinces[i].ID != provinceID {
			continue
		}
		province := &provinces[i]
		if municipalityID == 0 {
			return province, nil
		}
		for j := range province.Municipalities {
			if province.Municipalities[j].ID == municipalityID {
				return province, &province.Municipalities[j]
			}
		}
		return province, nil
	}
	return nil, nil
}

// ProvinceSlug returns the resolved province slug, or empty when no
// location is selected.
func (s *Service) ProvinceSlug(ctx context.Context, sess *session.Session) string {
	province, _ := s.resolveLocation(ctx, sess)
	if province == nil {
		return ""
	}
	return province.Slug
}

// CurrencyISO returns the resolved currency code, adopting the default
// when the session has none.
func (s *Service) CurrencyISO(ctx context.Context, sess *session.Session) string {
	currency := s.resolveCurrency(ctx, sess)
	if currency == nil {
		return ""
	}
	return currency.ISOCode
}
