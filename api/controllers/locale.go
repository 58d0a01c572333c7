package controllers

import (
	"net/http"

	"github.com/eddyjj92/compay-storefront/api/responses"
	"github.com/eddyjj92/compay-storefront/api/validators"
	locationsvc "github.com/eddyjj92/compay-storefront/internal/location"
	"github.com/eddyjj92/compay-storefront/pkg/cache"
	"github.com/eddyjj92/compay-storefront/pkg/compay"
	pkgerrors "github.com/eddyjj92/compay-storefront/pkg/errors"
	"github.com/eddyjj92/compay-storefront/pkg/logger"
	"github.com/eddyjj92/compay-storefront/pkg/session"
)

type currencyPayload struct {
	CurrencyISO string `json:"currency_iso" validate:"required,len=3"`
}

type locationPayload struct {
	ProvinceID     int `json:"province_id" validate:"required,min=1"`
	MunicipalityID int `json:"municipality_id" validate:"min=0"`
}

// CurrencySelect persists the visitor's currency choice after validating
// it against the marketplace's list.
func CurrencySelect(client *compay.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)

		var payload currencyPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		currencies, err := client.GetCurrencies(ctx, cache.For())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		for _, currency := range currencies {
			if currency.ISOCode == payload.CurrencyISO {
				sess.SetCurrencyISO(currency.ISOCode)
				responses.WriteSuccess(w, map[string]any{"currency": currency})
				return
			}
		}
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown currency"))
	}
}

// LocationsIndex lists provinces with active delivery for the location
// picker.
func LocationsIndex(client *compay.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		provinces, err := client.GetProvinces(ctx, "active", cache.For())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, provinces)
	}
}

// LocationSelect persists the visitor's delivery location after checking
// the identifiers against the marketplace's provinces.
func LocationSelect(client *compay.Client, locale *locationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)

		var payload locationPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		provinces, err := client.GetProvinces(ctx, "", cache.For())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		for _, province := range provinces {
			if province.ID != payload.ProvinceID {
				continue
			}
			if payload.MunicipalityID != 0 {
				found := false
				for _, municipality := range province.Municipalities {
					if municipality.ID == payload.MunicipalityID {
						found = true
						break
					}
				}
				if !found {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "municipality does not belong to province"))
					return
				}
			}
			sess.SetLocation(payload.ProvinceID, payload.MunicipalityID)
			responses.WriteSuccess(w, locale.Resolve(ctx, sess))
			return
		}
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown province"))
	}
}
