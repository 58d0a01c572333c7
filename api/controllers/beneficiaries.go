package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/eddyjj92/compay-storefront/api/responses"
	"github.com/eddyjj92/compay-storefront/api/validators"
	"github.com/eddyjj92/compay-storefront/pkg/compay"
	pkgerrors "github.com/eddyjj92/compay-storefront/pkg/errors"
	"github.com/eddyjj92/compay-storefront/pkg/logger"
	"github.com/eddyjj92/compay-storefront/pkg/session"
)

func authedClient(r *http.Request, client *compay.Client) (*compay.Client, error) {
	sess := session.FromContext(r.Context())
	token := sess.Token()
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}
	return client.WithToken(token), nil
}

// BeneficiariesIndex lists the account's delivery beneficiaries.
func BeneficiariesIndex(client *compay.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		upstream, err := authedClient(r, client)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		params := map[string]string{}
		if pageNum := r.URL.Query().Get("page"); pageNum != "" {
			params["page"] = pageNum
		}
		beneficiaries, err := upstream.GetBeneficiaries(ctx, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, beneficiaries)
	}
}

// BeneficiaryCreate forwards a new beneficiary to the marketplace, which
// owns validation of the address fields.
func BeneficiaryCreate(client *compay.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		upstream, err := authedClient(r, client)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var fields map[string]any
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}

		created, err := upstream.CreateBeneficiary(ctx, fields)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// BeneficiaryUpdate forwards beneficiary changes to the marketplace.
func BeneficiaryUpdate(client *compay.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		upstream, err := authedClient(r, client)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		id, err := validators.PathInt(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var fields map[string]any
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}

		updated, err := upstream.UpdateBeneficiary(ctx, id, fields)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// BeneficiaryDelete removes a beneficiary.
func BeneficiaryDelete(client *compay.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		upstream, err := authedClient(r, client)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		id, err := validators.PathInt(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		deleted, err := upstream.DeleteBeneficiary(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, deleted)
	}
}
