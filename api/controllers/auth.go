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

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Login exchanges credentials with the marketplace and stores the token
// and account payload in the session.
func Login(client *compay.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)

		var payload loginPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		auth, err := client.Login(ctx, payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		user, err := json.Marshal(auth.User)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode user payload"))
			return
		}
		sess.SetAuth(auth.Token, user)
		sess.Flash("success", "Sesión iniciada")

		responses.WriteSuccess(w, map[string]any{"user": auth.User})
	}
}

// Logout clears the session's auth state. The marketplace token is simply
// forgotten; upstream revocation is not part of the storefront contract.
func Logout(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		sess.ClearAuth()
		sess.Flash("success", "Sesión cerrada")
		responses.WriteSuccess(w, map[string]bool{"logged_out": true})
	}
}

// ProfileUpdate forwards profile changes to the marketplace and refreshes
// the session's stored account payload.
func ProfileUpdate(client *compay.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)
		token := sess.Token()
		if token == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required"))
			return
		}

		var stored compay.User
		if err := json.Unmarshal(sess.User(), &stored); err != nil || stored.ID == 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session user missing"))
			return
		}

		var fields map[string]any
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}

		updated, err := client.WithToken(token).UpdateUser(ctx, stored.ID, fields)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if updated != nil {
			if raw, err := json.Marshal(updated); err == nil {
				sess.SetUser(raw)
			}
		}
		responses.WriteSuccess(w, map[string]any{"user": updated})
	}
}
