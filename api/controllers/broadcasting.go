package controllers

import (
	"net/http"

	"github.com/eddyjj92/compay-storefront/api/responses"
	"github.com/eddyjj92/compay-storefront/pkg/compay"
	pkgerrors "github.com/eddyjj92/compay-storefront/pkg/errors"
	"github.com/eddyjj92/compay-storefront/pkg/logger"
	"github.com/eddyjj92/compay-storefront/pkg/session"
)

// BroadcastingAuth proxies websocket channel authorization to the
// marketplace with the session's bearer token. The realtime client posts
// form fields, so both form and query carriers are accepted.
func BroadcastingAuth(client *compay.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)

		if err := r.ParseForm(); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body"))
			return
		}
		socketID := r.Form.Get("socket_id")
		channelName := r.Form.Get("channel_name")
		if socketID == "" || channelName == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnprocessable, "socket_id and channel_name are required"))
			return
		}

		token := sess.Token()
		if token == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required"))
			return
		}

		signed, err := client.WithToken(token).BroadcastingAuth(ctx, socketID, channelName)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(signed)
	}
}
