package controllers

import (
	"net/http"

	"github.com/eddyjj92/compay-storefront/api/responses"
	"github.com/eddyjj92/compay-storefront/api/validators"
	"github.com/eddyjj92/compay-storefront/internal/chat"
	"github.com/eddyjj92/compay-storefront/pkg/logger"
	"github.com/eddyjj92/compay-storefront/pkg/session"
)

type sendMessagePayload struct {
	Body string `json:"body" validate:"required,max=5000"`
}

// ConversationsIndex lists the account's conversations.
func ConversationsIndex(gateway *chat.Gateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)

		conversations, err := gateway.ListConversations(ctx, sess.Token())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, conversations)
	}
}

// ConversationShow returns one conversation and marks it read.
func ConversationShow(gateway *chat.Gateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)

		id, err := validators.PathInt(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		conversation, err := gateway.ShowConversation(ctx, sess.Token(), id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, conversation)
	}
}

// ConversationMessages returns one page of a conversation's messages.
func ConversationMessages(gateway *chat.Gateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)

		id, err := validators.PathInt(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		pageNum, err := validators.QueryInt(r, "page", 1)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		messages, err := gateway.MessagePage(ctx, sess.Token(), id, pageNum)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, messages)
	}
}

// ConversationSendMessage posts a message to a conversation.
func ConversationSendMessage(gateway *chat.Gateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)

		id, err := validators.PathInt(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload sendMessagePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		message, err := gateway.SendMessage(ctx, sess.Token(), id, payload.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}

// ConversationMarkRead marks a conversation's messages as read.
func ConversationMarkRead(gateway *chat.Gateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)

		id, err := validators.PathInt(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := gateway.MarkRead(ctx, sess.Token(), id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"read": true})
	}
}
