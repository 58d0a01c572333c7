// Package chat fronts the marketplace conversation API and owns the
// websocket connection lifecycle for realtime message delivery.
package chat

import (
	"context"
	"encoding/json"

	"github.com/eddyjj92/compay-storefront/pkg/compay"
	"github.com/eddyjj92/compay-storefront/pkg/errors"
	"github.com/eddyjj92/compay-storefront/pkg/logger"
)

// Gateway wraps the token-bearing marketplace client for conversation
// reads and writes. Conversations are live data; nothing here touches
// the cache.
type Gateway struct {
	client *compay.Client
	logg   *logger.Logger
}

func NewGateway(client *compay.Client, logg *logger.Logger) *Gateway {
	return &Gateway{client: client, logg: logg}
}

func (g *Gateway) authed(token string) (*compay.Client, error) {
	if token == "" {
		return nil, errors.New(errors.CodeUnauthorized, "conversation access requires login")
	}
	return g.client.WithToken(token), nil
}

// ListConversations returns the account's conversations.
func (g *Gateway) ListConversations(ctx context.Context, token string) (json.RawMessage, error) {
	client, err := g.authed(token)
	if err != nil {
		return nil, err
	}
	return client.GetConversations(ctx)
}

// ShowConversation fetches one conversation and marks it read. The
// mark-read call is best effort; its failure never fails the show.
func (g *Gateway) ShowConversation(ctx context.Context, token string, id int) (json.RawMessage, error) {
	client, err := g.authed(token)
	if err != nil {
		return nil, err
	}
	conversation, err := client.GetConversation(ctx, id, 1)
	if err != nil {
		return nil, err
	}
	if err := client.MarkConversationRead(ctx, id); err != nil && g.logg != nil {
		g.logg.Warn(ctx, "chat.mark_read_failed")
	}
	return conversation, nil
}

// MessagePage fetches one page of a conversation's messages.
func (g *Gateway) MessagePage(ctx context.Context, token string, id, page int) (json.RawMessage, error) {
	client, err := g.authed(token)
	if err != nil {
		return nil, err
	}
	return client.GetConversation(ctx, id, page)
}

// SendMessage posts a message to a conversation.
func (g *Gateway) SendMessage(ctx context.Context, token string, conversationID int, body string) (json.RawMessage, error) {
	client, err := g.authed(token)
	if err != nil {
		return nil, err
	}
	if body == "" {
		return nil, errors.New(errors.CodeValidation, "message body is required")
	}
	return client.SendMessage(ctx, map[string]any{
		"conversation_id": conversationID,
		"body":            body,
	})
}

// MarkRead marks every message in a conversation as read.
func (g *Gateway) MarkRead(ctx context.Context, token string, id int) error {
	client, err := g.authed(token)
	if err != nil {
		return err
	}
	return client.MarkConversationRead(ctx, id)
}
