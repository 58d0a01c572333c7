package compay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// GetConversations lists the account's chat conversations. Conversations
// are live data and never pass through the cache.
func (c *Client) GetConversations(ctx context.Context) (json.RawMessage, error) {
	raw, err := c.do(ctx, http.MethodGet, "/chat/conversations", nil, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

// GetConversation fetches one conversation with its paginated messages.
func (c *Client) GetConversation(ctx context.Context, id int, page int) (json.RawMessage, error) {
	params := map[string]string{}
	if page > 1 {
		params["page"] = fmt.Sprintf("%d", page)
	}
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/chat/conversations/%d", id), params, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

// SendMessage posts a chat message.
func (c *Client) SendMessage(ctx context.Context, fields map[string]any) (json.RawMessage, error) {
	var result json.RawMessage
	if err := c.postJSON(ctx, http.MethodPost, "/chat/message", fields, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkConversationRead marks every message in a conversation as read.
func (c *Client) MarkConversationRead(ctx context.Context, id int) error {
	return c.postJSON(ctx, http.MethodPatch, fmt.Sprintf("/chat/conversations/%d/read", id), nil, nil)
}

// BroadcastingAuth forwards a websocket channel authorization request to
// the marketplace, which signs presence and private channel subscriptions.
func (c *Client) BroadcastingAuth(ctx context.Context, socketID, channelName string) (json.RawMessage, error) {
	body := map[string]string{
		"socket_id":    socketID,
		"channel_name": channelName,
	}
	var result json.RawMessage
	if err := c.postJSON(ctx, http.MethodPost, "/broadcasting/auth", body, &result); err != nil {
		return nil, err
	}
	return result, nil
}
