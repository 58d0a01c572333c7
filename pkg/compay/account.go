package compay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Login exchanges credentials for a bearer token and the account payload.
// Never cached.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	var auth AuthResponse
	if err := c.postJSON(ctx, http.MethodPost, "/login", body, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

// CreateOrder places an order on the marketplace. Requires a token.
func (c *Client) CreateOrder(ctx context.Context, order map[string]any) (json.RawMessage, error) {
	var result json.RawMessage
	if err := c.postJSON(ctx, http.MethodPost, "/orders", order, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// OrderLine is one cart line submitted with an order.
type OrderLine struct {
	ID       int `json:"id"`
	Quantity int `json:"quantity"`
}

// HostedCheckout is the upstream's hosted-payment order result. The
// redirect URL sends the buyer to the marketplace's payment page.
type HostedCheckout struct {
	Message     string          `json:"message"`
	Order       json.RawMessage `json:"order"`
	RedirectURL string          `json:"redirect_url"`
}

// CreateHostedCheckoutOrder places an order paid through the
// marketplace's hosted page. Requires a token.
func (c *Client) CreateHostedCheckoutOrder(ctx context.Context, currency string, beneficiaryID, deliveryTypeID int, notes string, cart []OrderLine) (*HostedCheckout, error) {
	body := map[string]any{
		"currency":         currency,
		"beneficiary_id":   beneficiaryID,
		"delivery_type_id": deliveryTypeID,
		"notes":            notes,
		"cart":             cart,
	}
	var result struct {
		Message string          `json:"message"`
		Order   json.RawMessage `json:"order"`
	}
	if err := c.postJSON(ctx, http.MethodPost, "/orders", body, &result); err != nil {
		return nil, err
	}

	checkout := &HostedCheckout{Message: result.Message, Order: result.Order}
	var order struct {
		RedirectURL string `json:"redirect_url"`
	}
	if len(result.Order) > 0 {
		if err := json.Unmarshal(result.Order, &order); err == nil {
			checkout.RedirectURL = order.RedirectURL
		}
	}
	return checkout, nil
}

// GetOrders lists the authenticated account's orders. Never cached.
func (c *Client) GetOrders(ctx context.Context, params map[string]string) (json.RawMessage, error) {
	raw, err := c.do(ctx, http.MethodGet, "/orders", params, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

// UpdateUser updates account profile fields and returns the refreshed
// account payload.
func (c *Client) UpdateUser(ctx context.Context, userID int, fields map[string]any) (*User, error) {
	var envelope struct {
		User *User `json:"user"`
	}
	if err := c.postJSON(ctx, http.MethodPost, fmt.Sprintf("/users/%d", userID), fields, &envelope); err != nil {
		return nil, err
	}
	return envelope.User, nil
}

// GetBeneficiaries lists delivery beneficiaries for the account.
func (c *Client) GetBeneficiaries(ctx context.Context, params map[string]string) (json.RawMessage, error) {
	raw, err := c.do(ctx, http.MethodGet, "/beneficiaries", params, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

// GetBeneficiary fetches one beneficiary.
func (c *Client) GetBeneficiary(ctx context.Context, id int) (json.RawMessage, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/beneficiaries/%d", id), nil, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

// CreateBeneficiary creates a beneficiary.
func (c *Client) CreateBeneficiary(ctx context.Context, fields map[string]any) (json.RawMessage, error) {
	var result json.RawMessage
	if err := c.postJSON(ctx, http.MethodPost, "/beneficiaries", fields, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateBeneficiary updates a beneficiary.
func (c *Client) UpdateBeneficiary(ctx context.Context, id int, fields map[string]any) (json.RawMessage, error) {
	var result json.RawMessage
	if err := c.postJSON(ctx, http.MethodPut, fmt.Sprintf("/beneficiaries/%d", id), fields, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteBeneficiary removes a beneficiary.
func (c *Client) DeleteBeneficiary(ctx context.Context, id int) (json.RawMessage, error) {
	var result json.RawMessage
	if err := c.postJSON(ctx, http.MethodDelete, fmt.Sprintf("/beneficiaries/%d", id), nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}
