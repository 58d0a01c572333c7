package compay

import (
	"context"
	"fmt"
	"net/http"

	"github.com/eddyjj92/compay-storefront/pkg/cache"
	"github.com/eddyjj92/compay-storefront/pkg/errors"
)

// GetSettings returns the site configuration block.
func (c *Client) GetSettings(ctx context.Context, mode cache.Mode) (*Settings, error) {
	var envelope struct {
		Settings Settings `json:"settings"`
	}
	if err := c.getJSON(ctx, "/settings", nil, mode, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Settings, nil
}

// GetProvinces lists provinces, optionally filtered by delivery status
// ("active" or "inactive").
func (c *Client) GetProvinces(ctx context.Context, status string, mode cache.Mode) ([]Province, error) {
	params := map[string]string{}
	if status != "" {
		params["status"] = status
	}
	var envelope struct {
		Provinces []Province `json:"provinces"`
	}
	if err := c.getJSON(ctx, "/provinces", params, mode, &envelope); err != nil {
		return nil, err
	}
	if envelope.Provinces == nil {
		envelope.Provinces = []Province{}
	}
	return envelope.Provinces, nil
}

// GetCurrencies lists the currencies the marketplace accepts.
func (c *Client) GetCurrencies(ctx context.Context, mode cache.Mode) ([]Currency, error) {
	var envelope struct {
		Currencies []Currency `json:"currencies"`
	}
	if err := c.getJSON(ctx, "/currencies", nil, mode, &envelope); err != nil {
		return nil, err
	}
	if envelope.Currencies == nil {
		envelope.Currencies = []Currency{}
	}
	return envelope.Currencies, nil
}

// GetBanners lists banners, optionally filtered by status.
func (c *Client) GetBanners(ctx context.Context, status string, mode cache.Mode) ([]Banner, error) {
	params := map[string]string{}
	if status != "" {
		params["status"] = status
	}
	var envelope struct {
		Banners []Banner `json:"banners"`
	}
	if err := c.getJSON(ctx, "/banners", params, mode, &envelope); err != nil {
		return nil, err
	}
	if envelope.Banners == nil {
		envelope.Banners = []Banner{}
	}
	return envelope.Banners, nil
}

// GetProducts lists products. The marketplace requires province_id; page,
// currency, category_id and search are optional.
func (c *Client) GetProducts(ctx context.Context, params map[string]string, mode cache.Mode) (*Paginator[Product], error) {
	var envelope struct {
		Products Paginator[Product] `json:"products"`
	}
	if err := c.getJSON(ctx, "/products", params, mode, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Products, nil
}

// GetProduct fetches one product. A missing or empty product payload is a
// not-found error.
func (c *Client) GetProduct(ctx context.Context, id int, currency, provinceSlug string, mode cache.Mode) (*Product, error) {
	params := map[string]string{}
	if currency != "" {
		params["currency"] = currency
	}
	if provinceSlug != "" {
		params["province_slug"] = provinceSlug
	}

	endpoint := fmt.Sprintf("/products/%d", id)
	var envelope struct {
		Product *Product `json:"product"`
	}
	if err := c.getJSON(ctx, endpoint, params, mode, &envelope); err != nil {
		return nil, err
	}
	if envelope.Product == nil || envelope.Product.ID == 0 {
		return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("product %d not found", id))
	}
	return envelope.Product, nil
}

// ForgetProduct drops the cached detail entry for one product, forcing the
// next read to hit the marketplace. Used when a stored image URL expires.
func (c *Client) ForgetProduct(ctx context.Context, id int, currency, provinceSlug string) error {
	params := map[string]string{}
	if currency != "" {
		params["currency"] = currency
	}
	if provinceSlug != "" {
		params["province_slug"] = provinceSlug
	}
	return c.Forget(ctx, fmt.Sprintf("/products/%d", id), params)
}

// GetMarketplaceHome returns the curated home sections for a province and
// currency.
func (c *Client) GetMarketplaceHome(ctx context.Context, provinceSlug, currency string, mode cache.Mode) (*MarketplaceHome, error) {
	params := map[string]string{
		"province_slug": provinceSlug,
		"currency":      currency,
	}
	var home MarketplaceHome
	if err := c.getJSON(ctx, "/products/marketplace_home", params, mode, &home); err != nil {
		return nil, err
	}
	return &home, nil
}

// GetCategories lists catalog categories paginated.
func (c *Client) GetCategories(ctx context.Context, params map[string]string, mode cache.Mode) (*Paginator[Category], error) {
	var envelope struct {
		Categories Paginator[Category] `json:"categories"`
	}
	if err := c.getJSON(ctx, "/categories", params, mode, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Categories, nil
}

// GetTransportationPriceForWeight quotes the delivery cost for a weight
// bracket within a cost ring. Never cached; the quote depends on the
// caller's cart.
func (c *Client) GetTransportationPriceForWeight(ctx context.Context, costRingID int, weightKg float64, totalCost *float64) (*TransportationPrice, error) {
	body := map[string]any{
		"cost_ring_id": costRingID,
		"weight_kg":    weightKg,
	}
	if totalCost != nil {
		body["total_cost"] = *totalCost
	}
	var price TransportationPrice
	if err := c.postJSON(ctx, http.MethodPost, "/transportation_costs/get_price_for_weight", body, &price); err != nil {
		return nil, err
	}
	return &price, nil
}
