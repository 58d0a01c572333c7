// Package compay is the HTTP client for the Compay Market REST API. Read
// endpoints route through the cache-aside layer; mutating and authenticated
// endpoints always go straight to the marketplace.
package compay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eddyjj92/compay-storefront/pkg/cache"
	"github.com/eddyjj92/compay-storefront/pkg/config"
	"github.com/eddyjj92/compay-storefront/pkg/errors"
	"github.com/eddyjj92/compay-storefront/pkg/logger"
	"github.com/eddyjj92/compay-storefront/pkg/metrics"
)

const maxResponseBytes = 4 << 20

// Client talks to the marketplace API. The zero token means anonymous;
// WithToken derives a per-request authenticated view without mutating the
// shared client.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *cache.Cache
	metrics *metrics.UpstreamMetrics
	logg    *logger.Logger
	token   string
}

func NewClient(cfg config.CompayConfig, store *cache.Cache, m *metrics.UpstreamMetrics, logg *logger.Logger) (*Client, error) {
	if cfg.APIBaseURL == "" {
		return nil, errors.New(errors.CodeInternal, "marketplace base url is required")
	}
	if store == nil {
		return nil, errors.New(errors.CodeInternal, "cache is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		cache:   store,
		metrics: m,
		logg:    logg,
	}, nil
}

// WithToken returns a copy of the client that sends the given bearer token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// Forget drops the cached entry for one endpoint+params pair.
func (c *Client) Forget(ctx context.Context, endpoint string, params map[string]string) error {
	return c.cache.Forget(ctx, endpoint, params)
}

// getJSON fetches endpoint through the cache according to mode and decodes
// the payload into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, params map[string]string, mode cache.Mode, out any) error {
	raw, err := c.cache.Fetch(ctx, endpoint, params, mode, func() ([]byte, error) {
		return c.do(ctx, http.MethodGet, endpoint, params, nil)
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(errors.CodeUpstream, err, fmt.Sprintf("decode %s payload", endpoint))
	}
	return nil
}

// postJSON issues an uncached write and decodes the payload into out when
// out is non-nil.
func (c *Client) postJSON(ctx context.Context, method, endpoint string, body any, out any) error {
	raw, err := c.do(ctx, method, endpoint, nil, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(errors.CodeUpstream, err, fmt.Sprintf("decode %s payload", endpoint))
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, params map[string]string, body any) ([]byte, error) {
	target := c.baseURL + endpoint
	if len(params) > 0 {
		values := url.Values{}
		for name, value := range params {
			values.Set(name, value)
		}
		target += "?" + values.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(errors.CodeInternal, err, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "build marketplace request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveRequest(endpoint, "transport_error", elapsed)
		return nil, errors.Wrap(errors.CodeUpstream, err, "marketplace request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.metrics.ObserveRequest(endpoint, "read_error", elapsed)
		return nil, errors.Wrap(errors.CodeUpstream, err, "read marketplace response")
	}
	c.metrics.ObserveRequest(endpoint, statusClass(resp.StatusCode), elapsed)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	return nil, c.statusError(resp.StatusCode, raw, endpoint)
}

func (c *Client) statusError(status int, body []byte, endpoint string) error {
	cause := &errors.UpstreamError{Status: status, Body: truncate(string(body), 2048)}

	switch {
	case status == http.StatusUnauthorized:
		return errors.Wrap(errors.CodeUnauthorized, cause, "marketplace rejected credentials")
	case status == http.StatusForbidden:
		return errors.Wrap(errors.CodeForbidden, cause, "marketplace denied access")
	case status == http.StatusNotFound:
		return errors.Wrap(errors.CodeNotFound, cause, fmt.Sprintf("%s not found", endpoint))
	case status >= 400 && status < 500:
		err := errors.Wrap(errors.CodeUpstreamValidation, cause, "marketplace rejected request")
		if details := validationDetails(body); details != nil {
			err = err.WithDetails(details)
		}
		return err
	default:
		return errors.Wrap(errors.CodeUpstream, cause, "marketplace error response")
	}
}

// validationDetails extracts the message/errors block the marketplace
// returns on 4xx so controllers can forward field errors.
func validationDetails(body []byte) any {
	var parsed struct {
		Message string          `json:"message"`
		Errors  json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil
	}
	if parsed.Message == "" && len(parsed.Errors) == 0 {
		return nil
	}
	details := map[string]any{}
	if parsed.Message != "" {
		details["message"] = parsed.Message
	}
	if len(parsed.Errors) > 0 {
		details["errors"] = parsed.Errors
	}
	return details
}

func statusClass(status int) string {
	return fmt.Sprintf("%dxx", status/100)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
