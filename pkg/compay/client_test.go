package compay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eddyjj92/compay-storefront/pkg/cache"
	"github.com/eddyjj92/compay-storefront/pkg/config"
	"github.com/eddyjj92/compay-storefront/pkg/errors"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := cache.New(cache.NewMemoryStore(), time.Minute, nil)
	if err != nil {
		t.Fatal(err)
	}
	client, err := NewClient(config.CompayConfig{APIBaseURL: srv.URL, Timeout: 5 * time.Second}, store, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return client, srv
}

func TestGetProductsCachedCallHitsUpstreamOnce(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/products" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("province_id"); got != "1" {
			t.Errorf("province_id not forwarded, got %q", got)
		}
		if got := r.URL.Query().Get("currency"); got != "USD" {
			t.Errorf("currency not forwarded, got %q", got)
		}
		w.Write([]byte(`{"products":{"data":[{"id":5,"name":"Cafe","status":"ENABLED","sale_price":"9.98"}],"current_page":1,"last_page":3,"per_page":15,"total":40}}`))
	}))

	params := map[string]string{"province_id": "1", "currency": "USD"}
	for i := 0; i < 2; i++ {
		page, err := client.GetProducts(context.Background(), params, cache.For())
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if len(page.Data) != 1 || page.Data[0].ID != 5 {
			t.Fatalf("call %d: unexpected page %+v", i, page)
		}
		if !page.HasMore() {
			t.Fatalf("call %d: expected more pages", i)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected exactly one upstream request, got %d", got)
	}
}

func TestLoginIsNeverCached(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Method != http.MethodPost || r.URL.Path != "/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"token":"tok-1","user":{"id":7,"name":"Eddy","email":"e@example.com"}}`))
	}))

	for i := 0; i < 2; i++ {
		auth, err := client.Login(context.Background(), "e@example.com", "secret")
		if err != nil {
			t.Fatal(err)
		}
		if auth.Token != "tok-1" || auth.User.ID != 7 {
			t.Fatalf("unexpected auth %+v", auth)
		}
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("login must bypass the cache, got %d upstream requests", got)
	}
}

func TestWithTokenSendsBearerHeader(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-9" {
			t.Errorf("missing bearer header, got %q", got)
		}
		w.Write([]byte(`{"orders":[]}`))
	}))

	if _, err := client.WithToken("tok-9").GetOrders(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if client.token != "" {
		t.Fatal("WithToken must not mutate the shared client")
	}
}

func TestUpstreamValidationMapsTo422Details(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"The given data was invalid.","errors":{"email":["required"]}}`))
	}))

	_, err := client.Login(context.Background(), "", "")
	if !errors.Is(err, errors.CodeUpstreamValidation) {
		t.Fatalf("expected upstream validation error, got %v", err)
	}
	typed := errors.As(err)
	details, ok := typed.Details().(map[string]any)
	if !ok || details["message"] != "The given data was invalid." {
		t.Fatalf("expected forwarded validation details, got %v", typed.Details())
	}
}

func TestServerErrorMapsToUpstreamWithStatus(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream exploded`))
	}))

	_, err := client.GetSettings(context.Background(), cache.Bypass())
	if !errors.Is(err, errors.CodeUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	dump := errors.Dump(err)
	if dump.UpstreamStatus != http.StatusBadGateway || dump.UpstreamBody != "upstream exploded" {
		t.Fatalf("upstream context lost: %+v", dump)
	}
}

func TestGetProductEmptyPayloadIsNotFound(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"product":null}`))
	}))

	_, err := client.GetProduct(context.Background(), 99, "USD", "la-habana", cache.Bypass())
	if !errors.Is(err, errors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFailedReadIsNotCached(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"currencies":[{"id":1,"name":"Dolar","iso_code":"USD","is_default":true}]}`))
	}))

	if _, err := client.GetCurrencies(context.Background(), cache.For()); err == nil {
		t.Fatal("expected first read to fail")
	}
	currencies, err := client.GetCurrencies(context.Background(), cache.For())
	if err != nil {
		t.Fatal(err)
	}
	if len(currencies) != 1 || currencies[0].ISOCode != "USD" {
		t.Fatalf("unexpected currencies %+v", currencies)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("failure must not populate the cache, got %d upstream requests", got)
	}
}
