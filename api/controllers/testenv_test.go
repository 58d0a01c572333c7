package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	cartsvc "github.com/eddyjj92/compay-storefront/internal/cart"
	favsvc "github.com/eddyjj92/compay-storefront/internal/favorites"
	locationsvc "github.com/eddyjj92/compay-storefront/internal/location"
	"github.com/eddyjj92/compay-storefront/internal/page"
	"github.com/eddyjj92/compay-storefront/pkg/cache"
	"github.com/eddyjj92/compay-storefront/pkg/compay"
	"github.com/eddyjj92/compay-storefront/pkg/config"
	"github.com/eddyjj92/compay-storefront/pkg/session"
)

type testEnv struct {
	client    *compay.Client
	shared    *Shared
	renderer  *page.Renderer
	cart      *cartsvc.Service
	favorites *favsvc.Service
}

func newTestEnv(t *testing.T, upstream http.Handler) *testEnv {
	t.Helper()

	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	store, err := cache.New(cache.NewMemoryStore(), time.Minute, nil)
	if err != nil {
		t.Fatal(err)
	}
	client, err := compay.NewClient(config.CompayConfig{APIBaseURL: srv.URL, Timeout: 5 * time.Second}, store, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	cartService := cartsvc.NewService(client, nil)
	favoritesService := favsvc.NewService(client, nil)
	localeService := locationsvc.NewService(client, nil)

	return &testEnv{
		client:    client,
		renderer:  page.NewRenderer("test", nil),
		cart:      cartService,
		favorites: favoritesService,
		shared: &Shared{
			Client:    client,
			Locale:    localeService,
			Cart:      cartService,
			Favorites: favoritesService,
		},
	}
}

func withSession(r *http.Request, sess *session.Session) *http.Request {
	return r.WithContext(session.NewContext(r.Context(), sess))
}

// registerMarketData serves the reference data every page render reads.
func registerMarketData(mux *http.ServeMux) {
	mux.HandleFunc("/settings", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"settings":{"company_name":"Compay Market"}}`))
	})
	mux.HandleFunc("/currencies", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"currencies":[{"id":1,"name":"US Dollar","iso_code":"USD","is_default":true,"conversion_value":1}]}`))
	})
	mux.HandleFunc("/provinces", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"provinces":[]}`))
	})
}

func decodeDocument(t *testing.T, resp *httptest.ResponseRecorder) page.Document {
	t.Helper()
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var doc page.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	return doc
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}
