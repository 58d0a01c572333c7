package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eddyjj92/compay-storefront/pkg/session"
	"github.com/shopspring/decimal"
)

type cartViewData struct {
	Items []struct {
		Product struct {
			ID int `json:"id"`
		} `json:"product"`
		Quantity int             `json:"quantity"`
		Subtotal decimal.Decimal `json:"subtotal"`
	} `json:"items"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

func TestCartAddReturnsFreshView(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	registerMarketData(mux)
	mux.HandleFunc("/products/5", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"product":{"id":5,"name":"Cafe Serrano","status":"ENABLED","sale_price":"9.98","weight":0.5}}`))
	})
	env := newTestEnv(t, mux)
	sess := session.New("s1")

	body := strings.NewReader(`{"product_id":5,"quantity":2}`)
	req := withSession(httptest.NewRequest(http.MethodPost, "/cart", body), sess)
	resp := httptest.NewRecorder()
	CartAdd(env.cart, env.shared, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var view cartViewData
	decodeData(t, resp, &view)
	if view.Count != 2 || len(view.Items) != 1 {
		t.Fatalf("unexpected view %+v", view)
	}
	if !view.Total.Equal(decimal.RequireFromString("19.96")) {
		t.Fatalf("unexpected total %s", view.Total)
	}
	if got := sess.PullFlash("success"); got == "" {
		t.Fatal("expected a success flash message")
	}
}

func TestCartAddValidatesPayload(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, http.NewServeMux())
	sess := session.New("s1")

	req := withSession(httptest.NewRequest(http.MethodPost, "/cart", strings.NewReader(`{"quantity":2}`)), sess)
	resp := httptest.NewRecorder()
	CartAdd(env.cart, env.shared, nil)(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(sess.CartEntries()) != 0 {
		t.Fatal("rejected payload must not touch the cart")
	}
}

func TestCartAddDefaultsQuantityToOne(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	registerMarketData(mux)
	mux.HandleFunc("/products/5", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"product":{"id":5,"name":"Cafe Serrano","status":"ENABLED","sale_price":"9.98"}}`))
	})
	env := newTestEnv(t, mux)
	sess := session.New("s1")

	req := withSession(httptest.NewRequest(http.MethodPost, "/cart", strings.NewReader(`{"product_id":5}`)), sess)
	resp := httptest.NewRecorder()
	CartAdd(env.cart, env.shared, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var view cartViewData
	decodeData(t, resp, &view)
	if view.Count != 1 {
		t.Fatalf("expected quantity to default to 1, got count %d", view.Count)
	}
}
