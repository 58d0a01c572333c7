package controllers

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/eddyjj92/compay-storefront/internal/page"
	"github.com/eddyjj92/compay-storefront/pkg/session"
)

func TestHomeInitialRenderDefersFragments(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	registerMarketData(mux)
	env := newTestEnv(t, mux)

	req := withSession(httptest.NewRequest(http.MethodGet, "/", nil), session.New("s1"))
	resp := httptest.NewRecorder()
	Home(env.client, env.shared, env.renderer, nil)(resp, req)

	doc := decodeDocument(t, resp)
	if doc.Component != "Home" {
		t.Fatalf("unexpected component %q", doc.Component)
	}

	deferred := map[string]bool{}
	for _, name := range doc.DeferredProps["default"] {
		deferred[name] = true
	}
	for _, name := range []string{"banners", "categories", "categoriesNextPageUrl", "recommendedProducts", "newArrivals", "cart", "favorites"} {
		if !deferred[name] {
			t.Fatalf("fragment %q missing from deferred props: %v", name, doc.DeferredProps)
		}
	}

	if _, ok := doc.Props["banners"]; ok {
		t.Fatal("deferred fragment was resolved on initial render")
	}
	for _, name := range []string{"settings", "currencies", "locale", "auth", "flash"} {
		if _, ok := doc.Props[name]; !ok {
			t.Fatalf("shared prop %q missing", name)
		}
	}

	merged := false
	for _, name := range doc.MergeProps {
		if name == "categories" {
			merged = true
		}
	}
	if !merged {
		t.Fatalf("categories should be mergeable, got %v", doc.MergeProps)
	}
}

func TestHomePartialReloadSharesOneCategoriesCall(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	mux := http.NewServeMux()
	registerMarketData(mux)
	mux.HandleFunc("/categories", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"categories":{"data":[{"id":1,"name":"Cafe"}],"current_page":1,"last_page":3,"per_page":15,"total":40}}`))
	})
	env := newTestEnv(t, mux)

	req := withSession(httptest.NewRequest(http.MethodGet, "/", nil), session.New("s1"))
	req.Header.Set(page.HeaderPartialData, "categories, categoriesNextPageUrl")
	req.Header.Set(page.HeaderPartialComponent, "Home")
	resp := httptest.NewRecorder()
	Home(env.client, env.shared, env.renderer, nil)(resp, req)

	doc := decodeDocument(t, resp)
	if doc.DeferredProps != nil {
		t.Fatalf("partial reload must not re-announce deferred props: %v", doc.DeferredProps)
	}
	categories, ok := doc.Props["categories"].([]any)
	if !ok || len(categories) != 1 {
		t.Fatalf("unexpected categories prop: %v", doc.Props["categories"])
	}
	if next, _ := doc.Props["categoriesNextPageUrl"].(string); next != "/?page=2" {
		t.Fatalf("unexpected next page url %v", doc.Props["categoriesNextPageUrl"])
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected both fragments to share one categories call, got %d", got)
	}
}

func TestHomePartialComponentMismatchRendersFullPage(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	registerMarketData(mux)
	env := newTestEnv(t, mux)

	req := withSession(httptest.NewRequest(http.MethodGet, "/", nil), session.New("s1"))
	req.Header.Set(page.HeaderPartialData, "categories")
	req.Header.Set(page.HeaderPartialComponent, "Products/Index")
	resp := httptest.NewRecorder()
	Home(env.client, env.shared, env.renderer, nil)(resp, req)

	doc := decodeDocument(t, resp)
	if doc.DeferredProps == nil {
		t.Fatal("component mismatch should fall back to a full render")
	}
	if _, ok := doc.Props["categories"]; ok {
		t.Fatal("full render must not resolve deferred fragments")
	}
}
