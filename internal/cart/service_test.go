package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/eddyjj92/compay-storefront/pkg/cache"
	"github.com/eddyjj92/compay-storefront/pkg/compay"
	"github.com/eddyjj92/compay-storefront/pkg/enums"
	"github.com/eddyjj92/compay-storefront/pkg/errors"
	"github.com/eddyjj92/compay-storefront/pkg/session"
)

type stubProducts struct {
	products map[int]compay.Product
}

func (s *stubProducts) GetProduct(ctx context.Context, id int, currency, provinceSlug string, mode cache.Mode) (*compay.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("product %d not found", id))
	}
	return &p, nil
}

func catalog(products ...compay.Product) *stubProducts {
	s := &stubProducts{products: map[int]compay.Product{}}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func enabled(id int, salePrice string) compay.Product {
	return compay.Product{
		ID:        id,
		Name:      fmt.Sprintf("P%d", id),
		SalePrice: decimal.RequireFromString(salePrice),
		Status:    enums.ProductStatusEnabled,
	}
}

func TestViewJoinsLiveProducts(t *testing.T) {
	t.Parallel()

	svc := NewService(catalog(enabled(5, "9.98"), enabled(6, "2.00")), nil)
	sess := session.New("s1")
	svc.Add(sess, 5, 2)
	svc.Add(sess, 6, 1)

	view := svc.View(context.Background(), sess, "USD", "la-habana")
	if view.Count != 3 {
		t.Fatalf("expected count 3, got %d", view.Count)
	}
	if !view.Total.Equal(decimal.RequireFromString("21.96")) {
		t.Fatalf("expected total 21.96, got %s", view.Total)
	}
	if len(view.Items) != 2 || view.Items[0].Product.ID != 5 {
		t.Fatalf("unexpected items %+v", view.Items)
	}
}

func TestViewDropsVanishedProductsSilently(t *testing.T) {
	t.Parallel()

	svc := NewService(catalog(enabled(5, "9.98")), nil)
	sess := session.New("s1")
	svc.Add(sess, 5, 1)
	svc.Add(sess, 999, 1)

	view := svc.View(context.Background(), sess, "USD", "")
	if len(view.Items) != 1 || view.Items[0].Product.ID != 5 {
		t.Fatalf("vanished product not dropped: %+v", view.Items)
	}
	if view.Count != 1 {
		t.Fatalf("vanished product counted: %d", view.Count)
	}
}

func TestViewPricesAtRenderTime(t *testing.T) {
	t.Parallel()

	discounted := enabled(7, "100")
	discounted.ActiveDiscounts = []compay.Discount{
		{Type: "percentage", Value: decimal.RequireFromString("50")},
	}
	svc := NewService(catalog(discounted), nil)
	sess := session.New("s1")
	svc.Add(sess, 7, 2)

	view := svc.View(context.Background(), sess, "USD", "")
	if !view.Items[0].Price.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("expected render-time discounted price 50, got %s", view.Items[0].Price)
	}
	if !view.Total.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("expected total 100, got %s", view.Total)
	}
}

func TestAddFloorsQuantityAtOne(t *testing.T) {
	t.Parallel()

	svc := NewService(catalog(), nil)
	sess := session.New("s1")
	svc.Add(sess, 5, 0)
	svc.Add(sess, 6, -3)

	lines := svc.Lines(sess)
	for _, line := range lines {
		if line.Quantity != 1 {
			t.Fatalf("expected quantity floored to 1, got %+v", line)
		}
	}
}

func TestLinesSanitizeStoredQuantities(t *testing.T) {
	t.Parallel()

	svc := NewService(catalog(), nil)
	sess := session.New("s1")
	sess.CartAdd(5, 2)
	// Legacy payloads can leave a zero quantity behind.
	sess.CartSetQuantity(5, 2)
	sess.CartAdd(6, 1)

	lines := svc.Lines(sess)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].ProductID != 5 || lines[0].Quantity != 2 {
		t.Fatalf("unexpected line %+v", lines[0])
	}
}

func TestTotalWeight(t *testing.T) {
	t.Parallel()

	heavy := enabled(5, "1.00")
	heavy.Weight = 0.5
	light := enabled(6, "1.00")
	light.Weight = 0.2

	svc := NewService(catalog(heavy, light), nil)
	sess := session.New("s1")
	svc.Add(sess, 5, 2)
	svc.Add(sess, 6, 1)

	if got := svc.TotalWeight(context.Background(), sess, "USD", ""); got != 1.2 {
		t.Fatalf("expected weight 1.2, got %v", got)
	}
}
