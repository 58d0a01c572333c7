package mirror

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/eddyjj92/compay-storefront/pkg/compay"
	"github.com/eddyjj92/compay-storefront/pkg/enums"
)

type stubCartTransport struct {
	mu      sync.Mutex
	fail    map[string]error
	calls   []string
	release chan struct{}
}

func newStubCartTransport() *stubCartTransport {
	return &stubCartTransport{fail: map[string]error{}}
}

func (s *stubCartTransport) record(op string) error {
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, op)
	return s.fail[op]
}

func (s *stubCartTransport) Add(ctx context.Context, productID, quantity int) error {
	return s.record("add")
}

func (s *stubCartTransport) Update(ctx context.Context, productID, quantity int) error {
	return s.record("update")
}

func (s *stubCartTransport) Remove(ctx context.Context, productID int) error {
	return s.record("remove")
}

func (s *stubCartTransport) Clear(ctx context.Context) error {
	return s.record("clear")
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func product(id int, salePrice string) compay.Product {
	return compay.Product{
		ID:        id,
		Name:      "P",
		SalePrice: price(salePrice),
		Status:    enums.ProductStatusEnabled,
	}
}

func TestAddAppliesBeforeConfirmationAndRollsBackOnFailure(t *testing.T) {
	t.Parallel()

	transport := newStubCartTransport()
	transport.fail["add"] = errors.New("marketplace rejected")
	transport.release = make(chan struct{})

	cart := NewCart(transport, nil)
	cart.AddToCart(context.Background(), product(5, "9.98"), 2)

	// The mirror reflects the mutation while the confirmation is in flight.
	state := cart.State()
	if state.Count != 2 || !state.Total.Equal(price("19.96")) {
		t.Fatalf("expected optimistic {count:2, total:19.96}, got {count:%d, total:%s}", state.Count, state.Total)
	}
	if !cart.IsProcessing() {
		t.Fatal("expected processing gate up while confirmation outstanding")
	}

	close(transport.release)
	cart.Wait()

	state = cart.State()
	if state.Count != 0 || !state.Total.Equal(decimal.Zero) || len(state.Items) != 0 {
		t.Fatalf("expected rollback to empty mirror, got %+v", state)
	}
	if cart.IsProcessing() {
		t.Fatal("expected processing gate down after settlement")
	}
}

func TestIdempotentReAddYieldsOneEntry(t *testing.T) {
	t.Parallel()

	cart := NewCart(newStubCartTransport(), nil)
	cart.AddToCart(context.Background(), product(5, "3.00"), 1)
	cart.AddToCart(context.Background(), product(5, "3.00"), 1)
	cart.Wait()

	state := cart.State()
	if len(state.Items) != 1 {
		t.Fatalf("expected one entry, got %d", len(state.Items))
	}
	if state.Items[0].Quantity != 2 || state.Count != 2 {
		t.Fatalf("expected quantity 2, got %+v", state)
	}
}

func TestAggregatesMatchEntrySums(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cart := NewCart(newStubCartTransport(), nil)
	cart.AddToCart(ctx, product(1, "2.50"), 2)
	cart.AddToCart(ctx, product(2, "10.00"), 1)
	cart.UpdateQuantity(ctx, 1, 4)
	cart.RemoveFromCart(ctx, 2)
	cart.Wait()

	state := cart.State()
	wantCount := 0
	wantTotal := decimal.Zero
	for _, item := range state.Items {
		wantCount += item.Quantity
		wantTotal = wantTotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if state.Count != wantCount || !state.Total.Equal(wantTotal) {
		t.Fatalf("aggregates diverged from entries: %+v", state)
	}
	if state.Count != 4 || !state.Total.Equal(price("10.00")) {
		t.Fatalf("unexpected final state %+v", state)
	}
}

func TestRollbackRestoresExactSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	transport := newStubCartTransport()
	cart := NewCart(transport, nil)
	cart.AddToCart(ctx, product(1, "1.00"), 1)
	cart.AddToCart(ctx, product(2, "2.00"), 3)
	cart.Wait()

	before := cart.State()

	transport.fail["update"] = errors.New("rejected")
	cart.UpdateQuantity(ctx, 2, 9)
	cart.Wait()

	after := cart.State()
	if !reflect.DeepEqual(before.Items, after.Items) {
		t.Fatalf("rollback is not snapshot-equal:\nbefore %+v\nafter  %+v", before.Items, after.Items)
	}
	if after.Count != before.Count || !after.Total.Equal(before.Total) {
		t.Fatalf("aggregates not restored: %+v vs %+v", before, after)
	}
}

func TestRemoveRollbackPreservesPosition(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	transport := newStubCartTransport()
	cart := NewCart(transport, nil)
	cart.AddToCart(ctx, product(1, "1.00"), 1)
	cart.AddToCart(ctx, product(2, "2.00"), 1)
	cart.AddToCart(ctx, product(3, "3.00"), 1)
	cart.Wait()

	transport.fail["remove"] = errors.New("rejected")
	cart.RemoveFromCart(ctx, 2)
	cart.Wait()

	state := cart.State()
	if len(state.Items) != 3 || state.Items[1].ID != 2 {
		t.Fatalf("expected product 2 back at index 1, got %+v", state.Items)
	}
}

func TestUnknownProductMutationsIssueNoConfirmation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	transport := newStubCartTransport()
	cart := NewCart(transport, nil)
	cart.UpdateQuantity(ctx, 99, 5)
	cart.RemoveFromCart(ctx, 99)
	cart.Wait()

	if len(transport.calls) != 0 {
		t.Fatalf("expected no transport calls, got %v", transport.calls)
	}
}

func TestClearCartRollsBackOnFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	transport := newStubCartTransport()
	cart := NewCart(transport, nil)
	cart.AddToCart(ctx, product(1, "5.00"), 2)
	cart.Wait()

	transport.fail["clear"] = errors.New("rejected")
	cart.ClearCart(ctx)
	cart.Wait()

	state := cart.State()
	if state.Count != 2 || !state.Total.Equal(price("10.00")) {
		t.Fatalf("expected cart restored after failed clear, got %+v", state)
	}
}

func TestAddCapturesDiscountedPrice(t *testing.T) {
	t.Parallel()

	discounted := product(7, "100")
	discounted.ActiveDiscounts = []compay.Discount{{Type: "percentage", Value: price("25")}}

	cart := NewCart(newStubCartTransport(), nil)
	cart.AddToCart(context.Background(), discounted, 1)
	cart.Wait()

	state := cart.State()
	if !state.Items[0].Price.Equal(price("75")) {
		t.Fatalf("expected discounted unit price 75, got %s", state.Items[0].Price)
	}
}
