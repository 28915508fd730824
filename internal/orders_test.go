package internal

import (
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestOrderStore(t *testing.T) (*OrderStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.json")
	store, err := NewOrderStore(path, nil)
	if err != nil {
		t.Fatalf("new order store: %v", err)
	}
	return store, path
}

func TestOrderStoreSeedsSamples(t *testing.T) {
	store, _ := newTestOrderStore(t)

	for _, id := range []string{"ORD-001", "ORD-002", "ORD-003"} {
		if _, ok := store.Get(id); !ok {
			t.Errorf("sample order %s missing", id)
		}
	}

	first, _ := store.Get("ORD-001")
	if first.Status != OrderDelivered {
		t.Errorf("ORD-001 status = %q, want %q", first.Status, OrderDelivered)
	}
	if first.TrackingNumber == nil || *first.TrackingNumber != "TRK123456789" {
		t.Errorf("ORD-001 tracking = %v", first.TrackingNumber)
	}
	if math.Abs(first.TotalAmount-111.97) > 1e-9 {
		t.Errorf("ORD-001 total = %f", first.TotalAmount)
	}

	third, _ := store.Get("ORD-003")
	if third.TrackingNumber != nil {
		t.Errorf("ORD-003 has tracking %q before shipping", *third.TrackingNumber)
	}
}

func TestOrderStoreSkipsSeedingWhenDataExists(t *testing.T) {
	store, path := newTestOrderStore(t)

	ok, err := store.UpdateStatus("ORD-003", OrderCancelled, nil, nil)
	if err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}

	reopened, err := NewOrderStore(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	o, ok := reopened.Get("ORD-003")
	if !ok {
		t.Fatal("ORD-003 missing after reopen")
	}
	if o.Status != OrderCancelled {
		t.Errorf("reopen reset status to %q", o.Status)
	}
}

func TestGetOrderCaseInsensitive(t *testing.T) {
	store, _ := newTestOrderStore(t)

	for _, id := range []string{"ord-001", "Ord-001", "ORD-001"} {
		if _, ok := store.Get(id); !ok {
			t.Errorf("Get(%q) missed", id)
		}
	}
	if _, ok := store.Get("ORD-999"); ok {
		t.Error("Get(ORD-999) found a nonexistent order")
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	store, _ := newTestOrderStore(t)

	tracking := "TRK555000111"
	eta := time.Now().Add(72 * time.Hour)
	ok, err := store.UpdateStatus("ord-003", OrderShipped, &tracking, &eta)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !ok {
		t.Fatal("update rejected")
	}

	o, _ := store.Get("ORD-003")
	if o.Status != OrderShipped {
		t.Errorf("status = %q, want %q", o.Status, OrderShipped)
	}
	if o.TrackingNumber == nil || *o.TrackingNumber != tracking {
		t.Errorf("tracking = %v, want %q", o.TrackingNumber, tracking)
	}

	if ok, _ := store.UpdateStatus("ORD-001", "teleported", nil, nil); ok {
		t.Error("invalid status accepted")
	}
	if ok, _ := store.UpdateStatus("ORD-999", OrderShipped, nil, nil); ok {
		t.Error("unknown order updated")
	}
}

func TestOrdersByCustomer(t *testing.T) {
	store, _ := newTestOrderStore(t)

	orders := store.ByCustomer("JANE@EXAMPLE.COM")
	if len(orders) != 1 {
		t.Fatalf("got %d orders for jane, want 1", len(orders))
	}
	if orders[0].ID != "ORD-002" {
		t.Errorf("order = %s, want ORD-002", orders[0].ID)
	}
	if got := store.ByCustomer("nobody@example.com"); len(got) != 0 {
		t.Errorf("unknown customer matched %d orders", len(got))
	}
}

func TestOrderStats(t *testing.T) {
	store, _ := newTestOrderStore(t)

	stats := store.Stats()
	if stats.TotalOrders != 3 {
		t.Fatalf("TotalOrders = %d, want 3", stats.TotalOrders)
	}
	wantRevenue := 111.97 + 49.99 + 58.96
	if math.Abs(stats.TotalRevenue-wantRevenue) > 1e-9 {
		t.Errorf("TotalRevenue = %f, want %f", stats.TotalRevenue, wantRevenue)
	}
	if math.Abs(stats.AverageOrderValue-wantRevenue/3) > 1e-9 {
		t.Errorf("AverageOrderValue = %f", stats.AverageOrderValue)
	}
	if stats.ByStatus[OrderShipped] != 1 {
		t.Errorf("ByStatus[shipped] = %d, want 1", stats.ByStatus[OrderShipped])
	}
}

func TestFormatStatus(t *testing.T) {
	store, _ := newTestOrderStore(t)

	o, _ := store.Get("ORD-002")
	text := FormatStatus(o)

	for _, want := range []string{
		"Order ORD-002",
		"Status: Shipped",
		"Customer: Jane Smith (jane@example.com)",
		"Total: $49.99",
		"Tracking: TRK987654321",
		"Estimated delivery:",
		"- Laptop Stand x1 ($49.99)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("formatted status missing %q:\n%s", want, text)
		}
	}
}

func TestFormatStatusOmitsAbsentFields(t *testing.T) {
	o := &Order{
		ID:           "ORD-777",
		CustomerName: "Ana",
		Status:       "in_transit",
		Items:        []OrderItem{{Name: "Desk Lamp", Quantity: 1, Price: 25}},
		TotalAmount:  25,
	}

	text := FormatStatus(o)
	if strings.Contains(text, "Tracking:") {
		t.Error("tracking line present without a tracking number")
	}
	if strings.Contains(text, "Estimated delivery:") {
		t.Error("delivery line present without an estimate")
	}
	if !strings.Contains(text, "Status: In Transit") {
		t.Errorf("underscored status not titled:\n%s", text)
	}
}
