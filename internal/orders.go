package internal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	OrderPending    = "pending"
	OrderConfirmed  = "confirmed"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
	OrderRefunded   = "refunded"
)

var orderStatuses = []string{
	OrderPending, OrderConfirmed, OrderProcessing,
	OrderShipped, OrderDelivered, OrderCancelled, OrderRefunded,
}

type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order is a customer order record. TrackingNumber and EstimatedDelivery
// are explicit optionals.
type Order struct {
	ID                string      `json:"order_id"`
	CustomerName      string      `json:"customer_name"`
	CustomerEmail     string      `json:"customer_email"`
	Items             []OrderItem `json:"items"`
	TotalAmount       float64     `json:"total_amount"`
	Status            string      `json:"status"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
	TrackingNumber    *string     `json:"tracking_number,omitempty"`
	EstimatedDelivery *time.Time  `json:"estimated_delivery,omitempty"`
}

type OrderStats struct {
	TotalOrders       int            `json:"total_orders"`
	ByStatus          map[string]int `json:"by_status"`
	TotalRevenue      float64        `json:"total_revenue"`
	AverageOrderValue float64        `json:"average_order_value"`
}

// OrderStore is a keyed order store persisted as one JSON file. An empty
// store is seeded with sample orders so the agent has something to look
// up out of the box.
type OrderStore struct {
	mu     sync.Mutex
	path   string
	orders map[string]*Order
	logger *slog.Logger
}

func NewOrderStore(path string, logger *slog.Logger) (*OrderStore, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	st := &OrderStore{
		path:   path,
		orders: make(map[string]*Order),
		logger: logger,
	}
	if err := st.load(); err != nil {
		return nil, err
	}
	if len(st.orders) == 0 {
		if err := st.seed(); err != nil {
			return nil, err
		}
	}
	return st, nil
}

func (st *OrderStore) load() error {
	data, err := os.ReadFile(st.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read orders: %w", err)
	}

	if err := json.Unmarshal(data, &st.orders); err != nil {
		return fmt.Errorf("parse orders: %w", err)
	}
	return nil
}

func (st *OrderStore) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(st.path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	data, err := json.MarshalIndent(st.orders, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal orders: %w", err)
	}

	if err := os.WriteFile(st.path, data, 0644); err != nil {
		return fmt.Errorf("write orders: %w", err)
	}
	return nil
}

func strPtr(s string) *string { return &s }

func (st *OrderStore) seed() error {
	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)
	inTwoDays := now.Add(48 * time.Hour)
	inFiveDays := now.Add(120 * time.Hour)

	samples := []*Order{
		{
			ID:            "ORD-001",
			CustomerName:  "John Doe",
			CustomerEmail: "john@example.com",
			Items: []OrderItem{
				{Name: "Wireless Headphones", Quantity: 1, Price: 79.99},
				{Name: "Phone Case", Quantity: 2, Price: 15.99},
			},
			TotalAmount:       111.97,
			Status:            OrderDelivered,
			TrackingNumber:    strPtr("TRK123456789"),
			EstimatedDelivery: &yesterday,
		},
		{
			ID:            "ORD-002",
			CustomerName:  "Jane Smith",
			CustomerEmail: "jane@example.com",
			Items: []OrderItem{
				{Name: "Laptop Stand", Quantity: 1, Price: 49.99},
			},
			TotalAmount:       49.99,
			Status:            OrderShipped,
			TrackingNumber:    strPtr("TRK987654321"),
			EstimatedDelivery: &inTwoDays,
		},
		{
			ID:            "ORD-003",
			CustomerName:  "Bob Johnson",
			CustomerEmail: "bob@example.com",
			Items: []OrderItem{
				{Name: "USB-C Cable", Quantity: 3, Price: 12.99},
				{Name: "Mouse Pad", Quantity: 1, Price: 19.99},
			},
			TotalAmount:       58.96,
			Status:            OrderProcessing,
			EstimatedDelivery: &inFiveDays,
		},
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	for _, o := range samples {
		o.CreatedAt = now
		o.UpdatedAt = now
		st.orders[o.ID] = o
	}

	if err := st.saveLocked(); err != nil {
		return err
	}
	st.logger.Info("seeded sample orders", "count", len(samples))
	return nil
}

// Get looks an order up case-insensitively.
func (st *OrderStore) Get(id string) (*Order, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	o, ok := st.orders[strings.ToUpper(id)]
	return o, ok
}

func (st *OrderStore) UpdateStatus(id, status string, tracking *string, delivery *time.Time) (bool, error) {
	valid := false
	for _, s := range orderStatuses {
		if s == status {
			valid = true
			break
		}
	}
	if !valid {
		return false, nil
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	o, ok := st.orders[strings.ToUpper(id)]
	if !ok {
		return false, nil
	}

	o.Status = status
	o.UpdatedAt = time.Now()
	if tracking != nil {
		o.TrackingNumber = tracking
	}
	if delivery != nil {
		o.EstimatedDelivery = delivery
	}

	if err := st.saveLocked(); err != nil {
		return false, err
	}
	return true, nil
}

func (st *OrderStore) ByStatus(status string) []*Order {
	st.mu.Lock()
	defer st.mu.Unlock()

	var out []*Order
	for _, o := range st.orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

func (st *OrderStore) ByCustomer(email string) []*Order {
	st.mu.Lock()
	defer st.mu.Unlock()

	var out []*Order
	for _, o := range st.orders {
		if strings.EqualFold(o.CustomerEmail, email) {
			out = append(out, o)
		}
	}
	return out
}

func (st *OrderStore) Stats() OrderStats {
	st.mu.Lock()
	defer st.mu.Unlock()

	stats := OrderStats{
		TotalOrders: len(st.orders),
		ByStatus:    make(map[string]int),
	}
	for _, o := range st.orders {
		stats.ByStatus[o.Status]++
		stats.TotalRevenue += o.TotalAmount
	}
	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = stats.TotalRevenue / float64(stats.TotalOrders)
	}
	return stats
}

func titleStatus(status string) string {
	words := strings.Split(strings.ReplaceAll(status, "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// FormatStatus renders an order for display; the agent returns this text
// verbatim as a tool result.
func FormatStatus(o *Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Order %s\n", o.ID)
	fmt.Fprintf(&b, "Status: %s\n", titleStatus(o.Status))
	fmt.Fprintf(&b, "Customer: %s (%s)\n", o.CustomerName, o.CustomerEmail)
	fmt.Fprintf(&b, "Total: $%.2f\n", o.TotalAmount)

	if o.TrackingNumber != nil {
		fmt.Fprintf(&b, "Tracking: %s\n", *o.TrackingNumber)
	}
	if o.EstimatedDelivery != nil {
		fmt.Fprintf(&b, "Estimated delivery: %s\n", o.EstimatedDelivery.Format("2006-01-02"))
	}

	b.WriteString("Items:\n")
	for _, item := range o.Items {
		fmt.Fprintf(&b, "  - %s x%d ($%.2f)\n", item.Name, item.Quantity, item.Price)
	}

	return b.String()
}
