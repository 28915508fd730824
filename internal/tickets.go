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

	"github.com/google/uuid"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	CategoryTechnical = "technical"
	CategoryBilling   = "billing"
	CategoryGeneral   = "general"
	CategoryOther     = "other"
)

var ticketStatuses = []string{"open", "in_progress", "resolved", "closed"}

type Ticket struct {
	ID          string    `json:"ticket_id"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TicketStats struct {
	TotalTickets int            `json:"total_tickets"`
	ByStatus     map[string]int `json:"by_status"`
	ByPriority   map[string]int `json:"by_priority"`
	ByCategory   map[string]int `json:"by_category"`
}

// TicketStore is a keyed ticket store persisted as one JSON file.
type TicketStore struct {
	mu      sync.Mutex
	path    string
	tickets map[string]*Ticket
	logger  *slog.Logger
}

func NewTicketStore(path string, logger *slog.Logger) (*TicketStore, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	st := &TicketStore{
		path:    path,
		tickets: make(map[string]*Ticket),
		logger:  logger,
	}
	if err := st.load(); err != nil {
		return nil, err
	}
	return st, nil
}

func (st *TicketStore) load() error {
	data, err := os.ReadFile(st.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read tickets: %w", err)
	}

	if err := json.Unmarshal(data, &st.tickets); err != nil {
		return fmt.Errorf("parse tickets: %w", err)
	}
	return nil
}

func (st *TicketStore) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(st.path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	data, err := json.MarshalIndent(st.tickets, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tickets: %w", err)
	}

	if err := os.WriteFile(st.path, data, 0644); err != nil {
		return fmt.Errorf("write tickets: %w", err)
	}
	return nil
}

// Create stores a new ticket. Invalid priority or category values are
// coerced to medium/general, never rejected.
func (st *TicketStore) Create(description, priority, category string) (*Ticket, error) {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		priority = PriorityMedium
	}

	switch category {
	case CategoryTechnical, CategoryBilling, CategoryGeneral, CategoryOther:
	default:
		category = CategoryGeneral
	}

	now := time.Now()
	ticket := &Ticket{
		ID:          "TK-" + strings.ToUpper(uuid.NewString()[:8]),
		Description: description,
		Priority:    priority,
		Category:    category,
		Status:      "open",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.tickets[ticket.ID] = ticket
	if err := st.saveLocked(); err != nil {
		return nil, err
	}

	st.logger.Info("created ticket", "id", ticket.ID, "priority", ticket.Priority)
	return ticket, nil
}

func (st *TicketStore) Get(id string) (*Ticket, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	t, ok := st.tickets[id]
	return t, ok
}

func (st *TicketStore) UpdateStatus(id, status string) (bool, error) {
	valid := false
	for _, s := range ticketStatuses {
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

	t, ok := st.tickets[id]
	if !ok {
		return false, nil
	}

	t.Status = status
	t.UpdatedAt = time.Now()
	if err := st.saveLocked(); err != nil {
		return false, err
	}
	return true, nil
}

func (st *TicketStore) ByStatus(status string) []*Ticket {
	st.mu.Lock()
	defer st.mu.Unlock()

	var out []*Ticket
	for _, t := range st.tickets {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

func (st *TicketStore) ByPriority(priority string) []*Ticket {
	st.mu.Lock()
	defer st.mu.Unlock()

	var out []*Ticket
	for _, t := range st.tickets {
		if t.Priority == priority {
			out = append(out, t)
		}
	}
	return out
}

func (st *TicketStore) Stats() TicketStats {
	st.mu.Lock()
	defer st.mu.Unlock()

	stats := TicketStats{
		TotalTickets: len(st.tickets),
		ByStatus:     make(map[string]int),
		ByPriority:   make(map[string]int),
		ByCategory:   make(map[string]int),
	}
	for _, t := range st.tickets {
		stats.ByStatus[t.Status]++
		stats.ByPriority[t.Priority]++
		stats.ByCategory[t.Category]++
	}
	return stats
}
