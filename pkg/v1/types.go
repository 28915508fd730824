package v1

// ChatReply is the answer to one chat message, together with the session
// the conversation continues under.
type ChatReply struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// IndexStats describes the server's vector store.
type IndexStats struct {
	TotalDocuments int    `json:"total_documents"`
	Dimension      int    `json:"dimension"`
	IndexExists    bool   `json:"index_exists"`
	StorePath      string `json:"store_path"`
}

// SessionStats summarizes the live conversation state.
type SessionStats struct {
	ActiveSessions int     `json:"active_sessions"`
	TotalMessages  int     `json:"total_messages"`
	AvgMessages    float64 `json:"avg_messages_per_session"`
}

// TicketStats summarizes the ticket store.
type TicketStats struct {
	TotalTickets int            `json:"total_tickets"`
	ByStatus     map[string]int `json:"by_status"`
	ByPriority   map[string]int `json:"by_priority"`
	ByCategory   map[string]int `json:"by_category"`
}

// OrderStats summarizes the order store.
type OrderStats struct {
	TotalOrders       int            `json:"total_orders"`
	ByStatus          map[string]int `json:"by_status"`
	TotalRevenue      float64        `json:"total_revenue"`
	AverageOrderValue float64        `json:"average_order_value"`
}

// Status is the server-wide health report.
type Status struct {
	Status          string       `json:"status"`
	OllamaConnected bool         `json:"ollama_connected"`
	VectorStore     IndexStats   `json:"vector_store"`
	Sessions        SessionStats `json:"sessions"`
	Tickets         TicketStats  `json:"tickets"`
	Orders          OrderStats   `json:"orders"`
}

// RebuildResult reports a completed knowledge base rebuild.
type RebuildResult struct {
	Message string     `json:"message"`
	Stats   IndexStats `json:"stats"`
}
