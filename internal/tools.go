package internal

import (
	"context"
	"fmt"
	"strings"
)

const searchResultLimit = 3

// RegisterBuiltinTools wires the three known tools to their backing
// collaborators. Argument defaults follow the tool contract: absent
// optional keys get documented defaults, absent required keys produce a
// "please provide" message instead of an error.
func RegisterBuiltinTools(d *Dispatcher, tickets *TicketStore, orders *OrderStore, index *FlatIndex) {
	d.Register(ToolCreateTicket, func(_ context.Context, args map[string]string) (string, error) {
		description := args["description"]
		if description == "" {
			description = "No description provided"
		}

		ticket, err := tickets.Create(description, args["priority"], args["category"])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Created support ticket %s with %s priority.", ticket.ID, ticket.Priority), nil
	})

	d.Register(ToolCheckOrderStatus, func(_ context.Context, args map[string]string) (string, error) {
		orderID, ok := args["order_id"]
		if !ok || orderID == "" {
			return "Please provide an order ID.", nil
		}

		order, found := orders.Get(orderID)
		if !found {
			return fmt.Sprintf("Order %s not found. Please check the order ID and try again.", orderID), nil
		}
		return FormatStatus(order), nil
	})

	d.Register(ToolSearchKnowledge, func(ctx context.Context, args map[string]string) (string, error) {
		query, ok := args["query"]
		if !ok || query == "" {
			return "Please provide a search query.", nil
		}

		results, err := index.Search(ctx, query, searchResultLimit)
		if err != nil {
			return "", fmt.Errorf("search knowledge base: %w", err)
		}
		if len(results) == 0 {
			return "No relevant information found in the knowledge base.", nil
		}

		var b strings.Builder
		b.WriteString("Knowledge base results:\n\n")
		for i, r := range results {
			text := r.Text
			if len(text) > 200 {
				text = text[:200] + "..."
			}
			fmt.Fprintf(&b, "%d. %s\n   Source: %s\n\n", i+1, text, r.Source)
		}
		return strings.TrimRight(b.String(), "\n"), nil
	})
}
