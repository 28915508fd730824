package main

import (
	"encoding/json"
	"fmt"

	"github.com/4thel00z/helpdesk/internal"
	"github.com/spf13/cobra"
)

func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show component health and store statistics",
		RunE:  runStatus,
	}

	return cmd
}

type statusReport struct {
	OllamaConnected bool                  `json:"ollama_connected"`
	VectorStore     internal.IndexStats   `json:"vector_store"`
	Sessions        internal.SessionStats `json:"sessions"`
	Tickets         internal.TicketStats  `json:"tickets"`
	Orders          internal.OrderStats   `json:"orders"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	report := statusReport{
		OllamaConnected: a.ollama.CheckConnection(cmd.Context()),
		VectorStore:     a.index.Stats(),
		Sessions:        a.sessions.Stats(),
		Tickets:         a.tickets.Stats(),
		Orders:          a.orders.Stats(),
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	out := cmd.OutOrStdout()
	connected := "no"
	if report.OllamaConnected {
		connected = "yes"
	}
	fmt.Fprintf(out, "Ollama reachable: %s\n", connected)
	fmt.Fprintf(out, "Index: %d chunks (dimension %d) at %s\n",
		report.VectorStore.TotalDocuments, report.VectorStore.Dimension, report.VectorStore.StorePath)
	fmt.Fprintf(out, "Sessions: %d active, %d messages\n",
		report.Sessions.ActiveSessions, report.Sessions.TotalMessages)
	fmt.Fprintf(out, "Tickets: %d total, %d open\n",
		report.Tickets.TotalTickets, report.Tickets.ByStatus["open"])
	fmt.Fprintf(out, "Orders: %d total, $%.2f revenue\n",
		report.Orders.TotalOrders, report.Orders.TotalRevenue)
	return nil
}
