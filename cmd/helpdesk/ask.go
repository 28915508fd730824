package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Ask the support agent a single question",
		Long:  `Send one message through the full pipeline: retrieval, generation and the tool pass. Useful for smoke-testing a setup without the HTTP API.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}

	cmd.Flags().String("session", "", "Session id to continue a conversation")
	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	sessionID, _ := cmd.Flags().GetString("session")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	message := strings.Join(args, " ")
	reply := a.agent.Respond(cmd.Context(), sessionID, message)

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]string{
			"response":   reply,
			"session_id": sessionID,
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), reply)
	return nil
}
