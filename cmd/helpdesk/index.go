package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Rebuild the knowledge base index",
		Long:  `Re-chunk and re-embed every document under the knowledge directory, then persist the index.`,
		RunE:  runIndex,
	}

	return cmd
}

func runIndex(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	dir := a.cfg.RAG.KnowledgePath
	ext := a.cfg.RAG.Extension

	if err := a.index.Rebuild(cmd.Context(), dir, ext, a.chunker); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	stats := a.index.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d chunks (dimension %d) into %s\n",
		stats.TotalDocuments, stats.Dimension, stats.StorePath)
	return nil
}
