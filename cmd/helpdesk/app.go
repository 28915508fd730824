package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/4thel00z/helpdesk/internal"
	"github.com/spf13/cobra"
)

// app bundles the wired collaborators every subcommand works against.
type app struct {
	cfg      *internal.Config
	logger   *slog.Logger
	chunker  *internal.Chunker
	ollama   *internal.OllamaClient
	index    *internal.FlatIndex
	sessions *internal.SessionStore
	tickets  *internal.TicketStore
	orders   *internal.OrderStore
	agent    *internal.Agent
}

// loadApp builds the full application from the --config flag. A missing
// persisted index is fine on startup; a corrupt one is reported and the
// process continues with an empty index until the next rebuild.
func loadApp(cmd *cobra.Command) (*app, error) {
	cfgPath, _ := cmd.Flags().GetString("config")

	cfg, err := internal.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := internal.NewLogger(cfg.LogLevel)

	chunker, err := internal.NewChunker(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	ollamaCfg := cfg.LLM.Providers["ollama"]
	ollama := internal.NewOllamaClient(
		cfg.Embeddings.BaseURL,
		ollamaCfg.Model,
		cfg.Embeddings.Model,
		time.Duration(cfg.Embeddings.TimeoutSeconds)*time.Second,
	)

	provider, err := buildProvider(cmd.Context(), cfg, ollama)
	if err != nil {
		return nil, err
	}
	if fp, ok := provider.(*internal.FantasyProvider); ok {
		logger.Info("using hosted provider", "provider", fp.Name())
	}

	index, err := internal.NewFlatIndex(cfg.RAG.IndexPath, ollama)
	if err != nil {
		return nil, err
	}
	switch err := index.Load(); {
	case err == nil:
		logger.Info("loaded persisted index", "documents", index.Stats().TotalDocuments)
	case errors.Is(err, internal.ErrIndexMissing):
		logger.Info("no persisted index, starting empty")
	case errors.Is(err, internal.ErrIndexCorrupt):
		logger.Warn("persisted index unusable, starting empty", "error", err)
	default:
		return nil, err
	}

	sessions := internal.NewSessionStore(
		time.Duration(cfg.Session.TimeoutSeconds)*time.Second,
		cfg.Session.MaxMessages,
	)

	tickets, err := internal.NewTicketStore(cfg.TicketsPath(), logger)
	if err != nil {
		return nil, err
	}
	orders, err := internal.NewOrderStore(cfg.OrdersPath(), logger)
	if err != nil {
		return nil, err
	}

	dispatcher := internal.NewDispatcher(logger)
	internal.RegisterBuiltinTools(dispatcher, tickets, orders, index)

	agent := internal.NewAgent(index, sessions, provider, dispatcher, internal.AgentConfig{
		TopK:          cfg.RAG.TopK,
		Temperature:   cfg.LLM.Temperature,
		HistoryWindow: cfg.Session.MaxMessages / 2,
		CallTimeout:   time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	}, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		chunker:  chunker,
		ollama:   ollama,
		index:    index,
		sessions: sessions,
		tickets:  tickets,
		orders:   orders,
		agent:    agent,
	}, nil
}

func buildProvider(ctx context.Context, cfg *internal.Config, ollama *internal.OllamaClient) (internal.Provider, error) {
	name := cfg.LLM.DefaultProvider
	if name == "ollama" {
		return ollama, nil
	}

	pc, ok := cfg.LLM.Providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", name)
	}

	return internal.NewFantasyProvider(ctx, internal.FantasyConfig{
		Provider: name,
		APIKey:   pc.APIKey,
		BaseURL:  pc.BaseURL,
		Model:    pc.Model,
	})
}
