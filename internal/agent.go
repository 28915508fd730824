package internal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	defaultTopK          = 3
	defaultHistoryWindow = 10
)

type AgentConfig struct {
	TopK          int
	Temperature   float64
	HistoryWindow int
	// CallTimeout bounds every completion call; a timed-out call is a
	// backend failure and takes the fallback branch, no retries here.
	CallTimeout time.Duration
}

// Agent orchestrates one user turn: retrieve context, compose a prompt,
// generate, run the tool pass, and book-keep the session. It is the
// single place where faults become user-safe text.
type Agent struct {
	index      *FlatIndex
	sessions   *SessionStore
	provider   Provider
	dispatcher *Dispatcher
	cfg        AgentConfig
	logger     *slog.Logger
}

func NewAgent(index *FlatIndex, sessions *SessionStore, provider Provider, dispatcher *Dispatcher, cfg AgentConfig, logger *slog.Logger) *Agent {
	if cfg.TopK <= 0 {
		cfg.TopK = defaultTopK
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = defaultHistoryWindow
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultBackendTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Agent{
		index:      index,
		sessions:   sessions,
		provider:   provider,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
	}
}

// Respond handles one user turn and always returns user-safe text. No
// fault from deeper layers escapes unformatted.
func (a *Agent) Respond(ctx context.Context, sessionID, userMessage string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("recovered while generating response", "panic", r)
			reply = ErrorMessages["model_error"]
		}
	}()

	session := a.sessions.GetOrCreate(sessionID)
	a.sessions.Append(session, RoleUser, userMessage)

	docContext := a.retrieve(ctx, userMessage)
	history := a.history(sessionID)
	prompt := composePrompt(history, docContext, userMessage)

	answer, err := a.complete(ctx, prompt)
	if err != nil {
		a.logger.Warn("completion failed, using fallback", "error", err)
		return FallbackResponse(userMessage)
	}

	if calls := ExtractToolCalls(answer); len(calls) > 0 {
		results := a.dispatcher.DispatchAll(ctx, calls)
		final := fmt.Sprintf("%s\n\nTool Results:\n%s\n\nPlease provide a helpful response based on these tool results.",
			prompt, strings.Join(results, "\n\n"))

		answer, err = a.complete(ctx, final)
		if err != nil {
			a.logger.Warn("completion failed after tool pass, using fallback", "error", err)
			return FallbackResponse(userMessage)
		}
	}

	a.sessions.Append(session, RoleAssistant, answer)
	return answer
}

// retrieve queries the index; an embedding failure degrades to "no
// context", it does not fail the turn.
func (a *Agent) retrieve(ctx context.Context, query string) string {
	results, err := a.index.Search(ctx, query, a.cfg.TopK)
	if err != nil {
		a.logger.Warn("retrieval failed", "error", err)
		return ""
	}

	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Text)
	}
	return strings.Join(texts, "\n\n")
}

// history renders the recent window, excluding the current user message.
// It reads through the store so concurrent turns on the same session never
// observe a trim in progress.
func (a *Agent) history(sessionID string) string {
	recent := a.sessions.Recent(sessionID, a.cfg.HistoryWindow)
	if len(recent) <= 1 {
		return ""
	}

	var b strings.Builder
	for _, msg := range recent[:len(recent)-1] {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	return strings.TrimSpace(b.String())
}

func composePrompt(history, docContext, message string) string {
	switch {
	case docContext != "" && history != "":
		return chatPrompt(history, docContext, message)
	case docContext != "":
		return ragPrompt(docContext, message)
	default:
		return message
	}
}

func (a *Agent) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.CallTimeout)
	defer cancel()
	return a.provider.Complete(ctx, SystemPrompt, prompt, a.cfg.Temperature)
}
