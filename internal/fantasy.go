package internal

import (
	"context"
	"fmt"

	"charm.land/fantasy"
	"charm.land/fantasy/providers/anthropic"
	"charm.land/fantasy/providers/openai"
	"charm.land/fantasy/providers/openrouter"
)

type FantasyConfig struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
}

var _ Provider = (*FantasyProvider)(nil)

// FantasyProvider adapts a fantasy language model to the Provider
// contract. The system prompt is folded into the prompt text, matching
// how the ollama path flattens roles before generation.
type FantasyProvider struct {
	model fantasy.LanguageModel
	name  string
}

func NewFantasyProvider(ctx context.Context, cfg FantasyConfig) (*FantasyProvider, error) {
	var provider fantasy.Provider
	var err error

	switch cfg.Provider {
	case "openai":
		opts := []openai.Option{openai.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		provider, err = openai.New(opts...)

	case "anthropic":
		opts := []anthropic.Option{anthropic.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		provider, err = anthropic.New(opts...)

	case "openrouter":
		opts := []openrouter.Option{openrouter.WithAPIKey(cfg.APIKey)}
		provider, err = openrouter.New(opts...)

	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	model, err := provider.LanguageModel(ctx, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("get language model: %w", err)
	}

	return &FantasyProvider{
		model: model,
		name:  cfg.Provider,
	}, nil
}

// Complete generates a reply for the prompt. The temperature parameter is
// not forwarded: fantasy's AgentCall carries only the prompt, so hosted
// providers run with their own sampling defaults.
func (p *FantasyProvider) Complete(ctx context.Context, system, prompt string, _ float64) (string, error) {
	agent := fantasy.NewAgent(p.model)

	full := prompt
	if system != "" {
		full = fmt.Sprintf("System: %s\n\n%s", system, prompt)
	}

	result, err := agent.Generate(ctx, fantasy.AgentCall{
		Prompt: full,
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	return result.Response.Content.Text(), nil
}

// Name reports which hosted backend this provider talks to.
func (p *FantasyProvider) Name() string {
	return p.name
}
