package main

import (
	"fmt"

	"folio/internal/agent"
	"folio/internal/config"
	"folio/internal/llm"
	"folio/internal/portfolio"
	"folio/internal/tools"
)

// app bundles everything a front-end needs to construct agents: the loaded
// config, the portfolio document and its tool catalog, and the LLM provider
// selected by config. Both the gateway and the CLI commands start here.
type app struct {
	cfg      *config.Config
	doc      *portfolio.Document
	catalog  *tools.Catalog
	provider llm.Provider
}

func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	doc, err := portfolio.Load(cfg.Data.Path)
	if err != nil {
		return nil, err
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		doc:      doc,
		catalog:  tools.NewCatalog(doc),
		provider: provider,
	}, nil
}

func newProvider(cfg *config.Config) (llm.Provider, error) {
	llmCfg, ok := cfg.LLMs[cfg.DefaultLLM]
	if !ok {
		return nil, fmt.Errorf("default LLM %q not found in config", cfg.DefaultLLM)
	}
	switch cfg.DefaultLLM {
	case "ollama":
		return llm.NewOllama(llmCfg.BaseURL, llmCfg.Model), nil
	default:
		return llm.NewOpenAI(llmCfg.BaseURL, llmCfg.APIKey, llmCfg.Model), nil
	}
}

// newAgent builds a fresh agent session. maxIterations <= 0 means use the
// configured default; extra options (like per-command emit hooks) append
// after the baseline ones.
func (a *app) newAgent(maxIterations int, extra ...agent.Option) *agent.Agent {
	if maxIterations <= 0 {
		maxIterations = a.cfg.Agent.MaxIterations
	}
	opts := []agent.Option{
		agent.WithSystemPrompt(agent.DefaultSystemPrompt(a.doc.Profile.Name)),
		agent.WithMaxIterations(maxIterations),
		agent.WithCallTimeout(a.cfg.Agent.LLMTimeoutDuration()),
		agent.WithMaxRetries(a.cfg.Agent.MaxRetries),
	}
	opts = append(opts, extra...)
	return agent.New(a.provider, a.catalog, opts...)
}
