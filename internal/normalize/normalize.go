// Package normalize implements the strategies that turn free text into
// command candidates: Gemini function calling, an OpenAI-compatible JSON
// prompt, and local pattern rules.
package normalize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/expensecmd/internal/command"
)

// Options selects and configures strategies.
type Options struct {
	// Strategies in priority order, e.g. ["gemini", "pattern"].
	Strategies []string
	Timeout    time.Duration
	Gemini     GeminiConfig
	Prompt     PromptConfig
	Logger     *slog.Logger
}

// New builds the configured strategies and chains them. With one strategy
// there is no fallback.
func New(ctx context.Context, opts Options, schema command.Schema) (command.Normalizer, error) {
	if len(opts.Strategies) == 0 {
		return nil, errors.New("no normalizer strategies configured")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	normalizers := make([]command.Normalizer, 0, len(opts.Strategies))
	seen := make(map[string]bool, len(opts.Strategies))
	for _, name := range opts.Strategies {
		if seen[name] {
			return nil, fmt.Errorf("normalizer strategy %q listed twice", name)
		}
		seen[name] = true

		switch name {
		case StrategyGemini:
			cfg := opts.Gemini
			cfg.Timeout = opts.Timeout
			cfg.Logger = logger
			g, err := NewGemini(ctx, cfg, schema)
			if err != nil {
				return nil, err
			}
			normalizers = append(normalizers, g)
		case StrategyPrompt:
			cfg := opts.Prompt
			cfg.Timeout = opts.Timeout
			cfg.Logger = logger
			normalizers = append(normalizers, NewPrompt(cfg, schema))
		case StrategyPattern:
			normalizers = append(normalizers, NewPattern())
		default:
			return nil, fmt.Errorf("unknown normalizer strategy %q", name)
		}
	}

	if len(normalizers) == 1 {
		return normalizers[0], nil
	}
	return command.NewChain(logger, normalizers...), nil
}
