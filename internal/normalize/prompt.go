package normalize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmynk/expensecmd/internal/command"
)

// PromptConfig configures the OpenAI-compatible chat completions strategy.
type PromptConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	// HTTPClient defaults to a client without its own timeout; Timeout bounds each call.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Prompt asks a chat model to answer with a single JSON object describing the
// intent, and extracts that object from the reply.
type Prompt struct {
	baseURL string
	apiKey  string
	model   string
	timeout time.Duration
	system  string
	http    *http.Client
	logger  *slog.Logger
}

var _ command.Normalizer = (*Prompt)(nil)

// NewPrompt builds a Prompt normalizer whose system prompt is derived from schema.
func NewPrompt(cfg PromptConfig, schema command.Schema) *Prompt {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Prompt{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		system:  SystemPrompt(schema),
		http:    client,
		logger:  logger,
	}
}

func (p *Prompt) Name() string { return StrategyPrompt }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Normalize makes one chat completions call. It never retries.
func (p *Prompt) Normalize(ctx context.Context, text string) (command.Candidate, error) {
	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	reply, err := p.complete(ctx, text)
	if err != nil {
		return command.Candidate{}, classify(ctx, err)
	}
	p.logger.DebugContext(ctx, "Model reply", "strategy", StrategyPrompt, "reply", reply)

	return parseActionReply(reply)
}

func (p *Prompt) complete(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: p.system},
			{Role: "user", Content: text},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("chat completions returned status %d: %s", resp.StatusCode, snippet)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode chat completions response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("chat completions returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}

// withTimeout bounds ctx by d when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// classify maps a failed outbound call to a normalization failure.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return command.Timeout(err)
	}
	return command.Unparseable(err)
}
