package command

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Normalizer turns free text into a Candidate. Failures are returned as
// *NormalizationFailure.
type Normalizer interface {
	Name() string
	Normalize(ctx context.Context, text string) (Candidate, error)
}

// Chain tries each normalizer in order. The first one that yields a candidate
// wins, even if that candidate later fails validation. When every normalizer
// fails, the last failure is returned.
type Chain struct {
	normalizers []Normalizer
	logger      *slog.Logger
}

// NewChain builds a Chain over normalizers in priority order.
func NewChain(logger *slog.Logger, normalizers ...Normalizer) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{normalizers: normalizers, logger: logger}
}

func (c *Chain) Name() string {
	names := make([]string, len(c.normalizers))
	for i, n := range c.normalizers {
		names[i] = n.Name()
	}
	return strings.Join(names, ",")
}

func (c *Chain) Normalize(ctx context.Context, text string) (Candidate, error) {
	lastErr := NoMatch()
	for _, n := range c.normalizers {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return Candidate{}, Timeout(err)
			}
			return Candidate{}, Unparseable(err)
		}
		candidate, err := n.Normalize(ctx, text)
		if err == nil {
			c.logger.Debug("Normalizer matched", "strategy", n.Name(), "tag", candidate.Tag)
			return candidate, nil
		}
		c.logger.Debug("Normalizer failed", "strategy", n.Name(), "kind", KindOf(err), "error", err)
		lastErr = err
	}
	return Candidate{}, lastErr
}

// CandidateFromMap builds a Candidate from a decoded JSON object. Numbers are
// expected as json.Number (decoders should use UseNumber) but float64 is
// tolerated. Null values are dropped so they count as missing.
func CandidateFromMap(tag string, data map[string]any) Candidate {
	fields := make(map[string]string, len(data))
	for key, value := range data {
		switch v := value.(type) {
		case nil:
		case string:
			fields[key] = v
		case json.Number:
			fields[key] = v.String()
		case float64:
			fields[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			fields[key] = strconv.FormatBool(v)
		default:
			raw, err := json.Marshal(v)
			if err == nil {
				fields[key] = string(raw)
			}
		}
	}
	return Candidate{Tag: strings.TrimSpace(tag), Fields: fields}
}
