package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/expensecmd/internal/events"
)

// Stage names used in pipeline logs.
const (
	StageReceived   = "received"
	StageNormalized = "normalized"
	StageValidated  = "validated"
	StageExecuted   = "executed"
	StageCompleted  = "completed"
	StageFailed     = "failed"
)

// Recorder receives pipeline metrics.
type Recorder interface {
	CommandProcessed(tag, outcome string, elapsed time.Duration)
	GroupCreated()
	ExpenseCreated(amountCents int64)
}

// Pipeline runs a command from raw text to a persisted entity.
type Pipeline struct {
	normalizer Normalizer
	schema     Schema
	executor   *Executor
	publisher  events.Publisher
	recorder   Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithPublisher sets where created-entity events go. Defaults to events.Nop.
func WithPublisher(publisher events.Publisher) Option {
	return func(p *Pipeline) { p.publisher = publisher }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder Recorder) Option {
	return func(p *Pipeline) { p.recorder = recorder }
}

// WithClock overrides time.Now, which also decides the default expense date.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
		p.executor.now = now
	}
}

// NewPipeline builds a pipeline over normalizer and store.
func NewPipeline(normalizer Normalizer, store EntityStore, opts ...Option) *Pipeline {
	p := &Pipeline{
		normalizer: normalizer,
		schema:     Describe(),
		executor:   NewExecutor(store),
		publisher:  events.Nop{},
		recorder:   nopRecorder{},
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DescribeSchema returns the intent schema the pipeline validates against.
func (p *Pipeline) DescribeSchema() Schema {
	return p.schema
}

// Process runs text for actor. Failures are reported in the Result, never as
// an error or panic.
func (p *Pipeline) Process(ctx context.Context, text string, actor Actor) Result {
	start := p.now()
	logger := p.logger.With("user_id", actor.UserID)
	logger.DebugContext(ctx, "Command stage", "stage", StageReceived, "length", len(text))

	tag := ""
	fail := func(stage string, err error) Result {
		kind := KindOf(err)
		logger.WarnContext(ctx, "Command failed",
			"stage", StageFailed,
			"after", stage,
			"kind", kind,
			"error", err)
		p.recorder.CommandProcessed(tag, string(kind), p.now().Sub(start))
		return failed(err)
	}

	if strings.TrimSpace(text) == "" {
		return fail(StageReceived, &ValidationError{Kind: KindEmptyField, Field: fieldCommand})
	}

	candidate, err := p.normalizer.Normalize(ctx, text)
	if err != nil {
		return fail(StageReceived, err)
	}
	// Only schema tags reach metrics labels; the raw action is model output.
	tag = TagUnknown
	if _, ok := p.schema.Lookup(candidate.Tag); ok {
		tag = candidate.Tag
	}
	logger.DebugContext(ctx, "Command stage", "stage", StageNormalized, "strategy", p.normalizer.Name(), "action", candidate.Tag)

	intent, err := Validate(candidate, p.schema)
	if err != nil {
		return fail(StageNormalized, err)
	}
	logger.DebugContext(ctx, "Command stage", "stage", StageValidated, "tag", tag)

	outcome, err := p.executor.Execute(ctx, intent, actor)
	if err != nil {
		return fail(StageValidated, err)
	}
	logger.DebugContext(ctx, "Command stage", "stage", StageExecuted, "tag", tag, "group_created", outcome.GroupCreated)

	p.announce(ctx, logger, outcome)

	result := Result{Success: true}
	switch in := intent.(type) {
	case CreateGroup:
		result.Data = outcome.Group
		if outcome.GroupCreated {
			result.Message = fmt.Sprintf("Group '%s' created successfully", outcome.Group.Name)
		} else {
			result.Message = fmt.Sprintf("Group '%s' already exists", outcome.Group.Name)
		}
	case AddExpense:
		result.Data = outcome.Expense
		result.Message = fmt.Sprintf("Added expense of %s to group '%s'", FormatAmount(in.AmountCents), outcome.Group.Name)
	}

	p.recorder.CommandProcessed(tag, "success", p.now().Sub(start))
	logger.InfoContext(ctx, "Command processed", "stage", StageCompleted, "tag", tag, "group_id", outcome.Group.ID)
	return result
}

// announce publishes events and records counters for created entities.
// Publish failures are logged and do not change the command result.
func (p *Pipeline) announce(ctx context.Context, logger *slog.Logger, outcome Outcome) {
	at := p.now()
	if outcome.GroupCreated {
		p.recorder.GroupCreated()
		if err := p.publisher.Publish(ctx, events.GroupCreated(outcome.Group, at)); err != nil {
			logger.ErrorContext(ctx, "Failed to publish event", "type", events.TypeGroupCreated, "error", err)
		}
	}
	if outcome.Expense != nil {
		p.recorder.ExpenseCreated(outcome.Expense.AmountCents)
		if err := p.publisher.Publish(ctx, events.ExpenseCreated(outcome.Expense, at)); err != nil {
			logger.ErrorContext(ctx, "Failed to publish event", "type", events.TypeExpenseCreated, "error", err)
		}
	}
}

type nopRecorder struct{}

func (nopRecorder) CommandProcessed(string, string, time.Duration) {}
func (nopRecorder) GroupCreated()                                  {}
func (nopRecorder) ExpenseCreated(int64)                           {}
