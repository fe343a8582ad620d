// Package runtime interprets declarative action lists against the editor's
// shared runtime context. Each invocation is a fresh, single-pass, strictly
// sequential walk over one list; a failing action is logged and skipped, never
// fatal to the rest of the list.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/arborui/arbor/internal/logging"
	"github.com/arborui/arbor/pkg/domain"
	"github.com/arborui/arbor/pkg/expr"
)

// ContextStore is the slice of the tree store the pipeline may touch: the
// runtime data context, through its mutation contract only.
type ContextStore interface {
	SetContextValue(key string, value any)
	ContextSnapshot() map[string]any
}

// Pipeline executes ordered action lists.
type Pipeline struct {
	store   ContextStore
	client  *http.Client
	logger  *slog.Logger
	sink    Sink
	metrics *Metrics
}

// Option configures the Pipeline.
type Option func(*Pipeline)

// WithHTTPClient overrides the outbound client used by webhook actions.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Pipeline) {
		p.client = client
	}
}

// WithLogger configures the pipeline's diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithSink overrides where consoleLog and alert actions surface.
func WithSink(sink Sink) Option {
	return func(p *Pipeline) {
		p.sink = sink
	}
}

// WithMetrics enables action metrics.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// NewPipeline creates a pipeline bound to a context store.
//
// The default client carries a bounded timeout so a hung webhook cannot pin
// an action list forever; callers needing transport-level control inject
// their own client.
func NewPipeline(store ContextStore, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:  store,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.sink == nil {
		p.sink = NewLogSink(p.logger)
	}
	return p
}

// Run interprets the action list in declared order. Each action is evaluated
// against a merged context: the runtime data context at that point in the
// list, overlaid by the event-local context (local keys win on conflict).
//
// Run blocks across the webhook await point, so an action after a webhook
// executes only once the webhook settles. Two overlapping Run calls
// interleave arbitrarily; the shared context is last-writer-wins.
func (p *Pipeline) Run(ctx context.Context, actions []domain.Action, local map[string]any) {
	for _, action := range actions {
		if err := p.execute(ctx, action, local); err != nil {
			p.logger.Error("action failed",
				"action_id", action.ID, "type", string(action.Type), "err", err)
			p.metrics.observeAction(action.Type, "error")
			continue
		}
		p.metrics.observeAction(action.Type, "ok")
	}
}

func (p *Pipeline) execute(ctx context.Context, action domain.Action, local map[string]any) (err error) {
	// One misbehaving action must not take the rest of the list down.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action panicked: %v", r)
		}
	}()

	merged := p.merged(local)

	switch action.Type {
	case domain.ActionSetState:
		cfg, err := action.SetState()
		if err != nil {
			return err
		}
		if cfg.Key == "" {
			return fmt.Errorf("setState requires a key")
		}
		// The key is verbatim, never evaluated; only the value is a template.
		p.store.SetContextValue(cfg.Key, expr.Evaluate(cfg.Value, merged))
		return nil

	case domain.ActionConsoleLog:
		cfg, err := action.Message()
		if err != nil {
			return err
		}
		p.sink.Log(expr.Evaluate(cfg.Message, merged))
		return nil

	case domain.ActionAlert:
		cfg, err := action.Message()
		if err != nil {
			return err
		}
		p.sink.Alert(expr.Evaluate(cfg.Message, merged))
		return nil

	case domain.ActionWebhook:
		cfg, err := action.Webhook()
		if err != nil {
			return err
		}
		return p.callWebhook(ctx, cfg, merged)

	default:
		return fmt.Errorf("unknown action type %q", action.Type)
	}
}

// merged overlays the event-local context onto the current runtime context.
func (p *Pipeline) merged(local map[string]any) map[string]any {
	out := p.store.ContextSnapshot()
	for k, v := range local {
		out[k] = v
	}
	return out
}
