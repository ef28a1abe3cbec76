// Package triagekit routes customer-support queries through a pipeline of
// specialist handlers and decides, deterministically, how urgent a query
// is, how the customer feels, which specialist should handle it, and
// whether it must be escalated to a human.
package triagekit

import (
	"context"
	"fmt"
	"log"

	"github.com/triagekit-dev/triagekit/agents"
	"github.com/triagekit-dev/triagekit/internal/classify"
	"github.com/triagekit-dev/triagekit/internal/llm/provider"
	"github.com/triagekit-dev/triagekit/internal/observability"
	"github.com/triagekit-dev/triagekit/internal/orchestration"
	"github.com/triagekit-dev/triagekit/internal/policy"
	"github.com/triagekit-dev/triagekit/internal/risk"
	"github.com/triagekit-dev/triagekit/internal/sentiment"
	"github.com/triagekit-dev/triagekit/pkg/config"
	"github.com/triagekit-dev/triagekit/pkg/session"
	"github.com/triagekit-dev/triagekit/support"
)

// Engine is the assembled triage pipeline. One engine serves many
// sessions; each ProcessQuery call drives one session to a terminal
// status.
type Engine struct {
	cfg          *config.Config
	orchestrator *orchestration.Orchestrator
	archive      *session.Archive
}

// Option configures an Engine.
type Option func(*engineDeps)

type engineDeps struct {
	fallback  provider.TextClassifier
	primary   provider.SentimentProvider
	secondary provider.SentimentProvider
	generator provider.ResponseGenerator
	archive   *session.Archive
}

// WithTextClassifier sets the fallback classifier consulted when keyword
// scoring finds no match. Without one, unmatched queries classify as
// unknown.
func WithTextClassifier(tc provider.TextClassifier) Option {
	return func(d *engineDeps) {
		d.fallback = tc
	}
}

// WithSentimentProviders sets the two polarity scorers whose outputs are
// fused. Defaults are the built-in lexicon and emphasis providers.
func WithSentimentProviders(primary, secondary provider.SentimentProvider) Option {
	return func(d *engineDeps) {
		d.primary = primary
		d.secondary = secondary
	}
}

// WithResponseGenerator sets the free-text backend specialists answer
// with. Without one, specialists answer from templates.
func WithResponseGenerator(g provider.ResponseGenerator) Option {
	return func(d *engineDeps) {
		d.generator = g
	}
}

// WithArchive enables archiving of completed sessions.
func WithArchive(a *session.Archive) Option {
	return func(d *engineDeps) {
		d.archive = a
	}
}

// New assembles an engine from a validated configuration.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	deps := &engineDeps{
		primary:   provider.NewLexiconProvider(),
		secondary: provider.NewEmphasisProvider(),
	}
	for _, opt := range opts {
		opt(deps)
	}

	observability.RegisterMetrics()

	orch := orchestration.New(
		cfg,
		classify.NewIntake(cfg, deps.fallback),
		classify.NewUrgency(cfg),
		sentiment.NewFuser(cfg, deps.primary, deps.secondary),
		risk.NewAssessor(cfg),
		policy.NewEngine(cfg),
		agents.NewRegistry(cfg, deps.generator),
	)

	return &Engine{
		cfg:          cfg,
		orchestrator: orch,
		archive:      deps.archive,
	}, nil
}

// ProcessQuery runs one support session to a terminal status. A nil
// customer gets the default basic-tier profile. The result always carries
// a terminal resolution status; degraded analysis shows up in the
// result's error messages.
func (e *Engine) ProcessQuery(ctx context.Context, customerID, query string, customer *support.CustomerInfo) (*support.Result, error) {
	s := support.NewSession(customerID, query, customer)

	result, err := e.orchestrator.Run(ctx, s)
	if err != nil {
		return nil, err
	}

	if e.archive != nil {
		if err := e.archive.Store(ctx, customerID, result); err != nil {
			log.Printf("Failed to archive session %s: %v", result.SessionID, err)
		}
	}
	return result, nil
}

// InitTracing initializes tracing from the standard OpenTelemetry
// environment variables. Optional; the engine works untraced.
func InitTracing() error {
	return observability.InitFromEnv()
}

// ShutdownTracing flushes buffered spans.
func ShutdownTracing(ctx context.Context) error {
	return observability.Shutdown(ctx)
}
