// Package agents implements the specialist handlers, one per query
// category. Specialists are pure over the request view they receive: they
// never touch session state, they return an AgentResponse and let the
// orchestrator decide what happens next.
package agents

import (
	"context"
	"fmt"
	"log"

	"github.com/triagekit-dev/triagekit/internal/llm/provider"
	"github.com/triagekit-dev/triagekit/pkg/config"
	"github.com/triagekit-dev/triagekit/support"
)

// Request is the read-only view of a session handed to a specialist. When
// parallel fan-out is enabled each branch gets its own copy.
type Request struct {
	Query          string
	QueryType      support.QueryType
	Urgency        support.UrgencyLevel
	Sentiment      support.SentimentLevel
	SentimentScore float64
	Customer       support.CustomerInfo
}

// Specialist handles one query category.
type Specialist interface {
	// Type identifies the specialist in routing and history.
	Type() support.AgentType

	// Handle produces the specialist's response for a request.
	Handle(ctx context.Context, req Request) (support.AgentResponse, error)
}

// baseSpecialist carries the pieces every specialist shares: the response
// backend, the tier tables, and the response-time targets used for
// resolution estimates.
type baseSpecialist struct {
	agentType support.AgentType
	generator provider.ResponseGenerator
	cfg       *config.Config
}

// respond asks the generator for a reply and degrades to the template when
// the backend is unavailable or fails. Generation failures are logged, not
// returned: a canned answer beats no answer.
func (b *baseSpecialist) respond(ctx context.Context, req Request, system, template string) string {
	if b.generator == nil {
		return template
	}

	text, err := b.generator.Generate(ctx, provider.GenerateRequest{
		System: system,
		Prompt: fmt.Sprintf(
			"Customer tier: %s\nUrgency: %s\nSentiment: %s\nQuery: %s",
			req.Customer.Tier, req.Urgency, req.Sentiment, req.Query,
		),
		Temperature: 0.3,
		MaxTokens:   400,
	})
	if err != nil {
		log.Printf("Response generation failed for %s agent: %v", b.agentType, err)
		return template
	}
	return text
}

// resolutionEstimate derives a resolution-time estimate from the urgency
// target scaled by the customer's tier multiplier.
func (b *baseSpecialist) resolutionEstimate(req Request) *int {
	settings := b.cfg.TierSettings(req.Customer.Tier)
	secs := int(float64(b.cfg.ResponseTargetSecs(req.Urgency)) * settings.ResponseTimeMultiplier)
	return &secs
}

// Registry holds one specialist per category plus the general specialist
// that also absorbs unknown queries.
type Registry map[support.AgentType]Specialist

// NewRegistry builds the full specialist set. generator may be nil; all
// specialists then answer from templates.
func NewRegistry(cfg *config.Config, generator provider.ResponseGenerator) Registry {
	return Registry{
		support.AgentTechnical: NewTechnical(cfg, generator),
		support.AgentBilling:   NewBilling(cfg, generator),
		support.AgentSales:     NewSales(cfg, generator),
		support.AgentGeneral:   NewGeneral(cfg, generator),
		support.AgentComplaint: NewComplaint(cfg, generator),
	}
}
