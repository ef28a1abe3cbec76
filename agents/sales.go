package agents

import (
	"context"

	"github.com/triagekit-dev/triagekit/internal/llm/provider"
	"github.com/triagekit-dev/triagekit/pkg/config"
	"github.com/triagekit-dev/triagekit/support"
)

// Sales handles upgrade, plan, and purchasing queries.
type Sales struct {
	baseSpecialist
}

// NewSales creates the sales specialist.
func NewSales(cfg *config.Config, generator provider.ResponseGenerator) *Sales {
	return &Sales{baseSpecialist{
		agentType: support.AgentSales,
		generator: generator,
		cfg:       cfg,
	}}
}

// Type implements Specialist.
func (s *Sales) Type() support.AgentType { return support.AgentSales }

const salesSystem = `You are a sales support specialist. Answer plan and
pricing questions factually; offer a demo or trial where it fits.`

const salesTemplate = "Happy to help with plans and pricing. I can walk " +
	"you through the available tiers, or set up a demo with our team if " +
	"you'd like a closer look."

// Handle answers the query. Sales queries never self-escalate.
func (s *Sales) Handle(ctx context.Context, req Request) (support.AgentResponse, error) {
	return support.AgentResponse{
		AgentType:       support.AgentSales,
		Response:        s.respond(ctx, req, salesSystem, salesTemplate),
		ConfidenceScore: 0.8,
		SuggestedActions: []string{
			"share plan comparison",
			"offer trial or demo",
			"connect with account executive for enterprise terms",
		},
		ResolutionTimeSecs: s.resolutionEstimate(req),
	}, nil
}
