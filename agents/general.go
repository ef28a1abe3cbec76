package agents

import (
	"context"

	"github.com/triagekit-dev/triagekit/internal/llm/provider"
	"github.com/triagekit-dev/triagekit/pkg/config"
	"github.com/triagekit-dev/triagekit/support"
)

// General handles account and how-to queries. It also absorbs queries the
// intake classifier could not place, at reduced confidence.
type General struct {
	baseSpecialist
}

// NewGeneral creates the general specialist.
func NewGeneral(cfg *config.Config, generator provider.ResponseGenerator) *General {
	return &General{baseSpecialist{
		agentType: support.AgentGeneral,
		generator: generator,
		cfg:       cfg,
	}}
}

// Type implements Specialist.
func (g *General) Type() support.AgentType { return support.AgentGeneral }

const generalSystem = `You are a customer support generalist. Give clear
step-by-step guidance for account and product questions.`

const generalTemplate = "Here's how to proceed: most account and profile " +
	"settings live under Account > Settings. If you tell me exactly what " +
	"you're trying to change, I'll point you to the right page."

// Handle answers the query. Unknown-category queries get a lower
// confidence so the quality gate can route genuinely unclassifiable
// sessions toward another attempt.
func (g *General) Handle(ctx context.Context, req Request) (support.AgentResponse, error) {
	confidence := 0.75
	if req.QueryType == support.QueryUnknown {
		confidence = 0.6
	}

	return support.AgentResponse{
		AgentType:       support.AgentGeneral,
		Response:        g.respond(ctx, req, generalSystem, generalTemplate),
		ConfidenceScore: confidence,
		SuggestedActions: []string{
			"link relevant documentation",
			"walk through account settings",
		},
		ResolutionTimeSecs: g.resolutionEstimate(req),
	}, nil
}
