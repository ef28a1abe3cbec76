package agents

import (
	"context"
	"strings"

	"github.com/triagekit-dev/triagekit/internal/llm/provider"
	"github.com/triagekit-dev/triagekit/pkg/config"
	"github.com/triagekit-dev/triagekit/support"
)

// Technical handles API, integration, and infrastructure queries.
type Technical struct {
	baseSpecialist
}

// NewTechnical creates the technical specialist.
func NewTechnical(cfg *config.Config, generator provider.ResponseGenerator) *Technical {
	return &Technical{baseSpecialist{
		agentType: support.AgentTechnical,
		generator: generator,
		cfg:       cfg,
	}}
}

// Type implements Specialist.
func (t *Technical) Type() support.AgentType { return support.AgentTechnical }

const technicalSystem = `You are a senior technical support engineer.
Diagnose the customer's issue and give concrete next steps. Be precise
about error causes; never guess at internal system state.`

const technicalTemplate = "Thanks for the report. Our engineering team is " +
	"looking into the issue; please share any error output or request IDs " +
	"so we can trace it."

// Handle answers the query. Security-sensitive reports are flagged for
// escalation regardless of confidence; everything else is answered with
// diagnostic steps.
func (t *Technical) Handle(ctx context.Context, req Request) (support.AgentResponse, error) {
	lower := strings.ToLower(req.Query)
	sensitive := strings.Contains(lower, "data breach") ||
		strings.Contains(lower, "security breach") ||
		strings.Contains(lower, "data loss")

	confidence := 0.85
	if req.QueryType != support.QueryTechnical {
		confidence = 0.6
	}

	return support.AgentResponse{
		AgentType:       support.AgentTechnical,
		Response:        t.respond(ctx, req, technicalSystem, technicalTemplate),
		ConfidenceScore: confidence,
		SuggestedActions: []string{
			"check service status page",
			"collect error logs and request IDs",
			"verify API credentials and webhook configuration",
		},
		RequiresEscalation: sensitive,
		ResolutionTimeSecs: t.resolutionEstimate(req),
	}, nil
}
