package agents

import (
	"context"

	"github.com/triagekit-dev/triagekit/internal/llm/provider"
	"github.com/triagekit-dev/triagekit/pkg/config"
	"github.com/triagekit-dev/triagekit/support"
)

// Complaint handles dissatisfaction reports. Severely negative sessions
// are flagged for escalation; an automated apology is not the answer to an
// angry customer.
type Complaint struct {
	baseSpecialist
}

// NewComplaint creates the complaint specialist.
func NewComplaint(cfg *config.Config, generator provider.ResponseGenerator) *Complaint {
	return &Complaint{baseSpecialist{
		agentType: support.AgentComplaint,
		generator: generator,
		cfg:       cfg,
	}}
}

// Type implements Specialist.
func (c *Complaint) Type() support.AgentType { return support.AgentComplaint }

const complaintSystem = `You are a customer-relations specialist.
Acknowledge the problem plainly, apologize once, and state the concrete
follow-up. Do not argue with the customer's account of events.`

const complaintTemplate = "I'm sorry this has been your experience. I've " +
	"recorded the details and flagged your case for follow-up; you'll " +
	"hear back from us with a concrete resolution."

// Handle answers the complaint.
func (c *Complaint) Handle(ctx context.Context, req Request) (support.AgentResponse, error) {
	return support.AgentResponse{
		AgentType:       support.AgentComplaint,
		Response:        c.respond(ctx, req, complaintSystem, complaintTemplate),
		ConfidenceScore: 0.7,
		SuggestedActions: []string{
			"record complaint details",
			"offer goodwill gesture per tier policy",
			"schedule follow-up contact",
		},
		RequiresEscalation: req.Sentiment.Severe(),
		ResolutionTimeSecs: c.resolutionEstimate(req),
	}, nil
}
