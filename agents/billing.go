package agents

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/triagekit-dev/triagekit/internal/llm/provider"
	"github.com/triagekit-dev/triagekit/pkg/config"
	"github.com/triagekit-dev/triagekit/support"
)

// Billing handles payment, invoice, and refund queries. Refunds within
// the customer's tier ceiling are resolved automatically; chargebacks and
// payment disputes always go to a human reviewer.
type Billing struct {
	baseSpecialist
}

// NewBilling creates the billing specialist.
func NewBilling(cfg *config.Config, generator provider.ResponseGenerator) *Billing {
	return &Billing{baseSpecialist{
		agentType: support.AgentBilling,
		generator: generator,
		cfg:       cfg,
	}}
}

// Type implements Specialist.
func (b *Billing) Type() support.AgentType { return support.AgentBilling }

const billingSystem = `You are a billing support specialist. Explain
charges clearly, state refund eligibility, and never promise amounts
beyond the stated auto-refund limit.`

// Handle answers the query. The auto-refund ceiling comes from the
// customer's tier settings.
func (b *Billing) Handle(ctx context.Context, req Request) (support.AgentResponse, error) {
	settings := b.cfg.TierSettings(req.Customer.Tier)
	lower := strings.ToLower(req.Query)

	disputed := strings.Contains(lower, "chargeback") || strings.Contains(lower, "dispute")

	// Amounts above the global auto-refund cap go to review regardless of
	// tier; the cap is the operator's fleet-wide brake (MAX_AUTO_REFUND).
	amount, hasAmount := requestedAmount(req.Query)
	overCap := hasAmount && amount > b.cfg.MaxAutoRefund

	template := fmt.Sprintf(
		"I've reviewed your billing question. Refunds up to $%.2f on your "+
			"plan can be issued directly; anything above that goes to our "+
			"billing team for review.",
		settings.MaxAutoRefund,
	)

	return support.AgentResponse{
		AgentType:       support.AgentBilling,
		Response:        b.respond(ctx, req, billingSystem, template),
		ConfidenceScore: 0.8,
		SuggestedActions: []string{
			"review recent invoices",
			fmt.Sprintf("issue refund within $%.2f auto-refund limit", settings.MaxAutoRefund),
			"confirm payment method on file",
		},
		RequiresEscalation: disputed || overCap,
		ResolutionTimeSecs: b.resolutionEstimate(req),
	}, nil
}

// requestedAmount extracts the first dollar amount mentioned in the query.
func requestedAmount(query string) (float64, bool) {
	for i := 0; i < len(query); i++ {
		if query[i] != '$' {
			continue
		}
		j := i + 1
		for j < len(query) && (query[j] == '.' || (query[j] >= '0' && query[j] <= '9')) {
			j++
		}
		if j == i+1 {
			continue
		}
		amount, err := strconv.ParseFloat(strings.TrimSuffix(query[i+1:j], "."), 64)
		if err != nil {
			continue
		}
		return amount, true
	}
	return 0, false
}
