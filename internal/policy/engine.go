// Package policy decides whether a session escalates out of automated
// handling and whether a human must take it over.
package policy

import (
	"github.com/triagekit-dev/triagekit/pkg/config"
	"github.com/triagekit-dev/triagekit/support"
)

// Escalation reasons, reported verbatim to callers. Only the first firing
// rule's reason is reported even when several rules would fire.
const (
	ReasonTierAutoEscalation = "tier auto-escalation policy"
	ReasonSevereSentiment    = "severe negative sentiment"
	ReasonCriticalUrgency    = "critical urgency override"
	ReasonAggregateRisk      = "aggregate risk threshold exceeded"
)

// Decision is the outcome of one policy evaluation.
type Decision struct {
	Escalate bool
	Reason   string // empty when Escalate is false
}

// Engine evaluates the ordered escalation rules.
type Engine struct {
	sentimentThreshold float64
	riskCeiling        float64
	escalationUrgency  support.UrgencyLevel
	maxAttempts        int
	tiers              map[support.CustomerTier]config.TierSettings
}

// NewEngine builds a policy engine from the escalation constants.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{
		sentimentThreshold: cfg.SentimentEscalationThreshold,
		riskCeiling:        cfg.RiskEscalationCeiling,
		escalationUrgency:  cfg.UrgencyEscalationLevel,
		maxAttempts:        cfg.MaxAgentAttempts,
		tiers:              cfg.Tiers,
	}
}

// Decide evaluates the rules in order; the first rule that fires wins and
// its reason is the one reported.
//
//  1. Auto-escalating tier with urgency at or above the escalation level.
//  2. Fused sentiment at or below the sentiment threshold.
//  3. Critical urgency, regardless of tier.
//  4. Aggregate risk score above the risk ceiling.
func (e *Engine) Decide(tier support.CustomerTier, urgency support.UrgencyLevel, sentimentScore float64, risk support.RiskAssessment) Decision {
	settings, ok := e.tiers[tier]
	if ok && settings.AutoEscalate && urgency.AtLeast(e.escalationUrgency) {
		return Decision{Escalate: true, Reason: ReasonTierAutoEscalation}
	}
	if sentimentScore <= e.sentimentThreshold {
		return Decision{Escalate: true, Reason: ReasonSevereSentiment}
	}
	if urgency == support.UrgencyCritical {
		return Decision{Escalate: true, Reason: ReasonCriticalUrgency}
	}
	if risk.OverallRiskScore > e.riskCeiling {
		return Decision{Escalate: true, Reason: ReasonAggregateRisk}
	}
	return Decision{}
}

// RequiresHumanHandoff reports whether an escalated session must go to a
// live agent: legal exposure, a VIP customer, or exhausted specialist
// attempts make handoff mandatory. Non-escalated sessions never hand off
// through this path.
func (e *Engine) RequiresHumanHandoff(d Decision, risk support.RiskAssessment, tier support.CustomerTier, attempts int) bool {
	if !d.Escalate {
		return false
	}
	return risk.LegalRisk || tier == support.TierVIP || attempts >= e.maxAttempts
}
