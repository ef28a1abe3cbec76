// Package support defines the domain model for the triage decision engine:
// the closed classification types, the per-session state aggregate, and the
// result surface returned to callers.
package support

// QueryType is the category a customer query is routed under.
type QueryType string

const (
	QueryTechnical QueryType = "technical"
	QueryBilling   QueryType = "billing"
	QuerySales     QueryType = "sales"
	QueryGeneral   QueryType = "general"
	QueryComplaint QueryType = "complaint"
	QueryUnknown   QueryType = "unknown"
)

// QueryTypePriority is the fixed tie-break order used wherever two
// categories score equally. Routing and fan-out merging follow the same
// order so results stay deterministic.
var QueryTypePriority = []QueryType{
	QueryTechnical,
	QueryBilling,
	QuerySales,
	QueryGeneral,
	QueryComplaint,
}

// ParseQueryType maps a raw string onto a QueryType.
// Unrecognized values map to QueryUnknown with ok=false.
func ParseQueryType(s string) (QueryType, bool) {
	switch QueryType(s) {
	case QueryTechnical, QueryBilling, QuerySales, QueryGeneral, QueryComplaint:
		return QueryType(s), true
	case QueryUnknown:
		return QueryUnknown, true
	}
	return QueryUnknown, false
}

// Valid reports whether q is one of the closed set of query types.
func (q QueryType) Valid() bool {
	_, ok := ParseQueryType(string(q))
	return ok
}

// UrgencyLevel is the coarse priority bucket for a query.
type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

// UrgencyOrder lists urgency levels from most to least urgent. Keyword
// matching iterates in this order so a query matching both a critical and
// a low keyword classifies as critical.
var UrgencyOrder = []UrgencyLevel{
	UrgencyCritical,
	UrgencyHigh,
	UrgencyMedium,
	UrgencyLow,
}

// Rank returns a comparable weight for u (critical=3 .. low=0).
func (u UrgencyLevel) Rank() int {
	switch u {
	case UrgencyCritical:
		return 3
	case UrgencyHigh:
		return 2
	case UrgencyMedium:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether u is at least as urgent as other.
func (u UrgencyLevel) AtLeast(other UrgencyLevel) bool {
	return u.Rank() >= other.Rank()
}

// Valid reports whether u is one of the four urgency levels.
func (u UrgencyLevel) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// SentimentLevel is the discretized customer sentiment.
type SentimentLevel string

const (
	SentimentVeryPositive SentimentLevel = "very_positive"
	SentimentPositive     SentimentLevel = "positive"
	SentimentNeutral      SentimentLevel = "neutral"
	SentimentNegative     SentimentLevel = "negative"
	SentimentVeryNegative SentimentLevel = "very_negative"
	SentimentAngry        SentimentLevel = "angry"
)

// Negative reports whether s indicates customer dissatisfaction.
func (s SentimentLevel) Negative() bool {
	switch s {
	case SentimentNegative, SentimentVeryNegative, SentimentAngry:
		return true
	}
	return false
}

// Severe reports whether s is at the angry end of the scale.
func (s SentimentLevel) Severe() bool {
	return s == SentimentVeryNegative || s == SentimentAngry
}

// CustomerTier is the customer's subscription level.
type CustomerTier string

const (
	TierBasic      CustomerTier = "basic"
	TierPremium    CustomerTier = "premium"
	TierEnterprise CustomerTier = "enterprise"
	TierVIP        CustomerTier = "vip"
)

// Valid reports whether t is one of the four tiers.
func (t CustomerTier) Valid() bool {
	switch t {
	case TierBasic, TierPremium, TierEnterprise, TierVIP:
		return true
	}
	return false
}

// ResolutionStatus is the lifecycle state of a session.
type ResolutionStatus string

const (
	StatusPending      ResolutionStatus = "pending"
	StatusInProgress   ResolutionStatus = "in_progress"
	StatusResolved     ResolutionStatus = "resolved"
	StatusEscalated    ResolutionStatus = "escalated"
	StatusHumanHandoff ResolutionStatus = "human_handoff"
)

// Terminal reports whether the session is finished.
func (s ResolutionStatus) Terminal() bool {
	switch s {
	case StatusResolved, StatusEscalated, StatusHumanHandoff:
		return true
	}
	return false
}

// AgentType identifies a pipeline agent.
type AgentType string

const (
	AgentIntake     AgentType = "intake"
	AgentRouter     AgentType = "router"
	AgentTechnical  AgentType = "technical"
	AgentBilling    AgentType = "billing"
	AgentSales      AgentType = "sales"
	AgentGeneral    AgentType = "general"
	AgentComplaint  AgentType = "complaint"
	AgentQuality    AgentType = "quality"
	AgentEscalation AgentType = "escalation"
)

// SpecialistFor maps a query type to the specialist that handles it.
// Unknown queries are handled by the general specialist.
func SpecialistFor(q QueryType) AgentType {
	switch q {
	case QueryTechnical:
		return AgentTechnical
	case QueryBilling:
		return AgentBilling
	case QuerySales:
		return AgentSales
	case QueryComplaint:
		return AgentComplaint
	default:
		return AgentGeneral
	}
}
