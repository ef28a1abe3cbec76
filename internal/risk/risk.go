// Package risk derives the boolean risk flags and aggregate risk score
// that feed the escalation policy.
package risk

import (
	"strings"

	"github.com/triagekit-dev/triagekit/pkg/config"
	"github.com/triagekit-dev/triagekit/support"
)

// Input is everything the assessor reads. All fields come from the session
// state populated at intake; the assessor itself is a pure function.
type Input struct {
	Query           string
	QueryType       support.QueryType
	Urgency         support.UrgencyLevel
	Sentiment       support.SentimentLevel
	Tier            support.CustomerTier
	PreviousTickets int
}

// Assessor evaluates the five risk rules.
type Assessor struct {
	legalKeywords     []string
	financialKeywords []string
	repeatThreshold   int
}

// NewAssessor builds an assessor from the safety keyword tables.
func NewAssessor(cfg *config.Config) *Assessor {
	return &Assessor{
		legalKeywords:     cfg.LegalKeywords,
		financialKeywords: cfg.FinancialKeywords,
		repeatThreshold:   cfg.RepeatComplaintThreshold,
	}
}

// Assess evaluates each rule independently; the flags are not mutually
// exclusive. The overall score is the fraction of flags set, so it always
// lies in [0,1] and rises only when another rule fires.
func (a *Assessor) Assess(in Input) support.RiskAssessment {
	lower := strings.ToLower(in.Query)

	r := support.RiskAssessment{
		LegalRisk: containsAny(lower, a.legalKeywords),

		FinancialRisk: containsAny(lower, a.financialKeywords) ||
			(in.Urgency == support.UrgencyCritical &&
				(in.Tier == support.TierEnterprise || in.Tier == support.TierVIP)),

		ReputationRisk: in.Sentiment.Severe() && in.Urgency.AtLeast(support.UrgencyHigh),

		ChurnRisk: in.Sentiment.Negative() && in.PreviousTickets > a.repeatThreshold,

		ComplexityRisk: in.QueryType == support.QueryTechnical &&
			in.Urgency.AtLeast(support.UrgencyHigh),
	}

	flags := 0
	for _, set := range []bool{r.FinancialRisk, r.LegalRisk, r.ReputationRisk, r.ChurnRisk, r.ComplexityRisk} {
		if set {
			flags++
		}
	}
	r.OverallRiskScore = float64(flags) / 5.0

	return r
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
