// Package orchestration drives a support session through the triage state
// machine:
//
//	Intake → Routing → Specialist → QualityCheck → {Resolved, Escalated, HumanHandoff}
//
// The orchestrator owns the session state for the session's lifetime.
// Every other component is a pure function over the values it is handed;
// nothing else mutates the state. Whatever fails along the way, a session
// always reaches a terminal status — degraded analysis shows up in the
// session's error log, never as a hung workflow.
package orchestration

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/triagekit-dev/triagekit/agents"
	"github.com/triagekit-dev/triagekit/internal/classify"
	"github.com/triagekit-dev/triagekit/internal/observability"
	"github.com/triagekit-dev/triagekit/internal/policy"
	"github.com/triagekit-dev/triagekit/internal/risk"
	"github.com/triagekit-dev/triagekit/internal/sentiment"
	"github.com/triagekit-dev/triagekit/pkg/config"
	"github.com/triagekit-dev/triagekit/support"
)

// Escalation reasons the orchestrator itself reports, beyond the policy
// engine's rule reasons.
const (
	reasonSpecialistRequested = "specialist requested escalation"
	reasonAttemptsExhausted   = "maximum specialist attempts exhausted"
	reasonSpecialistFailure   = "specialist failure"
	reasonDeadlineExceeded    = "response time target exceeded"
	reasonInvalidState        = "invalid session state"
)

// Orchestrator sequences the pipeline agents for one session at a time.
// Instances are stateless between sessions and safe for concurrent use;
// all mutable state lives in the SessionState being driven.
type Orchestrator struct {
	cfg         *config.Config
	intake      *classify.Intake
	urgency     *classify.Urgency
	fuser       *sentiment.Fuser
	assessor    *risk.Assessor
	policy      *policy.Engine
	specialists agents.Registry
}

// New builds an orchestrator over the decision components.
func New(cfg *config.Config, intake *classify.Intake, urgency *classify.Urgency,
	fuser *sentiment.Fuser, assessor *risk.Assessor, engine *policy.Engine,
	specialists agents.Registry) *Orchestrator {
	return &Orchestrator{
		cfg:         cfg,
		intake:      intake,
		urgency:     urgency,
		fuser:       fuser,
		assessor:    assessor,
		policy:      engine,
		specialists: specialists,
	}
}

// Run drives the session to a terminal status and returns the caller
// output surface. It never returns a dangling session: policy violations
// and unrecoverable step failures terminate in HumanHandoff with the
// reason populated.
func (o *Orchestrator) Run(ctx context.Context, s *support.SessionState) (*support.Result, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil session", support.ErrPolicyViolation)
	}

	ctx, span := observability.StartSpan(ctx, "orchestration.session",
		trace.WithAttributes(
			attribute.String("session.id", s.SessionID),
			attribute.String("session.tier", string(s.Customer.Tier)),
		),
	)
	defer span.End()

	if !s.Customer.Tier.Valid() {
		s.RecordError("policy violation: unknown customer tier %q", s.Customer.Tier)
		o.handoff(s, reasonInvalidState)
		return o.finish(span, s), nil
	}
	if s.ResolutionStatus.Terminal() {
		s.RecordError("policy violation: session already terminal (%s)", s.ResolutionStatus)
		o.handoff(s, reasonInvalidState)
		return o.finish(span, s), nil
	}

	s.ResolutionStatus = support.StatusInProgress

	o.runIntake(ctx, s)

	// The response-time deadline is keyed to the urgency decided at
	// intake, scaled by the customer's tier multiplier. It never aborts
	// an in-flight step; it is checked between transitions.
	deadline := s.Timestamp.Add(o.responseBudget(s))

	o.runRouting(s)

	attempts := 0
	for !s.ResolutionStatus.Terminal() {
		if time.Now().After(deadline) {
			s.RecordError("response time target exceeded for %s urgency", s.UrgencyLevel)
			o.handoff(s, reasonDeadlineExceeded)
			break
		}

		responses, failed := o.runSpecialists(ctx, s)
		attempts++

		if failed {
			// One retry for a failed specialist round, then handoff.
			if attempts >= 2 || attempts >= o.cfg.MaxAgentAttempts {
				o.handoff(s, reasonSpecialistFailure)
				break
			}
			continue
		}

		if done := o.checkEscalation(s, responses, attempts); done {
			break
		}

		if !o.cfg.RequireQualityCheck && !o.safetyFlagged(s) {
			o.resolve(s)
			break
		}

		o.runQualityCheck(s, responses, attempts)
	}

	return o.finish(span, s), nil
}

// finish stamps metrics and the span, and snapshots the result.
func (o *Orchestrator) finish(span trace.Span, s *support.SessionState) *support.Result {
	observability.RecordSession(string(s.ResolutionStatus))
	if s.EscalationReason != nil {
		observability.RecordEscalation(*s.EscalationReason)
	}
	span.SetAttributes(
		attribute.String("session.status", string(s.ResolutionStatus)),
		attribute.String("session.query_type", string(s.QueryType)),
		attribute.String("session.urgency", string(s.UrgencyLevel)),
		attribute.Int("session.tier_priority", o.cfg.TierSettings(s.Customer.Tier).PriorityScore),
		attribute.Int("session.errors", len(s.ErrorMessages)),
	)
	if o.cfg.LogAllInteractions {
		log.Printf("Session %s finished: status=%s type=%s urgency=%s errors=%d",
			s.SessionID, s.ResolutionStatus, s.QueryType, s.UrgencyLevel, len(s.ErrorMessages))
	}
	return support.ResultOf(s)
}

// runIntake classifies the query, fuses sentiment, and assesses risk.
// Classification and sentiment failures never block the transition to
// routing: the documented defaults (unknown, medium, neutral) stand in
// and the failure lands in the error log.
func (o *Orchestrator) runIntake(ctx context.Context, s *support.SessionState) {
	start := time.Now()
	defer func() { observability.ObserveStep("intake", time.Since(start)) }()

	s.WorkflowStep = "intake"
	s.CurrentAgent = support.AgentIntake
	s.ProcessedQuery = support.NormalizeQuery(s.OriginalQuery)

	qt, err := o.intake.Classify(ctx, s.ProcessedQuery)
	if err != nil {
		s.RecordError("intake classification degraded: %v", err)
		observability.RecordProviderFailure("text_classifier")
	}
	s.QueryType = qt

	s.UrgencyLevel = o.urgency.Classify(s.ProcessedQuery)

	level, score, err := o.fuser.Analyze(ctx, s.ProcessedQuery)
	if err != nil {
		s.RecordError("sentiment analysis degraded: %v", err)
		observability.RecordProviderFailure("sentiment")
	}
	s.SentimentLevel = level
	s.SentimentScore = score

	s.Risk = o.assessor.Assess(risk.Input{
		Query:           s.ProcessedQuery,
		QueryType:       s.QueryType,
		Urgency:         s.UrgencyLevel,
		Sentiment:       s.SentimentLevel,
		Tier:            s.Customer.Tier,
		PreviousTickets: s.Customer.PreviousTickets,
	})

	conf := 0.8
	s.AppendHistory("intake_agent", support.AgentIntake,
		fmt.Sprintf("Query analyzed - Type: %s, Urgency: %s, Sentiment: %s",
			s.QueryType, s.UrgencyLevel, s.SentimentLevel),
		&conf)
	s.MarkCompleted(support.AgentIntake)
}

// runRouting assigns the specialist(s) for the classified query. Unknown
// queries route to the general specialist. With parallel processing
// enabled, the general specialist runs alongside the primary as a
// cross-check.
func (o *Orchestrator) runRouting(s *support.SessionState) {
	start := time.Now()
	defer func() { observability.ObserveStep("routing", time.Since(start)) }()

	s.WorkflowStep = "routing"
	s.CurrentAgent = support.AgentRouter

	primary := support.SpecialistFor(s.QueryType)
	s.AssignedAgents = []support.AgentType{primary}
	if o.cfg.EnableParallelProcessing && primary != support.AgentGeneral {
		s.AssignedAgents = append(s.AssignedAgents, support.AgentGeneral)
	}

	s.AppendHistory("router_agent", support.AgentRouter,
		fmt.Sprintf("Routed to %s specialist", primary), nil)
	s.MarkCompleted(support.AgentRouter)
}

// checkEscalation consults the policy engine after a specialist round and,
// when escalation fires, moves the session to its terminal escalation
// state, skipping quality check. A specialist's own escalation flag forces
// the transition even when no policy rule fires, but only the policy
// engine's decision sets the official reason.
func (o *Orchestrator) checkEscalation(s *support.SessionState, responses []support.AgentResponse, attempts int) bool {
	decision := o.policy.Decide(s.Customer.Tier, s.UrgencyLevel, s.SentimentScore, s.Risk)

	specialistFlag := false
	for _, r := range responses {
		if r.RequiresEscalation {
			specialistFlag = true
			break
		}
	}

	if !decision.Escalate && !specialistFlag {
		return false
	}

	reason := decision.Reason
	if !decision.Escalate {
		reason = reasonSpecialistRequested
	}

	if o.policy.RequiresHumanHandoff(policy.Decision{Escalate: true, Reason: reason}, s.Risk, s.Customer.Tier, attempts) {
		o.handoff(s, reason)
		return true
	}
	o.escalate(s, reason)
	return true
}

// runQualityCheck gates the latest specialist round on confidence.
// Passing resolves the session; failing retries the same specialist until
// attempts run out, then forces escalation.
func (o *Orchestrator) runQualityCheck(s *support.SessionState, responses []support.AgentResponse, attempts int) {
	start := time.Now()
	defer func() { observability.ObserveStep("quality", time.Since(start)) }()

	s.WorkflowStep = "quality"
	s.CurrentAgent = support.AgentQuality

	conf := roundConfidence(responses)
	pass := conf >= o.cfg.MinQualityConfidence

	s.AppendHistory("quality_agent", support.AgentQuality,
		fmt.Sprintf("Quality check: confidence %.2f (minimum %.2f)", conf, o.cfg.MinQualityConfidence),
		&conf)
	s.MarkCompleted(support.AgentQuality)

	switch {
	case pass:
		o.resolve(s)
	case attempts < o.cfg.MaxAgentAttempts:
		// Loop continues; the same specialist gets another attempt.
		if o.cfg.LogAllInteractions {
			log.Printf("Session %s: retrying specialist after low confidence %.2f (attempt %d/%d)",
				s.SessionID, conf, attempts, o.cfg.MaxAgentAttempts)
		}
	default:
		s.EscalationNeeded = true
		reason := reasonAttemptsExhausted
		s.EscalationReason = &reason
		o.terminal(s, support.StatusEscalated, support.AgentEscalation, "escalation",
			fmt.Sprintf("Escalated after %d low-confidence attempts", attempts))
	}
}

// safetyFlagged reports whether the query touches a safety keyword. With
// safety guards enabled, flagged sessions go through the quality gate even
// when the gate is globally disabled.
func (o *Orchestrator) safetyFlagged(s *support.SessionState) bool {
	if !o.cfg.EnableSafetyGuards {
		return false
	}
	lower := strings.ToLower(s.ProcessedQuery)
	for _, kw := range o.cfg.SafetyKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// roundConfidence is the confidence the quality gate evaluates: the latest
// response's score for a sequential round, the minimum across the round
// when branches ran in parallel, so one weak or failed branch cannot hide
// behind a strong sibling.
func roundConfidence(responses []support.AgentResponse) float64 {
	if len(responses) == 0 {
		return 0
	}
	minConf := responses[len(responses)-1].ConfidenceScore
	for _, r := range responses {
		if r.ConfidenceScore < minConf {
			minConf = r.ConfidenceScore
		}
	}
	return minConf
}

// resolve moves the session to Resolved with the latest response as the
// final answer.
func (o *Orchestrator) resolve(s *support.SessionState) {
	if last := s.LatestResponse(); last != nil {
		text := last.Response
		s.FinalResponse = &text
	}
	s.ResolutionStatus = support.StatusResolved
	s.WorkflowStep = "resolved"
	s.AppendHistory("system", s.CurrentAgent, "Session resolved", nil)
}

// escalate moves the session to Escalated with the policy reason.
func (o *Orchestrator) escalate(s *support.SessionState, reason string) {
	s.EscalationNeeded = true
	s.EscalationReason = &reason
	o.terminal(s, support.StatusEscalated, support.AgentEscalation, "escalation",
		fmt.Sprintf("Escalated: %s", reason))
}

// handoff moves the session to HumanHandoff, the strictest terminal state.
func (o *Orchestrator) handoff(s *support.SessionState, reason string) {
	s.EscalationNeeded = true
	s.HumanHandoffRequired = true
	s.EscalationReason = &reason
	o.terminal(s, support.StatusHumanHandoff, support.AgentEscalation, "escalation",
		fmt.Sprintf("Handed off to human agent: %s", reason))
}

func (o *Orchestrator) terminal(s *support.SessionState, status support.ResolutionStatus,
	agent support.AgentType, step, message string) {
	s.CurrentAgent = agent
	s.WorkflowStep = step
	s.ResolutionStatus = status
	s.AppendHistory("system", agent, message, nil)
	s.MarkCompleted(agent)
}

// responseBudget is the wall-clock allowance for the whole session: the
// urgency target scaled by the tier multiplier.
func (o *Orchestrator) responseBudget(s *support.SessionState) time.Duration {
	settings := o.cfg.TierSettings(s.Customer.Tier)
	secs := float64(o.cfg.ResponseTargetSecs(s.UrgencyLevel)) * settings.ResponseTimeMultiplier
	return time.Duration(secs * float64(time.Second))
}
