package support

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is a single entry in a session's conversation history.
// Entries are append-only and never mutated once recorded.
type Message struct {
	Timestamp  time.Time  `json:"timestamp"`
	Sender     string     `json:"sender"` // "customer", agent name, "human_agent"
	Content    string     `json:"content"`
	AgentType  *AgentType `json:"agent_type,omitempty"`
	Confidence *float64   `json:"confidence,omitempty"`
}

// CustomerInfo describes the customer behind a session.
type CustomerInfo struct {
	CustomerID        string       `json:"customer_id"`
	Name              string       `json:"name"`
	Email             string       `json:"email"`
	Tier              CustomerTier `json:"tier"`
	AccountStatus     string       `json:"account_status"` // active, suspended, trial
	PreviousTickets   int          `json:"previous_tickets"`
	SatisfactionScore *float64     `json:"satisfaction_score,omitempty"`
	Language          string       `json:"language"`
}

// DefaultCustomer returns the profile used when a caller supplies no
// customer record: a basic-tier active account with no history.
func DefaultCustomer(customerID string) CustomerInfo {
	return CustomerInfo{
		CustomerID:    customerID,
		Name:          "Unknown Customer",
		Email:         fmt.Sprintf("%s@example.com", customerID),
		Tier:          TierBasic,
		AccountStatus: "active",
		Language:      "en",
	}
}

// RiskAssessment holds the boolean risk flags and their aggregate score.
type RiskAssessment struct {
	FinancialRisk    bool    `json:"financial_risk"`
	LegalRisk        bool    `json:"legal_risk"`
	ReputationRisk   bool    `json:"reputation_risk"`
	ChurnRisk        bool    `json:"churn_risk"`
	ComplexityRisk   bool    `json:"complexity_risk"`
	OverallRiskScore float64 `json:"overall_risk_score"` // fraction of flags set, in [0,1]
}

// AgentResponse is the output of one specialist pass.
type AgentResponse struct {
	AgentType          AgentType `json:"agent_type"`
	Response           string    `json:"response"`
	ConfidenceScore    float64   `json:"confidence_score"` // in [0,1]
	SuggestedActions   []string  `json:"suggested_actions,omitempty"`
	RequiresEscalation bool      `json:"requires_escalation"`
	ResolutionTimeSecs *int      `json:"resolution_time_secs,omitempty"`
}

// SessionState is the mutable aggregate for one support session. It is
// owned exclusively by the orchestrator driving the session; every other
// component is a pure function over values it is handed.
type SessionState struct {
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`

	Customer CustomerInfo `json:"customer_info"`

	OriginalQuery  string `json:"original_query"`
	ProcessedQuery string `json:"processed_query"`

	QueryType      QueryType      `json:"query_type"`
	UrgencyLevel   UrgencyLevel   `json:"urgency_level"`
	SentimentLevel SentimentLevel `json:"sentiment_level"`
	SentimentScore float64        `json:"sentiment_score"` // in [-1,1]

	ConversationHistory []Message `json:"conversation_history"`

	CurrentAgent    AgentType   `json:"current_agent"`
	AssignedAgents  []AgentType `json:"assigned_agents"`
	CompletedAgents []AgentType `json:"completed_agents"`

	AgentResponses []AgentResponse `json:"agent_responses"`
	FinalResponse  *string         `json:"final_response,omitempty"`

	Risk                 RiskAssessment `json:"risk_assessment"`
	EscalationNeeded     bool           `json:"escalation_needed"`
	HumanHandoffRequired bool           `json:"human_handoff_required"`
	EscalationReason     *string        `json:"escalation_reason,omitempty"`

	ResolutionStatus ResolutionStatus `json:"resolution_status"`

	WorkflowStep  string   `json:"workflow_step"`
	ErrorMessages []string `json:"error_messages,omitempty"`
}

// NewSession creates the initial state for a support session. The
// customer's query is recorded as the first history entry. A nil customer
// gets the default basic-tier profile.
func NewSession(customerID, query string, customer *CustomerInfo) *SessionState {
	info := DefaultCustomer(customerID)
	if customer != nil {
		info = *customer
	}

	now := time.Now()
	s := &SessionState{
		SessionID:        fmt.Sprintf("support_%s_%s", customerID, uuid.New().String()[:8]),
		Timestamp:        now,
		Customer:         info,
		OriginalQuery:    query,
		QueryType:        QueryUnknown,
		UrgencyLevel:     UrgencyMedium,
		SentimentLevel:   SentimentNeutral,
		CurrentAgent:     AgentIntake,
		ResolutionStatus: StatusPending,
		WorkflowStep:     "intake",
	}

	s.ConversationHistory = append(s.ConversationHistory, Message{
		Timestamp: now,
		Sender:    "customer",
		Content:   query,
	})
	return s
}

// AppendHistory records one history entry from an agent.
func (s *SessionState) AppendHistory(sender string, agent AgentType, content string, confidence *float64) {
	at := agent
	s.ConversationHistory = append(s.ConversationHistory, Message{
		Timestamp:  time.Now(),
		Sender:     sender,
		Content:    content,
		AgentType:  &at,
		Confidence: confidence,
	})
}

// MarkCompleted records that an agent finished a step. Re-adding an agent
// already present (a quality-check retry) is a no-op, so the sequence only
// ever grows and never holds duplicates.
func (s *SessionState) MarkCompleted(agent AgentType) {
	for _, a := range s.CompletedAgents {
		if a == agent {
			return
		}
	}
	s.CompletedAgents = append(s.CompletedAgents, agent)
}

// Completed reports whether agent has already finished a step.
func (s *SessionState) Completed(agent AgentType) bool {
	for _, a := range s.CompletedAgents {
		if a == agent {
			return true
		}
	}
	return false
}

// RecordError appends a non-fatal failure description.
func (s *SessionState) RecordError(format string, args ...any) {
	s.ErrorMessages = append(s.ErrorMessages, fmt.Sprintf(format, args...))
}

// LatestResponse returns the most recent specialist response, or nil if no
// specialist has run yet.
func (s *SessionState) LatestResponse() *AgentResponse {
	if len(s.AgentResponses) == 0 {
		return nil
	}
	return &s.AgentResponses[len(s.AgentResponses)-1]
}

// NormalizeQuery produces the processed form of a raw query: trimmed, with
// internal whitespace runs collapsed to single spaces.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

// Result is the output surface handed back to callers once a session
// reaches a terminal state.
type Result struct {
	SessionID        string           `json:"session_id"`
	ResolutionStatus ResolutionStatus `json:"resolution_status"`
	FinalResponse    *string          `json:"final_response,omitempty"`
	QueryType        QueryType        `json:"query_type"`
	UrgencyLevel     UrgencyLevel     `json:"urgency_level"`
	SentimentLevel   SentimentLevel   `json:"sentiment_level"`
	Risk             RiskAssessment   `json:"risk_assessment"`
	EscalationReason *string          `json:"escalation_reason,omitempty"`
	History          []Message        `json:"conversation_history"`
	ErrorMessages    []string         `json:"error_messages,omitempty"`
}

// ResultOf snapshots the caller-visible portion of a session.
func ResultOf(s *SessionState) *Result {
	return &Result{
		SessionID:        s.SessionID,
		ResolutionStatus: s.ResolutionStatus,
		FinalResponse:    s.FinalResponse,
		QueryType:        s.QueryType,
		UrgencyLevel:     s.UrgencyLevel,
		SentimentLevel:   s.SentimentLevel,
		Risk:             s.Risk,
		EscalationReason: s.EscalationReason,
		History:          s.ConversationHistory,
		ErrorMessages:    s.ErrorMessages,
	}
}
