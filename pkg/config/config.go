// Package config holds the process-wide policy tables for the triage
// engine: keyword tables, sentiment thresholds, tier settings, and the
// numeric escalation constants. A Config is built once at startup and
// passed by reference into every component constructor; nothing reads it
// as ambient global state, and it is never mutated after Load.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/triagekit-dev/triagekit/support"
)

// TierSettings gates auto-refund limits and escalation aggressiveness for
// one customer tier.
type TierSettings struct {
	MaxAutoRefund          float64 `yaml:"max_auto_refund"`
	ResponseTimeMultiplier float64 `yaml:"response_time_multiplier"`
	AutoEscalate           bool    `yaml:"auto_escalate"`
	PriorityScore          int     `yaml:"priority_score"`
}

// SentimentThresholds are the six ordered cut points used to discretize a
// fused polarity score. Values must be strictly decreasing from
// VeryPositive down to Angry.
type SentimentThresholds struct {
	VeryPositive float64 `yaml:"very_positive"`
	Positive     float64 `yaml:"positive"`
	Neutral      float64 `yaml:"neutral"`
	Negative     float64 `yaml:"negative"`
	VeryNegative float64 `yaml:"very_negative"`
	Angry        float64 `yaml:"angry"`
}

// Config is the full policy configuration.
type Config struct {
	// Escalation thresholds
	SentimentEscalationThreshold float64              `yaml:"sentiment_escalation_threshold"`
	RiskEscalationCeiling        float64              `yaml:"risk_escalation_ceiling"`
	UrgencyEscalationLevel       support.UrgencyLevel `yaml:"urgency_escalation_level"`
	MaxAutoRefund                float64              `yaml:"max_auto_refund"`
	MaxAgentAttempts             int                  `yaml:"max_agent_attempts"`
	MinQualityConfidence         float64              `yaml:"min_quality_confidence"`
	RepeatComplaintThreshold     int                  `yaml:"repeat_complaint_threshold"`

	// Response time targets, in seconds, keyed by urgency
	CriticalResponseTime int `yaml:"critical_response_time"`
	HighResponseTime     int `yaml:"high_response_time"`
	MediumResponseTime   int `yaml:"medium_response_time"`
	LowResponseTime      int `yaml:"low_response_time"`

	// Agent settings
	EnableParallelProcessing bool `yaml:"enable_parallel_processing"`
	RequireQualityCheck      bool `yaml:"require_quality_check"`

	// Safety settings
	EnableSafetyGuards bool `yaml:"enable_safety_guards"`
	LogAllInteractions bool `yaml:"log_all_interactions"`

	// Keyword tables
	SafetyKeywords    []string                          `yaml:"safety_keywords"`
	LegalKeywords     []string                          `yaml:"legal_keywords"`
	FinancialKeywords []string                          `yaml:"financial_keywords"`
	UrgencyKeywords   map[support.UrgencyLevel][]string `yaml:"urgency_keywords"`
	RoutingKeywords   map[support.QueryType][]string    `yaml:"routing_keywords"`

	Sentiment SentimentThresholds                   `yaml:"sentiment_thresholds"`
	Tiers     map[support.CustomerTier]TierSettings `yaml:"tier_settings"`
}

// Default returns the built-in policy tables.
func Default() *Config {
	return &Config{
		SentimentEscalationThreshold: -0.7,
		RiskEscalationCeiling:        0.6,
		UrgencyEscalationLevel:       support.UrgencyHigh,
		MaxAutoRefund:                100.0,
		MaxAgentAttempts:             3,
		MinQualityConfidence:         0.6,
		RepeatComplaintThreshold:     2,

		CriticalResponseTime: 300,
		HighResponseTime:     1800,
		MediumResponseTime:   3600,
		LowResponseTime:      7200,

		EnableParallelProcessing: false,
		RequireQualityCheck:      true,
		EnableSafetyGuards:       true,
		LogAllInteractions:       true,

		SafetyKeywords: []string{
			"lawsuit", "legal", "lawyer", "sue", "court",
			"discrimination", "harassment", "threat",
			"delete account", "cancel subscription",
			"data breach", "privacy violation",
			"refund", "chargeback", "dispute",
		},
		LegalKeywords: []string{
			"lawsuit", "legal", "lawyer", "sue", "court",
			"discrimination", "harassment", "threat",
			"data breach", "privacy violation",
		},
		FinancialKeywords: []string{
			"refund", "chargeback", "dispute", "cancel subscription",
		},

		UrgencyKeywords: map[support.UrgencyLevel][]string{
			support.UrgencyCritical: {
				"down", "outage", "emergency", "urgent", "immediately",
				"production", "critical", "broken", "not working",
				"angry", "furious", "unacceptable",
			},
			support.UrgencyHigh: {
				"important", "asap", "soon", "quick", "fast",
				"problem", "issue", "error", "bug", "help",
			},
			support.UrgencyMedium: {
				"question", "how to", "when", "where", "why",
				"information", "details", "clarification",
			},
			support.UrgencyLow: {
				"curious", "wondering", "sometime", "eventually",
				"general", "basic", "simple",
			},
		},

		RoutingKeywords: map[support.QueryType][]string{
			support.QueryTechnical: {
				"api", "integration", "code", "error", "bug",
				"not working", "broken", "technical", "development",
				"webhook", "authentication", "database", "server",
			},
			support.QueryBilling: {
				"payment", "charge", "bill", "invoice", "refund",
				"subscription", "pricing", "cost", "money",
				"credit card", "bank", "transaction",
			},
			support.QuerySales: {
				"upgrade", "plan", "features", "demo", "trial",
				"purchase", "buy", "pricing", "quote",
				"enterprise", "custom", "contract",
			},
			support.QueryGeneral: {
				"account", "profile", "settings", "password",
				"login", "access", "how to", "tutorial",
				"documentation", "guide",
			},
			support.QueryComplaint: {
				"complaint", "disappointed", "dissatisfied", "terrible",
				"worst", "awful", "useless",
			},
		},

		Sentiment: SentimentThresholds{
			VeryPositive: 0.5,
			Positive:     0.1,
			Neutral:      -0.1,
			Negative:     -0.5,
			VeryNegative: -0.7,
			Angry:        -0.8,
		},

		Tiers: map[support.CustomerTier]TierSettings{
			support.TierBasic: {
				MaxAutoRefund:          50.0,
				ResponseTimeMultiplier: 1.0,
				AutoEscalate:           false,
				PriorityScore:          1,
			},
			support.TierPremium: {
				MaxAutoRefund:          200.0,
				ResponseTimeMultiplier: 0.8,
				AutoEscalate:           false,
				PriorityScore:          2,
			},
			support.TierEnterprise: {
				MaxAutoRefund:          1000.0,
				ResponseTimeMultiplier: 0.5,
				AutoEscalate:           true,
				PriorityScore:          4,
			},
			support.TierVIP: {
				MaxAutoRefund:          5000.0,
				ResponseTimeMultiplier: 0.3,
				AutoEscalate:           true,
				PriorityScore:          5,
			},
		},
	}
}

// Load reads a YAML policy file over the built-in defaults, then applies
// environment overrides, then validates. An empty path skips the file and
// loads defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 - path is operator input
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides numeric policy constants from the environment.
// Overrides are plain scalars; a value that does not parse is ignored.
func (c *Config) applyEnv() {
	if v, ok := floatEnv("ESCALATION_THRESHOLD_SENTIMENT"); ok {
		c.SentimentEscalationThreshold = v
	}
	if v, ok := floatEnv("MAX_AUTO_REFUND"); ok {
		c.MaxAutoRefund = v
	}
	if v, ok := intEnv("CRITICAL_RESPONSE_TIME"); ok {
		c.CriticalResponseTime = v
	}
	if v, ok := intEnv("MAX_AGENT_ATTEMPTS"); ok {
		c.MaxAgentAttempts = v
	}
}

func floatEnv(key string) (float64, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func intEnv(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Validate checks internal consistency of the policy tables.
func (c *Config) Validate() error {
	t := c.Sentiment
	if !(t.VeryPositive > t.Positive && t.Positive > t.Neutral &&
		t.Neutral > t.Negative && t.Negative > t.VeryNegative &&
		t.VeryNegative > t.Angry) {
		return fmt.Errorf("sentiment thresholds must be strictly decreasing")
	}
	if c.MaxAgentAttempts < 1 {
		return fmt.Errorf("max_agent_attempts must be at least 1, got %d", c.MaxAgentAttempts)
	}
	if c.MinQualityConfidence < 0 || c.MinQualityConfidence > 1 {
		return fmt.Errorf("min_quality_confidence must be in [0,1], got %v", c.MinQualityConfidence)
	}
	if c.RiskEscalationCeiling < 0 || c.RiskEscalationCeiling > 1 {
		return fmt.Errorf("risk_escalation_ceiling must be in [0,1], got %v", c.RiskEscalationCeiling)
	}
	if !c.UrgencyEscalationLevel.Valid() {
		return fmt.Errorf("unknown urgency_escalation_level: %s", c.UrgencyEscalationLevel)
	}
	for _, tier := range []support.CustomerTier{support.TierBasic, support.TierPremium, support.TierEnterprise, support.TierVIP} {
		if _, ok := c.Tiers[tier]; !ok {
			return fmt.Errorf("missing tier settings for %s", tier)
		}
	}
	for _, level := range support.UrgencyOrder {
		if len(c.UrgencyKeywords[level]) == 0 {
			return fmt.Errorf("empty urgency keyword list for %s", level)
		}
	}
	for _, qt := range support.QueryTypePriority {
		if len(c.RoutingKeywords[qt]) == 0 {
			return fmt.Errorf("empty routing keyword list for %s", qt)
		}
	}
	return nil
}

// TierSettings returns the settings for tier. Unrecognized tiers fall back
// to basic; callers that need strict tier checking validate the tier
// before reaching this point.
func (c *Config) TierSettings(tier support.CustomerTier) TierSettings {
	if s, ok := c.Tiers[tier]; ok {
		return s
	}
	return c.Tiers[support.TierBasic]
}

// ResponseTargetSecs returns the response-time target for an urgency
// level, in seconds, before any tier multiplier is applied.
func (c *Config) ResponseTargetSecs(u support.UrgencyLevel) int {
	switch u {
	case support.UrgencyCritical:
		return c.CriticalResponseTime
	case support.UrgencyHigh:
		return c.HighResponseTime
	case support.UrgencyMedium:
		return c.MediumResponseTime
	default:
		return c.LowResponseTime
	}
}
