// Package provider defines the external capability boundary of the triage
// engine. The engine never calls a model SDK directly; it consumes these
// interfaces and treats every implementation as a black box that may fail
// or time out.
package provider

import (
	"context"

	"github.com/triagekit-dev/triagekit/support"
)

// TextClassifier is the fallback query-type classifier, consulted only
// when keyword scoring produces no match. Implementations must return
// within their configured timeout or report an error; callers map any
// failure to support.QueryUnknown.
type TextClassifier interface {
	// Classify returns one of the five query categories or QueryUnknown.
	Classify(ctx context.Context, query string) (support.QueryType, error)
}

// SentimentProvider scores the polarity of a text in [-1,1]. The engine
// requires two independent instances and fuses their scores.
type SentimentProvider interface {
	// Score returns a polarity in [-1,1]; negative means dissatisfied.
	Score(ctx context.Context, text string) (float64, error)

	// Name identifies the provider in logs and error messages.
	Name() string
}

// GenerateRequest carries the context a specialist hands to the response
// backend.
type GenerateRequest struct {
	System      string  `json:"system,omitempty"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// ResponseGenerator produces free-text replies for specialist agents.
// Response generation is outside the decision core; specialists degrade to
// template responses when it fails.
type ResponseGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Clamp bounds a polarity score to [-1,1]. Providers apply it before
// returning so the fusion stage can rely on the invariant.
func Clamp(score float64) float64 {
	switch {
	case score > 1:
		return 1
	case score < -1:
		return -1
	default:
		return score
	}
}
