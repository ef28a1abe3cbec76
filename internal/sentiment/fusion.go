// Package sentiment fuses the polarity scores of two independent providers
// into one discrete sentiment level.
package sentiment

import (
	"context"
	"fmt"

	"github.com/triagekit-dev/triagekit/internal/llm/provider"
	"github.com/triagekit-dev/triagekit/pkg/config"
	"github.com/triagekit-dev/triagekit/support"
)

// Fuser combines two sentiment providers. Each provider gets one retry;
// a provider that fails both times contributes a neutral score and the
// failure is reported for the session's error log.
type Fuser struct {
	primary    provider.SentimentProvider
	secondary  provider.SentimentProvider
	thresholds config.SentimentThresholds
}

// NewFuser builds a fuser over two providers.
func NewFuser(cfg *config.Config, primary, secondary provider.SentimentProvider) *Fuser {
	return &Fuser{
		primary:    primary,
		secondary:  secondary,
		thresholds: cfg.Sentiment,
	}
}

// Analyze scores text with both providers and fuses the results. The
// returned error is informational (provider failures already recovered
// with neutral defaults); level and score are always usable.
func (f *Fuser) Analyze(ctx context.Context, text string) (support.SentimentLevel, float64, error) {
	var firstErr error

	primary, err := f.score(ctx, f.primary, text)
	if err != nil {
		firstErr = err
	}
	secondary, err := f.score(ctx, f.secondary, text)
	if err != nil && firstErr == nil {
		firstErr = err
	}

	level, fused := f.Fuse(primary, secondary)
	return level, fused, firstErr
}

func (f *Fuser) score(ctx context.Context, p provider.SentimentProvider, text string) (float64, error) {
	score, err := p.Score(ctx, text)
	if err != nil {
		score, err = p.Score(ctx, text)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", support.ErrSentimentProvider, p.Name(), err)
	}
	return provider.Clamp(score), nil
}

// Fuse averages two polarity scores and discretizes the mean. It is
// symmetric in its inputs.
func (f *Fuser) Fuse(a, b float64) (support.SentimentLevel, float64) {
	fused := (a + b) / 2
	return f.Discretize(fused), fused
}

// Discretize maps a fused score onto a sentiment level. Thresholds are
// checked from most positive to most negative and comparisons are
// inclusive on the lower bound, so a boundary value lands in the more
// positive bucket. Scores below the very_negative cut are angry; the
// separate angry cut point exists in config only for threshold-ordering
// validation.
func (f *Fuser) Discretize(score float64) support.SentimentLevel {
	t := f.thresholds
	switch {
	case score >= t.VeryPositive:
		return support.SentimentVeryPositive
	case score >= t.Positive:
		return support.SentimentPositive
	case score >= t.Neutral:
		return support.SentimentNeutral
	case score >= t.Negative:
		return support.SentimentNegative
	case score >= t.VeryNegative:
		return support.SentimentVeryNegative
	default:
		return support.SentimentAngry
	}
}
