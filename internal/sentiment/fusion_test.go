package sentiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/triagekit-dev/triagekit/pkg/config"
	"github.com/triagekit-dev/triagekit/support"
)

// stubProvider returns scripted scores and errors in call order, repeating
// the last entry once the script runs out.
type stubProvider struct {
	name   string
	scores []float64
	errs   []error
	calls  int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Score(context.Context, string) (float64, error) {
	i := s.calls
	if i >= len(s.scores) {
		i = len(s.scores) - 1
	}
	s.calls++
	return s.scores[i], s.errs[i]
}

func fixed(name string, score float64) *stubProvider {
	return &stubProvider{name: name, scores: []float64{score}, errs: []error{nil}}
}

func closeTo(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDiscretize_Boundaries(t *testing.T) {
	f := NewFuser(config.Default(), fixed("a", 0), fixed("b", 0))

	tests := []struct {
		name  string
		score float64
		want  support.SentimentLevel
	}{
		{"well above very positive", 0.9, support.SentimentVeryPositive},
		{"very positive boundary is inclusive", 0.5, support.SentimentVeryPositive},
		{"just below very positive", 0.49, support.SentimentPositive},
		{"positive boundary is inclusive", 0.1, support.SentimentPositive},
		{"neutral upper", 0.09, support.SentimentNeutral},
		{"neutral boundary is inclusive", -0.1, support.SentimentNeutral},
		{"negative", -0.3, support.SentimentNegative},
		{"negative boundary is inclusive", -0.5, support.SentimentNegative},
		{"very negative", -0.6, support.SentimentVeryNegative},
		{"very negative boundary is inclusive", -0.7, support.SentimentVeryNegative},
		{"below very negative is angry", -0.71, support.SentimentAngry},
		{"floor", -1, support.SentimentAngry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Discretize(tt.score); got != tt.want {
				t.Errorf("Discretize(%v) = %s, want %s", tt.score, got, tt.want)
			}
		})
	}
}

func TestFuse_SymmetricMean(t *testing.T) {
	f := NewFuser(config.Default(), fixed("a", 0), fixed("b", 0))

	levelAB, scoreAB := f.Fuse(0.8, -0.2)
	levelBA, scoreBA := f.Fuse(-0.2, 0.8)

	if scoreAB != scoreBA || levelAB != levelBA {
		t.Errorf("fusion not symmetric: (%s, %v) vs (%s, %v)", levelAB, scoreAB, levelBA, scoreBA)
	}
	if !closeTo(scoreAB, 0.3) {
		t.Errorf("fused score = %v, want 0.3", scoreAB)
	}
	if levelAB != support.SentimentPositive {
		t.Errorf("fused level = %s, want positive", levelAB)
	}
}

func TestAnalyze_FusesBothProviders(t *testing.T) {
	f := NewFuser(config.Default(), fixed("a", -0.6), fixed("b", -0.8))

	level, score, err := f.Analyze(context.Background(), "terrible")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if score > -0.69 || score < -0.71 {
		t.Errorf("fused score = %v, want -0.7", score)
	}
	if !level.Severe() {
		t.Errorf("fused level = %s, want a severe level", level)
	}
}

func TestAnalyze_RetriesOnce(t *testing.T) {
	flaky := &stubProvider{
		name:   "flaky",
		scores: []float64{0, 0.6},
		errs:   []error{errors.New("transient"), nil},
	}
	f := NewFuser(config.Default(), flaky, fixed("b", 0.2))

	level, score, err := f.Analyze(context.Background(), "text")
	if err != nil {
		t.Fatalf("Analyze returned error after successful retry: %v", err)
	}
	if !closeTo(score, 0.4) {
		t.Errorf("fused score = %v, want 0.4", score)
	}
	if level != support.SentimentPositive {
		t.Errorf("level = %s, want positive", level)
	}
	if flaky.calls != 2 {
		t.Errorf("flaky provider called %d times, want 2", flaky.calls)
	}
}

func TestAnalyze_FailedProviderContributesNeutral(t *testing.T) {
	dead := &stubProvider{
		name:   "dead",
		scores: []float64{0},
		errs:   []error{errors.New("down")},
	}
	f := NewFuser(config.Default(), dead, fixed("b", 0.8))

	level, score, err := f.Analyze(context.Background(), "text")
	if !errors.Is(err, support.ErrSentimentProvider) {
		t.Errorf("error = %v, want wrapped ErrSentimentProvider", err)
	}
	// The dead provider contributes 0, so the fused score is halved.
	if !closeTo(score, 0.4) {
		t.Errorf("fused score = %v, want 0.4", score)
	}
	if level != support.SentimentPositive {
		t.Errorf("level = %s, want positive", level)
	}
	if dead.calls != 2 {
		t.Errorf("dead provider called %d times, want one retry", dead.calls)
	}
}

func TestAnalyze_BothProvidersFail(t *testing.T) {
	mk := func(name string) *stubProvider {
		return &stubProvider{name: name, scores: []float64{0}, errs: []error{errors.New("down")}}
	}
	f := NewFuser(config.Default(), mk("a"), mk("b"))

	level, score, err := f.Analyze(context.Background(), "text")
	if !errors.Is(err, support.ErrSentimentProvider) {
		t.Errorf("error = %v, want wrapped ErrSentimentProvider", err)
	}
	if score != 0 {
		t.Errorf("fused score = %v, want 0 when both providers fail", score)
	}
	if level != support.SentimentNeutral {
		t.Errorf("level = %s, want neutral", level)
	}
}

func TestAnalyze_ClampsProviderScores(t *testing.T) {
	f := NewFuser(config.Default(), fixed("a", 3.0), fixed("b", 1.0))

	_, score, err := f.Analyze(context.Background(), "text")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if score != 1.0 {
		t.Errorf("fused score = %v, want 1.0 after clamping", score)
	}
}
