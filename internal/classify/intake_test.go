package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/triagekit-dev/triagekit/pkg/config"
	"github.com/triagekit-dev/triagekit/support"
)

// stubClassifier scripts the fallback: it returns each result in order,
// repeating the last one once the script runs out.
type stubClassifier struct {
	results []support.QueryType
	errs    []error
	calls   int
}

func (s *stubClassifier) Classify(context.Context, string) (support.QueryType, error) {
	i := s.calls
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	s.calls++
	return s.results[i], s.errs[i]
}

func TestIntake_KeywordMatch(t *testing.T) {
	cfg := config.Default()
	intake := NewIntake(cfg, nil)

	tests := []struct {
		name  string
		query string
		want  support.QueryType
	}{
		{"technical", "the api returns an error on every call", support.QueryTechnical},
		{"billing", "I was charged twice on my invoice", support.QueryBilling},
		{"sales", "can we get a demo of the enterprise plan", support.QuerySales},
		{"general", "how do I reset my password", support.QueryGeneral},
		{"complaint", "this is the worst service, I'm very disappointed", support.QueryComplaint},
		{"case insensitive", "API ERROR in production", support.QueryTechnical},
		{"highest count wins", "refund the charge for the invoice error", support.QueryBilling},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := intake.Classify(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("Classify returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.query, got, tt.want)
			}
		})
	}
}

func TestIntake_TieBreaksByPriority(t *testing.T) {
	cfg := config.Default()
	intake := NewIntake(cfg, nil)

	// One technical keyword ("bug") and one billing keyword ("payment"):
	// a 1-1 tie that must resolve to technical by category priority.
	got, err := intake.Classify(context.Background(), "there is a bug with my payment")
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if got != support.QueryTechnical {
		t.Errorf("tie broke to %s, want technical", got)
	}
}

func TestIntake_NoMatchWithoutFallback(t *testing.T) {
	intake := NewIntake(config.Default(), nil)

	got, err := intake.Classify(context.Background(), "blorp")
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if got != support.QueryUnknown {
		t.Errorf("got %s, want unknown when nothing matches and no fallback is set", got)
	}
}

func TestIntake_FallbackUsedOnlyWhenNoKeywordMatches(t *testing.T) {
	fb := &stubClassifier{
		results: []support.QueryType{support.QuerySales},
		errs:    []error{nil},
	}
	intake := NewIntake(config.Default(), fb)

	// A keyword match must never reach the fallback.
	got, err := intake.Classify(context.Background(), "api error")
	if err != nil || got != support.QueryTechnical {
		t.Fatalf("Classify = (%s, %v), want (technical, nil)", got, err)
	}
	if fb.calls != 0 {
		t.Errorf("fallback called %d times for a keyword match", fb.calls)
	}

	// No keyword match consults the fallback.
	got, err = intake.Classify(context.Background(), "blorp")
	if err != nil || got != support.QuerySales {
		t.Fatalf("Classify = (%s, %v), want (sales, nil)", got, err)
	}
	if fb.calls != 1 {
		t.Errorf("fallback called %d times, want 1", fb.calls)
	}
}

func TestIntake_FallbackRetriesOnce(t *testing.T) {
	fb := &stubClassifier{
		results: []support.QueryType{support.QueryUnknown, support.QueryBilling},
		errs:    []error{errors.New("transient"), nil},
	}
	intake := NewIntake(config.Default(), fb)

	got, err := intake.Classify(context.Background(), "blorp")
	if err != nil {
		t.Fatalf("Classify returned error after successful retry: %v", err)
	}
	if got != support.QueryBilling {
		t.Errorf("got %s, want billing from the retry", got)
	}
	if fb.calls != 2 {
		t.Errorf("fallback called %d times, want 2", fb.calls)
	}
}

func TestIntake_FallbackExhaustedMapsToUnknown(t *testing.T) {
	boom := errors.New("provider down")
	fb := &stubClassifier{
		results: []support.QueryType{support.QueryUnknown},
		errs:    []error{boom},
	}
	intake := NewIntake(config.Default(), fb)

	got, err := intake.Classify(context.Background(), "blorp")
	if got != support.QueryUnknown {
		t.Errorf("got %s, want unknown after both fallback attempts fail", got)
	}
	if !errors.Is(err, support.ErrClassification) {
		t.Errorf("error = %v, want wrapped ErrClassification", err)
	}
	if fb.calls != 2 {
		t.Errorf("fallback called %d times, want 2", fb.calls)
	}
}

func TestIntake_FallbackInvalidCategoryMapsToUnknown(t *testing.T) {
	fb := &stubClassifier{
		results: []support.QueryType{support.QueryType("gibberish")},
		errs:    []error{nil},
	}
	intake := NewIntake(config.Default(), fb)

	got, err := intake.Classify(context.Background(), "blorp")
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if got != support.QueryUnknown {
		t.Errorf("got %s, want unknown for out-of-set fallback answer", got)
	}
}
