package classify

import (
	"testing"

	"github.com/triagekit-dev/triagekit/pkg/config"
	"github.com/triagekit-dev/triagekit/support"
)

func TestUrgency_Classify(t *testing.T) {
	urgency := NewUrgency(config.Default())

	tests := []struct {
		name  string
		query string
		want  support.UrgencyLevel
	}{
		{"critical keyword", "production is down", support.UrgencyCritical},
		{"high keyword", "I have a problem with the export", support.UrgencyHigh},
		{"medium keyword", "just a question about the report", support.UrgencyMedium},
		{"low keyword", "curious about the roadmap", support.UrgencyLow},
		{"no keyword defaults to medium", "hello there", support.UrgencyMedium},
		{"case insensitive", "PRODUCTION OUTAGE", support.UrgencyCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := urgency.Classify(tt.query); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.query, got, tt.want)
			}
		})
	}
}

func TestUrgency_PriorityBeatsMatchCount(t *testing.T) {
	urgency := NewUrgency(config.Default())

	// Three low keywords against a single critical one: priority order
	// decides, so the query is critical.
	query := "just curious and wondering about something basic, but the service is down"
	if got := urgency.Classify(query); got != support.UrgencyCritical {
		t.Errorf("Classify = %s, want critical despite more low matches", got)
	}
}
