package classify

import (
	"strings"

	"github.com/triagekit-dev/triagekit/pkg/config"
	"github.com/triagekit-dev/triagekit/support"
)

// Urgency classifies queries into urgency buckets by keyword priority.
type Urgency struct {
	keywords map[support.UrgencyLevel][]string
}

// NewUrgency builds an urgency classifier from the keyword table.
func NewUrgency(cfg *config.Config) *Urgency {
	return &Urgency{keywords: cfg.UrgencyKeywords}
}

// Classify returns the first level, checked from critical down to low,
// with any keyword match in the lower-cased query. Priority order decides,
// not match count: a query with one critical keyword and three low
// keywords is critical. No match defaults to medium.
func (u *Urgency) Classify(query string) support.UrgencyLevel {
	lower := strings.ToLower(query)

	for _, level := range support.UrgencyOrder {
		for _, kw := range u.keywords[level] {
			if strings.Contains(lower, kw) {
				return level
			}
		}
	}
	return support.UrgencyMedium
}
