// Package classify implements the deterministic query classifiers: the
// keyword-scoring intake classifier with its model fallback, and the
// priority-ordered urgency classifier.
package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/triagekit-dev/triagekit/internal/llm/provider"
	"github.com/triagekit-dev/triagekit/pkg/config"
	"github.com/triagekit-dev/triagekit/support"
)

// Intake classifies queries into routing categories. Keyword scoring
// decides whenever any keyword matches; the external classifier is only
// consulted when every category scores zero.
type Intake struct {
	routing  map[support.QueryType][]string
	fallback provider.TextClassifier
}

// NewIntake builds an intake classifier from the routing keyword table.
// fallback may be nil, in which case unmatched queries classify as
// unknown without an external call.
func NewIntake(cfg *config.Config, fallback provider.TextClassifier) *Intake {
	return &Intake{
		routing:  cfg.RoutingKeywords,
		fallback: fallback,
	}
}

// Classify returns the query's category. The returned error is
// informational: it reports a fallback-provider failure for the session's
// error log, and when it is non-nil the returned category is QueryUnknown.
// Classification itself never fails.
func (c *Intake) Classify(ctx context.Context, query string) (support.QueryType, error) {
	if best, ok := c.keywordMatch(query); ok {
		return best, nil
	}

	if c.fallback == nil {
		return support.QueryUnknown, nil
	}

	// One retry, then unknown. The fallback's answer must itself be one
	// of the closed categories; anything else is already mapped to
	// unknown by the provider contract.
	qt, err := c.fallback.Classify(ctx, query)
	if err != nil {
		qt, err = c.fallback.Classify(ctx, query)
	}
	if err != nil {
		return support.QueryUnknown, fmt.Errorf("%w: fallback classifier: %v", support.ErrClassification, err)
	}
	if !qt.Valid() {
		return support.QueryUnknown, nil
	}
	return qt, nil
}

// keywordMatch scores each category by how many of its keywords occur as
// substrings of the lower-cased query. The strictly highest count wins;
// ties break by the fixed category priority order, never by map iteration
// order.
func (c *Intake) keywordMatch(query string) (support.QueryType, bool) {
	lower := strings.ToLower(query)

	best := support.QueryUnknown
	bestScore := 0
	for _, qt := range support.QueryTypePriority {
		score := 0
		for _, kw := range c.routing[qt] {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			best = qt
			bestScore = score
		}
	}

	return best, bestScore > 0
}
