package orchestration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/triagekit-dev/triagekit/agents"
	"github.com/triagekit-dev/triagekit/internal/observability"
	"github.com/triagekit-dev/triagekit/support"
)

// specialistMergeOrder fixes how parallel branch responses are merged:
// the same category priority the intake classifier uses for tie-breaks.
var specialistMergeOrder = []support.AgentType{
	support.AgentTechnical,
	support.AgentBilling,
	support.AgentSales,
	support.AgentGeneral,
	support.AgentComplaint,
}

// runSpecialists executes the assigned specialist round, sequentially or
// as a parallel fan-out, and appends the round's responses to the session.
// It reports failed=true only when the round produced no usable response;
// a partial parallel failure is recorded and degrades to a zero-confidence
// response instead.
func (o *Orchestrator) runSpecialists(ctx context.Context, s *support.SessionState) ([]support.AgentResponse, bool) {
	primary := s.AssignedAgents[0]
	start := time.Now()
	defer func() { observability.ObserveStep(string(primary), time.Since(start)) }()

	s.WorkflowStep = string(primary)

	req := agents.Request{
		Query:          s.ProcessedQuery,
		QueryType:      s.QueryType,
		Urgency:        s.UrgencyLevel,
		Sentiment:      s.SentimentLevel,
		SentimentScore: s.SentimentScore,
		Customer:       s.Customer,
	}

	var responses []support.AgentResponse
	if len(s.AssignedAgents) > 1 {
		responses = o.fanOut(ctx, s, req)
	} else {
		sp, ok := o.specialists[primary]
		if !ok {
			s.RecordError("policy violation: no specialist registered for %s", primary)
			return nil, true
		}

		s.CurrentAgent = primary
		resp, err := o.executeSpecialist(ctx, sp, req)
		if err != nil {
			s.RecordError("%v", err)
			s.AppendHistory("system", primary, fmt.Sprintf("Specialist step failed: %v", err), nil)
			return nil, true
		}
		responses = []support.AgentResponse{resp}
	}

	if len(responses) == 0 {
		return nil, true
	}

	for _, resp := range responses {
		s.AgentResponses = append(s.AgentResponses, resp)
		s.CurrentAgent = resp.AgentType
		s.AppendHistory(string(resp.AgentType)+"_agent", resp.AgentType,
			resp.Response, &resp.ConfidenceScore)
		s.MarkCompleted(resp.AgentType)
	}
	return responses, false
}

// fanOut runs every assigned specialist concurrently over its own copy of
// the request view, then merges results in the fixed specialist priority
// order. A failed branch does not abort its siblings: it contributes a
// zero-confidence placeholder so the quality gate sees the failure.
func (o *Orchestrator) fanOut(ctx context.Context, s *support.SessionState, req agents.Request) []support.AgentResponse {
	results := make(map[support.AgentType]support.AgentResponse, len(s.AssignedAgents))
	errs := make(map[support.AgentType]error, len(s.AssignedAgents))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, at := range s.AssignedAgents {
		sp, ok := o.specialists[at]
		if !ok {
			errs[at] = fmt.Errorf("%w: no specialist registered for %s", support.ErrPolicyViolation, at)
			continue
		}
		g.Go(func() error {
			resp, err := o.executeSpecialist(gctx, sp, req)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[at] = err
			} else {
				results[at] = resp
			}
			return nil // siblings keep running on branch failure
		})
	}
	_ = g.Wait()

	var merged []support.AgentResponse
	for _, at := range specialistMergeOrder {
		if !assigned(s.AssignedAgents, at) {
			continue
		}
		if resp, ok := results[at]; ok {
			merged = append(merged, resp)
			continue
		}
		err := errs[at]
		s.RecordError("parallel branch %s failed: %v", at, err)
		merged = append(merged, support.AgentResponse{
			AgentType:       at,
			Response:        fmt.Sprintf("%s specialist unavailable", at),
			ConfidenceScore: 0,
		})
	}

	// All branches failing leaves nothing worth quality-checking.
	if len(errs) == len(s.AssignedAgents) {
		return nil
	}
	return merged
}

// executeSpecialist invokes one specialist with the orchestrator-boundary
// recovery the state machine relies on: a panicking specialist becomes a
// specialist failure, never an undefined session.
func (o *Orchestrator) executeSpecialist(ctx context.Context, sp agents.Specialist, req agents.Request) (resp support.AgentResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s specialist panicked: %v", support.ErrSpecialist, sp.Type(), r)
		}
	}()

	resp, err = sp.Handle(ctx, req)
	if err != nil {
		return support.AgentResponse{}, fmt.Errorf("%w: %s: %v", support.ErrSpecialist, sp.Type(), err)
	}
	return resp, nil
}

func assigned(list []support.AgentType, at support.AgentType) bool {
	for _, a := range list {
		if a == at {
			return true
		}
	}
	return false
}
