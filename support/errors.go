package support

import "errors"

// Failure classes recognized by the orchestrator. Classification and
// sentiment failures are recovered locally with documented defaults;
// specialist failures are retried; a policy violation is fatal and forces
// human handoff.
var (
	// ErrClassification marks a fallback-classifier failure.
	ErrClassification = errors.New("classification failure")
	// ErrSentimentProvider marks an unreachable sentiment provider.
	ErrSentimentProvider = errors.New("sentiment provider failure")
	// ErrSpecialist marks a failed specialist step.
	ErrSpecialist = errors.New("specialist failure")
	// ErrPolicyViolation marks invalid or inconsistent session state.
	ErrPolicyViolation = errors.New("policy violation")
)
