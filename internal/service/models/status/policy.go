package status

import "fmt"

// TransitionError reports a transition rejected by the active policy.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("status transition %s -> %s is not allowed", e.From, e.To)
}

// TransitionPolicy decides which status transitions are acceptable. The
// policy is injected into the lifecycle service so that tightening the
// transition table is a wiring change, not a workflow change.
type TransitionPolicy interface {
	Validate(from, to Status) error
}

// TerminalOnlyPolicy accepts any transition out of a non-terminal status.
// It intentionally imposes no ordering among the non-terminal statuses;
// product has not decided whether e.g. shipped -> confirmed is an error,
// so this mirrors what the storefront has always accepted.
type TerminalOnlyPolicy struct{}

func (TerminalOnlyPolicy) Validate(from, to Status) error {
	if from.IsTerminal() {
		return &TransitionError{From: from, To: to}
	}

	return nil
}

// StrictForwardPolicy only accepts forward movement through the lifecycle
// plus cancellation from any non-terminal status. Not wired by default.
type StrictForwardPolicy struct{}

func (StrictForwardPolicy) Validate(from, to Status) error {
	if from.IsTerminal() {
		return &TransitionError{From: from, To: to}
	}
	if to == StatusCancelled {
		return nil
	}
	if rank(to) <= rank(from) {
		return &TransitionError{From: from, To: to}
	}

	return nil
}

func rank(s Status) int {
	switch s {
	case StatusPending:
		return 0
	case StatusConfirmed:
		return 1
	case StatusProcessing:
		return 2
	case StatusShipped:
		return 3
	case StatusDelivered:
		return 4
	default:
		return 5
	}
}
