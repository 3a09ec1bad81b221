// internal/requests/transitions.go
package requests

import (
	"fmt"
	"strings"
	"time"
)

// allowedTransitions maps each status to the statuses reachable from it.
// Rejected and fulfilled are terminal; fulfilled is reachable only from
// approved.
var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusRejected},
	StatusApproved:  {StatusFulfilled},
	StatusRejected:  {},
	StatusFulfilled: {},
}

// ValidStatus reports whether s is a known status value.
func ValidStatus(s Status) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransition reports whether the move from one status to another is
// legal. Self-transitions are never legal.
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// validateTransition checks a transition attempt against the state machine
// and its per-transition preconditions.
func validateTransition(current Status, in TransitionInput) error {
	if !ValidStatus(in.Target) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, in.Target)
	}
	if !CanTransition(current, in.Target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, in.Target)
	}
	if in.Target == StatusRejected && strings.TrimSpace(in.Reason) == "" {
		return fmt.Errorf("%w: rejection reason is required", ErrValidation)
	}
	return nil
}

// applyTransition stamps the transition metadata onto the request. The
// caller has already validated the move.
func applyTransition(req *ItemRequest, in TransitionInput, now time.Time) {
	req.Status = in.Target
	req.UpdatedAt = now

	switch in.Target {
	case StatusApproved:
		actor := in.Actor
		req.ApprovedBy = &actor
		req.ApprovedAt = &now
	case StatusRejected:
		actor := in.Actor
		reason := in.Reason
		req.RejectedBy = &actor
		req.RejectedAt = &now
		req.RejectionReason = &reason
	case StatusFulfilled:
		req.FulfillmentDate = &now
	}
}
