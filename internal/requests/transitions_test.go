package requests

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var allStatuses = []Status{StatusPending, StatusApproved, StatusRejected, StatusFulfilled}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusFulfilled, false},
		{StatusApproved, StatusFulfilled, true},
		{StatusApproved, StatusRejected, false},
		{StatusApproved, StatusPending, false},
		{StatusRejected, StatusApproved, false},
		{StatusRejected, StatusPending, false},
		{StatusFulfilled, StatusApproved, false},
		{StatusPending, StatusPending, false},
		{StatusApproved, StatusApproved, false},
		{StatusRejected, StatusRejected, false},
		{StatusFulfilled, StatusFulfilled, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestValidateTransitionRejectsUnknownStatus(t *testing.T) {
	err := validateTransition(StatusPending, TransitionInput{Target: Status("archived"), Actor: uuid.New()})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidateTransitionRequiresRejectionReason(t *testing.T) {
	in := TransitionInput{Target: StatusRejected, Actor: uuid.New()}
	err := validateTransition(StatusPending, in)
	assert.ErrorIs(t, err, ErrValidation)

	in.Reason = "out of budget"
	assert.NoError(t, validateTransition(StatusPending, in))
}

func TestValidateTransitionTerminalStates(t *testing.T) {
	for _, from := range []Status{StatusRejected, StatusFulfilled} {
		for _, to := range allStatuses {
			err := validateTransition(from, TransitionInput{Target: to, Actor: uuid.New(), Reason: "r"})
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", from, to)
		}
	}
}

func TestApplyTransitionStampsApproval(t *testing.T) {
	actor := uuid.New()
	now := time.Now().UTC()
	req := &ItemRequest{Status: StatusPending}

	applyTransition(req, TransitionInput{Target: StatusApproved, Actor: actor}, now)

	assert.Equal(t, StatusApproved, req.Status)
	require.NotNil(t, req.ApprovedBy)
	assert.Equal(t, actor, *req.ApprovedBy)
	require.NotNil(t, req.ApprovedAt)
	assert.Equal(t, now, *req.ApprovedAt)
	assert.Nil(t, req.RejectedAt)
	assert.Nil(t, req.FulfillmentDate)
}

func TestApplyTransitionStampsRejection(t *testing.T) {
	actor := uuid.New()
	now := time.Now().UTC()
	req := &ItemRequest{Status: StatusPending}

	applyTransition(req, TransitionInput{Target: StatusRejected, Actor: actor, Reason: "duplicate"}, now)

	assert.Equal(t, StatusRejected, req.Status)
	require.NotNil(t, req.RejectedBy)
	assert.Equal(t, actor, *req.RejectedBy)
	require.NotNil(t, req.RejectionReason)
	assert.Equal(t, "duplicate", *req.RejectionReason)
	assert.Nil(t, req.ApprovedAt)
}

func TestApplyTransitionStampsFulfillment(t *testing.T) {
	now := time.Now().UTC()
	req := &ItemRequest{Status: StatusApproved}

	applyTransition(req, TransitionInput{Target: StatusFulfilled, Actor: uuid.New()}, now)

	assert.Equal(t, StatusFulfilled, req.Status)
	require.NotNil(t, req.FulfillmentDate)
	assert.Equal(t, now, *req.FulfillmentDate)
}

// Random transition sequences can never break the lifecycle invariants:
// fulfilled is reached only from approved, terminal states accept nothing,
// and at most one of the approval/rejection stamps is ever set.
func TestTransitionSequenceInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		req := &ItemRequest{Status: StatusPending}

		steps := rapid.IntRange(1, 12).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			target := rapid.SampledFrom(allStatuses).Draw(t, "target")
			in := TransitionInput{Target: target, Actor: uuid.New(), Reason: "because"}

			before := req.Status
			err := validateTransition(req.Status, in)
			if err != nil {
				if before == req.Status && (errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrValidation)) {
					continue
				}
				t.Fatalf("unexpected error %v", err)
			}

			applyTransition(req, in, time.Now().UTC())

			if req.Status == StatusFulfilled && before != StatusApproved {
				t.Fatalf("fulfilled reached from %s", before)
			}
			if before == StatusRejected || before == StatusFulfilled {
				t.Fatalf("transition out of terminal state %s", before)
			}
			if req.ApprovedAt != nil && req.RejectedAt != nil {
				t.Fatalf("both approval and rejection stamps set")
			}
			if target == before {
				t.Fatalf("self-transition %s accepted", target)
			}
		}
	})
}
