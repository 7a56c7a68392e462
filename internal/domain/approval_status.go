package domain

import (
	"fmt"
	"strings"

	"github.com/seltra-ai/be-cpq-quotes/internal/errors"
)

// ApprovalStatus is the lifecycle state of an approval request.
//
// Transitions are fixed by approvalTransitions below; approved, rejected and
// expired are terminal. A status value is never mutated in place — TransitionTo
// returns the new value.
type ApprovalStatus string

const (
	ApprovalPending   ApprovalStatus = "pending"
	ApprovalApproved  ApprovalStatus = "approved"
	ApprovalRejected  ApprovalStatus = "rejected"
	ApprovalExpired   ApprovalStatus = "expired"
	ApprovalEscalated ApprovalStatus = "escalated"
)

var approvalTransitions = map[ApprovalStatus][]ApprovalStatus{
	ApprovalPending:   {ApprovalApproved, ApprovalRejected, ApprovalExpired, ApprovalEscalated},
	ApprovalEscalated: {ApprovalApproved, ApprovalRejected, ApprovalExpired},
	ApprovalApproved:  {},
	ApprovalRejected:  {},
	ApprovalExpired:   {},
}

// ParseApprovalStatus converts a raw string into an ApprovalStatus,
// case-insensitively. Unknown values fail with a validation error rather than
// leaking through as an unchecked status.
func ParseApprovalStatus(s string) (ApprovalStatus, error) {
	status := ApprovalStatus(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := approvalTransitions[status]; !ok {
		return "", errors.InvalidInput("status", fmt.Sprintf("unrecognized approval status %q", s))
	}
	return status, nil
}

// NewApprovalStatus returns the initial status of a freshly created request.
func NewApprovalStatus() ApprovalStatus {
	return ApprovalPending
}

// CanTransitionTo reports whether target is a legal next state.
func (s ApprovalStatus) CanTransitionTo(target ApprovalStatus) bool {
	for _, allowed := range approvalTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo returns the new status, or a business-rule error when the edge
// is not in the transition table.
func (s ApprovalStatus) TransitionTo(target ApprovalStatus) (ApprovalStatus, error) {
	if !s.CanTransitionTo(target) {
		return s, errors.BusinessRule(
			fmt.Sprintf("approval status cannot transition from %q to %q", s, target))
	}
	return target, nil
}

// CanBeProcessed reports whether approve/reject may act on this status.
// Only pending and escalated requests are actionable.
func (s ApprovalStatus) CanBeProcessed() bool {
	return s == ApprovalPending || s == ApprovalEscalated
}

// IsFinal reports whether the status is terminal.
func (s ApprovalStatus) IsFinal() bool {
	return s == ApprovalApproved || s == ApprovalRejected || s == ApprovalExpired
}

func (s ApprovalStatus) String() string {
	return string(s)
}
