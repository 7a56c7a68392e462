package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seltra-ai/be-cpq-quotes/internal/errors"
)

func TestApprovalStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    ApprovalStatus
		to      ApprovalStatus
		allowed bool
	}{
		{"pending to approved", ApprovalPending, ApprovalApproved, true},
		{"pending to rejected", ApprovalPending, ApprovalRejected, true},
		{"pending to expired", ApprovalPending, ApprovalExpired, true},
		{"pending to escalated", ApprovalPending, ApprovalEscalated, true},
		{"escalated to approved", ApprovalEscalated, ApprovalApproved, true},
		{"escalated to rejected", ApprovalEscalated, ApprovalRejected, true},
		{"escalated to expired", ApprovalEscalated, ApprovalExpired, true},
		{"escalated back to pending", ApprovalEscalated, ApprovalPending, false},
		{"approved is terminal", ApprovalApproved, ApprovalRejected, false},
		{"rejected is terminal", ApprovalRejected, ApprovalApproved, false},
		{"expired is terminal", ApprovalExpired, ApprovalPending, false},
		{"self transition not allowed", ApprovalPending, ApprovalPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))

			next, err := tt.from.TransitionTo(tt.to)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, next)
			} else {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeBusinessRule, errors.CodeOf(err))
				assert.Equal(t, tt.from, next)
			}
		})
	}
}

func TestApprovalStatusTerminalStatesHaveNoOutgoingEdges(t *testing.T) {
	all := []ApprovalStatus{
		ApprovalPending, ApprovalApproved, ApprovalRejected, ApprovalExpired, ApprovalEscalated,
	}
	for _, terminal := range []ApprovalStatus{ApprovalApproved, ApprovalRejected, ApprovalExpired} {
		assert.True(t, terminal.IsFinal())
		for _, target := range all {
			assert.False(t, terminal.CanTransitionTo(target),
				"%s should not transition to %s", terminal, target)
		}
	}

	assert.False(t, ApprovalPending.IsFinal())
	assert.False(t, ApprovalEscalated.IsFinal())
}

func TestApprovalStatusCanBeProcessed(t *testing.T) {
	assert.True(t, ApprovalPending.CanBeProcessed())
	assert.True(t, ApprovalEscalated.CanBeProcessed())
	assert.False(t, ApprovalApproved.CanBeProcessed())
	assert.False(t, ApprovalRejected.CanBeProcessed())
	assert.False(t, ApprovalExpired.CanBeProcessed())
}

func TestParseApprovalStatus(t *testing.T) {
	status, err := ParseApprovalStatus("PENDING")
	require.NoError(t, err)
	assert.Equal(t, ApprovalPending, status)

	status, err = ParseApprovalStatus("  Escalated ")
	require.NoError(t, err)
	assert.Equal(t, ApprovalEscalated, status)

	_, err = ParseApprovalStatus("cancelled")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeValidation, errors.CodeOf(err))

	_, err = ParseApprovalStatus("")
	require.Error(t, err)
}

func TestNewApprovalStatus(t *testing.T) {
	assert.Equal(t, ApprovalPending, NewApprovalStatus())
}
