package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestResolveRequiredRole(t *testing.T) {
	rules := []ApprovalRule{
		{ID: "r3", MarginMin: floatPtr(10), MarginMax: nil, RequiredRole: "coordenador", IsActive: true},
		{ID: "r1", MarginMin: nil, MarginMax: floatPtr(0), RequiredRole: "diretor", IsActive: true},
		{ID: "r2", MarginMin: floatPtr(0), MarginMax: floatPtr(10), RequiredRole: "gerente", IsActive: true},
	}

	tests := []struct {
		name   string
		margin float64
		role   string
		ok     bool
	}{
		{"negative margin hits open lower band", -5, "diretor", true},
		{"zero is inclusive lower bound of middle band", 0, "gerente", true},
		{"inside middle band", 5, "gerente", true},
		{"upper bound is exclusive", 10, "coordenador", true},
		{"inside open upper band", 20, "coordenador", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, ok := ResolveRequiredRole(tt.margin, rules)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.role, role)
		})
	}
}

func TestResolveRequiredRoleSkipsInactiveRules(t *testing.T) {
	rules := []ApprovalRule{
		{ID: "r1", MarginMin: floatPtr(0), MarginMax: floatPtr(10), RequiredRole: "gerente", IsActive: false},
		{ID: "r2", MarginMin: floatPtr(0), MarginMax: nil, RequiredRole: "diretor", IsActive: true},
	}

	role, ok := ResolveRequiredRole(5, rules)
	require.True(t, ok)
	assert.Equal(t, "diretor", role)
}

func TestResolveRequiredRoleNoMatch(t *testing.T) {
	rules := []ApprovalRule{
		{ID: "r1", MarginMin: floatPtr(0), MarginMax: floatPtr(10), RequiredRole: "gerente", IsActive: true},
	}

	role, ok := ResolveRequiredRole(-1, rules)
	assert.False(t, ok)
	assert.Empty(t, role)

	role, ok = ResolveRequiredRole(10, rules)
	assert.False(t, ok)
	assert.Empty(t, role)

	role, ok = ResolveRequiredRole(5, nil)
	assert.False(t, ok)
	assert.Empty(t, role)
}

func TestResolveRequiredRoleOverlappingBandsStableOrder(t *testing.T) {
	// Two active rules with the same MarginMin: insertion order wins.
	rules := []ApprovalRule{
		{ID: "first", MarginMin: floatPtr(0), MarginMax: nil, RequiredRole: "gerente", IsActive: true},
		{ID: "second", MarginMin: floatPtr(0), MarginMax: nil, RequiredRole: "diretor", IsActive: true},
	}

	role, ok := ResolveRequiredRole(3, rules)
	require.True(t, ok)
	assert.Equal(t, "gerente", role)
}

func TestResolveRequiredRoleNilMinSortsFirst(t *testing.T) {
	// The open-lower-bound rule must be evaluated before bounded bands even
	// when listed last.
	rules := []ApprovalRule{
		{ID: "bounded", MarginMin: floatPtr(-100), MarginMax: nil, RequiredRole: "gerente", IsActive: true},
		{ID: "open", MarginMin: nil, MarginMax: nil, RequiredRole: "diretor", IsActive: true},
	}

	role, ok := ResolveRequiredRole(-50, rules)
	require.True(t, ok)
	assert.Equal(t, "diretor", role)
}
