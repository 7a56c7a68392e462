package domain

import (
	"sort"
	"time"
)

// ApprovalRule maps a margin band to the role that must approve quotes whose
// margin falls inside it. MarginMin is inclusive, MarginMax exclusive; a nil
// bound is open-ended (nil min sorts first, as negative infinity).
//
// The rule set here is advisory: it powers offline previews and logging. The
// approval gateway's server-side policy is the system of record — see
// ApprovalWorkflowService.
type ApprovalRule struct {
	ID           string
	MarginMin    *float64
	MarginMax    *float64
	RequiredRole string
	IsActive     bool
	Priority     int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// matches reports whether marginPercent falls inside the rule's band.
func (r ApprovalRule) matches(marginPercent float64) bool {
	if r.MarginMin != nil && marginPercent < *r.MarginMin {
		return false
	}
	if r.MarginMax != nil && marginPercent >= *r.MarginMax {
		return false
	}
	return true
}

// ResolveRequiredRole returns the role required to approve a quote with the
// given margin, evaluating active rules ascending by MarginMin (nil first,
// ties kept in insertion order). Returns ok=false when no rule matches; the
// caller decides what that means — this function imposes no fallback.
func ResolveRequiredRole(marginPercent float64, rules []ApprovalRule) (role string, ok bool) {
	active := make([]ApprovalRule, 0, len(rules))
	for _, r := range rules {
		if r.IsActive {
			active = append(active, r)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		a, b := active[i].MarginMin, active[j].MarginMin
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return true
		case b == nil:
			return false
		default:
			return *a < *b
		}
	})

	for _, r := range active {
		if r.matches(marginPercent) {
			return r.RequiredRole, true
		}
	}
	return "", false
}
