package client

import "time"

// ApprovalRequestRef is the gateway's view of an approval request. The quotes
// service references it but never owns it — the gateway creates, expires and
// decides requests.
type ApprovalRequestRef struct {
	ID           string     `json:"id"`
	QuoteID      string     `json:"quote_id"`
	RequiredRole string     `json:"required_role"`
	Status       string     `json:"status"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// CreateApprovalRequestResponse is the gateway's answer to a create call.
// Success is authoritative: the gateway performed its own server-side policy
// and permission checks before answering.
type CreateApprovalRequestResponse struct {
	Success         bool                `json:"success"`
	ApprovalRequest *ApprovalRequestRef `json:"approval_request,omitempty"`
	RequiredRole    string              `json:"required_role,omitempty"`
	ExpiresAt       *time.Time          `json:"expires_at,omitempty"`
	Message         string              `json:"message,omitempty"`
}

// ApprovalDecisionResponse is the gateway's answer to an approve or reject call.
type ApprovalDecisionResponse struct {
	Success bool   `json:"success"`
	QuoteID string `json:"quote_id,omitempty"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}
