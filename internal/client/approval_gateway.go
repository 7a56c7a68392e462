package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/seltra-ai/be-cpq-quotes/internal/httpclient"
)

// ApprovalGatewayClient talks to the platform approvals service, the
// authoritative side of every approval decision. Permission validation and
// the at-most-one-winning-transition guarantee per request live there; this
// client only relays actions and trusts the response.
type ApprovalGatewayClient struct {
	client *httpclient.Client
}

// NewApprovalGatewayClient creates a gateway client for the given base URL.
func NewApprovalGatewayClient(baseURL string, timeout time.Duration) *ApprovalGatewayClient {
	return &ApprovalGatewayClient{
		client: httpclient.NewClientWithTimeout(baseURL, timeout),
	}
}

type createApprovalRequestPayload struct {
	QuoteID       string  `json:"quote_id"`
	MarginPercent float64 `json:"margin_percent"`
	OfferedAmount int64   `json:"offered_amount"`
	Reason        *string `json:"reason,omitempty"`
}

// CreateApprovalRequest asks the gateway to open an approval request for a
// quote. Margin and offered amount are passed so the gateway's own policy
// determines the required role.
func (c *ApprovalGatewayClient) CreateApprovalRequest(
	ctx context.Context,
	quoteID string,
	marginPercent float64,
	offeredAmount int64,
	reason *string,
) (*CreateApprovalRequestResponse, error) {
	payload := createApprovalRequestPayload{
		QuoteID:       quoteID,
		MarginPercent: marginPercent,
		OfferedAmount: offeredAmount,
		Reason:        reason,
	}

	var resp CreateApprovalRequestResponse
	if err := c.client.Post(ctx, "/api/v1/approvals/requests", payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to create approval request: %w", err)
	}
	return &resp, nil
}

// GetApprovalRequest reads the current state of a request. Used for the
// advisory local pre-checks only; the decision endpoints below re-validate.
func (c *ApprovalGatewayClient) GetApprovalRequest(ctx context.Context, requestID string) (*ApprovalRequestRef, error) {
	path := fmt.Sprintf("/api/v1/approvals/requests/get?id=%s", url.QueryEscape(requestID))

	var resp ApprovalRequestRef
	if err := c.client.Get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("failed to get approval request: %w", err)
	}
	return &resp, nil
}

type decisionPayload struct {
	RequestID string  `json:"request_id"`
	Comments  *string `json:"comments,omitempty"`
}

// ApproveRequest submits an approve decision for a request.
func (c *ApprovalGatewayClient) ApproveRequest(ctx context.Context, requestID string, comments *string) (*ApprovalDecisionResponse, error) {
	var resp ApprovalDecisionResponse
	err := c.client.Post(ctx, "/api/v1/approvals/requests/approve",
		decisionPayload{RequestID: requestID, Comments: comments}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to approve request: %w", err)
	}
	return &resp, nil
}

// RejectRequest submits a reject decision. Comments are mandatory; the
// service layer validates that before calling here.
func (c *ApprovalGatewayClient) RejectRequest(ctx context.Context, requestID, comments string) (*ApprovalDecisionResponse, error) {
	var resp ApprovalDecisionResponse
	err := c.client.Post(ctx, "/api/v1/approvals/requests/reject",
		decisionPayload{RequestID: requestID, Comments: &comments}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to reject request: %w", err)
	}
	return &resp, nil
}
