package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/seltra-ai/be-cpq-quotes/internal/client"
	"github.com/seltra-ai/be-cpq-quotes/internal/domain"
	"github.com/seltra-ai/be-cpq-quotes/internal/errors"
	"github.com/seltra-ai/be-cpq-quotes/internal/logger"
	"github.com/seltra-ai/be-cpq-quotes/internal/repository"
)

// Approval actions accepted by ProcessApproval.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// defaultEscalationRole is substituted when no advisory rule matches a margin:
// an unmatched margin escalates to the highest authority rather than slipping
// through unapproved.
const defaultEscalationRole = "diretor"

// ApprovalWorkflowService orchestrates the request/approve/reject lifecycle.
//
// The gateway is the source of truth: it validates permissions and commits
// decisions. Local quote state is a best-effort cache reconciled on the next
// read — the local rule set and identity pre-checks are advisory only.
type ApprovalWorkflowService struct {
	quotes   QuoteStore
	rules    ApprovalRuleSource
	pricing  PricingConfigSource
	audit    AuditLog
	gateway  ApprovalGateway
	identity IdentityClientInterface // optional; nil skips the local pre-check
	notifier Notifier                // optional; nil disables events
	log      *logger.Logger
}

// NewApprovalWorkflowService creates a new ApprovalWorkflowService.
func NewApprovalWorkflowService(
	quotes QuoteStore,
	rules ApprovalRuleSource,
	pricing PricingConfigSource,
	audit AuditLog,
	gateway ApprovalGateway,
	identity IdentityClientInterface,
	notifier Notifier,
	log *logger.Logger,
) *ApprovalWorkflowService {
	return &ApprovalWorkflowService{
		quotes:   quotes,
		rules:    rules,
		pricing:  pricing,
		audit:    audit,
		gateway:  gateway,
		identity: identity,
		notifier: notifier,
		log:      log,
	}
}

// RequestApprovalResult is returned by RequestApproval.
type RequestApprovalResult struct {
	RequestID    string                  `json:"request_id"`
	RequiredRole string                  `json:"required_role"`
	ExpiresAt    *time.Time              `json:"expires_at,omitempty"`
	Assessment   domain.MarginAssessment `json:"assessment"`
	QuoteStatus  domain.QuoteStatus      `json:"quote_status"`
}

// ── Request ───────────────────────────────────────────────────────────────────

// RequestApproval opens an approval request for a quote. Only the quote's
// creator may request approval. The quote's totals are recomputed, the
// gateway creates the request (its server-side policy decides the required
// role), and only on gateway success does the quote move to pending_approval.
// A gateway failure leaves local state untouched.
func (s *ApprovalWorkflowService) RequestApproval(
	ctx context.Context,
	quoteID, requestingUserID string,
	reason *string,
) (*RequestApprovalResult, error) {
	quote, err := s.quotes.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if quote.CreatedBy != requestingUserID {
		return nil, errors.BusinessRule("only the quote creator can request approval")
	}
	if !quote.Status.CanTransitionTo(domain.QuotePendingApproval) {
		return nil, errors.New(errors.ErrCodeConflict,
			fmt.Sprintf("quote with status %q cannot be submitted for approval", quote.Status))
	}

	totals := quote.RecalculateTotals()

	cfg, err := s.pricing.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	assessment := domain.ClassifyMargin(totals.TotalMarginPercent, cfg)

	advisoryRole := s.resolveAdvisoryRole(ctx, totals.TotalMarginPercent)

	resp, err := s.gateway.CreateApprovalRequest(ctx, quote.ID, totals.TotalMarginPercent, totals.TotalOffered, reason)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "approval gateway unreachable")
	}
	if !resp.Success {
		return nil, errors.BusinessRule(gatewayMessage(resp.Message, "approval request was refused by the gateway"))
	}

	requestID := ""
	if resp.ApprovalRequest != nil {
		requestID = resp.ApprovalRequest.ID
	}

	// The gateway's role decision is authoritative; the locally resolved one
	// is only a fallback for older gateway versions that omit it.
	requiredRole := resp.RequiredRole
	if requiredRole == "" {
		requiredRole = advisoryRole
	}

	statusBefore := string(quote.Status)
	if err := quote.RequestApproval(); err != nil {
		return nil, err
	}
	quote.UpdatedBy = &requestingUserID
	if err := s.quotes.Save(ctx, quote); err != nil {
		return nil, err
	}

	s.appendAudit(ctx, &repository.QuoteAuditEntry{
		QuoteID:           quote.ID,
		ApprovalRequestID: optional(requestID),
		Action:            "approval_requested",
		PerformedBy:       requestingUserID,
		QuoteStatusBefore: &statusBefore,
		QuoteStatusAfter:  optional(string(quote.Status)),
		Metadata: map[string]interface{}{
			"margin_percent": totals.TotalMarginPercent,
			"total_offered":  totals.TotalOffered,
			"tier":           string(assessment.Tier),
			"required_role":  requiredRole,
		},
	})

	s.notify(ctx, "quote_submitted", quote.ID, requestingUserID, map[string]interface{}{
		"required_role":  requiredRole,
		"margin_percent": totals.TotalMarginPercent,
	})

	s.log.Info().
		Str("quote_id", quote.ID).
		Str("request_id", requestID).
		Str("required_role", requiredRole).
		Float64("margin_percent", totals.TotalMarginPercent).
		Str("tier", string(assessment.Tier)).
		Bool("is_authorized", assessment.IsAuthorized).
		Msg("Approval requested")

	return &RequestApprovalResult{
		RequestID:    requestID,
		RequiredRole: requiredRole,
		ExpiresAt:    resp.ExpiresAt,
		Assessment:   assessment,
		QuoteStatus:  quote.Status,
	}, nil
}

// ── Process ───────────────────────────────────────────────────────────────────

// ProcessApprovalResult is returned by ProcessApproval.
type ProcessApprovalResult struct {
	Success     bool                  `json:"success"`
	QuoteID     string                `json:"quote_id,omitempty"`
	NewStatus   domain.ApprovalStatus `json:"new_status"`
	QuoteStatus domain.QuoteStatus    `json:"quote_status,omitempty"`
}

// ProcessApproval applies an approve or reject decision to a request.
// Rejections must carry a justification; that is validated before any remote
// call. The gateway performs the authorization and state checks — on success
// the local quote is synced, and a missing local quote is logged, not raised,
// since the authoritative change already happened remotely. Re-processing an
// already-terminal request never flips the quote's status a second time.
func (s *ApprovalWorkflowService) ProcessApproval(
	ctx context.Context,
	requestID, action, actingUserID string,
	comments *string,
) (*ProcessApprovalResult, error) {
	if action != ActionApprove && action != ActionReject {
		return nil, errors.InvalidInput("action", fmt.Sprintf("must be %q or %q", ActionApprove, ActionReject))
	}
	if action == ActionReject && (comments == nil || strings.TrimSpace(*comments) == "") {
		return nil, errors.BusinessRule("rejection requires a justification comment")
	}

	// Advisory pre-checks against the gateway's current view. Read failures
	// are soft — the decision endpoints re-validate authoritatively.
	settled, err := s.precheckRequest(ctx, requestID, actingUserID)
	if err != nil {
		return nil, err
	}
	if settled != nil {
		return settled, nil
	}

	var (
		resp  *client.ApprovalDecisionResponse
		gwErr error
	)
	if action == ActionApprove {
		resp, gwErr = s.gateway.ApproveRequest(ctx, requestID, comments)
	} else {
		resp, gwErr = s.gateway.RejectRequest(ctx, requestID, *comments)
	}
	if gwErr != nil {
		return nil, errors.Wrap(gwErr, errors.ErrCodeInternal, "approval gateway unreachable")
	}
	if !resp.Success {
		return nil, errors.BusinessRule(gatewayMessage(resp.Message, "approval decision was refused by the gateway"))
	}

	newStatus, parseErr := domain.ParseApprovalStatus(resp.Status)
	if parseErr != nil {
		// Unknown status from the gateway; keep the raw decision outcome.
		s.log.Warn().Str("status", resp.Status).Msg("gateway returned unrecognized approval status")
		newStatus = domain.ApprovalPending
	}

	result := &ProcessApprovalResult{
		Success:   true,
		QuoteID:   resp.QuoteID,
		NewStatus: newStatus,
	}

	if resp.QuoteID == "" {
		return result, nil
	}

	quoteStatus, syncErr := s.syncQuote(ctx, resp.QuoteID, requestID, action, actingUserID, comments, newStatus)
	if syncErr != nil {
		// Non-fatal by design: the gateway already committed the decision.
		s.log.Warn().Err(syncErr).
			Str("quote_id", resp.QuoteID).
			Str("request_id", requestID).
			Msg("Approval committed remotely but local quote sync failed")
	} else {
		result.QuoteStatus = quoteStatus
	}

	return result, nil
}

// precheckRequest implements the advisory checks before the remote decision:
// an already-terminal request short-circuits as an idempotent no-op, and a
// demonstrable role mismatch surfaces Unauthorized before the call. Gateway
// or identity read failures skip the pre-check entirely — the decision
// endpoints enforce everything server-side regardless.
func (s *ApprovalWorkflowService) precheckRequest(ctx context.Context, requestID, actingUserID string) (*ProcessApprovalResult, error) {
	req, err := s.gateway.GetApprovalRequest(ctx, requestID)
	if err != nil || req == nil {
		return nil, nil
	}

	status, parseErr := domain.ParseApprovalStatus(req.Status)
	if parseErr == nil && !status.CanBeProcessed() {
		s.log.Info().
			Str("request_id", requestID).
			Str("status", string(status)).
			Msg("Approval request already settled; skipping")
		return &ProcessApprovalResult{
			Success:   true,
			QuoteID:   req.QuoteID,
			NewStatus: status,
		}, nil
	}

	if s.identity != nil && req.RequiredRole != "" {
		roles, rolesErr := s.identity.GetUserRoles(ctx, actingUserID)
		if rolesErr != nil {
			s.log.Debug().Err(rolesErr).Msg("Identity lookup failed; deferring authorization to the gateway")
			return nil, nil
		}
		if !containsRole(roles, req.RequiredRole) {
			return nil, errors.Unauthorized(
				fmt.Sprintf("acting user does not hold required role %q", req.RequiredRole))
		}
	}

	return nil, nil
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// syncQuote applies the gateway's committed decision to the local quote.
func (s *ApprovalWorkflowService) syncQuote(
	ctx context.Context,
	quoteID, requestID, action, actingUserID string,
	comments *string,
	newStatus domain.ApprovalStatus,
) (domain.QuoteStatus, error) {
	quote, err := s.quotes.FindByID(ctx, quoteID)
	if err != nil {
		return "", err
	}

	// An escalated outcome keeps the quote pending under a higher role.
	if newStatus == domain.ApprovalEscalated {
		s.notify(ctx, "quote_escalated", quote.ID, actingUserID, nil)
		return quote.Status, nil
	}

	var target domain.QuoteStatus
	switch action {
	case ActionApprove:
		target = domain.QuoteApproved
	case ActionReject:
		target = domain.QuoteRejected
	}

	// Idempotence: the quote already reflects this decision.
	if quote.Status == target {
		s.log.Debug().
			Str("quote_id", quote.ID).
			Str("status", string(quote.Status)).
			Msg("Quote already reflects the approval decision")
		return quote.Status, nil
	}

	statusBefore := string(quote.Status)
	if action == ActionApprove {
		err = quote.Approve(actingUserID, comments)
	} else {
		err = quote.Reject(actingUserID, comments)
	}
	if err != nil {
		return "", err
	}

	if err := s.quotes.Save(ctx, quote); err != nil {
		return "", err
	}

	auditAction := "approved"
	eventType := "quote_approved"
	if action == ActionReject {
		auditAction = "rejected"
		eventType = "quote_rejected"
	}

	s.appendAudit(ctx, &repository.QuoteAuditEntry{
		QuoteID:           quote.ID,
		ApprovalRequestID: optional(requestID),
		Action:            auditAction,
		PerformedBy:       actingUserID,
		QuoteStatusBefore: &statusBefore,
		QuoteStatusAfter:  optional(string(quote.Status)),
		Metadata:          map[string]interface{}{"comments": derefOr(comments, "")},
	})
	s.notify(ctx, eventType, quote.ID, actingUserID, nil)

	s.log.Info().
		Str("quote_id", quote.ID).
		Str("request_id", requestID).
		Str("action", action).
		Str("acted_by", actingUserID).
		Msg("Approval decision applied")

	return quote.Status, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// resolveAdvisoryRole runs the local rule set for preview/logging purposes.
// No-match escalates to the highest authority. Rule load failures fall back
// the same way — the gateway's decision is what actually counts.
func (s *ApprovalWorkflowService) resolveAdvisoryRole(ctx context.Context, marginPercent float64) string {
	rules, err := s.rules.ListActive(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Could not load approval rules; using escalation fallback")
		return defaultEscalationRole
	}
	role, ok := domain.ResolveRequiredRole(marginPercent, rules)
	if !ok {
		return defaultEscalationRole
	}
	return role
}

// appendAudit writes an audit entry and logs a warning on failure (never returns error).
func (s *ApprovalWorkflowService) appendAudit(ctx context.Context, entry *repository.QuoteAuditEntry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.log.Warn().Err(err).
			Str("quote_id", entry.QuoteID).
			Str("action", entry.Action).
			Msg("Failed to write audit log entry")
	}
}

func (s *ApprovalWorkflowService) notify(ctx context.Context, eventType, quoteID, actorID string, payload map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.PublishQuoteEvent(ctx, eventType, quoteID, actorID, payload)
}

func gatewayMessage(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
