package service

import (
	"context"

	"github.com/seltra-ai/be-cpq-quotes/internal/client"
	"github.com/seltra-ai/be-cpq-quotes/internal/domain"
	"github.com/seltra-ai/be-cpq-quotes/internal/repository"
)

// QuoteStore is the persistence surface the workflow depends on.
// Implemented by repository.QuoteRepository.
type QuoteStore interface {
	FindByID(ctx context.Context, id string) (*domain.Quote, error)
	Save(ctx context.Context, quote *domain.Quote) error
}

// ApprovalRuleSource supplies the active advisory rule set.
// Implemented by repository.ApprovalRulesRepository.
type ApprovalRuleSource interface {
	ListActive(ctx context.Context) ([]domain.ApprovalRule, error)
}

// PricingConfigSource supplies the active pricing thresholds.
// Implemented by repository.PricingConfigRepository.
type PricingConfigSource interface {
	GetActive(ctx context.Context) (domain.PricingEngineConfig, error)
}

// AuditLog appends approval audit entries.
// Implemented by repository.ApprovalAuditRepository.
type AuditLog interface {
	Append(ctx context.Context, entry *repository.QuoteAuditEntry) error
}

// ApprovalGateway is the external authoritative approval service. Its success
// flag and payload are the system of record for every approval decision.
// Implemented by client.ApprovalGatewayClient.
type ApprovalGateway interface {
	CreateApprovalRequest(ctx context.Context, quoteID string, marginPercent float64, offeredAmount int64, reason *string) (*client.CreateApprovalRequestResponse, error)
	GetApprovalRequest(ctx context.Context, requestID string) (*client.ApprovalRequestRef, error)
	ApproveRequest(ctx context.Context, requestID string, comments *string) (*client.ApprovalDecisionResponse, error)
	RejectRequest(ctx context.Context, requestID, comments string) (*client.ApprovalDecisionResponse, error)
}

// IdentityClientInterface resolves user roles for the optional local
// authorization pre-check. Implemented by client.IdentityClient.
type IdentityClientInterface interface {
	GetUserRoles(ctx context.Context, userID string) ([]string, error)
}

// Notifier publishes approval lifecycle events. Publishing is always
// non-fatal. Implemented by client.NotificationPublisher.
type Notifier interface {
	PublishQuoteEvent(ctx context.Context, eventType, quoteID, actorID string, payload map[string]interface{})
}
