package service

import (
	"context"
	"strings"

	"github.com/seltra-ai/be-cpq-quotes/internal/domain"
	"github.com/seltra-ai/be-cpq-quotes/internal/errors"
	"github.com/seltra-ai/be-cpq-quotes/internal/logger"
	"github.com/seltra-ai/be-cpq-quotes/internal/repository"
)

// QuoteService handles quote business logic outside the approval workflow.
type QuoteService struct {
	quoteRepo *repository.QuoteRepository
	rules     ApprovalRuleSource
	pricing   PricingConfigSource
	log       *logger.Logger
}

// NewQuoteService creates a new quote service.
func NewQuoteService(
	quoteRepo *repository.QuoteRepository,
	rules ApprovalRuleSource,
	pricing PricingConfigSource,
	log *logger.Logger,
) *QuoteService {
	return &QuoteService{
		quoteRepo: quoteRepo,
		rules:     rules,
		pricing:   pricing,
		log:       log,
	}
}

// CreateQuoteRequest represents a create quote request.
type CreateQuoteRequest struct {
	QuoteNumber  string
	CustomerName string
	Region       string
	Items        []*QuoteItemRequest
	CreatedBy    string
}

// QuoteItemRequest represents one quote line in a create request.
type QuoteItemRequest struct {
	LineNumber    int
	ProductCode   string
	Description   string
	Quantity      float64
	UnitCost      int64
	UnitPrice     int64
	FreightAmount int64
	TaxRate       *float64
}

// CreateQuote validates and creates a new draft quote with computed totals.
func (s *QuoteService) CreateQuote(ctx context.Context, req *CreateQuoteRequest) (*domain.Quote, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, errors.InvalidInput("customer_name", "customer name is required")
	}

	region := strings.ToUpper(strings.TrimSpace(req.Region))
	if region != domain.RegionA && region != domain.RegionB {
		return nil, errors.InvalidInput("region", "region must be A or B")
	}

	if len(req.Items) < 1 {
		return nil, errors.InvalidInput("items", "quote must have at least 1 item")
	}

	quote := &domain.Quote{
		QuoteNumber:  req.QuoteNumber,
		CustomerName: req.CustomerName,
		Region:       region,
		Status:       domain.QuoteDraft,
		CreatedBy:    req.CreatedBy,
		Items:        make([]*domain.QuoteItem, 0, len(req.Items)),
	}

	for _, itemReq := range req.Items {
		if itemReq.Quantity <= 0 {
			return nil, errors.InvalidInput("quantity", "quantity must be positive")
		}
		if itemReq.UnitCost < 0 {
			return nil, errors.InvalidInput("unit_cost", "unit cost cannot be negative")
		}
		if itemReq.UnitPrice < 0 {
			return nil, errors.InvalidInput("unit_price", "unit price cannot be negative")
		}
		if itemReq.FreightAmount < 0 {
			return nil, errors.InvalidInput("freight_amount", "freight amount cannot be negative")
		}
		if itemReq.TaxRate != nil && (*itemReq.TaxRate < 0 || *itemReq.TaxRate > 100) {
			return nil, errors.InvalidInput("tax_rate", "tax rate must be between 0 and 100")
		}

		quote.Items = append(quote.Items, &domain.QuoteItem{
			LineNumber:    itemReq.LineNumber,
			ProductCode:   itemReq.ProductCode,
			Description:   itemReq.Description,
			Quantity:      itemReq.Quantity,
			UnitCost:      itemReq.UnitCost,
			UnitPrice:     itemReq.UnitPrice,
			FreightAmount: itemReq.FreightAmount,
			TaxRate:       itemReq.TaxRate,
		})
	}

	quote.RecalculateTotals()

	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("quote_id", quote.ID).
		Str("quote_number", quote.QuoteNumber).
		Str("customer", quote.CustomerName).
		Int64("total_offered", quote.Totals.TotalOffered).
		Float64("margin_percent", quote.Totals.TotalMarginPercent).
		Int("item_count", len(quote.Items)).
		Msg("Quote created")

	return quote, nil
}

// GetQuote retrieves a quote by ID.
func (s *QuoteService) GetQuote(ctx context.Context, id string) (*domain.Quote, error) {
	return s.quoteRepo.FindByID(ctx, id)
}

// ListQuotes lists quotes with filtering and pagination.
func (s *QuoteService) ListQuotes(ctx context.Context, status, customer *string, page, pageSize int) ([]*domain.Quote, int64, error) {
	offset := (page - 1) * pageSize
	return s.quoteRepo.List(ctx, status, customer, pageSize, offset)
}

// ItemPricing carries the pricing-engine guidance for one quote line.
type ItemPricing struct {
	LineNumber         int   `json:"line_number"`
	SuggestedUnitPrice int64 `json:"suggested_unit_price"`
	MinimumUnitPrice   int64 `json:"minimum_unit_price"`
}

// QuoteCalculation is the result of CalculateQuote.
type QuoteCalculation struct {
	Totals       domain.QuoteTotals      `json:"totals"`
	Assessment   domain.MarginAssessment `json:"assessment"`
	RequiredRole string                  `json:"required_role"`
	ItemPricing  []ItemPricing           `json:"item_pricing"`
}

// CalculateQuote recomputes a quote's totals, classifies its margin against
// the active pricing config and previews which role the local rule set would
// require. The preview is advisory — the gateway decides for real when
// approval is requested.
func (s *QuoteService) CalculateQuote(ctx context.Context, id string) (*QuoteCalculation, error) {
	quote, err := s.quoteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	totals := quote.RecalculateTotals()

	cfg, err := s.pricing.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	assessment := domain.ClassifyMargin(totals.TotalMarginPercent, cfg)

	requiredRole := defaultEscalationRole
	rules, err := s.rules.ListActive(ctx)
	if err == nil {
		if role, ok := domain.ResolveRequiredRole(totals.TotalMarginPercent, rules); ok {
			requiredRole = role
		}
	} else {
		s.log.Warn().Err(err).Msg("Could not load approval rules for calculation preview")
	}

	pricing := make([]ItemPricing, 0, len(quote.Items))
	for _, item := range quote.Items {
		pricing = append(pricing, ItemPricing{
			LineNumber:         item.LineNumber,
			SuggestedUnitPrice: domain.SuggestedUnitPrice(item.UnitCost, quote.Region, cfg),
			MinimumUnitPrice:   domain.MinimumUnitPrice(item.UnitCost, cfg),
		})
	}

	if quote.Status == domain.QuoteDraft {
		if err := quote.MarkCalculated(); err != nil {
			return nil, err
		}
	}
	if err := s.quoteRepo.Save(ctx, quote); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("quote_id", quote.ID).
		Float64("margin_percent", totals.TotalMarginPercent).
		Str("tier", string(assessment.Tier)).
		Bool("is_authorized", assessment.IsAuthorized).
		Str("required_role", requiredRole).
		Msg("Quote calculated")

	return &QuoteCalculation{
		Totals:       totals,
		Assessment:   assessment,
		RequiredRole: requiredRole,
		ItemPricing:  pricing,
	}, nil
}

// SendQuote marks an approved or calculated quote as delivered to the customer.
func (s *QuoteService) SendQuote(ctx context.Context, id, sentBy string) (*domain.Quote, error) {
	return s.applyTransition(ctx, id, sentBy, (*domain.Quote).MarkSent, "Quote sent")
}

// ConvertQuote records that the customer accepted and the quote became an order.
func (s *QuoteService) ConvertQuote(ctx context.Context, id, convertedBy string) (*domain.Quote, error) {
	return s.applyTransition(ctx, id, convertedBy, (*domain.Quote).MarkConverted, "Quote converted")
}

// ExpireQuote retires a quote that is no longer valid.
func (s *QuoteService) ExpireQuote(ctx context.Context, id, expiredBy string) (*domain.Quote, error) {
	return s.applyTransition(ctx, id, expiredBy, (*domain.Quote).MarkExpired, "Quote expired")
}

func (s *QuoteService) applyTransition(
	ctx context.Context,
	id, actedBy string,
	transition func(*domain.Quote) error,
	logMsg string,
) (*domain.Quote, error) {
	quote, err := s.quoteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := transition(quote); err != nil {
		return nil, err
	}
	quote.UpdatedBy = &actedBy
	if err := s.quoteRepo.Save(ctx, quote); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("quote_id", quote.ID).
		Str("status", string(quote.Status)).
		Str("acted_by", actedBy).
		Msg(logMsg)

	return quote, nil
}
