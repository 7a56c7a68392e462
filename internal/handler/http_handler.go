package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/seltra-ai/be-cpq-quotes/internal/domain"
	"github.com/seltra-ai/be-cpq-quotes/internal/errors"
	"github.com/seltra-ai/be-cpq-quotes/internal/logger"
	"github.com/seltra-ai/be-cpq-quotes/internal/repository"
	"github.com/seltra-ai/be-cpq-quotes/internal/service"
)

// HTTPHandler handles HTTP requests.
type HTTPHandler struct {
	quotes    *service.QuoteService
	workflow  *service.ApprovalWorkflowService
	rulesRepo *repository.ApprovalRulesRepository
	log       *logger.Logger
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(
	quotes *service.QuoteService,
	workflow *service.ApprovalWorkflowService,
	rulesRepo *repository.ApprovalRulesRepository,
	log *logger.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		quotes:    quotes,
		workflow:  workflow,
		rulesRepo: rulesRepo,
		log:       log,
	}
}

// ── request/response DTOs ─────────────────────────────────────────────────────

type quoteItemDTO struct {
	LineNumber    int      `json:"line_number"`
	ProductCode   string   `json:"product_code"`
	Description   string   `json:"description"`
	Quantity      float64  `json:"quantity"`
	UnitCost      int64    `json:"unit_cost"`
	UnitPrice     int64    `json:"unit_price"`
	FreightAmount int64    `json:"freight_amount"`
	TaxRate       *float64 `json:"tax_rate,omitempty"`
}

type createQuoteDTO struct {
	QuoteNumber  string         `json:"quote_number"`
	CustomerName string         `json:"customer_name"`
	Region       string         `json:"region"`
	CreatedBy    string         `json:"created_by"`
	Items        []quoteItemDTO `json:"items"`
}

type requestApprovalDTO struct {
	QuoteID string  `json:"quote_id"`
	UserID  string  `json:"user_id"`
	Reason  *string `json:"reason,omitempty"`
}

type processApprovalDTO struct {
	RequestID string  `json:"request_id"`
	Action    string  `json:"action"`
	UserID    string  `json:"user_id"`
	Comments  *string `json:"comments,omitempty"`
}

type quoteActionDTO struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}

// ── quote endpoints ───────────────────────────────────────────────────────────

// CreateQuote handles POST /api/v1/quotes.
func (h *HTTPHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var dto createQuoteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.writeError(w, errors.InvalidInput("body", "invalid request body"))
		return
	}

	req := &service.CreateQuoteRequest{
		QuoteNumber:  dto.QuoteNumber,
		CustomerName: dto.CustomerName,
		Region:       dto.Region,
		CreatedBy:    dto.CreatedBy,
		Items:        make([]*service.QuoteItemRequest, 0, len(dto.Items)),
	}
	for _, item := range dto.Items {
		req.Items = append(req.Items, &service.QuoteItemRequest{
			LineNumber:    item.LineNumber,
			ProductCode:   item.ProductCode,
			Description:   item.Description,
			Quantity:      item.Quantity,
			UnitCost:      item.UnitCost,
			UnitPrice:     item.UnitPrice,
			FreightAmount: item.FreightAmount,
			TaxRate:       item.TaxRate,
		})
	}

	quote, err := h.quotes.CreateQuote(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, quote)
}

// GetQuote handles GET /api/v1/quotes/get?id=.
func (h *HTTPHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		h.writeError(w, errors.InvalidInput("id", "quote id is required"))
		return
	}

	quote, err := h.quotes.GetQuote(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, quote)
}

// ListQuotes handles GET /api/v1/quotes.
func (h *HTTPHandler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	var statusPtr, customerPtr *string
	if status := r.URL.Query().Get("status"); status != "" {
		statusPtr = &status
	}
	if customer := r.URL.Query().Get("customer"); customer != "" {
		customerPtr = &customer
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}

	quotes, total, err := h.quotes.ListQuotes(r.Context(), statusPtr, customerPtr, page, pageSize)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"quotes":   quotes,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// CalculateQuote handles POST /api/v1/quotes/calculate.
func (h *HTTPHandler) CalculateQuote(w http.ResponseWriter, r *http.Request) {
	var dto quoteActionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.writeError(w, errors.InvalidInput("body", "invalid request body"))
		return
	}

	calc, err := h.quotes.CalculateQuote(r.Context(), dto.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, calc)
}

// SendQuote handles POST /api/v1/quotes/send.
func (h *HTTPHandler) SendQuote(w http.ResponseWriter, r *http.Request) {
	h.quoteAction(w, r, h.quotes.SendQuote)
}

// ConvertQuote handles POST /api/v1/quotes/convert.
func (h *HTTPHandler) ConvertQuote(w http.ResponseWriter, r *http.Request) {
	h.quoteAction(w, r, h.quotes.ConvertQuote)
}

// ExpireQuote handles POST /api/v1/quotes/expire.
func (h *HTTPHandler) ExpireQuote(w http.ResponseWriter, r *http.Request) {
	h.quoteAction(w, r, h.quotes.ExpireQuote)
}

// ── approval endpoints ────────────────────────────────────────────────────────

// RequestApproval handles POST /api/v1/quotes/request-approval.
func (h *HTTPHandler) RequestApproval(w http.ResponseWriter, r *http.Request) {
	var dto requestApprovalDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.writeError(w, errors.InvalidInput("body", "invalid request body"))
		return
	}

	result, err := h.workflow.RequestApproval(r.Context(), dto.QuoteID, dto.UserID, dto.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// ProcessApproval handles POST /api/v1/quotes/process-approval.
func (h *HTTPHandler) ProcessApproval(w http.ResponseWriter, r *http.Request) {
	var dto processApprovalDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.writeError(w, errors.InvalidInput("body", "invalid request body"))
		return
	}

	result, err := h.workflow.ProcessApproval(r.Context(), dto.RequestID, dto.Action, dto.UserID, dto.Comments)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// ListApprovalRules handles GET /api/v1/approval-rules.
func (h *HTTPHandler) ListApprovalRules(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	rules, err := h.rulesRepo.List(r.Context(), activeOnly)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"rules": rules})
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (h *HTTPHandler) quoteAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, id, actedBy string) (*domain.Quote, error),
) {
	var dto quoteActionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.writeError(w, errors.InvalidInput("body", "invalid request body"))
		return
	}

	quote, err := action(r.Context(), dto.ID, dto.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, quote)
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Warn().Err(err).Msg("Failed to encode response body")
	}
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("Request failed")
	}

	message := err.Error()
	if e, ok := err.(*errors.Error); ok {
		message = e.Message
	}

	h.writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    errors.CodeOf(err),
			"message": message,
		},
	})
}
