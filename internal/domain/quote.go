package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seltra-ai/be-cpq-quotes/internal/errors"
)

// Sales regions recognized by the pricing engine.
const (
	RegionA = "A"
	RegionB = "B"
)

// QuoteStatus is the lifecycle state of a quote.
type QuoteStatus string

const (
	QuoteDraft           QuoteStatus = "draft"
	QuoteCalculated      QuoteStatus = "calculated"
	QuotePendingApproval QuoteStatus = "pending_approval"
	QuoteApproved        QuoteStatus = "approved"
	QuoteRejected        QuoteStatus = "rejected"
	QuoteSent            QuoteStatus = "sent"
	QuoteExpired         QuoteStatus = "expired"
	QuoteConverted       QuoteStatus = "converted"
)

var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteDraft:           {QuoteCalculated, QuotePendingApproval, QuoteExpired},
	QuoteCalculated:      {QuoteDraft, QuotePendingApproval, QuoteSent, QuoteExpired},
	QuotePendingApproval: {QuoteApproved, QuoteRejected, QuoteExpired},
	QuoteApproved:        {QuoteSent, QuoteConverted, QuoteExpired},
	QuoteRejected:        {QuoteDraft, QuoteCalculated, QuotePendingApproval, QuoteExpired},
	QuoteSent:            {QuotePendingApproval, QuoteConverted, QuoteExpired},
	QuoteExpired:         {},
	QuoteConverted:       {},
}

// ParseQuoteStatus converts a raw string into a QuoteStatus, case-insensitively.
func ParseQuoteStatus(s string) (QuoteStatus, error) {
	status := QuoteStatus(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := quoteTransitions[status]; !ok {
		return "", errors.InvalidInput("status", fmt.Sprintf("unrecognized quote status %q", s))
	}
	return status, nil
}

// CanTransitionTo reports whether target is a legal next state.
func (s QuoteStatus) CanTransitionTo(target QuoteStatus) bool {
	for _, allowed := range quoteTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsFinal reports whether the quote can never change state again.
func (s QuoteStatus) IsFinal() bool {
	return s == QuoteExpired || s == QuoteConverted
}

func (s QuoteStatus) String() string {
	return string(s)
}

// QuoteItem is one configured line on a quote. Money fields are cents.
type QuoteItem struct {
	ID            string
	QuoteID       string
	LineNumber    int
	ProductCode   string
	Description   string
	Quantity      float64
	UnitCost      int64
	UnitPrice     int64
	FreightAmount int64
	TaxRate       *float64 // percent; nil = untaxed
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// QuoteTotals are the computed monetary totals of a quote. Amounts in cents;
// TotalMarginPercent rounded to two decimal places.
type QuoteTotals struct {
	Subtotal           int64   `json:"subtotal"`
	TotalCost          int64   `json:"total_cost"`
	TotalTax           int64   `json:"total_tax"`
	TotalFreight       int64   `json:"total_freight"`
	TotalOffered       int64   `json:"total_offered"`
	TotalMarginPercent float64 `json:"total_margin_percent"`
}

// Quote is the aggregate root. Its status is only ever changed through the
// methods below, which enforce the transition table.
type Quote struct {
	ID            string
	QuoteNumber   string
	CustomerName  string
	Region        string
	Status        QuoteStatus
	CreatedBy     string
	Items         []*QuoteItem
	Totals        QuoteTotals
	ApprovedBy    *string
	ApprovedAt    *time.Time
	ApprovalNotes *string
	CreatedAt     time.Time
	UpdatedBy     *string
	UpdatedAt     time.Time
}

func (q *Quote) transition(target QuoteStatus) error {
	if !q.Status.CanTransitionTo(target) {
		return errors.New(errors.ErrCodeConflict,
			fmt.Sprintf("quote cannot move from %q to %q", q.Status, target))
	}
	q.Status = target
	return nil
}

// RecalculateTotals recomputes the quote's totals from its items.
// Per-line amounts use exact decimal arithmetic and round to whole cents;
// margin percent is (offered - cost) / offered, rounded to 2 decimals.
func (q *Quote) RecalculateTotals() QuoteTotals {
	subtotal := decimal.Zero
	cost := decimal.Zero
	tax := decimal.Zero
	freight := decimal.Zero

	for _, item := range q.Items {
		qty := decimal.NewFromFloat(item.Quantity)
		lineOffered := decimal.NewFromInt(item.UnitPrice).Mul(qty).Round(0)
		lineCost := decimal.NewFromInt(item.UnitCost).Mul(qty).Round(0)

		subtotal = subtotal.Add(lineOffered)
		cost = cost.Add(lineCost)
		freight = freight.Add(decimal.NewFromInt(item.FreightAmount))

		if item.TaxRate != nil {
			lineTax := lineOffered.
				Mul(decimal.NewFromFloat(*item.TaxRate)).
				Div(decimal.NewFromInt(100)).
				Round(0)
			tax = tax.Add(lineTax)
		}
	}

	offered := subtotal.Add(tax).Add(freight)

	marginPercent := 0.0
	if offered.IsPositive() {
		marginPercent, _ = offered.Sub(cost).
			Div(offered).
			Mul(decimal.NewFromInt(100)).
			Round(2).
			Float64()
	}

	q.Totals = QuoteTotals{
		Subtotal:           subtotal.IntPart(),
		TotalCost:          cost.IntPart(),
		TotalTax:           tax.IntPart(),
		TotalFreight:       freight.IntPart(),
		TotalOffered:       offered.IntPart(),
		TotalMarginPercent: marginPercent,
	}
	return q.Totals
}

// MarkCalculated records that totals have been computed for a draft quote.
func (q *Quote) MarkCalculated() error {
	if q.Status == QuoteCalculated {
		return nil
	}
	return q.transition(QuoteCalculated)
}

// RequestApproval moves the quote into pending_approval. Allowed from any
// state with a pending_approval edge (draft, calculated, rejected, sent);
// quotes already pending, approved or in a final state cannot re-enter.
func (q *Quote) RequestApproval() error {
	return q.transition(QuotePendingApproval)
}

// Approve marks a pending quote approved and records who approved it.
func (q *Quote) Approve(approvedBy string, notes *string) error {
	if err := q.transition(QuoteApproved); err != nil {
		return err
	}
	now := time.Now()
	q.ApprovedBy = &approvedBy
	q.ApprovedAt = &now
	q.ApprovalNotes = notes
	return nil
}

// Reject marks a pending quote rejected, keeping the justification.
func (q *Quote) Reject(rejectedBy string, reason *string) error {
	if err := q.transition(QuoteRejected); err != nil {
		return err
	}
	q.UpdatedBy = &rejectedBy
	q.ApprovalNotes = reason
	return nil
}

// MarkSent records that the quote was delivered to the customer.
func (q *Quote) MarkSent() error {
	return q.transition(QuoteSent)
}

// MarkExpired retires the quote.
func (q *Quote) MarkExpired() error {
	return q.transition(QuoteExpired)
}

// MarkConverted records that the quote became an order.
func (q *Quote) MarkConverted() error {
	return q.transition(QuoteConverted)
}
