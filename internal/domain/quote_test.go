package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seltra-ai/be-cpq-quotes/internal/errors"
)

func TestRecalculateTotals(t *testing.T) {
	taxRate := 10.0
	quote := &Quote{
		Items: []*QuoteItem{
			{
				LineNumber:    1,
				Quantity:      2,
				UnitCost:      7000,
				UnitPrice:     10000,
				FreightAmount: 500,
				TaxRate:       &taxRate,
			},
			{
				LineNumber: 2,
				Quantity:   1,
				UnitCost:   3000,
				UnitPrice:  4000,
			},
		},
	}

	totals := quote.RecalculateTotals()

	assert.Equal(t, int64(24000), totals.Subtotal)
	assert.Equal(t, int64(17000), totals.TotalCost)
	assert.Equal(t, int64(2000), totals.TotalTax)
	assert.Equal(t, int64(500), totals.TotalFreight)
	assert.Equal(t, int64(26500), totals.TotalOffered)
	// (26500 - 17000) / 26500 * 100 = 35.849...
	assert.Equal(t, 35.85, totals.TotalMarginPercent)
	assert.Equal(t, totals, quote.Totals)
}

func TestRecalculateTotalsEightPercentMargin(t *testing.T) {
	quote := &Quote{
		Items: []*QuoteItem{
			{LineNumber: 1, Quantity: 1, UnitCost: 9200, UnitPrice: 10000},
		},
	}

	totals := quote.RecalculateTotals()

	assert.Equal(t, int64(10000), totals.TotalOffered)
	assert.Equal(t, 8.0, totals.TotalMarginPercent)
}

func TestRecalculateTotalsFractionalQuantityAndTax(t *testing.T) {
	taxRate := 18.0
	quote := &Quote{
		Items: []*QuoteItem{
			{LineNumber: 1, Quantity: 2.5, UnitCost: 300, UnitPrice: 555, TaxRate: &taxRate},
		},
	}

	totals := quote.RecalculateTotals()

	// 2.5 * 555 = 1387.5, rounded per line to 1388; 18% of 1388 = 249.84 -> 250
	assert.Equal(t, int64(1388), totals.Subtotal)
	assert.Equal(t, int64(750), totals.TotalCost)
	assert.Equal(t, int64(250), totals.TotalTax)
	assert.Equal(t, int64(1638), totals.TotalOffered)
}

func TestRecalculateTotalsZeroOffered(t *testing.T) {
	quote := &Quote{
		Items: []*QuoteItem{
			{LineNumber: 1, Quantity: 1, UnitCost: 5000, UnitPrice: 0},
		},
	}

	totals := quote.RecalculateTotals()

	assert.Equal(t, int64(0), totals.TotalOffered)
	assert.Equal(t, 0.0, totals.TotalMarginPercent)
}

func TestRecalculateTotalsNoItems(t *testing.T) {
	quote := &Quote{}
	totals := quote.RecalculateTotals()
	assert.Equal(t, QuoteTotals{}, totals)
}

func TestQuoteStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    QuoteStatus
		to      QuoteStatus
		allowed bool
	}{
		{"draft to calculated", QuoteDraft, QuoteCalculated, true},
		{"draft to pending approval", QuoteDraft, QuotePendingApproval, true},
		{"draft cannot be approved directly", QuoteDraft, QuoteApproved, false},
		{"calculated back to draft", QuoteCalculated, QuoteDraft, true},
		{"calculated to sent", QuoteCalculated, QuoteSent, true},
		{"pending approval to approved", QuotePendingApproval, QuoteApproved, true},
		{"pending approval to rejected", QuotePendingApproval, QuoteRejected, true},
		{"pending approval cannot go to sent", QuotePendingApproval, QuoteSent, false},
		{"rejected can re-enter approval", QuoteRejected, QuotePendingApproval, true},
		{"sent can re-enter approval", QuoteSent, QuotePendingApproval, true},
		{"approved to converted", QuoteApproved, QuoteConverted, true},
		{"expired is terminal", QuoteExpired, QuoteDraft, false},
		{"converted is terminal", QuoteConverted, QuoteExpired, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestQuoteApproveOnlyFromPendingApproval(t *testing.T) {
	quote := &Quote{Status: QuotePendingApproval}
	notes := "within policy"

	require.NoError(t, quote.Approve("manager-1", &notes))
	assert.Equal(t, QuoteApproved, quote.Status)
	require.NotNil(t, quote.ApprovedBy)
	assert.Equal(t, "manager-1", *quote.ApprovedBy)
	assert.NotNil(t, quote.ApprovedAt)
	assert.Equal(t, &notes, quote.ApprovalNotes)

	// A second approval is an illegal transition.
	err := quote.Approve("manager-2", nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConflict, errors.CodeOf(err))
	assert.Equal(t, "manager-1", *quote.ApprovedBy)
}

func TestQuoteRejectOnlyFromPendingApproval(t *testing.T) {
	reason := "margin too thin"

	quote := &Quote{Status: QuotePendingApproval}
	require.NoError(t, quote.Reject("manager-1", &reason))
	assert.Equal(t, QuoteRejected, quote.Status)
	assert.Equal(t, &reason, quote.ApprovalNotes)

	draft := &Quote{Status: QuoteDraft}
	err := draft.Reject("manager-1", &reason)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConflict, errors.CodeOf(err))
	assert.Equal(t, QuoteDraft, draft.Status)
}

func TestQuoteMarkCalculatedIdempotent(t *testing.T) {
	quote := &Quote{Status: QuoteDraft}
	require.NoError(t, quote.MarkCalculated())
	assert.Equal(t, QuoteCalculated, quote.Status)

	require.NoError(t, quote.MarkCalculated())
	assert.Equal(t, QuoteCalculated, quote.Status)
}

func TestQuoteRequestApproval(t *testing.T) {
	for _, from := range []QuoteStatus{QuoteDraft, QuoteCalculated, QuoteRejected, QuoteSent} {
		quote := &Quote{Status: from}
		require.NoError(t, quote.RequestApproval(), "from %s", from)
		assert.Equal(t, QuotePendingApproval, quote.Status)
	}

	for _, from := range []QuoteStatus{QuotePendingApproval, QuoteApproved, QuoteExpired, QuoteConverted} {
		quote := &Quote{Status: from}
		err := quote.RequestApproval()
		require.Error(t, err, "from %s", from)
		assert.Equal(t, from, quote.Status)
	}
}

func TestParseQuoteStatus(t *testing.T) {
	status, err := ParseQuoteStatus("Pending_Approval")
	require.NoError(t, err)
	assert.Equal(t, QuotePendingApproval, status)

	_, err = ParseQuoteStatus("archived")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeValidation, errors.CodeOf(err))
}
