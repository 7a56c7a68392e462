package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seltra-ai/be-cpq-quotes/internal/errors"
	"github.com/seltra-ai/be-cpq-quotes/internal/logger"
)

func newQuoteServiceForValidation() *QuoteService {
	// Validation happens before any repository access, so a nil repo is safe
	// for these cases.
	log := &logger.Logger{Logger: zerolog.Nop()}
	return NewQuoteService(nil, &fakeRuleSource{}, &fakePricingSource{}, log)
}

func validCreateRequest() *CreateQuoteRequest {
	return &CreateQuoteRequest{
		QuoteNumber:  "Q-2026-001",
		CustomerName: "Acme Ltda",
		Region:       "A",
		CreatedBy:    "user-1",
		Items: []*QuoteItemRequest{
			{LineNumber: 1, ProductCode: "SKU-1", Quantity: 1, UnitCost: 9200, UnitPrice: 10000},
		},
	}
}

func TestCreateQuoteValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateQuoteRequest)
	}{
		{"missing customer", func(r *CreateQuoteRequest) { r.CustomerName = "  " }},
		{"unknown region", func(r *CreateQuoteRequest) { r.Region = "X" }},
		{"no items", func(r *CreateQuoteRequest) { r.Items = nil }},
		{"zero quantity", func(r *CreateQuoteRequest) { r.Items[0].Quantity = 0 }},
		{"negative quantity", func(r *CreateQuoteRequest) { r.Items[0].Quantity = -1 }},
		{"negative unit cost", func(r *CreateQuoteRequest) { r.Items[0].UnitCost = -1 }},
		{"negative unit price", func(r *CreateQuoteRequest) { r.Items[0].UnitPrice = -1 }},
		{"negative freight", func(r *CreateQuoteRequest) { r.Items[0].FreightAmount = -1 }},
		{"tax rate over 100", func(r *CreateQuoteRequest) {
			rate := 120.0
			r.Items[0].TaxRate = &rate
		}},
		{"negative tax rate", func(r *CreateQuoteRequest) {
			rate := -1.0
			r.Items[0].TaxRate = &rate
		}},
	}

	svc := newQuoteServiceForValidation()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(req)

			_, err := svc.CreateQuote(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeValidation, errors.CodeOf(err))
		})
	}
}

func TestCreateQuoteNormalizesRegion(t *testing.T) {
	svc := newQuoteServiceForValidation()

	// Lowercase regions are accepted; the invalid-region error would fire
	// before normalization if they were not.
	req := validCreateRequest()
	req.Region = "x"
	_, err := svc.CreateQuote(context.Background(), req)
	require.Error(t, err)

	req = validCreateRequest()
	req.Region = " b "
	req.Items = nil // stop before the repository write
	_, err = svc.CreateQuote(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeValidation, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "items")
}
