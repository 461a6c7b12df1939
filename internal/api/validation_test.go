package api

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/netric-solutions/quote-bridge/pkg/model"
)

func validSubmitRequest() QuoteSubmitRequest {
	return QuoteSubmitRequest{
		QuoteDate:   "2026-08-25",
		CompanyName: "Acme Trading Sdn Bhd",
		Agent:       "LEE",
		Items: []model.LineItem{
			{ProductCode: "P-100", Quantity: decimal.NewFromInt(5)},
		},
		CompanyDetails: model.CompanyDetails{
			Address: "123 Jalan Besar, Taman ABC, Kuala Lumpur",
		},
	}
}

func TestQuoteSubmitRequest_Validate(t *testing.T) {
	if err := validSubmitRequest().Validate(); err != nil {
		t.Fatalf("expected valid request, got error: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(r *QuoteSubmitRequest)
		wantErr string
	}{
		{
			name:    "missing quoteDate",
			mutate:  func(r *QuoteSubmitRequest) { r.QuoteDate = "" },
			wantErr: "quoteDate is required",
		},
		{
			name:    "whitespace companyName",
			mutate:  func(r *QuoteSubmitRequest) { r.CompanyName = "   " },
			wantErr: "companyName is required",
		},
		{
			name:    "no items",
			mutate:  func(r *QuoteSubmitRequest) { r.Items = nil },
			wantErr: "items must not be empty",
		},
		{
			name:    "item missing product code",
			mutate:  func(r *QuoteSubmitRequest) { r.Items[0].ProductCode = "" },
			wantErr: "items[0].productCode is required",
		},
		{
			name:    "zero quantity",
			mutate:  func(r *QuoteSubmitRequest) { r.Items[0].Quantity = decimal.Zero },
			wantErr: "items[0].quantity must be greater than 0",
		},
		{
			name:    "negative quantity",
			mutate:  func(r *QuoteSubmitRequest) { r.Items[0].Quantity = decimal.NewFromInt(-1) },
			wantErr: "items[0].quantity must be greater than 0",
		},
		{
			name:    "missing agent",
			mutate:  func(r *QuoteSubmitRequest) { r.Agent = "" },
			wantErr: "agent is required",
		},
		{
			name:    "missing address",
			mutate:  func(r *QuoteSubmitRequest) { r.CompanyDetails.Address = "" },
			wantErr: "companyDetails.address is required",
		},
		{
			name:   "fractional quantity accepted",
			mutate: func(r *QuoteSubmitRequest) { r.Items[0].Quantity = decimal.RequireFromString("0.5") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validSubmitRequest()
			tt.mutate(&r)
			err := r.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if err.Error() != tt.wantErr {
				t.Errorf("expected error %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}
