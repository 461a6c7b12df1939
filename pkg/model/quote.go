package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a single product line on an incoming quote.
type LineItem struct {
	ProductCode string          `json:"productCode"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// CompanyDetails carries the customer master data attached to a quote.
// Address is a single free-text string; it is split into four fixed
// lines before being written to the accounting system.
type CompanyDetails struct {
	Address    string `json:"address"`
	Postcode   string `json:"postcode"`
	City       string `json:"city"`
	State      string `json:"state"`
	Attention  string `json:"attention"`
	Mobile     string `json:"mobile"`
	Phone1     string `json:"phone1"`
	Email      string `json:"email"`
	Fax1       string `json:"fax1"`
	CreateDate string `json:"createDate"`
}

// QuoteRequest is the canonical inbound quote payload.
type QuoteRequest struct {
	QuoteDate      string         `json:"quoteDate"`
	CompanyName    string         `json:"companyName"`
	Items          []LineItem     `json:"items"`
	Agent          string         `json:"agent"`
	CompanyDetails CompanyDetails `json:"companyDetails"`
}

// QuoteRow is one flattened CSV row: a quote request carries one row
// per line item.
type QuoteRow struct {
	Date        string
	Company     string
	ProductCode string
	Quantity    decimal.Decimal
	Agent       string
	CreateDate  string
	Address     string
	Postcode    string
	City        string
	State       string
	Attention   string
	Mobile      string
	Phone1      string
	Email       string
	Fax1        string
}

// CompanyRecord is a customer record as known to the accounting system,
// reduced to what the matcher needs.
type CompanyRecord struct {
	Code           string // external identifier assigned by the accounting system
	NormalizedName string // lowercased, punctuation stripped; used only for matching
	DisplayName    string // name exactly as stored
}

// ProcessingSummary reports the outcome of one CSV processing run.
type ProcessingSummary struct {
	TotalRecords     int    `json:"total_records"`
	ProcessedRecords int    `json:"processed_records"`
	SkippedRecords   int    `json:"skipped_records"`
	TypoRecords      int    `json:"typo_records"`
	Error            string `json:"error,omitempty"`
}

// QuotationRecord is what the history store persists per processed
// quotation document.
type QuotationRecord struct {
	CompanyCode string
	CompanyName string
	ProductCode string
	Quantity    decimal.Decimal
	Agent       string
	DocDate     string
	SourceFile  string
	ProcessedAt time.Time
}
