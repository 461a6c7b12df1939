package accounting

import (
	"context"

	"github.com/shopspring/decimal"
)

// Credentials are the automation gateway login details.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CredentialResolver resolves gateway credentials, from AWS Secrets
// Manager or static configuration.
type CredentialResolver interface {
	Resolve(ctx context.Context) (*Credentials, error)
}

// CustomerRow is one customer as returned by the gateway's delimited
// query result: code plus company name exactly as stored.
type CustomerRow struct {
	Code        string
	CompanyName string
}

// CustomerDraft carries the field writes for a new customer record.
// Field names match the accounting system's dataset fields.
type CustomerDraft struct {
	CompanyName string
	Agent       string
	CreateDate  string
	Address     [4]string // Address1..Address4, each already ≤60 chars
	Postcode    string
	City        string
	State       string
	Attention   string
	Phone1      string
	Mobile      string
	Fax1        string
	Email       string
}

// QuotationDetail is one item line on a quotation document.
type QuotationDetail struct {
	ItemCode string
	Qty      decimal.Decimal
}

// QuotationDraft carries the field writes for a new quotation document.
type QuotationDraft struct {
	DocDate     string
	CompanyCode string
	Description string
	Details     []QuotationDetail
}

// Gateway is the automation interface in front of the Accounting
// System. Its contract is narrow: it accepts field writes by name and
// returns query results as delimited text.
type Gateway interface {
	// ListCustomers returns every (code, company name) pair.
	ListCustomers(ctx context.Context) ([]CustomerRow, error)

	// CreateCustomer writes a new customer record.
	CreateCustomer(ctx context.Context, draft CustomerDraft) error

	// FindCustomerCode returns the code for an exact company name, or
	// "" when the follow-up query returns nothing.
	FindCustomerCode(ctx context.Context, companyName string) (string, error)

	// InsertQuotation writes a quotation document with its detail rows.
	InsertQuotation(ctx context.Context, draft QuotationDraft) error
}

// selectRequest is the wire payload for a delimited-text query.
type selectRequest struct {
	Fields    string `json:"fields"`
	Filter    string `json:"filter"`
	Sort      string `json:"sort"`
	Delimiter string `json:"delimiter"`
}

// selectResponse wraps the delimited text result: first line is the
// header, each further line one record.
type selectResponse struct {
	Result string `json:"result"`
}

// recordRequest is the wire payload for a dataset write: field values
// by name for the main dataset and optional branch/detail datasets.
type recordRequest struct {
	Main    map[string]string   `json:"main"`
	Branch  map[string]string   `json:"branch,omitempty"`
	Details []map[string]string `json:"details,omitempty"`
}

// gatewayError is the bridge's JSON error body.
type gatewayError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
