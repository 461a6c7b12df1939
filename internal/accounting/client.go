package accounting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/netric-solutions/quote-bridge/internal/httpclient"
	"github.com/netric-solutions/quote-bridge/internal/metrics"
	"github.com/netric-solutions/quote-bridge/internal/rate"
)

const (
	customerBizObject  = "AR_CUSTOMER"
	quotationBizObject = "SL_QT"
)

// Client wraps low-level HTTP communication with the automation bridge
// in front of the Accounting System. Credentials are resolved per
// request so rotation never requires a restart.
type Client struct {
	logger   *zap.Logger
	exec     *httpclient.Executor
	baseURL  string
	resolver CredentialResolver
}

// NewClient constructs a new automation gateway client instance.
func NewClient(logger *zap.Logger, rateMgr *rate.Manager, baseURL string, timeout time.Duration, resolver CredentialResolver) *Client {
	httpClient := &http.Client{Timeout: timeout}
	exec := httpclient.New(logger, rateMgr, httpClient, 2, "accounting", func(status int, body []byte) error {
		var errResp gatewayError
		_ = json.Unmarshal(body, &errResp)

		logger.Warn("accounting.client_error",
			zap.Int("status", status),
			zap.String("error", errResp.Error),
			zap.String("message", errResp.Message))

		errMsg := errResp.Message
		if errMsg == "" {
			errMsg = errResp.Error
		}
		if errMsg == "" {
			errMsg = string(body)
		}
		return fmt.Errorf("accounting gateway returned %d: %s", status, errMsg)
	})
	return &Client{
		logger:   logger,
		exec:     exec,
		baseURL:  strings.TrimRight(baseURL, "/"),
		resolver: resolver,
	}
}

// ListCustomers fetches every customer (code, company name) pair.
// POST /api/bizobjects/AR_CUSTOMER/select
func (c *Client) ListCustomers(ctx context.Context) ([]CustomerRow, error) {
	req := &selectRequest{
		Fields:    "CODE, COMPANYNAME",
		Sort:      "SD",
		Delimiter: ",",
	}
	var resp selectResponse
	start := time.Now()
	err := c.postJSON(ctx, selectPath(customerBizObject), req, &resp)
	metrics.ObserveDuration(metrics.GatewayRequestDuration, start, "list_customers")
	if err != nil {
		metrics.IncGatewayRequest("list_customers", "error")
		return nil, err
	}
	metrics.IncGatewayRequest("list_customers", "ok")

	return parseCustomerRows(resp.Result), nil
}

// CreateCustomer writes a new customer record: company fields on the
// main dataset, address and contact fields on the branch dataset.
// POST /api/bizobjects/AR_CUSTOMER/records
func (c *Client) CreateCustomer(ctx context.Context, draft CustomerDraft) error {
	req := &recordRequest{
		Main: map[string]string{
			"CompanyName":  draft.CompanyName,
			"Agent":        draft.Agent,
			"CreationDate": draft.CreateDate,
		},
		Branch: map[string]string{
			"DtlKey":    "-1",
			"Address1":  draft.Address[0],
			"Address2":  draft.Address[1],
			"Address3":  draft.Address[2],
			"Address4":  draft.Address[3],
			"Postcode":  draft.Postcode,
			"City":      draft.City,
			"State":     draft.State,
			"Attention": draft.Attention,
			"Phone1":    draft.Phone1,
			"Mobile":    draft.Mobile,
			"Fax1":      draft.Fax1,
			"Email":     draft.Email,
		},
	}

	start := time.Now()
	err := c.postJSON(ctx, recordsPath(customerBizObject), req, nil)
	metrics.ObserveDuration(metrics.GatewayRequestDuration, start, "create_customer")
	if err != nil {
		metrics.IncGatewayRequest("create_customer", "error")
		return fmt.Errorf("create customer %q: %w", draft.CompanyName, err)
	}
	metrics.IncGatewayRequest("create_customer", "ok")

	c.logger.Info("accounting.customer_created",
		zap.String("company", draft.CompanyName),
		zap.String("agent", draft.Agent))
	return nil
}

// FindCustomerCode queries the code for an exact company name. Returns
// "" when the query yields no data rows.
func (c *Client) FindCustomerCode(ctx context.Context, companyName string) (string, error) {
	escaped := strings.ReplaceAll(companyName, "'", "''")
	req := &selectRequest{
		Fields:    "CODE",
		Filter:    fmt.Sprintf("COMPANYNAME = '%s'", escaped),
		Sort:      "SD",
		Delimiter: ",",
	}
	var resp selectResponse
	start := time.Now()
	err := c.postJSON(ctx, selectPath(customerBizObject), req, &resp)
	metrics.ObserveDuration(metrics.GatewayRequestDuration, start, "find_customer_code")
	if err != nil {
		metrics.IncGatewayRequest("find_customer_code", "error")
		return "", err
	}
	metrics.IncGatewayRequest("find_customer_code", "ok")

	lines := strings.Split(resp.Result, "\n")
	if len(lines) > 1 && strings.TrimSpace(lines[1]) != "" {
		return strings.TrimSpace(lines[1]), nil
	}
	return "", nil
}

// InsertQuotation writes a quotation document with its detail rows.
// POST /api/bizobjects/SL_QT/records
func (c *Client) InsertQuotation(ctx context.Context, draft QuotationDraft) error {
	description := draft.Description
	if description == "" {
		description = "Quotation"
	}
	req := &recordRequest{
		Main: map[string]string{
			"DocDate":     draft.DocDate,
			"Code":        strings.TrimSpace(draft.CompanyCode),
			"Description": description,
		},
	}
	for _, d := range draft.Details {
		req.Details = append(req.Details, map[string]string{
			"DtlKey":   "-1",
			"DocKey":   "-1",
			"ItemCode": d.ItemCode,
			"Qty":      d.Qty.String(),
		})
	}

	start := time.Now()
	err := c.postJSON(ctx, recordsPath(quotationBizObject), req, nil)
	metrics.ObserveDuration(metrics.GatewayRequestDuration, start, "insert_quotation")
	if err != nil {
		metrics.IncGatewayRequest("insert_quotation", "error")
		return fmt.Errorf("insert quotation for %q: %w", draft.CompanyCode, err)
	}
	metrics.IncGatewayRequest("insert_quotation", "ok")

	c.logger.Info("accounting.quotation_saved",
		zap.String("company_code", draft.CompanyCode),
		zap.Int("detail_rows", len(draft.Details)))
	return nil
}

// postJSON performs an authenticated POST request with a JSON body.
func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	creds, err := c.resolver.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("resolve gateway credentials: %w", err)
	}

	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.SetBasicAuth(creds.Username, creds.Password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.exec.DoJSON(ctx, req, "accounting", out)
}

func selectPath(bizObject string) string {
	return "/api/bizobjects/" + bizObject + "/select"
}

func recordsPath(bizObject string) string {
	return "/api/bizobjects/" + bizObject + "/records"
}

// parseCustomerRows parses delimited query text: header line first,
// then one "CODE,COMPANY NAME" record per line. Company names may
// themselves contain commas, so only the first comma splits.
func parseCustomerRows(result string) []CustomerRow {
	var rows []CustomerRow
	lines := strings.Split(result, "\n")
	for i, line := range lines {
		if i == 0 || line == "" { // skip header row
			continue
		}
		parts := strings.SplitN(line, ",", 2)
		if len(parts) != 2 {
			continue
		}
		rows = append(rows, CustomerRow{
			Code:        strings.TrimSpace(parts[0]),
			CompanyName: strings.TrimSpace(parts[1]),
		})
	}
	return rows
}
