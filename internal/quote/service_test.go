package quote

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/netric-solutions/quote-bridge/internal/accounting"
	"github.com/netric-solutions/quote-bridge/pkg/model"
)

type fakeGateway struct {
	customers []accounting.CustomerRow

	created      []accounting.CustomerDraft
	inserted     []accounting.QuotationDraft
	createErr    error
	insertErr    error
	listErr      error
	findCodeFunc func(name string) (string, error)
}

func (g *fakeGateway) ListCustomers(ctx context.Context) ([]accounting.CustomerRow, error) {
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.customers, nil
}

func (g *fakeGateway) CreateCustomer(ctx context.Context, draft accounting.CustomerDraft) error {
	if g.createErr != nil {
		return g.createErr
	}
	g.created = append(g.created, draft)
	return nil
}

func (g *fakeGateway) FindCustomerCode(ctx context.Context, companyName string) (string, error) {
	if g.findCodeFunc != nil {
		return g.findCodeFunc(companyName)
	}
	return "", nil
}

func (g *fakeGateway) InsertQuotation(ctx context.Context, draft accounting.QuotationDraft) error {
	if g.insertErr != nil {
		return g.insertErr
	}
	g.inserted = append(g.inserted, draft)
	return nil
}

type captureNotifier struct {
	notices []model.Notice
}

func (n *captureNotifier) Notify(notice model.Notice) {
	n.notices = append(n.notices, notice)
}

func newTestService(gw accounting.Gateway, dir string, notifier Notifier) *Service {
	return NewService(
		zap.NewNop(),
		gw,
		NewMatcher(0.8, 3),
		nil, nil, nil,
		notifier,
		dir,
		10*time.Minute,
	)
}

func writeTestCSV(t *testing.T, dir string, rows []model.QuoteRow) string {
	t.Helper()
	path := filepath.Join(dir, "quote_test.csv")
	require.NoError(t, WriteCSV(path, rows))
	return path
}

func TestProcessCSVExactMatch(t *testing.T) {
	gw := &fakeGateway{
		customers: []accounting.CustomerRow{
			{Code: "300-A001", CompanyName: "Acme Trading Sdn Bhd"},
		},
	}
	svc := newTestService(gw, t.TempDir(), nil)
	path := writeTestCSV(t, t.TempDir(), Flatten(sampleRequest()))

	summary := svc.ProcessCSV(context.Background(), path)

	assert.Equal(t, 2, summary.TotalRecords)
	assert.Equal(t, 2, summary.ProcessedRecords)
	assert.Equal(t, 0, summary.SkippedRecords)
	assert.Equal(t, 0, summary.TypoRecords)
	assert.Empty(t, summary.Error)

	require.Len(t, gw.inserted, 2)
	assert.Equal(t, "300-A001", gw.inserted[0].CompanyCode)
	assert.Equal(t, "Quotation", gw.inserted[0].Description)
	require.Len(t, gw.inserted[0].Details, 1)
	assert.Equal(t, "P-100", gw.inserted[0].Details[0].ItemCode)
	assert.Equal(t, "5", gw.inserted[0].Details[0].Qty.String())
	assert.Empty(t, gw.created, "existing customer must not be recreated")
}

func TestProcessCSVTypoSkipsAndNotifies(t *testing.T) {
	gw := &fakeGateway{
		customers: []accounting.CustomerRow{
			{Code: "300-T001", CompanyName: "Tech Solutions Sdn Bhd"},
		},
	}
	notifier := &captureNotifier{}
	svc := newTestService(gw, t.TempDir(), notifier)

	req := sampleRequest()
	req.CompanyName = "Tech Solution Sdn Bhd"
	req.Items = req.Items[:1]
	path := writeTestCSV(t, t.TempDir(), Flatten(req))

	summary := svc.ProcessCSV(context.Background(), path)

	assert.Equal(t, 1, summary.TotalRecords)
	assert.Equal(t, 0, summary.ProcessedRecords)
	assert.Equal(t, 1, summary.SkippedRecords)
	assert.Equal(t, 1, summary.TypoRecords)

	assert.Empty(t, gw.inserted, "typo rows must never reach the accounting system")
	assert.Empty(t, gw.created)

	require.Len(t, notifier.notices, 1)
	assert.Equal(t, "Company Name Typo Detected", notifier.notices[0].Title)
	assert.Contains(t, notifier.notices[0].Message, "Tech Solutions Sdn Bhd")
}

func TestProcessCSVCreatesUnknownCustomer(t *testing.T) {
	gw := &fakeGateway{
		customers: []accounting.CustomerRow{
			{Code: "300-G001", CompanyName: "Global Parts Enterprise"},
		},
		findCodeFunc: func(name string) (string, error) {
			return "300-N001", nil
		},
	}
	svc := newTestService(gw, t.TempDir(), nil)

	req := sampleRequest()
	req.Items = req.Items[:1]
	path := writeTestCSV(t, t.TempDir(), Flatten(req))

	summary := svc.ProcessCSV(context.Background(), path)

	assert.Equal(t, 1, summary.ProcessedRecords)
	assert.Equal(t, 0, summary.SkippedRecords)

	require.Len(t, gw.created, 1)
	assert.Equal(t, "Acme Trading Sdn Bhd", gw.created[0].CompanyName)
	assert.Equal(t, "123 Jalan Besar, Taman ABC", gw.created[0].Address[0])
	assert.Equal(t, "Kuala Lumpur", gw.created[0].Address[1])
	assert.Equal(t, "50000", gw.created[0].Postcode)

	require.Len(t, gw.inserted, 1)
	assert.Equal(t, "300-N001", gw.inserted[0].CompanyCode)
}

func TestProcessCSVMissingCodeAfterCreate(t *testing.T) {
	gw := &fakeGateway{
		findCodeFunc: func(name string) (string, error) { return "", nil },
	}
	notifier := &captureNotifier{}
	svc := newTestService(gw, t.TempDir(), notifier)

	req := sampleRequest()
	req.Items = req.Items[:1]
	path := writeTestCSV(t, t.TempDir(), Flatten(req))

	summary := svc.ProcessCSV(context.Background(), path)

	assert.Equal(t, 1, summary.TotalRecords)
	assert.Equal(t, 0, summary.ProcessedRecords)
	assert.Equal(t, 1, summary.SkippedRecords)
	assert.Empty(t, gw.inserted)

	require.Len(t, notifier.notices, 1)
	assert.Equal(t, "Company Code Error", notifier.notices[0].Title)
}

func TestProcessCSVInsertFailureCountsAsSkipped(t *testing.T) {
	gw := &fakeGateway{
		customers: []accounting.CustomerRow{
			{Code: "300-A001", CompanyName: "Acme Trading Sdn Bhd"},
		},
		insertErr: errors.New("document locked"),
	}
	svc := newTestService(gw, t.TempDir(), nil)

	req := sampleRequest()
	path := writeTestCSV(t, t.TempDir(), Flatten(req))

	summary := svc.ProcessCSV(context.Background(), path)

	assert.Equal(t, 2, summary.TotalRecords)
	assert.Equal(t, 0, summary.ProcessedRecords)
	assert.Equal(t, 2, summary.SkippedRecords)
}

func TestProcessCSVListFailureReportsError(t *testing.T) {
	gw := &fakeGateway{listErr: errors.New("gateway unreachable")}
	svc := newTestService(gw, t.TempDir(), nil)

	req := sampleRequest()
	req.Items = req.Items[:1]
	path := writeTestCSV(t, t.TempDir(), Flatten(req))

	summary := svc.ProcessCSV(context.Background(), path)

	assert.Equal(t, 1, summary.TotalRecords)
	assert.Equal(t, 1, summary.SkippedRecords)
	assert.Equal(t, 0, summary.ProcessedRecords)
}

func TestProcessCSVMissingFile(t *testing.T) {
	svc := newTestService(&fakeGateway{}, t.TempDir(), nil)

	summary := svc.ProcessCSV(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))

	assert.Equal(t, 0, summary.TotalRecords)
	assert.NotEmpty(t, summary.Error)
}

func TestHandleQuoteWritesCSVAndProcesses(t *testing.T) {
	gw := &fakeGateway{
		customers: []accounting.CustomerRow{
			{Code: "300-A001", CompanyName: "Acme Trading Sdn Bhd"},
		},
	}
	notifier := &captureNotifier{}
	dir := t.TempDir()
	svc := newTestService(gw, dir, notifier)

	filename, summary, err := svc.HandleQuote(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Contains(t, filename, "quote_")
	assert.FileExists(t, filepath.Join(dir, filename))

	assert.Equal(t, 2, summary.TotalRecords)
	assert.Equal(t, summary.TotalRecords, summary.ProcessedRecords+summary.SkippedRecords)

	require.NotEmpty(t, notifier.notices)
	last := notifier.notices[len(notifier.notices)-1]
	assert.Equal(t, "Successfully added new quote for: Acme Trading Sdn Bhd", last.Message)
}

func TestHandleQuoteDecimalQuantitiesSurvive(t *testing.T) {
	gw := &fakeGateway{
		customers: []accounting.CustomerRow{
			{Code: "300-A001", CompanyName: "Acme Trading Sdn Bhd"},
		},
	}
	dir := t.TempDir()
	svc := newTestService(gw, dir, nil)

	req := sampleRequest()
	req.Items = []model.LineItem{{ProductCode: "P-300", Quantity: decimal.RequireFromString("0.125")}}

	_, summary, err := svc.HandleQuote(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ProcessedRecords)

	require.Len(t, gw.inserted, 1)
	assert.Equal(t, "0.125", gw.inserted[0].Details[0].Qty.String())
}
