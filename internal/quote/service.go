package quote

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/netric-solutions/quote-bridge/internal/accounting"
	"github.com/netric-solutions/quote-bridge/internal/metrics"
	"github.com/netric-solutions/quote-bridge/internal/publisher"
	"github.com/netric-solutions/quote-bridge/internal/rabbitmq"
	"github.com/netric-solutions/quote-bridge/internal/store"
	"github.com/netric-solutions/quote-bridge/pkg/model"
)

// Notifier pushes user-facing notices (success, typo detected, errors).
type Notifier interface {
	Notify(n model.Notice)
}

// Service orchestrates the quote pipeline: CSV capture, company
// matching/creation against the accounting gateway, and quotation
// inserts, with history persistence and event publishing around it.
type Service struct {
	logger      *zap.Logger
	gateway     accounting.Gateway
	matcher     *Matcher
	store       store.Store         // optional
	publisher   *publisher.Publisher // optional
	legacyQueue *rabbitmq.Publisher  // optional
	notifier    Notifier             // optional
	quotesDir   string
	customerTTL time.Duration
}

// NewService constructs a fully wired quote service. store, publisher,
// legacyQueue and notifier may be nil; the pipeline degrades to plain
// CSV-to-gateway processing.
func NewService(
	logger *zap.Logger,
	gateway accounting.Gateway,
	matcher *Matcher,
	st store.Store,
	pub *publisher.Publisher,
	legacyQueue *rabbitmq.Publisher,
	notifier Notifier,
	quotesDir string,
	customerTTL time.Duration,
) *Service {
	return &Service{
		logger:      logger,
		gateway:     gateway,
		matcher:     matcher,
		store:       st,
		publisher:   pub,
		legacyQueue: legacyQueue,
		notifier:    notifier,
		quotesDir:   quotesDir,
		customerTTL: customerTTL,
	}
}

// HandleQuote captures an incoming quote to CSV and runs the invoice
// pipeline over the file. Returns the CSV filename and the processing
// summary.
func (s *Service) HandleQuote(ctx context.Context, req model.QuoteRequest) (string, model.ProcessingSummary, error) {
	rows := Flatten(req)

	if err := os.MkdirAll(s.quotesDir, 0o755); err != nil {
		return "", model.ProcessingSummary{}, fmt.Errorf("create quotes dir: %w", err)
	}

	filename := Filename(time.Now())
	path := filepath.Join(s.quotesDir, filename)
	if err := WriteCSV(path, rows); err != nil {
		return "", model.ProcessingSummary{}, err
	}

	s.logger.Info("quote.csv_written",
		zap.String("file", path),
		zap.String("company", req.CompanyName),
		zap.Int("rows", len(rows)))

	if s.publisher != nil {
		if err := s.publisher.PublishEvent(ctx, "evt.quote.received.v1", "quote.received", req); err != nil {
			s.logger.Warn("quote.publish_received_failed", zap.Error(err))
		}
	}

	summary := s.ProcessCSV(ctx, path)

	s.notify("info", "Quote Processor",
		fmt.Sprintf("Successfully added new quote for: %s", req.CompanyName))

	return filename, summary, nil
}

// ProcessCSV runs the invoice pipeline over one CSV file. Row-level
// failures are counted, never fatal; a file-level failure is reported
// in the summary.
func (s *Service) ProcessCSV(ctx context.Context, path string) model.ProcessingSummary {
	var summary model.ProcessingSummary

	rows, err := ReadCSV(path)
	if err != nil {
		s.logger.Error("quote.csv_read_failed",
			zap.String("file", path),
			zap.Error(err))
		summary.Error = err.Error()
		return summary
	}

	for _, row := range rows {
		summary.TotalRecords++

		code, candidates, err := s.resolveCompanyCode(ctx, row)
		if err != nil {
			s.logger.Warn("quote.company_code_failed",
				zap.String("company", row.Company),
				zap.Error(err))
			metrics.IncQuoteRow("skipped")
			summary.SkippedRecords++
			continue
		}

		if len(candidates) > 0 {
			// Possible misspelling; never guess which record was meant.
			msg := fmt.Sprintf("Did you mean one of these? %s", strings.Join(candidates, ", "))
			s.logger.Warn("quote.typo_detected",
				zap.String("company", row.Company),
				zap.Strings("candidates", candidates))
			s.notify("warn", "Company Name Typo Detected", msg)
			if s.publisher != nil {
				_ = s.publisher.PublishEvent(ctx, "evt.quote.typo_detected.v1", "quote.typo_detected", map[string]any{
					"company":    row.Company,
					"candidates": candidates,
				})
			}
			metrics.IncQuoteRow("typo")
			summary.TypoRecords++
			summary.SkippedRecords++
			continue
		}

		if code == "" {
			s.logger.Warn("quote.missing_company_code",
				zap.String("company", row.Company))
			metrics.IncQuoteRow("skipped")
			summary.SkippedRecords++
			continue
		}

		draft := accounting.QuotationDraft{
			DocDate:     row.Date,
			CompanyCode: code,
			Description: "Quotation",
			Details: []accounting.QuotationDetail{
				{ItemCode: row.ProductCode, Qty: row.Quantity},
			},
		}
		if err := s.gateway.InsertQuotation(ctx, draft); err != nil {
			s.logger.Error("quote.insert_failed",
				zap.String("company", row.Company),
				zap.String("company_code", code),
				zap.Error(err))
			metrics.IncQuoteRow("skipped")
			summary.SkippedRecords++
			continue
		}

		metrics.IncQuoteRow("processed")
		summary.ProcessedRecords++
		s.recordProcessed(ctx, row, code, filepath.Base(path))
	}

	return summary
}

// recordProcessed persists history and publishes confirmations for one
// inserted quotation. Failures here are logged but do not affect the
// summary: the quotation already exists in the accounting system.
func (s *Service) recordProcessed(ctx context.Context, row model.QuoteRow, code, sourceFile string) {
	rec := model.QuotationRecord{
		CompanyCode: code,
		CompanyName: row.Company,
		ProductCode: row.ProductCode,
		Quantity:    row.Quantity,
		Agent:       row.Agent,
		DocDate:     row.Date,
		SourceFile:  sourceFile,
		ProcessedAt: time.Now().UTC(),
	}

	if s.store != nil {
		if err := s.store.RecordQuoteEvent(ctx, rec); err != nil {
			s.logger.Warn("quote.history_event_failed", zap.Error(err))
		}
		if err := s.store.UpsertQuotation(ctx, rec); err != nil {
			s.logger.Warn("quote.history_upsert_failed", zap.Error(err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishEvent(ctx, "evt.quote.processed.v1", "quote.processed", rec); err != nil {
			s.logger.Warn("quote.publish_processed_failed", zap.Error(err))
		}
	}
	if s.legacyQueue != nil {
		if err := s.legacyQueue.PublishQuotationCreated(ctx, rec); err != nil {
			s.logger.Warn("quote.legacy_publish_failed", zap.Error(err))
		}
	}
}

// resolveCompanyCode finds the accounting code for a row's company.
// Returns (code, nil, nil) on a match or successful creation,
// ("", candidates, nil) when the name looks like a typo, and an error
// when the gateway cannot resolve or create the customer.
func (s *Service) resolveCompanyCode(ctx context.Context, row model.QuoteRow) (string, []string, error) {
	records, err := s.loadCustomers(ctx)
	if err != nil {
		return "", nil, err
	}

	result := s.matcher.Match(row.Company, records)
	switch result.Status {
	case MatchExact:
		s.logger.Info("quote.company_matched",
			zap.String("company", row.Company),
			zap.String("code", result.Code))
		return result.Code, nil, nil
	case MatchTypo:
		return "", result.Candidates, nil
	}

	// No match: create the customer and fetch its freshly assigned code.
	s.logger.Info("quote.creating_customer", zap.String("company", row.Company))

	addr := SplitAddress(row.Address)
	draft := accounting.CustomerDraft{
		CompanyName: row.Company,
		Agent:       row.Agent,
		CreateDate:  row.CreateDate,
		Address:     addr,
		Postcode:    row.Postcode,
		City:        row.City,
		State:       row.State,
		Attention:   row.Attention,
		Phone1:      row.Phone1,
		Mobile:      row.Mobile,
		Fax1:        row.Fax1,
		Email:       row.Email,
	}
	if err := s.gateway.CreateCustomer(ctx, draft); err != nil {
		return "", nil, err
	}

	if s.store != nil {
		if err := s.store.InvalidateCustomers(ctx); err != nil {
			s.logger.Warn("quote.customer_cache_invalidate_failed", zap.Error(err))
		}
	}

	code, err := s.gateway.FindCustomerCode(ctx, row.Company)
	if err != nil {
		return "", nil, err
	}
	if code == "" {
		s.notify("error", "Company Code Error", "Error retrieving new company code")
		return "", nil, fmt.Errorf("code lookup after creating customer %q returned nothing", row.Company)
	}

	s.logger.Info("quote.customer_created",
		zap.String("company", row.Company),
		zap.String("code", code))
	return code, nil, nil
}

// loadCustomers returns the normalized customer records, from the
// cached list when fresh, otherwise from the gateway.
func (s *Service) loadCustomers(ctx context.Context) ([]model.CompanyRecord, error) {
	if s.store != nil {
		cached, err := s.store.CachedCustomers(ctx)
		if err != nil {
			s.logger.Warn("quote.customer_cache_read_failed", zap.Error(err))
		} else if cached != nil {
			metrics.IncCacheAccess("customers", "hit")
			return cached, nil
		}
		metrics.IncCacheAccess("customers", "miss")
	}

	rows, err := s.gateway.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	records := make([]model.CompanyRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, model.CompanyRecord{
			Code:           r.Code,
			NormalizedName: NormalizeCompanyName(r.CompanyName),
			DisplayName:    r.CompanyName,
		})
	}

	if s.store != nil {
		if err := s.store.CacheCustomers(ctx, records, s.customerTTL); err != nil {
			s.logger.Warn("quote.customer_cache_write_failed", zap.Error(err))
		}
	}
	return records, nil
}

func (s *Service) notify(level, title, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(model.Notice{
		Level:   level,
		Title:   title,
		Message: message,
		At:      time.Now().UTC(),
	})
}
