package quote

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/netric-solutions/quote-bridge/pkg/model"
)

// Header is the fixed 15-column CSV header. Column order is load-bearing:
// the invoice pipeline and downstream tooling read rows by position.
var Header = []string{
	"DATE", "COMPANY", "PRODUCT CODE", "QUANTITY", "AGENT",
	"CREATEDATE", "ADDRESS", "POSTCODE", "CITY", "STATE",
	"ATTENTION", "MOBILE", "PHONE1", "EMAIL", "FAX1",
}

// Filename returns the CSV filename for a quote received at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("quote_%s.csv", t.Format("2006-01-02_15-04-05"))
}

// Flatten turns a quote request into CSV rows, one per line item.
func Flatten(req model.QuoteRequest) []model.QuoteRow {
	rows := make([]model.QuoteRow, 0, len(req.Items))
	for _, item := range req.Items {
		rows = append(rows, model.QuoteRow{
			Date:        req.QuoteDate,
			Company:     req.CompanyName,
			ProductCode: item.ProductCode,
			Quantity:    item.Quantity,
			Agent:       req.Agent,
			CreateDate:  req.CompanyDetails.CreateDate,
			Address:     req.CompanyDetails.Address,
			Postcode:    req.CompanyDetails.Postcode,
			City:        req.CompanyDetails.City,
			State:       req.CompanyDetails.State,
			Attention:   req.CompanyDetails.Attention,
			Mobile:      req.CompanyDetails.Mobile,
			Phone1:      req.CompanyDetails.Phone1,
			Email:       req.CompanyDetails.Email,
			Fax1:        req.CompanyDetails.Fax1,
		})
	}
	return rows
}

// WriteCSV writes header plus rows to path.
func WriteCSV(path string, rows []model.QuoteRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Date, row.Company, row.ProductCode, row.Quantity.String(), row.Agent,
			row.CreateDate, row.Address, row.Postcode, row.City, row.State,
			row.Attention, row.Mobile, row.Phone1, row.Email, row.Fax1,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCSV reads a quote CSV back into rows, skipping the header line.
func ReadCSV(path string) ([]model.QuoteRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	rows := make([]model.QuoteRow, 0, len(records)-1)
	for i, rec := range records[1:] { // skip header
		if len(rec) != len(Header) {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", i+1, len(Header), len(rec))
		}
		qty, err := decimal.NewFromString(rec[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid quantity %q: %w", i+1, rec[3], err)
		}
		rows = append(rows, model.QuoteRow{
			Date:        rec[0],
			Company:     rec[1],
			ProductCode: rec[2],
			Quantity:    qty,
			Agent:       rec[4],
			CreateDate:  rec[5],
			Address:     rec[6],
			Postcode:    rec[7],
			City:        rec[8],
			State:       rec[9],
			Attention:   rec[10],
			Mobile:      rec[11],
			Phone1:      rec[12],
			Email:       rec[13],
			Fax1:        rec[14],
		})
	}
	return rows, nil
}
