package api

import (
	"fmt"
	"strings"
)

func (r QuoteSubmitRequest) Validate() error {
	if strings.TrimSpace(r.QuoteDate) == "" {
		return fmt.Errorf("quoteDate is required")
	}
	if strings.TrimSpace(r.CompanyName) == "" {
		return fmt.Errorf("companyName is required")
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("items must not be empty")
	}
	for i, item := range r.Items {
		if strings.TrimSpace(item.ProductCode) == "" {
			return fmt.Errorf("items[%d].productCode is required", i)
		}
		if item.Quantity.Sign() <= 0 {
			return fmt.Errorf("items[%d].quantity must be greater than 0", i)
		}
	}
	if strings.TrimSpace(r.Agent) == "" {
		return fmt.Errorf("agent is required")
	}
	if strings.TrimSpace(r.CompanyDetails.Address) == "" {
		return fmt.Errorf("companyDetails.address is required")
	}
	return nil
}
