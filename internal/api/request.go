package api

import "github.com/netric-solutions/quote-bridge/pkg/model"

// QuoteSubmitRequest is the payload for POST /process-data.
type QuoteSubmitRequest model.QuoteRequest

func (r QuoteSubmitRequest) toModel() model.QuoteRequest {
	return model.QuoteRequest(r)
}
