package api

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// quoteSchema mirrors the structural shape of QuoteSubmitRequest. It
// rejects malformed payloads (wrong types, missing objects) before
// field-level validation runs, so validation errors stay readable.
const quoteSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["quoteDate", "companyName", "items", "agent", "companyDetails"],
  "properties": {
    "quoteDate": {"type": "string"},
    "companyName": {"type": "string"},
    "agent": {"type": "string"},
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["productCode", "quantity"],
        "properties": {
          "productCode": {"type": "string"},
          "quantity": {"type": ["number", "string"]}
        }
      }
    },
    "companyDetails": {
      "type": "object",
      "required": ["address"],
      "properties": {
        "address": {"type": "string"},
        "postcode": {"type": "string"},
        "city": {"type": "string"},
        "state": {"type": "string"},
        "attention": {"type": "string"},
        "mobile": {"type": "string"},
        "phone1": {"type": "string"},
        "email": {"type": "string"},
        "fax1": {"type": "string"},
        "createDate": {"type": "string"}
      }
    }
  }
}`

var quoteSchemaLoader = gojsonschema.NewStringLoader(quoteSchema)

// validateQuoteSchema checks the raw body against the quote schema and
// returns a single readable error listing the violations.
func validateQuoteSchema(body []byte) error {
	result, err := gojsonschema.Validate(quoteSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}
