package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCompanyName(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "ACME Sdn Bhd", "acme sdn bhd"},
		{"strips punctuation", "A.B.C. Trading (M) Sdn. Bhd.", "abc trading m sdn bhd"},
		{"trims whitespace", "  Acme Trading  ", "acme trading"},
		{"keeps digits", "88 Logistics", "88 logistics"},
		{"empty", "", ""},
		{"only punctuation", "&*@!", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeCompanyName(tc.input))
		})
	}
}

func TestNormalizeCompanyNameIdempotent(t *testing.T) {
	inputs := []string{
		"ACME Sdn Bhd",
		"A.B.C. Trading (M) Sdn. Bhd.",
		"  Mixed   Case & Spacing  ",
	}
	for _, in := range inputs {
		once := NormalizeCompanyName(in)
		assert.Equal(t, once, NormalizeCompanyName(once), "input %q", in)
	}
}
