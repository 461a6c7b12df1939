package quote

import (
	"sort"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/netric-solutions/quote-bridge/pkg/model"
)

// MatchStatus classifies a matcher outcome.
type MatchStatus string

const (
	// MatchExact means a customer record matched the normalized name
	// exactly; Code carries its accounting system code.
	MatchExact MatchStatus = "exact"
	// MatchTypo means no exact match but one or more records are close
	// enough that the input is probably a misspelling; Candidates
	// carries their display names.
	MatchTypo MatchStatus = "typo"
	// MatchNone means nothing resembles the input name.
	MatchNone MatchStatus = "none"
)

// MatchResult is the outcome of matching an input name against the
// known customer records.
type MatchResult struct {
	Status     MatchStatus
	Code       string   // set for MatchExact
	Candidates []string // display names, set for MatchTypo
}

// Matcher matches normalized company names against customer records.
// Similarity is Ratcliff/Obershelp, the same gestalt algorithm used by
// the legacy tooling this service replaced.
type Matcher struct {
	cutoff        float64
	maxCandidates int
	metric        *metrics.RatcliffObershelp
}

// NewMatcher creates a matcher with the given similarity cutoff and
// candidate limit.
func NewMatcher(cutoff float64, maxCandidates int) *Matcher {
	return &Matcher{
		cutoff:        cutoff,
		maxCandidates: maxCandidates,
		metric:        metrics.NewRatcliffObershelp(),
	}
}

// Match looks up name among records. The input is normalized here, so
// callers can pass the display name as received. Exact matches win
// immediately; fuzzy matching only runs when no record matches exactly.
func (m *Matcher) Match(name string, records []model.CompanyRecord) MatchResult {
	normalized := NormalizeCompanyName(name)

	for _, rec := range records {
		if normalized == rec.NormalizedName {
			return MatchResult{Status: MatchExact, Code: rec.Code}
		}
	}

	type scored struct {
		similarity float64
		display    string
	}
	var close []scored
	for _, rec := range records {
		sim := strutil.Similarity(normalized, rec.NormalizedName, m.metric)
		if sim >= m.cutoff {
			close = append(close, scored{similarity: sim, display: rec.DisplayName})
		}
	}
	if len(close) == 0 {
		return MatchResult{Status: MatchNone}
	}

	sort.SliceStable(close, func(i, j int) bool {
		return close[i].similarity > close[j].similarity
	})
	if len(close) > m.maxCandidates {
		close = close[:m.maxCandidates]
	}

	candidates := make([]string, len(close))
	for i, c := range close {
		candidates[i] = c.display
	}
	return MatchResult{Status: MatchTypo, Candidates: candidates}
}
