// Package filter implements the candidate item matching engine the crawler
// applies before anything reaches the store or the LLM stages.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"newsdesk/internal/model"
)

// Candidate is an ingestion candidate to be matched against source filters.
type Candidate struct {
	Title   string
	Content string
}

// Match checks whether a candidate passes the given set of filters.
// If no filters are provided, the candidate always passes.
// Include filters use OR logic (at least one must match).
// Exclude filters use AND logic (none must match).
func Match(c Candidate, filters []model.Filter) bool {
	if len(filters) == 0 {
		return true
	}

	hasIncludes := false
	anyIncludeMatched := false

	for _, f := range filters {
		switch f.Kind {
		case model.FilterInclude, model.FilterIncludeRe:
			hasIncludes = true
			if matchesFilter(c, f) {
				anyIncludeMatched = true
			}
		case model.FilterExclude, model.FilterExcludeRe:
			if matchesFilter(c, f) {
				return false
			}
		}
	}

	if hasIncludes && !anyIncludeMatched {
		return false
	}
	return true
}

func matchesFilter(c Candidate, f model.Filter) bool {
	text := textForScope(c, f.Scope)
	switch f.Kind {
	case model.FilterInclude, model.FilterExclude:
		return strings.Contains(text, strings.ToLower(f.Value))
	case model.FilterIncludeRe, model.FilterExcludeRe:
		re, err := regexp.Compile("(?i)" + f.Value)
		if err != nil {
			return false
		}
		return re.MatchString(text)
	}
	return false
}

func textForScope(c Candidate, scope model.FilterScope) string {
	switch scope {
	case model.ScopeTitle:
		return strings.ToLower(c.Title)
	case model.ScopeContent:
		return strings.ToLower(c.Content)
	default:
		return strings.ToLower(c.Title + " " + c.Content)
	}
}

// ValidateRegex checks whether a pattern is a valid regular expression.
func ValidateRegex(pattern string) error {
	_, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	return nil
}
