package search

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/altinukshini/kbsearch/internal/model"
)

const (
	// MinQueryLength is the shortest normalized query that triggers a scan.
	MinQueryLength = 2
	// PreviewLength is how many characters of content a result shows.
	PreviewLength = 100

	Placeholder     = "Type to search for issues or error codes."
	TooShortMessage = "Please type at least 2 characters to search."
	NoErrorCode     = "N/A"
)

type OutcomeKind int

const (
	OutcomeTooShort OutcomeKind = iota
	OutcomeNoMatches
	OutcomeMatches
)

// Outcome is the full result of one search. It is rebuilt from scratch on
// every call and never patched.
type Outcome struct {
	Query   string
	Kind    OutcomeKind
	Matches []model.SearchResult
}

// Message returns the single informational line shown above (or instead of)
// the result entries.
func (o Outcome) Message() string {
	switch o.Kind {
	case OutcomeTooShort:
		return TooShortMessage
	case OutcomeNoMatches:
		return fmt.Sprintf("No results found for \"%s\". Try a different keyword.", o.Query)
	default:
		return fmt.Sprintf("Found %d result(s) for \"%s\":", len(o.Matches), o.Query)
	}
}

type Engine struct{}

func New() *Engine {
	return &Engine{}
}

// Normalize trims and lower-cases a raw query.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// IsSearchable reports whether a raw query is long enough to scan for.
func IsSearchable(query string) bool {
	return utf8.RuneCountInString(Normalize(query)) >= MinQueryLength
}

// Search scans every category except the dashboard, in document order, and
// collects issues whose title, content or error code contains the query.
// A nil knowledge base is treated as empty.
func (e *Engine) Search(kb *model.KnowledgeBase, query string) Outcome {
	q := Normalize(query)
	out := Outcome{Query: q}

	if utf8.RuneCountInString(q) < MinQueryLength {
		out.Kind = OutcomeTooShort
		return out
	}

	if kb != nil {
		for _, cat := range kb.Categories {
			if cat.Key == model.DashboardKey {
				continue
			}
			for i, issue := range cat.Issues {
				if matches(issue, q) {
					out.Matches = append(out.Matches, model.SearchResult{
						CategoryKey: cat.Key,
						Issue:       issue,
						Index:       i,
					})
				}
			}
		}
	}

	if len(out.Matches) == 0 {
		out.Kind = OutcomeNoMatches
	} else {
		out.Kind = OutcomeMatches
	}
	return out
}

func matches(issue model.Issue, q string) bool {
	return strings.Contains(strings.ToLower(issue.Title), q) ||
		strings.Contains(strings.ToLower(issue.Content), q) ||
		strings.Contains(strings.ToLower(issue.ErrorCode), q)
}

// Preview returns the first PreviewLength characters of content followed by
// an ellipsis. The ellipsis is always appended.
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) > PreviewLength {
		runes = runes[:PreviewLength]
	}
	return string(runes) + "..."
}

func ErrorCodeOrNA(code string) string {
	if code == "" {
		return NoErrorCode
	}
	return code
}
