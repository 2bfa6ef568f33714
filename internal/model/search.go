package model

// SearchResult is one match, identified by its category key and the
// issue's index within that category.
type SearchResult struct {
	CategoryKey string
	Issue       Issue
	Index       int
}
