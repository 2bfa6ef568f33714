package ui

import (
	"github.com/altinukshini/kbsearch/internal/cache"
	"github.com/altinukshini/kbsearch/internal/model"
)

// Data loaded messages
type KBLoadedMsg struct {
	KB     *model.KnowledgeBase
	Source string
	Err    error
}

// OpenIssueMsg asks the host to show an issue. Index is the position the
// issue had when the result was rendered.
type OpenIssueMsg struct {
	CategoryKey string
	Index       int
}

// EntriesShownMsg completes the reveal transition of a rendered result set.
type EntriesShownMsg struct {
	Generation int
}

type StatusMsg struct {
	Text string
}

type CacheEntriesLoadedMsg struct {
	Entries []cache.Entry
	Err     error
}

// CacheActionMsg reports the outcome of a cache delete or clear.
type CacheActionMsg struct {
	Action string
	Err    error
}
