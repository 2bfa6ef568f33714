package model

import "strings"

// DashboardKey names the category that holds landing-page content.
// It is never searched.
const DashboardKey = "dashboard"

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Normalized lower-cases the severity. Unknown values pass through.
func (s Severity) Normalized() Severity {
	return Severity(strings.ToLower(strings.TrimSpace(string(s))))
}

type Issue struct {
	Title     string   `yaml:"title" json:"title"`
	Content   string   `yaml:"content" json:"content"`
	ErrorCode string   `yaml:"errorCode,omitempty" json:"errorCode,omitempty"`
	Severity  Severity `yaml:"severity" json:"severity"`
}

type Category struct {
	Key         string
	Title       string
	Description string
	Issues      []Issue
}

// DisplayTitle falls back to the key when the category has no title.
func (c Category) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Key
}

// KnowledgeBase keeps categories in document order.
type KnowledgeBase struct {
	Categories []Category
}

func (kb *KnowledgeBase) Category(key string) (*Category, bool) {
	if kb == nil {
		return nil, false
	}
	for i := range kb.Categories {
		if kb.Categories[i].Key == key {
			return &kb.Categories[i], true
		}
	}
	return nil, false
}

// Issue resolves an issue by category key and index. The index is the
// position at the time a result was rendered; it is not stable across reloads.
func (kb *KnowledgeBase) Issue(categoryKey string, index int) (*Issue, bool) {
	cat, ok := kb.Category(categoryKey)
	if !ok || index < 0 || index >= len(cat.Issues) {
		return nil, false
	}
	return &cat.Issues[index], true
}

func (kb *KnowledgeBase) IssueCount() int {
	if kb == nil {
		return 0
	}
	n := 0
	for _, c := range kb.Categories {
		if c.Key == DashboardKey {
			continue
		}
		n += len(c.Issues)
	}
	return n
}
