package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altinukshini/kbsearch/internal/model"
)

func sampleKB() *model.KnowledgeBase {
	return &model.KnowledgeBase{Categories: []model.Category{
		{Key: "dashboard", Issues: []model.Issue{
			{Title: "DNS overview", Content: "dns everywhere", Severity: "low"},
		}},
		{Key: "network", Issues: []model.Issue{
			{Title: "DNS Timeout", Content: "resolution failed", Severity: "High", ErrorCode: "E101"},
			{Title: "Proxy refused", Content: "upstream closed the connection", Severity: "medium"},
		}},
		{Key: "storage", Issues: []model.Issue{
			{Title: "Disk full", Content: "no space left on device", Severity: "critical", ErrorCode: "ENOSPC"},
			{Title: "Slow mount", Content: "nfs lookups hit dns first", Severity: "low"},
		}},
	}}
}

func TestSearchTooShort(t *testing.T) {
	engine := New()
	for _, q := range []string{"", " ", "d", "  D  ", "é"} {
		out := engine.Search(sampleKB(), q)
		assert.Equal(t, OutcomeTooShort, out.Kind, "query %q", q)
		assert.Empty(t, out.Matches, "query %q", q)
		assert.Equal(t, TooShortMessage, out.Message())
	}
}

func TestSearchScenarioDNS(t *testing.T) {
	kb := &model.KnowledgeBase{Categories: []model.Category{
		{Key: "network", Issues: []model.Issue{
			{Title: "DNS Timeout", Content: "resolution failed", Severity: "High", ErrorCode: "E101"},
		}},
		{Key: "dashboard", Issues: []model.Issue{
			{Title: "DNS stats", Content: "dns", Severity: "low"},
		}},
	}}

	out := New().Search(kb, "dns")
	require.Equal(t, OutcomeMatches, out.Kind)
	require.Len(t, out.Matches, 1)

	m := out.Matches[0]
	assert.Equal(t, "network", m.CategoryKey)
	assert.Equal(t, 0, m.Index)
	assert.Equal(t, "DNS Timeout", m.Issue.Title)
	assert.Equal(t, model.Severity("High"), m.Issue.Severity)
	assert.Equal(t, "E101", m.Issue.ErrorCode)
	assert.Equal(t, `Found 1 result(s) for "dns":`, out.Message())
}

func TestSearchNoMatches(t *testing.T) {
	out := New().Search(sampleKB(), "zz-no-match")
	assert.Equal(t, OutcomeNoMatches, out.Kind)
	assert.Empty(t, out.Matches)
	assert.Equal(t, `No results found for "zz-no-match". Try a different keyword.`, out.Message())
}

func TestMessagesEchoQueryVerbatim(t *testing.T) {
	out := New().Search(sampleKB(), `say "hi"`)
	assert.Equal(t, `No results found for "say "hi"". Try a different keyword.`, out.Message())

	out = New().Search(sampleKB(), `C:\Temp`)
	assert.Equal(t, `No results found for "c:\temp". Try a different keyword.`, out.Message())

	kb := &model.KnowledgeBase{Categories: []model.Category{
		{Key: "windows", Issues: []model.Issue{
			{Title: `Path "c:\temp" missing`, Content: "create it", Severity: "low"},
		}},
	}}
	out = New().Search(kb, `"c:\temp"`)
	require.Len(t, out.Matches, 1)
	assert.Equal(t, `Found 1 result(s) for ""c:\temp"":`, out.Message())
}

func TestSearchPreservesOrder(t *testing.T) {
	out := New().Search(sampleKB(), "DNS")
	require.Len(t, out.Matches, 2)
	assert.Equal(t, "network", out.Matches[0].CategoryKey)
	assert.Equal(t, 0, out.Matches[0].Index)
	assert.Equal(t, "storage", out.Matches[1].CategoryKey)
	assert.Equal(t, 1, out.Matches[1].Index)
}

func TestSearchMatchesEveryField(t *testing.T) {
	engine := New()
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "title", query: "disk", want: 1},
		{name: "content", query: "upstream", want: 1},
		{name: "error code", query: "enospc", want: 1},
		{name: "mixed case and padding", query: "  E101 ", want: 1},
		{name: "dashboard excluded", query: "overview", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := engine.Search(sampleKB(), tt.query)
			assert.Len(t, out.Matches, tt.want)
		})
	}
}

func TestSearchCountMatchesBruteForce(t *testing.T) {
	kb := sampleKB()
	engine := New()
	for _, q := range []string{"dns", "no", "e1", "ed", "sl", "xx"} {
		want := 0
		for _, c := range kb.Categories {
			if c.Key == model.DashboardKey {
				continue
			}
			for _, is := range c.Issues {
				hay := strings.ToLower(is.Title + "\x00" + is.Content + "\x00" + is.ErrorCode)
				if strings.Contains(hay, q) {
					want++
				}
			}
		}
		assert.Len(t, engine.Search(kb, q).Matches, want, "query %q", q)
	}
}

func TestSearchIsIdempotent(t *testing.T) {
	engine := New()
	kb := sampleKB()
	assert.Equal(t, engine.Search(kb, "dns"), engine.Search(kb, "dns"))
}

func TestSearchNilKnowledgeBase(t *testing.T) {
	out := New().Search(nil, "dns")
	assert.Equal(t, OutcomeNoMatches, out.Kind)
}

func TestSearchMissingErrorCode(t *testing.T) {
	kb := &model.KnowledgeBase{Categories: []model.Category{
		{Key: "misc", Issues: []model.Issue{{Title: "Plain", Content: "nothing here"}}},
	}}
	out := New().Search(kb, "n/a")
	assert.Equal(t, OutcomeNoMatches, out.Kind)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short...", Preview("short"))

	long := strings.Repeat("a", 150)
	assert.Equal(t, strings.Repeat("a", 100)+"...", Preview(long))

	multibyte := strings.Repeat("ü", 120)
	assert.Equal(t, strings.Repeat("ü", 100)+"...", Preview(multibyte))
}

func TestErrorCodeOrNA(t *testing.T) {
	assert.Equal(t, "N/A", ErrorCodeOrNA(""))
	assert.Equal(t, "E101", ErrorCodeOrNA("E101"))
}

func TestIsSearchable(t *testing.T) {
	assert.False(t, IsSearchable(" a "))
	assert.True(t, IsSearchable(" ab "))
}
