package kb

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altinukshini/kbsearch/internal/api"
	"github.com/altinukshini/kbsearch/internal/cache"
)

type fakeFetcher struct {
	mu       sync.Mutex
	listings map[string][]api.Content
	files    map[string]string
	fetched  []string
}

func (f *fakeFetcher) RepoNWO() string { return "acme/support" }

func (f *fakeFetcher) GetContents(path, ref string) ([]api.Content, error) {
	if l, ok := f.listings[path]; ok {
		return l, nil
	}
	if _, ok := f.files[path]; ok {
		return []api.Content{{Type: "file", Name: path, Path: path}}, nil
	}
	return nil, fmt.Errorf("HTTP 404: %s", path)
}

func (f *fakeFetcher) GetFile(path, ref string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, path)
	body, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("HTTP 404: %s", path)
	}
	return []byte(body), nil
}

func TestGitHubSourceSingleFile(t *testing.T) {
	f := &fakeFetcher{files: map[string]string{
		"kb.yaml": "network:\n  issues:\n    - title: DNS Timeout\n      content: x\n      severity: High\n",
	}}
	src := GitHubSource{Client: f, Path: "kb.yaml"}

	kb, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, kb.Categories, 1)
	assert.Equal(t, "acme/support:kb.yaml@HEAD", src.String())
}

func TestGitHubSourceDirectoryKeepsListingOrder(t *testing.T) {
	f := &fakeFetcher{
		listings: map[string][]api.Content{
			"kb": {
				{Type: "file", Name: "network.yaml", Path: "kb/network.yaml"},
				{Type: "dir", Name: "img", Path: "kb/img"},
				{Type: "file", Name: "README.md", Path: "kb/README.md"},
				{Type: "file", Name: "apps.json", Path: "kb/apps.json"},
			},
		},
		files: map[string]string{
			"kb/network.yaml": "issues:\n  - title: DNS Timeout\n",
			"kb/apps.json":    `{"issues": [{"title": "Crash loop"}]}`,
		},
	}

	kb, err := GitHubSource{Client: f, Path: "kb", Ref: "main", Workers: 2}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, kb.Categories, 2)
	assert.Equal(t, "network", kb.Categories[0].Key)
	assert.Equal(t, "apps", kb.Categories[1].Key)
	assert.NotContains(t, f.fetched, "kb/README.md")
}

func TestGitHubSourceUsesCache(t *testing.T) {
	c, err := cache.New(t.TempDir(), 1, time.Hour)
	require.NoError(t, err)

	f := &fakeFetcher{files: map[string]string{"kb.yaml": "network: {}\n"}}
	src := GitHubSource{Client: f, Path: "kb.yaml", Cache: c}

	_, err = src.Load(context.Background())
	require.NoError(t, err)
	_, err = src.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"kb.yaml"}, f.fetched, "second load should come from cache")
}

func TestGitHubSourceFetchError(t *testing.T) {
	f := &fakeFetcher{
		listings: map[string][]api.Content{
			"kb": {{Type: "file", Name: "gone.yaml", Path: "kb/gone.yaml"}},
		},
	}
	_, err := GitHubSource{Client: f, Path: "kb"}.Load(context.Background())
	assert.ErrorContains(t, err, "kb/gone.yaml")
}
