package kb

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/altinukshini/kbsearch/internal/api"
	"github.com/altinukshini/kbsearch/internal/cache"
	"github.com/altinukshini/kbsearch/internal/model"
	"github.com/altinukshini/kbsearch/internal/ops"
)

// ContentFetcher is the slice of api.Client used to read repository files.
type ContentFetcher interface {
	GetContents(path, ref string) ([]api.Content, error)
	GetFile(path, ref string) ([]byte, error)
	RepoNWO() string
}

// GitHubSource reads the same layouts as FileSource from a repository.
// Raw documents are cached when Cache is set.
type GitHubSource struct {
	Client  ContentFetcher
	Path    string
	Ref     string
	Cache   *cache.Cache
	Workers int
	Logger  *slog.Logger
}

func (s GitHubSource) String() string {
	ref := s.Ref
	if ref == "" {
		ref = "HEAD"
	}
	return fmt.Sprintf("%s:%s@%s", s.Client.RepoNWO(), s.Path, ref)
}

func (s GitHubSource) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (s GitHubSource) Load(ctx context.Context) (*model.KnowledgeBase, error) {
	entries, err := s.Client.GetContents(s.Path, s.Ref)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.Path, err)
	}

	if len(entries) == 1 && entries[0].Type == "file" && entries[0].Path == s.Path {
		data, err := s.fetch(ctx, s.Path)
		if err != nil {
			return nil, err
		}
		return Parse(data)
	}

	var paths []string
	for _, e := range entries {
		if e.Type == "file" && IsDocument(e.Name) {
			paths = append(paths, e.Path)
		}
	}

	docs, err := ops.FetchAll(ctx, paths, s.Workers, s.fetch, func(done, total int) {
		s.logger().Debug("fetched category document", "done", done, "total", total)
	})
	if err != nil {
		return nil, err
	}

	kb := &model.KnowledgeBase{}
	for i, p := range paths {
		cat, err := ParseCategory(CategoryKey(path.Base(p)), docs[i])
		if err != nil {
			return nil, err
		}
		kb.Categories = append(kb.Categories, cat)
	}
	return kb, nil
}

func (s GitHubSource) cacheKey(p string) string {
	return fmt.Sprintf("%s/%s@%s", s.Client.RepoNWO(), p, s.Ref)
}

func (s GitHubSource) fetch(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := s.cacheKey(p)
	if s.Cache != nil && s.Cache.Has(key) {
		data, err := s.Cache.Load(key)
		if err == nil {
			s.logger().Debug("knowledge base cache hit", "path", p)
			return data, nil
		}
		s.logger().Warn("knowledge base cache read failed", "path", p, "err", err)
	}

	data, err := s.Client.GetFile(p, s.Ref)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", p, err)
	}
	if s.Cache != nil {
		if err := s.Cache.Store(key, s.String(), data); err != nil {
			s.logger().Warn("knowledge base cache write failed", "path", p, "err", err)
		}
	}
	return data, nil
}
