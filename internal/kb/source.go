package kb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/altinukshini/kbsearch/internal/model"
)

// Source produces a knowledge base.
type Source interface {
	Load(ctx context.Context) (*model.KnowledgeBase, error)
	String() string
}

// FileSource reads a single document, or a directory of per-category
// documents ordered by file name.
type FileSource struct {
	Path string
}

func (s FileSource) String() string {
	return s.Path
}

func (s FileSource) Load(ctx context.Context) (*model.KnowledgeBase, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return nil, fmt.Errorf("stat knowledge base: %w", err)
	}
	if !info.IsDir() {
		data, err := os.ReadFile(s.Path)
		if err != nil {
			return nil, fmt.Errorf("read knowledge base: %w", err)
		}
		return Parse(data)
	}

	entries, err := os.ReadDir(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && IsDocument(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	kb := &model.KnowledgeBase{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(s.Path, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		cat, err := ParseCategory(CategoryKey(name), data)
		if err != nil {
			return nil, err
		}
		kb.Categories = append(kb.Categories, cat)
	}
	return kb, nil
}

// IsDocument reports whether a file name looks like a knowledge base document.
func IsDocument(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// CategoryKey derives a category key from a document file name:
// "network.yaml" -> "network".
func CategoryKey(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
