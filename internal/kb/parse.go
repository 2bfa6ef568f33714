// Package kb loads knowledge bases from YAML or JSON documents.
package kb

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/altinukshini/kbsearch/internal/model"
)

var ErrInvalidDocument = errors.New("invalid knowledge base document")

type categoryDoc struct {
	Title       string        `yaml:"title"`
	Description string        `yaml:"description"`
	Issues      []model.Issue `yaml:"issues"`
}

// Parse decodes a document whose top level maps category keys to categories.
// Category order follows the document. JSON is accepted as YAML.
func Parse(data []byte) (*model.KnowledgeBase, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	kb := &model.KnowledgeBase{}
	if root.Kind == 0 {
		return kb, nil // empty document
	}

	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping of categories", ErrInvalidDocument)
	}

	seen := make(map[string]bool)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key := doc.Content[i].Value
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidDocument, key)
		}
		seen[key] = true

		cat, err := decodeCategory(key, doc.Content[i+1])
		if err != nil {
			return nil, err
		}
		kb.Categories = append(kb.Categories, cat)
	}
	return kb, nil
}

// ParseCategory decodes a document holding a single category.
func ParseCategory(key string, data []byte) (model.Category, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return model.Category{}, fmt.Errorf("%w: category %q: %v", ErrInvalidDocument, key, err)
	}
	if root.Kind == 0 {
		return model.Category{Key: key}, nil
	}
	node := &root
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	return decodeCategory(key, node)
}

func decodeCategory(key string, node *yaml.Node) (model.Category, error) {
	cat := model.Category{Key: key}
	switch node.Kind {
	case yaml.MappingNode:
		var doc categoryDoc
		if err := node.Decode(&doc); err != nil {
			return cat, fmt.Errorf("%w: category %q: %v", ErrInvalidDocument, key, err)
		}
		cat.Title = doc.Title
		cat.Description = doc.Description
		cat.Issues = doc.Issues
	case yaml.ScalarNode:
		// "dashboard: ~" and similar placeholders carry no issues.
		if node.Tag != "!!null" {
			return cat, fmt.Errorf("%w: category %q must be a mapping", ErrInvalidDocument, key)
		}
	default:
		return cat, fmt.Errorf("%w: category %q must be a mapping", ErrInvalidDocument, key)
	}
	return cat, nil
}
