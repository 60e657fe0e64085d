package analyzer

import (
	"path"
	"strings"
)

// Category is one entry of the keyword lexicon
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Classifier assigns categories and route/controller labels to file records.
// It holds lowercased copies of the lexicons and is safe for concurrent use.
type Classifier struct {
	categories         []Category
	routeKeywords      []string
	controllerKeywords []string
}

// NewClassifier creates a classifier from the keyword lexicon and the filename keyword sets
func NewClassifier(categories []Category, routeKeywords, controllerKeywords []string) *Classifier {
	c := &Classifier{
		categories:         make([]Category, 0, len(categories)),
		routeKeywords:      lowerAll(routeKeywords),
		controllerKeywords: lowerAll(controllerKeywords),
	}
	for _, cat := range categories {
		c.categories = append(c.categories, Category{Name: cat.Name, Keywords: lowerAll(cat.Keywords)})
	}
	return c
}

// Categories returns every category with at least one keyword occurring in the
// record's structural text. Matching is a plain case-insensitive substring test,
// so "project" also matches "projection".
func (c *Classifier) Categories(r FileRecord) []string {
	text := strings.ToLower(r.StructuralText())
	categories := []string{}
	if text == "" {
		return categories
	}
	for _, cat := range c.categories {
		if containsAny(text, cat.Keywords) {
			categories = append(categories, cat.Name)
		}
	}
	return categories
}

// IsRoute checks if the file name (without extension) contains a route keyword
func (c *Classifier) IsRoute(filePath string) bool {
	return containsAny(stem(filePath), c.routeKeywords)
}

// IsController checks if the file name (without extension) contains a controller keyword
func (c *Classifier) IsController(filePath string) bool {
	return containsAny(stem(filePath), c.controllerKeywords)
}

// Classify computes all derived labels for a record
func (c *Classifier) Classify(r FileRecord) Classification {
	return Classification{
		Categories:   c.Categories(r),
		IsRoute:      c.IsRoute(r.Path),
		IsController: c.IsController(r.Path),
	}
}

// stem returns the lowercased base name without its extension
func stem(filePath string) string {
	base := path.Base(strings.ReplaceAll(filePath, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	return strings.ToLower(base)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(v))
	}
	return out
}
