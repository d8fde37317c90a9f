// Package catalog serves the curated business idea dataset: listing with
// filters and pagination, idea details with related suggestions, category
// counts, and aggregate stats. The dataset is loaded once from YAML and is
// immutable afterwards, so all reads are safe for concurrent use.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Idea is a single business idea record. ContentFile points at a text file
// with the long-form content next to the dataset; it is resolved on demand
// and never exposed to clients.
type Idea struct {
	ID               string   `yaml:"id" json:"id"`
	Title            string   `yaml:"title" json:"title"`
	Description      string   `yaml:"description" json:"description"`
	Categories       []string `yaml:"categories" json:"categories"`
	InvestmentLevel  string   `yaml:"investment_level" json:"investmentLevel"`
	EstimatedCost    string   `yaml:"estimated_cost" json:"estimatedCost"`
	TimeToLaunch     string   `yaml:"time_to_launch" json:"timeToLaunch"`
	PotentialRevenue string   `yaml:"potential_revenue" json:"potentialRevenue"`
	Difficulty       string   `yaml:"difficulty" json:"difficulty"`
	MarketSize       string   `yaml:"market_size" json:"marketSize"`
	Image            string   `yaml:"image" json:"image"`
	Features         []string `yaml:"features" json:"features"`
	Pros             []string `yaml:"pros" json:"pros"`
	Cons             []string `yaml:"cons" json:"cons"`
	ContentFile      string   `yaml:"content_file,omitempty" json:"-"`
}

// HasCategory reports whether the idea is tagged with the given category.
func (i Idea) HasCategory(category string) bool {
	for _, c := range i.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Catalog holds the loaded dataset. Ideas keep their dataset order, which is
// also the listing order.
type Catalog struct {
	ideas      []Idea
	byID       map[string]int
	contentDir string
}

// New builds a catalog from an already parsed idea list. contentDir is the
// directory long-form content files are resolved against; it may be empty
// when no idea carries a content file.
func New(ideas []Idea, contentDir string) (*Catalog, error) {
	if len(ideas) == 0 {
		return nil, errors.Join(ErrInvalidDataset, errors.New("dataset is empty"))
	}

	c := &Catalog{
		ideas:      ideas,
		byID:       make(map[string]int, len(ideas)),
		contentDir: contentDir,
	}
	for i, idea := range ideas {
		if idea.ID == "" {
			return nil, errors.Join(ErrInvalidDataset, fmt.Errorf("idea at index %d has no ID", i))
		}
		if idea.Title == "" {
			return nil, errors.Join(ErrInvalidDataset, fmt.Errorf("idea %q has no title", idea.ID))
		}
		if _, exists := c.byID[idea.ID]; exists {
			return nil, errors.Join(ErrInvalidDataset, fmt.Errorf("duplicate idea ID %q", idea.ID))
		}
		c.byID[idea.ID] = i
	}
	return c, nil
}

// Load reads the idea dataset from a YAML file. Content files referenced by
// ideas are resolved relative to the dataset's directory.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidDataset, err)
	}

	var file struct {
		Ideas []Idea `yaml:"ideas"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Join(ErrInvalidDataset, err)
	}

	return New(file.Ideas, filepath.Dir(path))
}

// Len returns the number of ideas in the dataset.
func (c *Catalog) Len() int { return len(c.ideas) }

// CategoryCount pairs a category with the number of ideas tagged with it.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Categories returns every category with its idea count, most frequent
// first. Ties keep the order categories first appear in the dataset.
func (c *Catalog) Categories() []CategoryCount {
	counts := make(map[string]int)
	var order []string
	for _, idea := range c.ideas {
		for _, cat := range idea.Categories {
			if counts[cat] == 0 {
				order = append(order, cat)
			}
			counts[cat]++
		}
	}

	out := make([]CategoryCount, 0, len(order))
	for _, cat := range order {
		out = append(out, CategoryCount{Category: cat, Count: counts[cat]})
	}
	sortStableByCountDesc(out)
	return out
}

// Stats summarizes the dataset for the landing page.
type Stats struct {
	TotalIdeas     int `json:"totalIdeas"`
	Categories     int `json:"categories"`
	LowBudgetIdeas int `json:"lowBudgetIdeas"`
	OnlineIdeas    int `json:"onlineIdeas"`
	HomeBasedIdeas int `json:"homeBasedIdeas"`
}

// Stats computes aggregate counts over the dataset.
func (c *Catalog) Stats() Stats {
	s := Stats{TotalIdeas: len(c.ideas)}
	seen := make(map[string]struct{})
	for _, idea := range c.ideas {
		for _, cat := range idea.Categories {
			seen[cat] = struct{}{}
		}
		if idea.InvestmentLevel == "low" {
			s.LowBudgetIdeas++
		}
		if idea.HasCategory("online") {
			s.OnlineIdeas++
		}
		if idea.HasCategory("home-based") {
			s.HomeBasedIdeas++
		}
	}
	s.Categories = len(seen)
	return s
}

// fullContent reads the idea's long-form content file. Missing or unreadable
// content degrades to empty rather than failing the detail lookup.
func (c *Catalog) fullContent(idea Idea) string {
	if idea.ContentFile == "" || c.contentDir == "" {
		return ""
	}
	raw, err := os.ReadFile(filepath.Join(c.contentDir, filepath.Clean(idea.ContentFile)))
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(raw), "\n")
}
