package catalog

import (
	"sort"
	"strings"
)

const (
	defaultPage  = 1
	defaultLimit = 12
)

// Filter narrows and paginates a listing. Zero values mean "no constraint";
// page and limit fall back to 1 and 12.
type Filter struct {
	Categories       []string
	InvestmentLevels []string
	Difficulties     []string
	Search           string
	Page             int
	Limit            int
}

// Page is one page of a filtered listing.
type Page struct {
	Ideas      []Idea `json:"ideas"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	TotalPages int    `json:"totalPages"`
}

// List applies the filter and returns the requested page. All set filters
// must match; within a multi-valued filter any value matches. Search is a
// case-insensitive substring match over title, description and categories.
func (c *Catalog) List(f Filter) Page {
	page, limit := f.Page, f.Limit
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}

	var matched []Idea
	for _, idea := range c.ideas {
		if f.matches(idea) {
			matched = append(matched, idea)
		}
	}

	total := len(matched)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return Page{
		Ideas:      matched[start:end],
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}
}

func (f Filter) matches(idea Idea) bool {
	if len(f.Categories) > 0 && !anyCategory(idea, f.Categories) {
		return false
	}
	if len(f.InvestmentLevels) > 0 && !contains(f.InvestmentLevels, idea.InvestmentLevel) {
		return false
	}
	if len(f.Difficulties) > 0 && !contains(f.Difficulties, idea.Difficulty) {
		return false
	}
	if f.Search != "" && !matchesSearch(idea, f.Search) {
		return false
	}
	return true
}

func anyCategory(idea Idea, categories []string) bool {
	for _, cat := range categories {
		if idea.HasCategory(cat) {
			return true
		}
	}
	return false
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func matchesSearch(idea Idea, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(idea.Title), q) ||
		strings.Contains(strings.ToLower(idea.Description), q) {
		return true
	}
	for _, cat := range idea.Categories {
		if strings.Contains(strings.ToLower(cat), q) {
			return true
		}
	}
	return false
}

func sortStableByCountDesc(counts []CategoryCount) {
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
}
