package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Relation kinds for related idea suggestions.
const (
	RelationSimilarCategories = "similar-categories"
	RelationSameInvestment    = "same-investment"
	RelationSameDifficulty    = "same-difficulty"
)

// RelatedIdea is an idea suggested alongside a detail view, annotated with
// why it was picked.
type RelatedIdea struct {
	Idea
	RelationType        string `json:"relationType"`
	RelationDescription string `json:"relationDescription"`
}

// Detail is the full view of a single idea. FullContent holds the long-form
// content and is populated only when the caller is entitled to it.
type Detail struct {
	Idea
	FullContent string        `json:"fullContent,omitempty"`
	Related     []RelatedIdea `json:"relatedIdeas"`
}

// Get returns the detail view for an idea, including up to three related
// ideas. includeContent controls whether the long-form content is loaded;
// pass false for visitors without an active subscription.
func (c *Catalog) Get(id string, includeContent bool) (*Detail, error) {
	idx, ok := c.byID[id]
	if !ok {
		return nil, ErrIdeaNotFound
	}
	idea := c.ideas[idx]

	detail := &Detail{
		Idea:    idea,
		Related: c.related(idea),
	}
	if includeContent {
		detail.FullContent = c.fullContent(idea)
	}
	return detail, nil
}

// related picks up to three suggestions: the strongest category overlap
// first, then one idea sharing the investment level, then one sharing the
// difficulty, topped up with further category matches.
func (c *Catalog) related(idea Idea) []RelatedIdea {
	matches := c.categoryMatches(idea)

	related := make([]RelatedIdea, 0, 3)
	used := map[string]struct{}{idea.ID: {}}

	if len(matches) > 0 {
		related = append(related, matches[0].annotate())
		used[matches[0].idea.ID] = struct{}{}
	}

	for _, candidate := range c.ideas {
		if _, taken := used[candidate.ID]; taken || candidate.InvestmentLevel != idea.InvestmentLevel {
			continue
		}
		related = append(related, RelatedIdea{
			Idea:                candidate,
			RelationType:        RelationSameInvestment,
			RelationDescription: fmt.Sprintf("Same investment level: %s", candidate.InvestmentLevel),
		})
		used[candidate.ID] = struct{}{}
		break
	}

	for _, candidate := range c.ideas {
		if _, taken := used[candidate.ID]; taken || candidate.Difficulty != idea.Difficulty {
			continue
		}
		related = append(related, RelatedIdea{
			Idea:                candidate,
			RelationType:        RelationSameDifficulty,
			RelationDescription: fmt.Sprintf("Same difficulty level: %s", candidate.Difficulty),
		})
		used[candidate.ID] = struct{}{}
		break
	}

	for _, match := range matches[min(1, len(matches)):] {
		if len(related) >= 3 {
			break
		}
		if _, taken := used[match.idea.ID]; taken {
			continue
		}
		related = append(related, match.annotate())
		used[match.idea.ID] = struct{}{}
	}

	if len(related) > 3 {
		related = related[:3]
	}
	return related
}

type categoryMatch struct {
	idea   Idea
	common []string
}

func (m categoryMatch) annotate() RelatedIdea {
	return RelatedIdea{
		Idea:                m.idea,
		RelationType:        RelationSimilarCategories,
		RelationDescription: fmt.Sprintf("Shares %d categories: %s", len(m.common), strings.Join(m.common, ", ")),
	}
}

// categoryMatches lists every other idea sharing at least one category,
// strongest overlap first. Ties keep dataset order.
func (c *Catalog) categoryMatches(idea Idea) []categoryMatch {
	var matches []categoryMatch
	for _, candidate := range c.ideas {
		if candidate.ID == idea.ID {
			continue
		}
		var common []string
		for _, cat := range idea.Categories {
			if candidate.HasCategory(cat) {
				common = append(common, cat)
			}
		}
		if len(common) > 0 {
			matches = append(matches, categoryMatch{idea: candidate, common: common})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return len(matches[i].common) > len(matches[j].common)
	})
	return matches
}
