package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ideavault/ideavault/pkg/catalog"
)

func (s *Server) handleListIdeas(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := catalog.Filter{
		Categories:       splitCSV(q.Get("categories")),
		InvestmentLevels: splitCSV(q.Get("investmentLevels")),
		Difficulties:     splitCSV(q.Get("difficulties")),
		Search:           q.Get("search"),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}

	respondJSON(w, http.StatusOK, s.ideas.List(filter))
}

func (s *Server) handleGetIdea(w http.ResponseWriter, r *http.Request) {
	includeContent := false
	if userID, ok := userIDFromContext(r.Context()); ok {
		user, err := s.users.UserByID(r.Context(), userID)
		if err == nil && user.IsSubscribed() {
			includeContent = true
		}
	}

	detail, err := s.ideas.Get(chi.URLParam(r, "ideaID"), includeContent)
	if err != nil {
		respondError(w, r, s.log, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.ideas.Categories())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.ideas.Stats())
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	type planView struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Kind     string `json:"kind"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Interval string `json:"interval,omitempty"`
	}

	plans := s.plans.All()
	views := make([]planView, 0, len(plans))
	for _, p := range plans {
		views = append(views, planView{
			ID:       p.ID,
			Name:     p.Name,
			Kind:     string(p.Kind),
			Amount:   p.Amount,
			Currency: p.Currency,
			Interval: p.Interval,
		})
	}
	respondJSON(w, http.StatusOK, views)
}

// splitCSV parses a comma-separated query value, dropping empty entries.
func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
