package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ideavault/ideavault/pkg/catalog"
)

func (s *Server) handleSaveIdea(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req struct {
		IdeaID string `json:"ideaId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, s.log, err)
		return
	}

	// Reject bookmarks for ideas that do not exist in the dataset.
	if _, err := s.ideas.Get(req.IdeaID, false); err != nil {
		respondError(w, r, s.log, err)
		return
	}

	if err := s.users.SaveIdea(r.Context(), userID, req.IdeaID); err != nil {
		respondError(w, r, s.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"message": "idea saved"})
}

func (s *Server) handleRemoveIdea(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	if err := s.users.RemoveIdea(r.Context(), userID, chi.URLParam(r, "ideaID")); err != nil {
		respondError(w, r, s.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "idea removed"})
}

func (s *Server) handleListSavedIdeas(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	ids, err := s.users.SavedIdeaIDs(r.Context(), userID)
	if err != nil {
		respondError(w, r, s.log, err)
		return
	}

	// Bookmarks may reference ideas removed from the dataset; skip those.
	ideas := make([]catalog.Idea, 0, len(ids))
	for _, id := range ids {
		detail, err := s.ideas.Get(id, false)
		if err != nil {
			if errors.Is(err, catalog.ErrIdeaNotFound) {
				continue
			}
			respondError(w, r, s.log, err)
			return
		}
		ideas = append(ideas, detail.Idea)
	}
	respondJSON(w, http.StatusOK, map[string]any{"ideas": ideas})
}

func (s *Server) handleCheckSavedIdea(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	saved, err := s.users.IsSaved(r.Context(), userID, chi.URLParam(r, "ideaID"))
	if err != nil {
		respondError(w, r, s.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"saved": saved})
}
