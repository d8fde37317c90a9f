package account

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ideavault/ideavault/pkg/pg"
)

// SaveIdea bookmarks an idea for the user. Saving the same idea twice
// returns ErrAlreadySaved.
func (s *Store) SaveIdea(ctx context.Context, userID uuid.UUID, ideaID string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO saved_ideas (user_id, idea_id) VALUES ($1, $2)`, userID, ideaID)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrAlreadySaved
		}
		if pg.IsForeignKeyViolationError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("save idea: %w", err)
	}
	return nil
}

// RemoveIdea deletes a bookmark. Removing a bookmark that does not exist
// returns ErrBookmarkNotFound.
func (s *Store) RemoveIdea(ctx context.Context, userID uuid.UUID, ideaID string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM saved_ideas WHERE user_id = $1 AND idea_id = $2`, userID, ideaID)
	if err != nil {
		return fmt.Errorf("remove idea: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookmarkNotFound
	}
	return nil
}

// SavedIdeaIDs returns the user's bookmarked idea IDs, most recent first.
func (s *Store) SavedIdeaIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT idea_id FROM saved_ideas WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved ideas: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan saved idea: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list saved ideas: %w", err)
	}
	return ids, nil
}

// IsSaved reports whether the user has bookmarked the idea.
func (s *Store) IsSaved(ctx context.Context, userID uuid.UUID, ideaID string) (bool, error) {
	var saved bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM saved_ideas WHERE user_id = $1 AND idea_id = $2)`,
		userID, ideaID).Scan(&saved)
	if err != nil {
		return false, fmt.Errorf("check saved idea: %w", err)
	}
	return saved, nil
}
