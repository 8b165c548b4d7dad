package store

import (
	"context"
	"strings"

	"github.com/rcliao/scriptsync/internal/model"
)

// ExportAll returns every live session version with its map, optionally
// filtered by document path.
func (s *SQLiteStore) ExportAll(ctx context.Context, docPath string) ([]model.Session, error) {
	where := []string{"s.deleted_at IS NULL"}
	args := []interface{}{}

	if docPath != "" {
		where = append(where, "s.doc_path = ?")
		args = append(args, docPath)
	}

	query := `SELECT ` + sessionColumns + `
	          FROM sessions s WHERE ` + strings.Join(where, " AND ") + ` ORDER BY s.name, s.version`

	sessions, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		frags, err := s.fragments(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
		sessions[i].Map.Fragments = frags
	}
	return sessions, nil
}

// Import stores sessions from an export as new versions. Entries without a
// map are skipped.
func (s *SQLiteStore) Import(ctx context.Context, sessions []model.Session) (int, error) {
	imported := 0
	for _, sess := range sessions {
		if sess.Map == nil {
			continue
		}
		_, err := s.Save(ctx, SaveParams{Session: sess.Name, Map: sess.Map})
		if err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
