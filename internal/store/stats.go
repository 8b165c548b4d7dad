package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath          string          `json:"db_path"`
	DBSizeBytes     int64           `json:"db_size_bytes"`
	TotalVersions   int             `json:"total_versions"`
	ActiveVersions  int             `json:"active_versions"`
	TotalFragments  int             `json:"total_fragments"`
	LinkedMediaRefs int             `json:"linked_media_refs"`
	Documents       []DocumentStats `json:"documents"`
}

// DocumentStats holds per-document counts.
type DocumentStats struct {
	DocPath  string `json:"doc_path"`
	Sessions int    `json:"sessions"`
	Versions int    `json:"versions"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&st.TotalVersions)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE deleted_at IS NULL`).Scan(&st.ActiveVersions)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fragments`).Scan(&st.TotalFragments)
	s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(json_array_length(media_ids)), 0) FROM fragments WHERE media_ids IS NOT NULL`,
	).Scan(&st.LinkedMediaRefs)

	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_path, COUNT(DISTINCT name) AS sessions, COUNT(*) AS versions
		FROM sessions WHERE deleted_at IS NULL
		GROUP BY doc_path ORDER BY versions DESC`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var d DocumentStats
		rows.Scan(&d.DocPath, &d.Sessions, &d.Versions)
		st.Documents = append(st.Documents, d)
	}

	return st, nil
}
