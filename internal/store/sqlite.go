package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/scriptsync/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		doc_path     TEXT NOT NULL,
		content_hash TEXT,
		version      INTEGER NOT NULL DEFAULT 1,
		supersedes   TEXT,
		created_at   TEXT NOT NULL,
		deleted_at   TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_name ON sessions(name, version DESC);
	CREATE INDEX IF NOT EXISTS idx_sessions_doc ON sessions(doc_path);
	CREATE INDEX IF NOT EXISTS idx_sessions_deleted ON sessions(deleted_at);

	CREATE TABLE IF NOT EXISTS fragments (
		id             TEXT PRIMARY KEY,
		session_id     TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		seq            INTEGER NOT NULL,
		line_start     INTEGER NOT NULL,
		line_end       INTEGER NOT NULL,
		identifier     TEXT NOT NULL DEFAULT '',
		node_type      TEXT NOT NULL,
		row_index      INTEGER NOT NULL DEFAULT 0,
		media_ids      TEXT,
		region_id      INTEGER NOT NULL DEFAULT 0,
		color_category INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_fragments_session ON fragments(session_id, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Save(ctx context.Context, p SaveParams) (*model.Session, error) {
	if p.Session == "" {
		return nil, errors.New("session name is required")
	}
	if p.Map == nil || p.Map.DocPath == "" {
		return nil, errors.New("fragment map must name its document")
	}
	m := p.Map.Clone()
	m.Sort()
	m.Prune()

	now := time.Now().UTC()
	id := s.newID()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Check for existing latest version
	var prevID string
	var prevVersion int
	err = tx.QueryRowContext(ctx,
		`SELECT id, version FROM sessions
		 WHERE name = ? AND deleted_at IS NULL
		 ORDER BY version DESC LIMIT 1`, p.Session).Scan(&prevID, &prevVersion)

	version := 1
	var supersedes *string
	if err == nil {
		version = prevVersion + 1
		supersedes = &prevID
	}

	var hash *string
	if m.ContentHash != "" {
		hash = &m.ContentHash
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, name, doc_path, content_hash, version, supersedes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, p.Session, m.DocPath, hash, version, supersedes, now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	for i, f := range m.Fragments {
		var ids *string
		if len(f.MediaIDs) > 0 {
			b, _ := json.Marshal(f.MediaIDs)
			v := string(b)
			ids = &v
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO fragments (id, session_id, seq, line_start, line_end, identifier, node_type,
			                        row_index, media_ids, region_id, color_category)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.newID(), id, i, f.LineStart, f.LineEnd, f.Identifier, string(f.NodeType),
			f.RowIndex, ids, f.RegionID, int(f.Category))
		if err != nil {
			return nil, fmt.Errorf("insert fragment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	sess := &model.Session{
		ID:            id,
		Name:          p.Session,
		Version:       version,
		CreatedAt:     now,
		FragmentCount: len(m.Fragments),
		Map:           m,
	}
	if supersedes != nil {
		sess.Supersedes = *supersedes
	}
	return sess, nil
}

const sessionColumns = `s.id, s.name, s.doc_path, s.content_hash, s.version, s.supersedes, s.created_at, s.deleted_at,
	(SELECT COUNT(*) FROM fragments f WHERE f.session_id = s.id)`

func (s *SQLiteStore) Load(ctx context.Context, p LoadParams) ([]model.Session, error) {
	var query string
	var args []interface{}

	switch {
	case p.History:
		query = `SELECT ` + sessionColumns + ` FROM sessions s
				 WHERE s.name = ? AND s.deleted_at IS NULL
				 ORDER BY s.version DESC`
		args = []interface{}{p.Session}
	case p.Version > 0:
		query = `SELECT ` + sessionColumns + ` FROM sessions s
				 WHERE s.name = ? AND s.version = ? AND s.deleted_at IS NULL
				 LIMIT 1`
		args = []interface{}{p.Session, p.Version}
	default:
		query = `SELECT ` + sessionColumns + ` FROM sessions s
				 WHERE s.name = ? AND s.deleted_at IS NULL
				 ORDER BY s.version DESC LIMIT 1`
		args = []interface{}{p.Session}
	}

	sessions, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, p.Session)
	}
	if p.DocPath != "" && !model.SamePath(sessions[0].Map.DocPath, p.DocPath) {
		return nil, fmt.Errorf("%w: %s is stored for %q", ErrPathMismatch, p.Session, sessions[0].Map.DocPath)
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

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.Session, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"s.deleted_at IS NULL"}
	args := []interface{}{}
	if p.DocPath != "" {
		where = append(where, "s.doc_path = ?")
		args = append(args, p.DocPath)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions s
		INNER JOIN (
			SELECT name, MAX(version) AS max_ver
			FROM sessions WHERE deleted_at IS NULL
			GROUP BY name
		) latest ON s.name = latest.name AND s.version = latest.max_ver
		WHERE %s
		ORDER BY s.created_at DESC
		LIMIT ?`, sessionColumns, strings.Join(where, " AND "))
	args = append(args, limit)

	sessions, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	// Listings carry metadata only.
	for i := range sessions {
		sessions[i].Map.Fragments = nil
	}
	return sessions, nil
}

func (s *SQLiteStore) Rm(ctx context.Context, p RmParams) error {
	if p.Hard {
		if p.AllVersions {
			res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE name = ?`, p.Session)
			if err != nil {
				return err
			}
			return requireRows(res, p.Session)
		}
		id, err := s.latestID(ctx, p.Session)
		if err != nil {
			return err
		}
		_, err = s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if p.AllVersions {
		res, err := s.db.ExecContext(ctx,
			`UPDATE sessions SET deleted_at = ? WHERE name = ? AND deleted_at IS NULL`,
			now, p.Session)
		if err != nil {
			return err
		}
		return requireRows(res, p.Session)
	}

	// Soft-delete latest version only
	id, err := s.latestID(ctx, p.Session)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE sessions SET deleted_at = ? WHERE id = ?`, now, id)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) latestID(ctx context.Context, name string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM sessions WHERE name = ? AND deleted_at IS NULL ORDER BY version DESC LIMIT 1`,
		name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrSessionNotFound, name)
	}
	return id, err
}

func requireRows(res sql.Result, name string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, name)
	}
	return nil
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...interface{}) ([]model.Session, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// fragments loads a session's fragments, dropping rows that no longer
// reference any media or region.
func (s *SQLiteStore) fragments(ctx context.Context, sessionID string) ([]model.Fragment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT line_start, line_end, identifier, node_type, row_index, media_ids, region_id, color_category
		 FROM fragments WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Fragment
	for rows.Next() {
		var f model.Fragment
		var nodeType string
		var ids sql.NullString
		var cat int
		if err := rows.Scan(&f.LineStart, &f.LineEnd, &f.Identifier, &nodeType,
			&f.RowIndex, &ids, &f.RegionID, &cat); err != nil {
			return nil, err
		}
		f.NodeType = model.NodeType(nodeType)
		f.Category = model.Category(cat)
		if ids.Valid {
			if err := json.Unmarshal([]byte(ids.String), &f.MediaIDs); err != nil {
				return nil, fmt.Errorf("%w: fragment at line %d: media_ids: %v", ErrCorrupt, f.LineStart, err)
			}
		}
		if !f.Valid() {
			continue
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row scanner) (model.Session, error) {
	sess := model.Session{Map: &model.FragmentMap{}}
	var hash, supersedes, deletedAt sql.NullString
	var createdAt string

	err := row.Scan(
		&sess.ID, &sess.Name, &sess.Map.DocPath, &hash, &sess.Version,
		&supersedes, &createdAt, &deletedAt, &sess.FragmentCount,
	)
	if err != nil {
		return sess, err
	}

	sess.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if hash.Valid {
		sess.Map.ContentHash = hash.String
	}
	if supersedes.Valid {
		sess.Supersedes = supersedes.String
	}
	if deletedAt.Valid {
		t, _ := time.Parse(time.RFC3339Nano, deletedAt.String)
		sess.DeletedAt = &t
	}
	return sess, nil
}
