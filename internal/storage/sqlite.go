package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dshills/goto/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// SQLiteStorage implements the Repository interface using SQLite
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer; it also keeps :memory: databases alive
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db, dbPath: dbPath, now: time.Now}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTx) UpsertMetadata(ctx context.Context, projectID int64, meta *types.ProjectMetadata) error {
	return t.storage.upsertMetadataWithQuerier(ctx, t.tx, projectID, meta)
}

func (t *sqliteTx) UpsertVector(ctx context.Context, projectID int64, vector *Vector) error {
	return t.storage.upsertVectorWithQuerier(ctx, t.tx, projectID, vector)
}

// withTx runs fn inside a transaction, committing only if fn succeeds
func (s *SQLiteStorage) withTx(ctx context.Context, fn func(q querier) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Timestamps are stored as RFC 3339 text

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime falls back to now for malformed values
func (s *SQLiteStorage) parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return s.now()
	}
	return t
}

// Project operations

const upsertProjectSQL = `
	INSERT INTO projects (path, name, last_accessed, access_count, last_modified, source)
	VALUES (?, ?, ?, 0, ?, ?)
	ON CONFLICT(path) DO UPDATE SET
		last_modified = excluded.last_modified,
		source = CASE WHEN projects.source = 'manual' THEN 'manual' ELSE excluded.source END
`

// UpsertBatch inserts or refreshes every path in a single transaction.
// Existing access statistics are left untouched and a manual project keeps
// its provenance.
func (s *SQLiteStorage) UpsertBatch(ctx context.Context, paths []string, source types.Provenance) (int, error) {
	if _, err := types.ParseProvenance(string(source)); err != nil {
		return 0, err
	}
	if len(paths) == 0 {
		return 0, nil
	}

	now := s.now()
	count := 0
	err := s.withTx(ctx, func(q querier) error {
		for _, path := range paths {
			modified := now
			if info, err := os.Stat(path); err == nil {
				modified = info.ModTime()
			}

			if _, err := q.ExecContext(ctx, upsertProjectSQL,
				path, types.ProjectName(path), formatTime(now), formatTime(modified), string(source)); err != nil {
				return fmt.Errorf("failed to upsert project %s: %w", path, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// MarkAccessed records a visit to the project at path
func (s *SQLiteStorage) MarkAccessed(ctx context.Context, path string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE projects SET last_accessed = ?, access_count = access_count + 1 WHERE path = ?`,
		formatTime(s.now()), path)
	if err != nil {
		return fmt.Errorf("failed to mark project accessed: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const selectProjectSQL = `SELECT id, path, name, last_accessed, access_count, last_modified, source FROM projects`

// rowScanner abstracts *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *SQLiteStorage) scanProject(row rowScanner) (*types.Project, error) {
	var (
		p                      types.Project
		lastAccessed, modified string
		source                 string
	)
	if err := row.Scan(&p.ID, &p.Path, &p.Name, &lastAccessed, &p.AccessCount, &modified, &source); err != nil {
		return nil, err
	}
	p.LastAccessed = s.parseTime(lastAccessed)
	p.LastModified = s.parseTime(modified)

	prov, err := types.ParseProvenance(source)
	if err != nil {
		prov = types.SourceScan
	}
	p.Source = prov
	return &p, nil
}

// GetAll returns every known project
func (s *SQLiteStorage) GetAll(ctx context.Context) ([]types.Project, error) {
	rows, err := s.db.QueryContext(ctx, selectProjectSQL+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []types.Project
	for rows.Next() {
		p, err := s.scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// GetByID retrieves a project by id
func (s *SQLiteStorage) GetByID(ctx context.Context, id int64) (*types.Project, error) {
	p, err := s.scanProject(s.db.QueryRowContext(ctx, selectProjectSQL+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project %d: %w", id, err)
	}
	return p, nil
}

// GetByPath retrieves a project by its absolute path
func (s *SQLiteStorage) GetByPath(ctx context.Context, path string) (*types.Project, error) {
	p, err := s.scanProject(s.db.QueryRowContext(ctx, selectProjectSQL+` WHERE path = ?`, path))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project %s: %w", path, err)
	}
	return p, nil
}

// PruneMissing deletes every project whose path no longer exists on disk.
// All deletes happen in one transaction keyed by id.
func (s *SQLiteStorage) PruneMissing(ctx context.Context) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, path FROM projects`)
	if err != nil {
		return 0, fmt.Errorf("failed to list project paths: %w", err)
	}

	var missing []int64
	for rows.Next() {
		var (
			id   int64
			path string
		)
		if err := rows.Scan(&id, &path); err != nil {
			_ = rows.Close()
			return 0, err
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			missing = append(missing, id)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return 0, err
	}
	_ = rows.Close()

	if len(missing) == 0 {
		return 0, nil
	}

	deleted := 0
	err = s.withTx(ctx, func(q querier) error {
		n, err := deleteProjectsWithQuerier(ctx, q, missing)
		deleted = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// deleteProjectsWithQuerier deletes multiple projects in a single query
func deleteProjectsWithQuerier(ctx context.Context, q querier, ids []int64) (int, error) {
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := `DELETE FROM projects WHERE id IN (` + strings.Join(placeholders, ",") + `)`
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete projects: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rowsAffected), nil
}

// Metadata operations

func encodeList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeList(data string) []string {
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil
	}
	return values
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// upsertMetadataWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertMetadataWithQuerier(ctx context.Context, q querier, projectID int64, meta *types.ProjectMetadata) error {
	if meta == nil {
		return fmt.Errorf("metadata cannot be nil")
	}
	indexed := meta.LastIndexed
	if indexed.IsZero() {
		indexed = s.now()
	}

	query := `
		INSERT INTO project_metadata (project_id, description, readme_excerpt, embedded_text, last_indexed,
			keywords, tech_stack, structure_hints, type_names)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			description = excluded.description,
			readme_excerpt = excluded.readme_excerpt,
			embedded_text = excluded.embedded_text,
			last_indexed = excluded.last_indexed,
			keywords = excluded.keywords,
			tech_stack = excluded.tech_stack,
			structure_hints = excluded.structure_hints,
			type_names = excluded.type_names
	`
	_, err := q.ExecContext(ctx, query,
		projectID, nullString(meta.Description), nullString(meta.ReadmeExcerpt), meta.EmbeddedText, formatTime(indexed),
		encodeList(meta.Keywords), encodeList(meta.TechStack), encodeList(meta.StructureHints), encodeList(meta.TypeNames))
	if err != nil {
		return fmt.Errorf("failed to upsert metadata for project %d: %w", projectID, err)
	}
	return nil
}

// UpsertMetadata stores or replaces the metadata row for a project
func (s *SQLiteStorage) UpsertMetadata(ctx context.Context, projectID int64, meta *types.ProjectMetadata) error {
	return s.upsertMetadataWithQuerier(ctx, s.db, projectID, meta)
}

// GetMetadata retrieves the metadata row for a project
func (s *SQLiteStorage) GetMetadata(ctx context.Context, projectID int64) (*types.ProjectMetadata, error) {
	var (
		meta                                 types.ProjectMetadata
		description, readme                  sql.NullString
		lastIndexed                          string
		keywords, stack, structure, typeList string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT description, readme_excerpt, embedded_text, last_indexed, keywords, tech_stack, structure_hints, type_names
		FROM project_metadata WHERE project_id = ?`, projectID).
		Scan(&description, &readme, &meta.EmbeddedText, &lastIndexed, &keywords, &stack, &structure, &typeList)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata for project %d: %w", projectID, err)
	}

	meta.Description = description.String
	meta.ReadmeExcerpt = readme.String
	meta.LastIndexed = s.parseTime(lastIndexed)
	meta.Keywords = decodeList(keywords)
	meta.TechStack = decodeList(stack)
	meta.StructureHints = decodeList(structure)
	meta.TypeNames = decodeList(typeList)
	return &meta, nil
}

// EmbeddedText returns the text that was embedded for a project, or "" if
// it was never indexed
func (s *SQLiteStorage) EmbeddedText(ctx context.Context, projectID int64) (string, error) {
	var text string
	err := s.db.QueryRowContext(ctx,
		`SELECT embedded_text FROM project_metadata WHERE project_id = ?`, projectID).Scan(&text)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get embedded text for project %d: %w", projectID, err)
	}
	return text, nil
}

// Vector operations

// upsertVectorWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertVectorWithQuerier(ctx context.Context, q querier, projectID int64, vector *Vector) error {
	if vector == nil || len(vector.Values) == 0 {
		return fmt.Errorf("vector cannot be empty")
	}
	created := vector.CreatedAt
	if created.IsZero() {
		created = s.now()
	}

	query := `
		INSERT INTO project_embeddings (project_id, vector, dimension, provider, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			vector = excluded.vector,
			dimension = excluded.dimension,
			provider = excluded.provider,
			model = excluded.model,
			created_at = excluded.created_at
	`
	_, err := q.ExecContext(ctx, query,
		projectID, serializeVector(vector.Values), len(vector.Values), vector.Provider, vector.Model, formatTime(created))
	if err != nil {
		return fmt.Errorf("failed to upsert vector for project %d: %w", projectID, err)
	}
	return nil
}

// UpsertVector stores or replaces the vector for a project
func (s *SQLiteStorage) UpsertVector(ctx context.Context, projectID int64, vector *Vector) error {
	return s.upsertVectorWithQuerier(ctx, s.db, projectID, vector)
}

// Nearest returns up to limit project ids ordered by ascending L2 distance
func (s *SQLiteStorage) Nearest(ctx context.Context, vector []float32, limit int) ([]VectorHit, error) {
	if limit <= 0 || len(vector) == 0 {
		return []VectorHit{}, nil
	}
	return searchNearest(ctx, s.db, vector, limit)
}

// Unindexed lists projects that have no stored vector
func (s *SQLiteStorage) Unindexed(ctx context.Context) ([]UnindexedProject, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.path, p.name
		FROM projects p
		LEFT JOIN project_embeddings e ON e.project_id = p.id
		WHERE e.project_id IS NULL
		ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list unindexed projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []UnindexedProject
	for rows.Next() {
		var u UnindexedProject
		if err := rows.Scan(&u.ID, &u.Path, &u.Name); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// EmbeddingStats returns the number of projects with vectors and the total
func (s *SQLiteStorage) EmbeddingStats(ctx context.Context) (int, int, error) {
	var indexed, total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM project_embeddings`).Scan(&indexed); err != nil {
		return 0, 0, fmt.Errorf("failed to count embeddings: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return indexed, total, nil
}

// ClearVectorsAndMetadata removes all vectors and metadata in one transaction
func (s *SQLiteStorage) ClearVectorsAndMetadata(ctx context.Context) error {
	return s.withTx(ctx, func(q querier) error {
		if _, err := q.ExecContext(ctx, `DELETE FROM project_embeddings`); err != nil {
			return fmt.Errorf("failed to clear embeddings: %w", err)
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM project_metadata`); err != nil {
			return fmt.Errorf("failed to clear metadata: %w", err)
		}
		return nil
	})
}

// Status operations

// Status summarizes the contents of the index
func (s *SQLiteStorage) Status(ctx context.Context) (*Status, error) {
	status := &Status{
		BySource:  make(map[types.Provenance]int),
		BuildMode: BuildMode,
	}

	rows, err := s.db.QueryContext(ctx, `SELECT source, COUNT(*) FROM projects GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects by source: %w", err)
	}
	for rows.Next() {
		var (
			source string
			n      int
		)
		if err := rows.Scan(&source, &n); err != nil {
			_ = rows.Close()
			return nil, err
		}
		status.BySource[types.Provenance(source)] = n
		status.TotalProjects += n
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM project_embeddings`).Scan(&status.IndexedProjects); err != nil {
		return nil, fmt.Errorf("failed to count embeddings: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE access_count > 0`).Scan(&status.AccessedCount); err != nil {
		return nil, fmt.Errorf("failed to count accessed projects: %w", err)
	}

	version, err := schemaVersion(ctx, s.db)
	if err != nil {
		return nil, err
	}
	status.SchemaVersion = version.String()

	if s.dbPath != "" && s.dbPath != ":memory:" {
		if info, err := os.Stat(s.dbPath); err == nil {
			status.SizeBytes = info.Size()
		}
	}
	return status, nil
}
