// Package history stores finished judgments in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/service"
)

//go:embed migrations/001_initial_schema.sql
var migrationV1 string

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements service.Recorder on SQLite.
type Store struct {
	db *sql.DB
}

// Summary is one row of the history listing.
type Summary struct {
	ID         string    `json:"id" yaml:"id"`
	Kind       string    `json:"kind" yaml:"kind"`
	Criteria   string    `json:"criterios" yaml:"criterios"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	Total      int       `json:"total_itens" yaml:"total_itens"`
	FinalScore *float64  `json:"pontuacao_final,omitempty" yaml:"pontuacao_final,omitempty"`
}

// Entry is a stored judgment with its verdicts as they were serialized.
type Entry struct {
	Summary
	Verdicts  []json.RawMessage `json:"analises"`
	Synthesis json.RawMessage   `json:"sintese,omitempty"`
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("running migrations: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version); err != nil {
		version = 0
	}
	if version < 1 {
		if _, err := s.db.Exec(migrationV1); err != nil {
			return fmt.Errorf("applying migration v1: %w", err)
		}
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Record implements service.Recorder.
func (s *Store) Record(ctx context.Context, rec service.Record) error {
	var (
		finalScore sql.NullFloat64
		synthesis  sql.NullString
	)
	if rec.Synthesis != nil {
		b, err := json.Marshal(rec.Synthesis)
		if err != nil {
			return fmt.Errorf("marshaling synthesis: %w", err)
		}
		synthesis = sql.NullString{String: string(b), Valid: true}
		finalScore = sql.NullFloat64{Float64: rec.Synthesis.FinalScore, Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO batches (id, kind, criteria, created_at, total, final_score, synthesis)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Kind, rec.Criteria, rec.CreatedAt.UTC().Format(timeLayout),
		len(rec.Verdicts), finalScore, synthesis)
	if err != nil {
		return fmt.Errorf("inserting batch: %w", err)
	}

	for i, v := range rec.Verdicts {
		payload, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshaling verdict %d: %w", i+1, err)
		}
		var score sql.NullFloat64
		if v.Score != nil {
			score = sql.NullFloat64{Float64: *v.Score, Valid: true}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO verdicts (batch_id, position, item_name, content_type, agent, score, max_score, error, payload)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, i+1, v.ItemName, string(v.ContentType), v.AgentName, score, v.MaxScore, v.Error, string(payload))
		if err != nil {
			return fmt.Errorf("inserting verdict %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// List returns the most recent judgments, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, criteria, created_at, total, final_score
		FROM batches ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing batches: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Get returns one stored judgment.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, criteria, created_at, total, final_score
		FROM batches WHERE id = ?`, id)
	sum, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound("judgment", id)
	}
	if err != nil {
		return nil, err
	}

	entry := &Entry{Summary: sum, Verdicts: []json.RawMessage{}}

	var synthesis sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT synthesis FROM batches WHERE id = ?`, id).Scan(&synthesis); err != nil {
		return nil, fmt.Errorf("loading synthesis: %w", err)
	}
	if synthesis.Valid {
		entry.Synthesis = json.RawMessage(synthesis.String)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM verdicts WHERE batch_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("loading verdicts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning verdict: %w", err)
		}
		entry.Verdicts = append(entry.Verdicts, json.RawMessage(payload))
	}
	return entry, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (Summary, error) {
	var (
		sum        Summary
		createdAt  string
		finalScore sql.NullFloat64
	)
	if err := row.Scan(&sum.ID, &sum.Kind, &sum.Criteria, &createdAt, &sum.Total, &finalScore); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sum, err
		}
		return sum, fmt.Errorf("scanning batch: %w", err)
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return sum, fmt.Errorf("parsing created_at: %w", err)
	}
	sum.CreatedAt = t
	if finalScore.Valid {
		f := finalScore.Float64
		sum.FinalScore = &f
	}
	return sum, nil
}
