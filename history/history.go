// Package history keeps a log of past analyses in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	// register the pure Go sqlite driver
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when no record matches an id prefix.
	ErrNotFound = errors.New("analysis not found")
	// ErrAmbiguous is returned when an id prefix matches more than one record.
	ErrAmbiguous = errors.New("id prefix matches several analyses")
)

// DefaultLimit is the number of analyses kept when no limit is configured.
const DefaultLimit = 10

// Summary holds the headline figures of an analysis.
type Summary struct {
	TotalChange   float64 `json:"total_change"`
	FirstPercent  float64 `json:"first_percent"`
	SecondPercent float64 `json:"second_percent"`
}

// Record is one stored analysis.
type Record struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Summary   Summary   `json:"summary"`
	Payload   []byte    `json:"-"` // JSON of the full result
}

// NewRecord returns a record with a fresh ID and the current time.
func NewRecord(kind, title, source string, summary Summary, payload []byte) Record {
	return Record{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Type:      kind,
		Title:     title,
		Source:    source,
		Summary:   summary,
		Payload:   payload,
	}
}

// Store is a SQLite-backed history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path. ":memory:" opens a
// private in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps :memory: databases alive and serializes writes
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS analyses (
		id TEXT NOT NULL PRIMARY KEY,
		created_at INTEGER NOT NULL,
		type TEXT NOT NULL,
		title TEXT,
		source TEXT,
		total_change REAL,
		first_percent REAL,
		second_percent REAL,
		payload BLOB)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create analyses table: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS analyses_created ON analyses (created_at)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create analyses index: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores a record. A zero ID or time is filled in.
func (s *Store) Save(ctx context.Context, r Record) (Record, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, created_at, type, title, source, total_change, first_percent, second_percent, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.CreatedAt.UnixNano(), r.Type, r.Title, r.Source,
		nullable(r.Summary.TotalChange), nullable(r.Summary.FirstPercent), nullable(r.Summary.SecondPercent),
		r.Payload,
	)
	if err != nil {
		return r, fmt.Errorf("save analysis: %w", err)
	}
	return r, nil
}

const columns = `id, created_at, type, title, source, total_change, first_percent, second_percent, payload`

// List returns the most recent records first. limit ≤ 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+columns+` FROM analyses ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get returns the record whose ID starts with prefix.
func (s *Store) Get(ctx context.Context, prefix string) (Record, error) {
	if prefix == "" {
		return Record{}, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+columns+` FROM analyses WHERE substr(id, 1, ?) = ? LIMIT 2`, len(prefix), prefix)
	if err != nil {
		return Record{}, fmt.Errorf("get analysis: %w", err)
	}
	defer rows.Close()

	var found []Record
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return Record{}, err
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return Record{}, err
	}
	switch len(found) {
	case 0:
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return found[0], nil
	default:
		return Record{}, fmt.Errorf("%w: %s", ErrAmbiguous, prefix)
	}
}

// Prune deletes all but the keep most recent records and reports how many
// were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM analyses WHERE id NOT IN (
			SELECT id FROM analyses ORDER BY created_at DESC, id LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune analyses: %w", err)
	}
	return res.RowsAffected()
}

// Clear deletes every record.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM analyses`)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (Record, error) {
	var (
		r                    Record
		id                   string
		created              int64
		title, source        sql.NullString
		total, first, second sql.NullFloat64
	)
	if err := row.Scan(&id, &created, &r.Type, &title, &source, &total, &first, &second, &r.Payload); err != nil {
		return r, fmt.Errorf("scan analysis: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return r, fmt.Errorf("analysis id %q: %w", id, err)
	}
	r.ID = parsed
	r.CreatedAt = time.Unix(0, created).UTC()
	r.Title, r.Source = title.String, source.String
	r.Summary = Summary{TotalChange: orNaN(total), FirstPercent: orNaN(first), SecondPercent: orNaN(second)}
	return r, nil
}

func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
