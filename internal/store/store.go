// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists extracted quantities and feature values in a
// SQLite database and exports them as YAML or JSON.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/wordproblem-engine/pkg/types"
)

const dbFile = "wordproblem.db"

// Store manages the result database.
type Store struct {
	db  *sql.DB
	dir string
}

// NewStore opens or creates dir/wordproblem.db and its schema.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = types.DefaultConfig().Store.Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: dir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS problems (
			id TEXT PRIMARY KEY,
			text TEXT,
			sentences INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS quantities (
			problem_id TEXT NOT NULL REFERENCES problems(id) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			unique_id TEXT NOT NULL,
			value TEXT,
			sentence_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			is_unknown INTEGER NOT NULL,
			is_part INTEGER NOT NULL,
			part_of INTEGER NOT NULL,
			type_text TEXT,
			context TEXT,
			PRIMARY KEY (problem_id, idx)
		)`,
		`CREATE TABLE IF NOT EXISTS features (
			problem_id TEXT NOT NULL REFERENCES problems(id) ON DELETE CASCADE,
			hypothesis INTEGER NOT NULL,
			name TEXT NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (problem_id, hypothesis, name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_features_name ON features(name)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// QuantityRow is a stored quantity.
type QuantityRow struct {
	Index      int              `json:"index" yaml:"index"`
	UniqueID   string           `json:"unique_id" yaml:"unique_id"`
	Value      string           `json:"value" yaml:"value"`
	SentenceID int              `json:"sentence_id" yaml:"sentence_id"`
	Position   int              `json:"position" yaml:"position"`
	IsUnknown  bool             `json:"is_unknown" yaml:"is_unknown"`
	IsPart     bool             `json:"is_part" yaml:"is_part"`
	PartOf     int              `json:"part_of" yaml:"part_of"`
	Type       string           `json:"type" yaml:"type"`
	Context    map[string][]int `json:"context" yaml:"context"`
}

// FeatureRow is a stored feature value.
type FeatureRow struct {
	Hypothesis int     `json:"hypothesis" yaml:"hypothesis"`
	Name       string  `json:"name" yaml:"name"`
	Value      float64 `json:"value" yaml:"value"`
}

// SaveProblem stores p and replaces any quantities stored for it before.
// Feature values of earlier runs are dropped since quantity ids may change.
func (s *Store) SaveProblem(ctx context.Context, p *types.Problem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	texts := make([]string, len(p.Sentences))
	for i, sent := range p.Sentences {
		texts[i] = sent.Text
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO problems (id, text, sentences) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET text=excluded.text, sentences=excluded.sentences`,
		p.ID, strings.Join(texts, " "), len(p.Sentences),
	)
	if err != nil {
		return fmt.Errorf("upserting problem: %w", err)
	}

	for _, stmt := range []string{
		`DELETE FROM quantities WHERE problem_id = ?`,
		`DELETE FROM features WHERE problem_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, p.ID); err != nil {
			return fmt.Errorf("clearing previous results: %w", err)
		}
	}

	ins, err := tx.PrepareContext(ctx,
		`INSERT INTO quantities (problem_id, idx, unique_id, value, sentence_id, position,
			is_unknown, is_part, part_of, type_text, context)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer ins.Close()

	for i, q := range p.Quantities {
		ctxJSON, err := json.Marshal(contextMap(q.Context))
		if err != nil {
			return fmt.Errorf("marshaling context of %s: %w", q.UniqueID, err)
		}
		_, err = ins.ExecContext(ctx,
			p.ID, i, q.UniqueID, q.Value, q.SentenceID, q.Position,
			q.IsUnknown, q.IsPart, q.PartOf, q.Type.String(), string(ctxJSON),
		)
		if err != nil {
			return fmt.Errorf("inserting quantity %s: %w", q.UniqueID, err)
		}
	}

	return tx.Commit()
}

// SaveFeatures replaces the features stored for hypothesis y of a problem.
func (s *Store) SaveFeatures(ctx context.Context, problemID string, y int, fm map[string]float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM features WHERE problem_id = ? AND hypothesis = ?`, problemID, y,
	); err != nil {
		return fmt.Errorf("deleting old features: %w", err)
	}

	ins, err := tx.PrepareContext(ctx,
		`INSERT INTO features (problem_id, hypothesis, name, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer ins.Close()

	names := make([]string, 0, len(fm))
	for name := range fm {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := ins.ExecContext(ctx, problemID, y, name, fm[name]); err != nil {
			return fmt.Errorf("inserting feature %s: %w", name, err)
		}
	}

	return tx.Commit()
}

// Problems returns the ids of stored problems, sorted.
func (s *Store) Problems(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM problems ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying problems: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning problem: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Quantities returns the stored quantities of a problem in index order.
func (s *Store) Quantities(ctx context.Context, problemID string) ([]QuantityRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, unique_id, value, sentence_id, position, is_unknown, is_part, part_of, type_text, context
		 FROM quantities WHERE problem_id = ? ORDER BY idx`, problemID)
	if err != nil {
		return nil, fmt.Errorf("querying quantities: %w", err)
	}
	defer rows.Close()

	var out []QuantityRow
	for rows.Next() {
		var (
			r       QuantityRow
			ctxJSON string
		)
		if err := rows.Scan(&r.Index, &r.UniqueID, &r.Value, &r.SentenceID, &r.Position,
			&r.IsUnknown, &r.IsPart, &r.PartOf, &r.Type, &ctxJSON); err != nil {
			return nil, fmt.Errorf("scanning quantity: %w", err)
		}
		if err := json.Unmarshal([]byte(ctxJSON), &r.Context); err != nil {
			return nil, fmt.Errorf("decoding context of %s: %w", r.UniqueID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Features returns the stored features of a problem ordered by hypothesis
// and name.
func (s *Store) Features(ctx context.Context, problemID string) ([]FeatureRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT hypothesis, name, value FROM features WHERE problem_id = ? ORDER BY hypothesis, name`, problemID)
	if err != nil {
		return nil, fmt.Errorf("querying features: %w", err)
	}
	defer rows.Close()

	var out []FeatureRow
	for rows.Next() {
		var r FeatureRow
		if err := rows.Scan(&r.Hypothesis, &r.Name, &r.Value); err != nil {
			return nil, fmt.Errorf("scanning feature: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func contextMap(c types.Context) map[string][]int {
	out := make(map[string][]int, len(c))
	for rel, ps := range c {
		out[string(rel)] = append([]int{}, ps...)
	}
	return out
}
