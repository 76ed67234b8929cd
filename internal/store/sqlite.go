package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/pbaille/toolscout/internal/domain"
)

//go:embed schema.sql
var schema string

const toolColumns = "id, name, description, website, category, difficulty, pricing, color, source, votes, created_at"

// name_key holds domain.NameKey(name). Uniqueness and lookups go through it
// so every backend folds case the same way, including non-ASCII letters.
const insertColumns = "name_key, " + toolColumns

// SQLite handles catalog operations on a local database file
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens the database at path and initializes the schema
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one connection keeps :memory: databases shared and serializes writes
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Exists(ctx context.Context, name string) (bool, error) {
	var found int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM tools WHERE name_key = ? LIMIT 1",
		domain.NameKey(name),
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check existence: %w", err)
	}
	return true, nil
}

func (s *SQLite) Insert(ctx context.Context, t *domain.Tool) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tools ("+insertColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		domain.NameKey(t.Name), t.ID, t.Name, t.Description, t.Website, string(t.Category), string(t.Difficulty),
		string(t.Pricing), t.Color, string(t.Source), t.Votes, t.CreatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrExists
		}
		return fmt.Errorf("insert tool: %w", err)
	}
	return nil
}

func (s *SQLite) List(ctx context.Context, f Filter) ([]domain.Tool, error) {
	query := "SELECT " + toolColumns + " FROM tools WHERE 1=1"
	var args []any
	if f.Category != "" {
		query += " AND category = ?"
		args = append(args, string(f.Category))
	}
	if f.Difficulty != "" {
		query += " AND difficulty = ?"
		args = append(args, string(f.Difficulty))
	}
	query += " ORDER BY created_at ASC, name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	defer rows.Close()

	tools := []domain.Tool{}
	for rows.Next() {
		var t domain.Tool
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Website, &t.Category, &t.Difficulty,
			&t.Pricing, &t.Color, &t.Source, &t.Votes, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tool: %w", err)
		}
		tools = append(tools, t)
	}

	return tools, rows.Err()
}
