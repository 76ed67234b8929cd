package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pbaille/toolscout/internal/domain"
)

//go:embed schema_postgres.sql
var postgresSchema string

// Postgres handles catalog operations on a Postgres (Supabase) database.
// It connects with the service credentials in the DSN, so inserts are not
// subject to row-level policies.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres opens a pool and initializes the schema. simpleProtocol is
// required behind PgBouncer in transaction mode.
func NewPostgres(ctx context.Context, dsn string, maxConns int, simpleProtocol bool) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if maxConns <= 0 {
		maxConns = 2
	}
	cfg.MaxConns = int32(maxConns)
	if simpleProtocol {
		cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close closes the pool
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM tools WHERE name_key = $1)",
		domain.NameKey(name),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check existence: %w", err)
	}
	return exists, nil
}

func (p *Postgres) Insert(ctx context.Context, t *domain.Tool) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	_, err := p.pool.Exec(ctx,
		"INSERT INTO tools ("+insertColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)",
		domain.NameKey(t.Name), t.ID, t.Name, t.Description, t.Website, string(t.Category), string(t.Difficulty),
		string(t.Pricing), t.Color, string(t.Source), t.Votes, t.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrExists
	}
	if err != nil {
		return fmt.Errorf("insert tool: %w", err)
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, f Filter) ([]domain.Tool, error) {
	query := "SELECT " + toolColumns + " FROM tools WHERE true"
	var args []any
	if f.Category != "" {
		args = append(args, string(f.Category))
		query += " AND category = $" + strconv.Itoa(len(args))
	}
	if f.Difficulty != "" {
		args = append(args, string(f.Difficulty))
		query += " AND difficulty = $" + strconv.Itoa(len(args))
	}
	query += " ORDER BY created_at ASC, name ASC"

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	defer rows.Close()

	tools := []domain.Tool{}
	for rows.Next() {
		var t domain.Tool
		var category, difficulty, pricing, source string
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Website, &category, &difficulty,
			&pricing, &t.Color, &source, &t.Votes, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tool: %w", err)
		}
		t.Category = domain.Category(category)
		t.Difficulty = domain.Difficulty(difficulty)
		t.Pricing = domain.Pricing(pricing)
		t.Source = domain.Source(source)
		tools = append(tools, t)
	}

	return tools, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if err == nil || !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505"
}
