package store

import (
	"context"
	"errors"
	"fmt"

	"tutorials/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps tutorials in the tutorials table
// (see migrations/1_init_tutorials.up.sql).
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore opens a connection pool and pings the database.
func NewPostgresStore(ctx context.Context, dbURL string) (*PostgresStore, error) {
	const op = "store.postgres.New"

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

func (s *PostgresStore) FindAll(ctx context.Context) ([]model.Tutorial, error) {
	const op = "store.postgres.FindAll"

	return s.query(ctx, op, `
	SELECT id, title, description, published
	FROM tutorials
	ORDER BY id
	`)
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*model.Tutorial, error) {
	const op = "store.postgres.FindByID"

	var t model.Tutorial
	err := s.db.QueryRow(ctx, `
	SELECT id, title, description, published
	FROM tutorials
	WHERE id = $1
	`, id).Scan(&t.ID, &t.Title, &t.Description, &t.Published)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &t, nil
}

// FindByTitleContaining uses strpos so matching is case-sensitive and
// free of LIKE wildcard escaping; strpos(x, '') is 1, so "" matches all.
func (s *PostgresStore) FindByTitleContaining(ctx context.Context, title string) ([]model.Tutorial, error) {
	const op = "store.postgres.FindByTitleContaining"

	return s.query(ctx, op, `
	SELECT id, title, description, published
	FROM tutorials
	WHERE strpos(title, $1) > 0
	ORDER BY id
	`, title)
}

func (s *PostgresStore) FindByPublished(ctx context.Context, published bool) ([]model.Tutorial, error) {
	const op = "store.postgres.FindByPublished"

	return s.query(ctx, op, `
	SELECT id, title, description, published
	FROM tutorials
	WHERE published = $1
	ORDER BY id
	`, published)
}

func (s *PostgresStore) Save(ctx context.Context, t *model.Tutorial) error {
	const op = "store.postgres.Save"

	if t.IsNew() {
		err := s.db.QueryRow(ctx, `
		INSERT INTO tutorials (title, description, published)
		VALUES ($1, $2, $3)
		RETURNING id
		`, t.Title, t.Description, t.Published).Scan(&t.ID)
		if err != nil {
			return fmt.Errorf("%s: insert: %w", op, err)
		}
		return nil
	}

	_, err := s.db.Exec(ctx, `
	INSERT INTO tutorials (id, title, description, published)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE
	SET title = EXCLUDED.title,
		description = EXCLUDED.description,
		published = EXCLUDED.published
	`, t.ID, t.Title, t.Description, t.Published)
	if err != nil {
		return fmt.Errorf("%s: upsert: %w", op, err)
	}
	return nil
}

func (s *PostgresStore) DeleteByID(ctx context.Context, id int64) error {
	const op = "store.postgres.DeleteByID"

	tag, err := s.db.Exec(ctx, `DELETE FROM tutorials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) DeleteAll(ctx context.Context) error {
	const op = "store.postgres.DeleteAll"

	if _, err := s.db.Exec(ctx, `DELETE FROM tutorials`); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *PostgresStore) query(ctx context.Context, op, sql string, args ...any) ([]model.Tutorial, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	tutorials := []model.Tutorial{}
	for rows.Next() {
		var t model.Tutorial
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Published); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		tutorials = append(tutorials, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return tutorials, nil
}

var _ Store = (*PostgresStore)(nil)
