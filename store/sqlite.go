package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"blog/db"
	"blog/domain"
)

const postColumns = "id, title, content, createdAt, updatedAt"

// SQLiteStore persists posts in the posts table of a SQLite database.
type SQLiteStore struct {
	db    *sql.DB
	clock domain.Clock
	ids   domain.IDGenerator
}

// OpenSQLite opens the database at dsn, applies pending migrations and
// returns a ready store. dsn can be a file path or ":memory:".
func OpenSQLite(dsn string, clock domain.Clock, ids domain.IDGenerator) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dsn == ":memory:" {
		// Each connection to :memory: is a separate database.
		conn.SetMaxOpenConns(1)
	}

	if err := db.MigrateUp(conn, db.SQLite); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating %s: %w", dsn, err)
	}
	return NewSQLiteStore(conn, clock, ids), nil
}

// NewSQLiteStore wraps an existing, migrated connection.
func NewSQLiteStore(conn *sql.DB, clock domain.Clock, ids domain.IDGenerator) *SQLiteStore {
	if clock == nil {
		clock = domain.RealClock{}
	}
	if ids == nil {
		ids = domain.UUIDGenerator{}
	}
	return &SQLiteStore{db: conn, clock: clock, ids: ids}
}

// DB exposes the underlying connection for tooling.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

func (s *SQLiteStore) List(ctx context.Context) ([]domain.Post, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+postColumns+" FROM posts ORDER BY createdAt DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		var p domain.Post
		if err := scanPost(rows, &p); err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.Post, error) {
	return s.get(ctx, s.db, id)
}

func (s *SQLiteStore) Create(ctx context.Context, in domain.CreatePost) (*domain.Post, error) {
	now := domain.Timestamp(s.clock)
	p := domain.Post{
		ID:        s.ids.New(),
		Title:     in.Title,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO posts ("+postColumns+") VALUES (?, ?, ?, ?, ?)",
		p.ID, p.Title, p.Content, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting post: %w", err)
	}
	return &p, nil
}

func (s *SQLiteStore) Update(ctx context.Context, id string, in domain.UpdatePost) (*domain.Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE posts SET title = COALESCE(?, title), content = COALESCE(?, content), updatedAt = ? WHERE id = ?",
		nullString(in.Title), nullString(in.Content), domain.Timestamp(s.clock), id)
	if err != nil {
		return nil, fmt.Errorf("updating post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating post: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	p, err := s.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("deleting post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting post: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) get(ctx context.Context, q queryer, id string) (*domain.Post, error) {
	var p domain.Post
	err := scanPost(q.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts WHERE id = ?", id), &p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding post %s: %w", id, err)
	}
	return &p, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner, p *domain.Post) error {
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return nil
}
