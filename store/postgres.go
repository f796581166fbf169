package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"blog/db"
	"blog/domain"
)

const pgPostColumns = "id, title, content, created_at, updated_at"

// PostgresStore persists posts in PostgreSQL through a pgx connection pool.
type PostgresStore struct {
	pool  *pgxpool.Pool
	clock domain.Clock
	ids   domain.IDGenerator
}

// OpenPostgres connects to url, applies pending migrations and returns a
// ready store.
func OpenPostgres(ctx context.Context, url string, clock domain.Clock, ids domain.IDGenerator) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	// golang-migrate drives database/sql, so borrow the pool for the run.
	sqlDB := stdlib.OpenDBFromPool(pool)
	err = db.MigrateUp(sqlDB, db.Postgres)
	sqlDB.Close()
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrating postgres: %w", err)
	}

	return NewPostgresStore(pool, clock, ids), nil
}

// NewPostgresStore wraps an existing pool whose schema is already migrated.
func NewPostgresStore(pool *pgxpool.Pool, clock domain.Clock, ids domain.IDGenerator) *PostgresStore {
	if clock == nil {
		clock = domain.RealClock{}
	}
	if ids == nil {
		ids = domain.UUIDGenerator{}
	}
	return &PostgresStore{pool: pool, clock: clock, ids: ids}
}

func (s *PostgresStore) List(ctx context.Context) ([]domain.Post, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+pgPostColumns+" FROM posts ORDER BY created_at DESC, seq DESC")
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

func (s *PostgresStore) Get(ctx context.Context, id string) (*domain.Post, error) {
	if !validID(id) {
		return nil, nil
	}
	row := s.pool.QueryRow(ctx, "SELECT "+pgPostColumns+" FROM posts WHERE id = $1", id)
	return collectOne(row, id)
}

func (s *PostgresStore) Create(ctx context.Context, in domain.CreatePost) (*domain.Post, error) {
	now := domain.Timestamp(s.clock)
	p := domain.Post{
		ID:        s.ids.New(),
		Title:     in.Title,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.pool.Exec(ctx,
		"INSERT INTO posts ("+pgPostColumns+") VALUES ($1, $2, $3, $4, $5)",
		p.ID, p.Title, p.Content, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting post: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, in domain.UpdatePost) (*domain.Post, error) {
	if !validID(id) {
		return nil, nil
	}
	row := s.pool.QueryRow(ctx,
		`UPDATE posts
		    SET title = COALESCE($1, title), content = COALESCE($2, content), updated_at = $3
		  WHERE id = $4
		RETURNING `+pgPostColumns,
		in.Title, in.Content, domain.Timestamp(s.clock), id)
	return collectOne(row, id)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	tag, err := s.pool.Exec(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("deleting post: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// validID reports whether id can name a row at all. The id column is a uuid,
// so anything else is simply absent rather than a query error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func collectOne(row pgx.Row, id string) (*domain.Post, error) {
	var p domain.Post
	if err := scanPost(row, &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding post %s: %w", id, err)
	}
	return &p, nil
}
