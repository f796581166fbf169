// Package store holds the post storage adapters. Every adapter satisfies the
// same PostStore contract so callers see a single failure shape whatever the
// backing store is.
package store

import (
	"context"

	"blog/domain"
)

// PostStore is the sole owner of post records. Input is assumed to be
// validated by the caller.
//
// Absence is a normal result: Get and Update return a nil post with a nil
// error, Delete returns false. A non-nil error always means the backing store
// failed.
type PostStore interface {
	// List returns every post, newest first. An empty store yields an empty,
	// non-nil slice.
	List(ctx context.Context) ([]domain.Post, error)
	Get(ctx context.Context, id string) (*domain.Post, error)
	// Create assigns a fresh id, stamps both timestamps with the current time
	// and stores the post at the head of the list.
	Create(ctx context.Context, p domain.CreatePost) (*domain.Post, error)
	// Update applies the present fields of p and refreshes UpdatedAt, even if
	// nothing changed. It never creates a missing post.
	Update(ctx context.Context, id string, p domain.UpdatePost) (*domain.Post, error)
	// Delete reports whether a post existed and was removed.
	Delete(ctx context.Context, id string) (bool, error)
	Close() error
}
