package store

import (
	"context"
	"fmt"

	"blog/domain"
)

// WelcomePosts is the sample content a fresh blog starts with, oldest first.
var WelcomePosts = []domain.CreatePost{
	{
		Title:   "Getting Started with Go and Echo",
		Content: "In this post, we'll explore how to build a small web API with Go and the Echo framework. A single static binary, a relational store and a handful of handlers are all a blog needs.",
	},
	{
		Title:   "Welcome to our Blog!",
		Content: "This is our first blog post. We're excited to share our thoughts and ideas with you. Stay tuned for more content!",
	},
}

// Seed inserts WelcomePosts so the most welcoming one ends up on top.
func Seed(ctx context.Context, s PostStore) ([]domain.Post, error) {
	created := make([]domain.Post, 0, len(WelcomePosts))
	for _, p := range WelcomePosts {
		post, err := s.Create(ctx, p)
		if err != nil {
			return created, fmt.Errorf("seeding %q: %w", p.Title, err)
		}
		created = append(created, *post)
	}
	return created, nil
}

// SeedIfEmpty seeds s only when it holds no posts. It reports how many posts
// were inserted.
func SeedIfEmpty(ctx context.Context, s PostStore) (int, error) {
	existing, err := s.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("checking for posts: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	created, err := Seed(ctx, s)
	return len(created), err
}
