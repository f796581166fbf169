package store

import (
	"context"
	"sync"

	"blog/domain"
)

// MemoryStore keeps posts in an ordered slice, newest first. It lives as long
// as the process and is meant for development and tests.
type MemoryStore struct {
	mu    sync.Mutex
	posts []domain.Post
	clock domain.Clock
	ids   domain.IDGenerator
}

// NewMemoryStore creates an empty store. Nil clock or ids fall back to the
// real clock and random UUIDs.
func NewMemoryStore(clock domain.Clock, ids domain.IDGenerator) *MemoryStore {
	if clock == nil {
		clock = domain.RealClock{}
	}
	if ids == nil {
		ids = domain.UUIDGenerator{}
	}
	return &MemoryStore{
		posts: []domain.Post{},
		clock: clock,
		ids:   ids,
	}
}

func (s *MemoryStore) List(_ context.Context) ([]domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Post, len(s.posts))
	copy(out, s.posts)
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, nil
	}
	p := s.posts[i]
	return &p, nil
}

func (s *MemoryStore) Create(_ context.Context, in domain.CreatePost) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := domain.Timestamp(s.clock)
	p := domain.Post{
		ID:        s.ids.New(),
		Title:     in.Title,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.posts = append([]domain.Post{p}, s.posts...)
	return &p, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, in domain.UpdatePost) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, nil
	}
	p := s.posts[i]
	in.Apply(&p)
	p.UpdatedAt = domain.Timestamp(s.clock)
	s.posts[i] = p
	return &p, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.posts = append(s.posts[:i], s.posts[i+1:]...)
	return true, nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) indexOf(id string) int {
	for i := range s.posts {
		if s.posts[i].ID == id {
			return i
		}
	}
	return -1
}
