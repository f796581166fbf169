package domain

import (
	"time"
)

type Post struct {
	ID        string    `json:"id" validate:"required,uuid"`
	Title     string    `json:"title" validate:"min=1,max=100"`
	Content   string    `json:"content" validate:"min=1"`
	CreatedAt time.Time `json:"createdAt" validate:"required"`
	UpdatedAt time.Time `json:"updatedAt" validate:"required,gtefield=CreatedAt"`
}

// CreatePost is the payload accepted when a post is created. The id and both
// timestamps are always assigned by the store.
type CreatePost struct {
	Title   string `json:"title" validate:"min=1,max=100"`
	Content string `json:"content" validate:"min=1"`
}

// UpdatePost is a partial update: nil fields are left untouched.
type UpdatePost struct {
	Title   *string `json:"title,omitempty" validate:"omitnil,min=1,max=100"`
	Content *string `json:"content,omitempty" validate:"omitnil,min=1"`
}

// Apply copies the present fields of u onto p.
func (u UpdatePost) Apply(p *Post) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
}
