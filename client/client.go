// Package client calls the blog API and unwraps its response envelope into
// plain values or a single *Error. It performs no retries or caching.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"blog/api"
	"blog/domain"
	"blog/schema"
)

// Error is returned by every Client call that did not succeed.
type Error struct {
	// StatusCode is zero when the request never got a response.
	StatusCode int
	Message    string
	// Fields is set when the server rejected the payload field by field.
	Fields []schema.FieldError
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Client is a typed caller for the five post endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a client for the API rooted at baseURL, e.g. "http://localhost:3000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ListPosts(ctx context.Context) ([]domain.Post, error) {
	posts, err := call[[]domain.Post](ctx, c, http.MethodGet, "/api/posts", nil, "Failed to fetch posts", "")
	if err != nil {
		return nil, err
	}
	if posts == nil {
		return []domain.Post{}, nil
	}
	for _, p := range *posts {
		if err := schema.Post(p); err != nil {
			return nil, &Error{StatusCode: http.StatusOK, Message: "Failed to fetch posts", Err: err}
		}
	}
	return *posts, nil
}

func (c *Client) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	return callPost(ctx, c, http.MethodGet, postPath(id), nil, "Failed to fetch post", api.MsgNotFound)
}

func (c *Client) CreatePost(ctx context.Context, in domain.CreatePost) (*domain.Post, error) {
	return callPost(ctx, c, http.MethodPost, "/api/posts", in, "Failed to create post", "Failed to create post")
}

func (c *Client) UpdatePost(ctx context.Context, id string, in domain.UpdatePost) (*domain.Post, error) {
	return callPost(ctx, c, http.MethodPut, postPath(id), in, "Failed to update post", "Failed to update post")
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	_, err := call[api.Empty](ctx, c, http.MethodDelete, postPath(id), nil, "Failed to delete post", "")
	return err
}

func postPath(id string) string {
	return "/api/posts/" + url.PathEscape(id)
}

func callPost(ctx context.Context, c *Client, method, path string, body any, failMsg, emptyMsg string) (*domain.Post, error) {
	p, err := call[domain.Post](ctx, c, method, path, body, failMsg, emptyMsg)
	if err != nil {
		return nil, err
	}
	if err := schema.Post(*p); err != nil {
		return nil, &Error{StatusCode: http.StatusOK, Message: failMsg, Err: err}
	}
	return p, nil
}

// call issues one request and unwraps the envelope. An empty emptyMsg means
// the call expects no data.
func call[T any](ctx context.Context, c *Client, method, path string, body any, failMsg, emptyMsg string) (*T, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Message: failMsg, Err: err}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &Error{Message: failMsg, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Message: failMsg, Err: err}
	}
	defer resp.Body.Close()

	var env api.Response[T]
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok || decodeErr != nil || !env.Success {
		msg := failMsg
		if env.Error != "" {
			msg = env.Error
		}
		e := &Error{StatusCode: resp.StatusCode, Message: msg, Fields: env.Details}
		if decodeErr != nil && ok {
			e.Err = fmt.Errorf("decoding response: %w", decodeErr)
		}
		return nil, e
	}

	if emptyMsg != "" && env.Data == nil {
		return nil, &Error{StatusCode: resp.StatusCode, Message: emptyMsg}
	}
	return env.Data, nil
}
