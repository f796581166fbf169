// Package web serves the blog UI. It keeps no state of its own: the current
// screen travels in hidden form fields, and a plain GET always starts on the
// post list.
package web

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"blog/client"
	"blog/domain"
	"blog/schema"
)

// PostAPI is the subset of the API client the UI needs.
type PostAPI interface {
	ListPosts(ctx context.Context) ([]domain.Post, error)
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	CreatePost(ctx context.Context, in domain.CreatePost) (*domain.Post, error)
	UpdatePost(ctx context.Context, id string, in domain.UpdatePost) (*domain.Post, error)
	DeletePost(ctx context.Context, id string) error
}

type Handler struct {
	API    PostAPI
	Logger *slog.Logger
}

// form actions that are not screen transitions
const (
	actionSave   = "save"
	actionDelete = "delete"
)

type listPage struct {
	Posts  []domain.Post
	Error  string // loading the list failed
	Notice string // a delete or fetch failed; the list is still shown
}

type formPage struct {
	Editing     bool
	Post        *domain.Post
	Title       string
	Content     string
	OrigTitle   string
	OrigContent string
	Error       string
	FieldErrors map[string]string
}

type viewPage struct {
	Post        *domain.Post
	ContentHTML template.HTML
	Edited      bool
}

func (h *Handler) Index(c echo.Context) error {
	return h.render(c, Initial(), "")
}

// Action handles every form submission. The hidden "state" field is the screen
// the form was rendered from; "event" is what the user clicked.
func (h *Handler) Action(c echo.Context) error {
	ctx := c.Request().Context()
	cur := Screen{State: State(c.FormValue("state"))}
	id := c.FormValue("id")

	switch ev := c.FormValue("event"); ev {
	case actionSave:
		return h.save(c, cur, id)
	case actionDelete:
		msg := ""
		if cur.State != StateList {
			msg = "Delete is only available from the post list"
		} else if err := h.API.DeletePost(ctx, id); err != nil {
			h.Logger.Warn("deleting post", "post_id", id, "error", err)
			msg = errMessage(err, "Failed to delete post")
		}
		return h.render(c, Initial(), msg)
	default:
		var post *domain.Post
		if id != "" && (Event(ev) == EventEdit || Event(ev) == EventView) {
			p, err := h.API.GetPost(ctx, id)
			if err != nil {
				return h.render(c, Initial(), errMessage(err, "Failed to fetch post"))
			}
			post = p
		}

		next, err := cur.Next(Event(ev), post)
		if err != nil {
			h.Logger.Debug("rejected transition", "state", cur.State, "event", ev, "error", err)
			return h.render(c, Initial(), "")
		}
		return h.render(c, next, "")
	}
}

func (h *Handler) save(c echo.Context, cur Screen, id string) error {
	ctx := c.Request().Context()
	title, content := c.FormValue("title"), c.FormValue("content")
	page := formPage{Editing: cur.State == StateEdit, Title: title, Content: content}

	var err error
	switch cur.State {
	case StateCreate:
		in := domain.CreatePost{Title: title, Content: content}
		if err = schema.Create(in); err == nil {
			_, err = h.API.CreatePost(ctx, in)
		}
	case StateEdit:
		page.Post = &domain.Post{ID: id}
		page.OrigTitle, page.OrigContent = c.FormValue("orig_title"), c.FormValue("orig_content")
		in := changedFields(title, content, page.OrigTitle, page.OrigContent)
		if err = schema.Update(in); err == nil {
			_, err = h.API.UpdatePost(ctx, id, in)
		}
	default:
		return h.render(c, Initial(), "")
	}

	if err != nil {
		page.FieldErrors, page.Error = describe(err)
		return c.Render(http.StatusUnprocessableEntity, "form.html", page)
	}

	next, _ := cur.Next(EventSaved, nil)
	return h.render(c, next, "")
}

// changedFields builds an update from the edit form. Only inputs that differ
// from the stored value are sent, so a cleared input is sent as empty and
// rejected by validation.
func changedFields(title, content, origTitle, origContent string) domain.UpdatePost {
	var in domain.UpdatePost
	if title != origTitle {
		in.Title = &title
	}
	if content != origContent {
		in.Content = &content
	}
	return in
}

// describe splits err into per-field messages and a general message.
func describe(err error) (map[string]string, string) {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		return verr.Messages(), ""
	}

	var cerr *client.Error
	if errors.As(err, &cerr) && len(cerr.Fields) > 0 {
		v := &schema.ValidationError{Fields: cerr.Fields}
		return v.Messages(), cerr.Message
	}
	return nil, errMessage(err, "Failed to save post")
}

func errMessage(err error, fallback string) string {
	var cerr *client.Error
	if errors.As(err, &cerr) && cerr.Message != "" {
		return cerr.Message
	}
	return fallback
}

// render shows screen s. notice is an error from a list action, displayed
// above the posts.
func (h *Handler) render(c echo.Context, s Screen, notice string) error {
	switch s.State {
	case StateCreate:
		return c.Render(http.StatusOK, "form.html", formPage{})
	case StateEdit:
		return c.Render(http.StatusOK, "form.html", formPage{
			Editing:     true,
			Post:        s.Post,
			Title:       s.Post.Title,
			Content:     s.Post.Content,
			OrigTitle:   s.Post.Title,
			OrigContent: s.Post.Content,
		})
	case StateView:
		return c.Render(http.StatusOK, "view.html", viewPage{
			Post:        s.Post,
			ContentHTML: renderMarkdown(s.Post.Content),
			Edited:      !s.Post.UpdatedAt.Equal(s.Post.CreatedAt),
		})
	}

	page := listPage{Notice: notice}
	posts, err := h.API.ListPosts(c.Request().Context())
	if err != nil {
		h.Logger.Warn("loading posts", "error", err)
		page.Error = errMessage(err, "Failed to load posts")
	}
	page.Posts = posts
	return c.Render(http.StatusOK, "list.html", page)
}
