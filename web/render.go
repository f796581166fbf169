package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"
	"unicode/utf8"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"list.html", "form.html", "view.html"}

// TemplateRegistry holds one template set per page.
type TemplateRegistry struct {
	templates map[string]*template.Template
}

// NewTemplateRegistry parses every page together with the shared base layout.
func NewTemplateRegistry() *TemplateRegistry {
	funcs := template.FuncMap{
		"date":    func(t time.Time) string { return t.Format(time.DateOnly) },
		"excerpt": excerpt,
	}
	t := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		t[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/"+name))
	}
	return &TemplateRegistry{templates: t}
}

// Render implements echo.Renderer. Every page is executed through the base
// layout, which pulls in the page's "title" and "content" blocks.
func (t *TemplateRegistry) Render(w io.Writer, name string, data any, _ echo.Context) error {
	tmpl, ok := t.templates[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return tmpl.ExecuteTemplate(w, "base.html", data)
}

var sanitizerUGC = bluemonday.UGCPolicy()

const (
	mdExtensions = parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	mdHTMLFlags  = html.CommonFlags | html.HrefTargetBlank
)

// mdToHTML renders post markdown. Links open in a new tab. The output is not
// sanitized.
func mdToHTML(content string) []byte {
	doc := parser.NewWithExtensions(mdExtensions).Parse([]byte(content))
	return markdown.Render(doc, html.NewRenderer(html.RendererOptions{Flags: mdHTMLFlags}))
}

// renderMarkdown turns post content into HTML that is safe to embed.
func renderMarkdown(content string) template.HTML {
	return template.HTML(sanitizerUGC.SanitizeBytes(mdToHTML(content)))
}

func excerpt(s string) string {
	const max = 150
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "…"
}
