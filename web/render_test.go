package web

import (
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

func TestRenderMarkdown(t *testing.T) {
	got := string(renderMarkdown("# Title\n\nSome **bold** text."))
	assert.Assert(t, strings.Contains(got, "<strong>bold</strong>"), got)
	assert.Assert(t, strings.Contains(got, "<h1"), got)
}

func TestRenderMarkdown_Sanitizes(t *testing.T) {
	got := string(renderMarkdown(`hello <script>alert(1)</script> <a href="javascript:alert(1)">x</a>`))
	assert.Assert(t, !strings.Contains(got, "<script>"), got)
	assert.Assert(t, !strings.Contains(got, "javascript:"), got)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, excerpt("short"), "short")

	long := strings.Repeat("é", 200)
	got := excerpt(long)
	assert.Assert(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, len([]rune(got)), 151)
}
