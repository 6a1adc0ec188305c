package web

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown_EmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown(""))
}

func TestRenderMarkdown_ReviewHeading(t *testing.T) {
	result := RenderMarkdown("## 🤖 AI 코드 리뷰\n\n**좋아요**")
	assert.Contains(t, result, "<h2")
	assert.Contains(t, result, "AI 코드 리뷰")
	assert.Contains(t, result, "<strong>좋아요</strong>")
}

func TestRenderMarkdown_CodeBlock(t *testing.T) {
	input := "```tsx\nconst a = <Foo />\n```"
	result := RenderMarkdown(input)
	assert.Contains(t, result, "<code")
	assert.Contains(t, result, "&lt;Foo /&gt;")
}

func TestRenderMarkdown_Link(t *testing.T) {
	result := RenderMarkdown("[click](https://example.com)")
	assert.Contains(t, result, `<a href="https://example.com"`)
	assert.Contains(t, result, "click</a>")
}

func TestRenderMarkdown_SanitizesScript(t *testing.T) {
	result := RenderMarkdown(`<script>alert("xss")</script>`)
	assert.NotContains(t, result, "<script>")
}

func TestRenderMarkdown_GFMTable(t *testing.T) {
	result := RenderMarkdown("| file | note |\n|---|---|\n| a.ts | ok |")
	assert.Contains(t, result, "<table>")
	assert.Contains(t, result, "<td>a.ts</td>")
}

func TestRenderDiff_EmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderDiff(""))
	assert.Equal(t, "", RenderDiff("\n"))
}

func TestRenderDiff_LineClasses(t *testing.T) {
	diff := "diff --git a/a.ts b/a.ts\n--- a/a.ts\n+++ b/a.ts\n@@ -1,3 +1,4 @@\n context line\n+added line\n-removed line\n"
	result := RenderDiff(diff)

	assert.Equal(t, 3, strings.Count(result, `class="diff-file"`))
	assert.Contains(t, result, `class="diff-header"`)
	assert.Contains(t, result, `class="diff-ctx"`)
	assert.Contains(t, result, `class="diff-add"`)
	assert.Contains(t, result, `class="diff-del"`)
}

func TestRenderDiff_EscapesHTML(t *testing.T) {
	result := RenderDiff("+<script>alert('xss')</script>")

	assert.NotContains(t, result, "<script>")
	assert.Contains(t, result, "&lt;script&gt;")
	assert.Contains(t, result, `class="diff-add"`)
}

func TestRenderDiff_OneSpanPerLine(t *testing.T) {
	result := RenderDiff("@@ header\n+add\n-del\n")

	assert.Equal(t, 3, strings.Count(result, "<span"))
}
