package web

import (
	"bytes"
	"strings"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdRenderer    goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
)

func init() {
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	htmlSanitizer = bluemonday.UGCPolicy()
}

// RenderMarkdown converts a markdown string to sanitized HTML.
// Returns empty string for empty input.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return htmlSanitizer.Sanitize(src)
	}

	return htmlSanitizer.Sanitize(buf.String())
}

// RenderDiff converts a unified diff into HTML with line-level CSS classes.
// Each line is HTML-escaped and wrapped in a <span> with a class indicating its diff role:
//   - diff-file: file headers ("diff --git", "index", "---", "+++")
//   - diff-header: hunk headers (prefix "@@")
//   - diff-add: added lines (prefix "+")
//   - diff-del: deleted lines (prefix "-")
//   - diff-ctx: context lines (no special prefix)
func RenderDiff(diff string) string {
	diff = strings.TrimSuffix(diff, "\n")
	if diff == "" {
		return ""
	}

	lines := strings.Split(diff, "\n")
	var buf strings.Builder
	buf.Grow(len(diff) * 2)

	for i, line := range lines {
		if i > 0 {
			buf.WriteByte('\n')
		}

		buf.WriteString(`<span class="`)
		buf.WriteString(classForDiffLine(line))
		buf.WriteString(`">`)
		buf.WriteString(templ.EscapeString(line))
		buf.WriteString(`</span>`)
	}

	return buf.String()
}

func classForDiffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "diff --git"),
		strings.HasPrefix(line, "index "),
		strings.HasPrefix(line, "+++"),
		strings.HasPrefix(line, "---"):
		return "diff-file"
	case strings.HasPrefix(line, "@@"):
		return "diff-header"
	case strings.HasPrefix(line, "+"):
		return "diff-add"
	case strings.HasPrefix(line, "-"):
		return "diff-del"
	}
	return "diff-ctx"
}
