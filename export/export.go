// ABOUTME: Renders a session's turn history as a one-shot Markdown or HTML transcript file.
// ABOUTME: Grounded on the teacher's spec/web RenderMarkdown helper; this is a render-to-file export, not a searchable database.

package export

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/2389-research/bytecraft/core"
)

// Format names the output format for Render/RenderToFile.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ToMarkdown renders a session's turns as a flat Markdown transcript: one
// heading per turn naming its role, followed by its content. Tool-call and
// tool-result turns are rendered as fenced code blocks so the wire payload
// remains legible without markdown escaping.
func ToMarkdown(title string, turns []core.Turn) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}

	for _, t := range turns {
		fmt.Fprintf(&b, "## %s\n\n", roleHeading(t.Type))
		switch t.Type {
		case core.RoleTool:
			fmt.Fprintf(&b, "```\n%s\n```\n\n", t.Content)
		case core.RoleAssistant:
			if t.Content != "" {
				fmt.Fprintf(&b, "%s\n\n", t.Content)
			}
			for _, call := range t.ToolCalls {
				fmt.Fprintf(&b, "*calls `%s`*\n```json\n%s\n```\n\n", call.Name, string(call.Arguments))
			}
		default:
			fmt.Fprintf(&b, "%s\n\n", t.Content)
		}
	}
	return b.String()
}

// ToHTML renders the same transcript as sanitized standalone HTML, via
// Markdown as an intermediate representation.
func ToHTML(title string, turns []core.Turn) (string, error) {
	md := ToMarkdown(title, turns)

	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown to html: %w", err)
	}
	body := sanitizeHTML(buf.String())

	var out strings.Builder
	out.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
	out.WriteString(template.HTMLEscapeString(title))
	out.WriteString("</title></head><body>\n")
	out.WriteString(body)
	out.WriteString("\n</body></html>\n")
	return out.String(), nil
}

// scriptTagPattern strips <script>...</script> blocks from goldmark output;
// goldmark itself never emits raw script tags from Markdown input, but a
// turn's content may contain literal HTML that survives as a raw HTML block.
var scriptTagPattern = regexp.MustCompile(`(?is)<script.*?</script>`)

// dangerousSchemePattern neutralizes javascript:/vbscript: URLs in
// href/src/action attributes for the same raw-HTML-block reason.
var dangerousSchemePattern = regexp.MustCompile(`(?i)(href|src|action)\s*=\s*["']?\s*(javascript|vbscript)\s*:`)

// roleHeading renders a turn's role as a transcript section heading.
func roleHeading(role core.Role) string {
	s := string(role)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sanitizeHTML(html string) string {
	html = scriptTagPattern.ReplaceAllString(html, "")
	html = dangerousSchemePattern.ReplaceAllString(html, "$1=\"#\"")
	return html
}

// RenderToFile writes a session's transcript to path in the given format,
// overwriting any existing file. This is a one-shot export, not a
// searchable store: re-running it simply re-renders the current history.
func RenderToFile(path, title string, turns []core.Turn, format Format) error {
	var content string
	switch format {
	case FormatHTML:
		rendered, err := ToHTML(title, turns)
		if err != nil {
			return err
		}
		content = rendered
	default:
		content = ToMarkdown(title, turns)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}
