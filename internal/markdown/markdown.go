// Package markdown renders the small Markdown subset the assistant answers
// use: **bold**, `code`, "- " list items and blank-line separated blocks.
//
// Rendering is a single left-to-right pass per line. Inline constructs never
// span a line break, and a code span is taken literally, so `**x**` inside
// backticks stays as written. The output is not escaped; use SafeHTML for
// anything that reaches a browser.
package markdown

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const (
	strongOpen = `<strong class="font-semibold text-white">`
	codeOpen   = `<code class="bg-white/10 px-1.5 py-0.5 rounded text-sm font-mono text-white">`
	itemOpen   = `<li class="ml-4 list-disc">`
	listOpen   = `<ul class="mb-4 text-gray-300 leading-relaxed space-y-1">`
	paraOpen   = `<p class="mb-3 text-gray-300 leading-relaxed">`

	blockSeparator = "\n\n"
)

// ToHTML renders md. Blocks are emitted back to back with no separator and
// lines inside a block keep their newline.
func ToHTML(md string) string {
	if md == "" {
		return ""
	}

	var out strings.Builder
	for _, block := range strings.Split(md, blockSeparator) {
		renderBlock(&out, block)
	}
	return out.String()
}

func renderBlock(out *strings.Builder, block string) {
	var body strings.Builder
	hasItem := false

	for i, line := range strings.Split(block, "\n") {
		if i > 0 {
			body.WriteByte('\n')
		}
		if content, ok := listItem(line); ok {
			hasItem = true
			body.WriteString(itemOpen)
			renderInline(&body, content)
			body.WriteString("</li>")
			continue
		}
		renderInline(&body, line)
	}

	if hasItem {
		out.WriteString(listOpen)
		out.WriteString(body.String())
		out.WriteString("</ul>")
		return
	}
	out.WriteString(paraOpen)
	out.WriteString(body.String())
	out.WriteString("</p>")
}

// listItem reports whether line is "- item" after optional indentation. At
// least one blank must follow the dash.
func listItem(line string) (string, bool) {
	rest := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(rest, "-") {
		return "", false
	}
	rest = rest[1:]
	content := strings.TrimLeft(rest, " \t")
	if len(content) == len(rest) {
		return "", false
	}
	return content, true
}

// renderInline writes one line with bold and code spans expanded
func renderInline(out *strings.Builder, line string) {
	for i := 0; i < len(line); {
		switch {
		case line[i] == '`':
			if end := codeEnd(line, i); end > 0 {
				out.WriteString(codeOpen)
				out.WriteString(line[i+1 : end])
				out.WriteString("</code>")
				i = end + 1
				continue
			}
		case strings.HasPrefix(line[i:], "**"):
			if end := boldEnd(line, i+2); end >= 0 {
				out.WriteString(strongOpen)
				renderCode(out, line[i+2:end])
				out.WriteString("</strong>")
				i = end + 2
				continue
			}
		}
		out.WriteByte(line[i])
		i++
	}
}

// renderCode writes s with only code spans expanded
func renderCode(out *strings.Builder, s string) {
	for i := 0; i < len(s); {
		if s[i] == '`' {
			if end := codeEnd(s, i); end > 0 {
				out.WriteString(codeOpen)
				out.WriteString(s[i+1 : end])
				out.WriteString("</code>")
				i = end + 1
				continue
			}
		}
		out.WriteByte(s[i])
		i++
	}
}

// codeEnd returns the index of the backtick closing the span opened at
// start, or -1. Empty spans do not count.
func codeEnd(s string, start int) int {
	j := strings.IndexByte(s[start+1:], '`')
	if j <= 0 {
		return -1
	}
	return start + 1 + j
}

// boldEnd returns the index of the first "**" at or after from that is not
// inside a code span, or -1.
func boldEnd(s string, from int) int {
	for i := from; i < len(s); {
		if s[i] == '`' {
			if end := codeEnd(s, i); end > 0 {
				i = end + 1
				continue
			}
		}
		if strings.HasPrefix(s[i:], "**") {
			return i
		}
		i++
	}
	return -1
}

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("strong", "code", "li", "ul", "p")
	p.AllowAttrs("class").OnElements("strong", "code", "li", "ul", "p")
	return p
}

// SafeHTML renders md and strips every element and attribute ToHTML does
// not produce itself.
func SafeHTML(md string) string {
	return policy.Sanitize(ToHTML(md))
}
