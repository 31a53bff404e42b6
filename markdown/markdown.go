// Package markdown renders the markdown subset accepted in page sections and
// blog post bodies. All text is HTML-escaped; only http(s), mailto and
// site-relative link targets survive.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/a-h/templ"
)

var (
	reBold       = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
	reItalic     = regexp.MustCompile(`\*([^*]+)\*|\b_([^_]+)_\b`)
	reInlineCode = regexp.MustCompile("`([^`]+)`")
	reLink       = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]*)\)`)
	reImage      = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]*)\)`)
	reOrdered    = regexp.MustCompile(`^\d+\.\s+`)
	reHeading    = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
)

// Markdown returns a templ.Component that renders src as HTML.
func Markdown(src string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		Render(&buf, src)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// ToHTML renders src and returns the HTML string.
func ToHTML(src string) string {
	var buf bytes.Buffer
	Render(&buf, src)
	return buf.String()
}

type block int

const (
	blockNone block = iota
	blockPara
	blockList
	blockOrdered
	blockQuote
	blockCode
)

var closeTags = map[block]string{
	blockPara:    "</p>",
	blockList:    "</ul>",
	blockOrdered: "</ol>",
	blockQuote:   "</p></blockquote>",
	blockCode:    "</code></pre>",
}

// Render writes the HTML form of src to buf.
func Render(buf *bytes.Buffer, src string) {
	cur := blockNone
	open := func(b block, tag string) {
		if cur == b {
			return
		}
		buf.WriteString(closeTags[cur])
		buf.WriteString(tag)
		cur = b
	}
	closeBlock := func() {
		buf.WriteString(closeTags[cur])
		cur = blockNone
	}

	for _, raw := range strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n") {
		line := strings.TrimRight(raw, " \t")
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			if cur == blockCode {
				closeBlock()
			} else {
				open(blockCode, "<pre><code>")
			}
			continue
		}
		if cur == blockCode {
			buf.WriteString(html.EscapeString(raw))
			buf.WriteByte('\n')
			continue
		}

		switch {
		case trimmed == "":
			closeBlock()
		case reHeading.MatchString(trimmed):
			closeBlock()
			m := reHeading.FindStringSubmatch(trimmed)
			level := string(rune('0' + len(m[1])))
			buf.WriteString("<h" + level + ">" + Inline(m[2]) + "</h" + level + ">")
		case trimmed == "---" || trimmed == "***":
			closeBlock()
			buf.WriteString("<hr>")
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			open(blockList, "<ul>")
			buf.WriteString("<li>" + Inline(trimmed[2:]) + "</li>")
		case reOrdered.MatchString(trimmed):
			open(blockOrdered, "<ol>")
			buf.WriteString("<li>" + Inline(reOrdered.ReplaceAllString(trimmed, "")) + "</li>")
		case strings.HasPrefix(trimmed, ">"):
			if cur == blockQuote {
				buf.WriteString("<br>")
			}
			open(blockQuote, "<blockquote><p>")
			buf.WriteString(Inline(strings.TrimSpace(strings.TrimPrefix(trimmed, ">"))))
		default:
			if cur == blockPara {
				buf.WriteByte(' ')
			}
			open(blockPara, "<p>")
			buf.WriteString(Inline(trimmed))
		}
	}
	closeBlock()
}

// Inline escapes s and applies inline formatting: code spans, images, links,
// bold and italic. Code span contents are not formatted further.
func Inline(s string) string {
	var codes []string
	s = reInlineCode.ReplaceAllStringFunc(s, func(m string) string {
		codes = append(codes, "<code>"+html.EscapeString(m[1:len(m)-1])+"</code>")
		return "\x00" + string(rune('a'+len(codes)-1)) + "\x00"
	})
	s = html.EscapeString(s)
	s = reImage.ReplaceAllStringFunc(s, func(m string) string {
		sub := reImage.FindStringSubmatch(m)
		href, ok := safeURL(sub[2])
		if !ok {
			return sub[1]
		}
		return `<img src="` + href + `" alt="` + sub[1] + `" loading="lazy">`
	})
	s = reLink.ReplaceAllStringFunc(s, func(m string) string {
		sub := reLink.FindStringSubmatch(m)
		href, ok := safeURL(sub[2])
		if !ok {
			return sub[1]
		}
		attrs := ""
		if strings.HasPrefix(href, "http") {
			attrs = ` rel="noopener noreferrer" target="_blank"`
		}
		return `<a href="` + href + `"` + attrs + `>` + sub[1] + `</a>`
	})
	s = reBold.ReplaceAllString(s, "<strong>$1$2</strong>")
	s = reItalic.ReplaceAllString(s, "<em>$1$2</em>")
	for i, c := range codes {
		s = strings.Replace(s, "\x00"+string(rune('a'+i))+"\x00", c, 1)
	}
	return s
}

// safeURL accepts an already HTML-escaped link target and reports whether it
// may be emitted as an attribute.
func safeURL(escaped string) (string, bool) {
	raw := html.UnescapeString(escaped)
	if strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "#") {
		return html.EscapeString(raw), true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "mailto":
		return html.EscapeString(u.String()), true
	}
	return "", false
}
