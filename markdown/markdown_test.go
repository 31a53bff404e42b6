package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestInlineFormatting(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"__bold__", "<strong>bold</strong>"},
		{"*italic*", "<em>italic</em>"},
		{"_italic_", "<em>italic</em>"},
		{"**bold *italic* text**", "<strong>bold <em>italic</em> text</strong>"},
		{"use `a*b*c` here", "use <code>a*b*c</code> here"},
		{"snake_case_name", "snake_case_name"},
	}
	for _, tt := range tests {
		if got := Inline(tt.input); got != tt.expected {
			t.Errorf("Inline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestInlineEscapesHTML(t *testing.T) {
	got := Inline(`<script>alert("x")</script>`)
	if strings.Contains(got, "<script>") {
		t.Fatalf("script tag not escaped: %q", got)
	}
}

func TestInlineLinks(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"[home](/s/site_1/)", `<a href="/s/site_1/">home</a>`},
		{"[go](https://go.dev)", `<a href="https://go.dev" rel="noopener noreferrer" target="_blank">go</a>`},
		{"[bad](javascript:alert)", "bad"},
	}
	for _, tt := range tests {
		if got := Inline(tt.input); got != tt.expected {
			t.Errorf("Inline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestInlineImage(t *testing.T) {
	got := Inline("![a cat](/uploads/cat.jpg)")
	want := `<img src="/uploads/cat.jpg" alt="a cat" loading="lazy">`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderBlocks(t *testing.T) {
	src := "# Title\n\nfirst line\nsecond line\n\n- one\n- two\n\n1. a\n2. b\n\n> quoted\n\n```\n<b>raw</b>\n```"
	got := ToHTML(src)
	for _, want := range []string{
		"<h1>Title</h1>",
		"<p>first line second line</p>",
		"<ul><li>one</li><li>two</li></ul>",
		"<ol><li>a</li><li>b</li></ol>",
		"<blockquote><p>quoted</p></blockquote>",
		"<pre><code>&lt;b&gt;raw&lt;/b&gt;\n</code></pre>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\ngot: %s", want, got)
		}
	}
}

func TestListClosesBeforeParagraph(t *testing.T) {
	got := ToHTML("- item\ntext")
	if got != "<ul><li>item</li></ul><p>text</p>" {
		t.Errorf("got %q", got)
	}
}

func TestMarkdownComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown("hello **world**").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "<p>hello <strong>world</strong></p>" {
		t.Errorf("got %q", buf.String())
	}
}
