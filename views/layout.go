// Package views holds the templ components for publicly rendered sites.
package views

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// htmlWriter collects the first write error so components can emit markup
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(parts ...string) {
	for _, p := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, p)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// layout wraps body in the document shell shared by all public pages.
func layout(site Site, meta Meta, jsonLD string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(meta.Title)
		h.raw(`</title>`)
		if meta.Description != "" {
			h.raw(`<meta name="description" content="`)
			h.text(meta.Description)
			h.raw(`">`)
		}
		if len(meta.Keywords) > 0 {
			h.raw(`<meta name="keywords" content="`)
			h.text(strings.Join(meta.Keywords, ", "))
			h.raw(`">`)
		}
		if meta.Canonical != "" {
			h.raw(`<link rel="canonical" href="`)
			h.text(meta.Canonical)
			h.raw(`"><meta property="og:url" content="`)
			h.text(meta.Canonical)
			h.raw(`">`)
		}
		h.raw(`<meta property="og:title" content="`)
		h.text(meta.Title)
		h.raw(`"><meta property="og:type" content="website">`)
		if jsonLD != "" {
			h.raw(`<script type="application/ld+json">`, jsonLD, `</script>`)
		}
		h.raw(`<style>:root{--accent:`, accentColor(site.ColorScheme), `;--font:`, fontStack(site.Fonts), `}body{font-family:var(--font);margin:0 auto;max-width:60rem;padding:1rem;line-height:1.6}`,
			`a{color:var(--accent)}nav a{margin-right:1rem}nav a.active{font-weight:700}`,
			`section{margin:2rem 0}img{max-width:100%}.flash{padding:.75rem;border:1px solid var(--accent)}</style>`)
		h.raw(`</head><body>`)
		if site.Name != "" {
			h.raw(`<header><a class="brand" href="`)
			h.text(site.URL)
			h.raw(`">`)
			h.text(site.Name)
			h.raw(`</a>`)
			if len(site.Nav) > 0 {
				h.raw(`<nav>`)
				for _, l := range site.Nav {
					h.raw(`<a href="`)
					h.text(l.URL)
					h.raw(`"`)
					if l.Active {
						h.raw(` class="active" aria-current="page"`)
					}
					h.raw(`>`)
					h.text(l.Label)
					h.raw(`</a>`)
				}
				h.raw(`</nav>`)
			}
			h.raw(`</header>`)
		}
		h.raw(`<main>`)
		h.component(ctx, body)
		h.raw(`</main></body></html>`)
		return h.err
	})
}
