package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/sitebuilder/markdown"
)

// Page renders a published page with its sections and, on contact pages,
// the contact form.
func Page(p PageView) templ.Component {
	meta := p.Meta
	meta.Title = firstNonEmpty(meta.Title, p.Title, p.Site.Name)
	p.Meta = meta
	return layout(p.Site, meta, WebPageJsonLD(p), templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<article id="page-`)
		h.text(p.PageID)
		h.raw(`"><h1>`)
		h.text(p.Title)
		h.raw(`</h1>`)
		for _, s := range p.Sections {
			h.component(ctx, section(s))
		}
		if p.Contact != nil {
			h.component(ctx, ContactFormView(*p.Contact))
		}
		h.raw(`</article>`)
		return h.err
	}))
}

func section(s Section) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section`)
		if s.ID != "" {
			h.raw(` id="`)
			h.text(s.ID)
			h.raw(`"`)
		}
		h.raw(`>`)
		if s.Heading != "" {
			h.raw(`<h2>`)
			h.text(s.Heading)
			h.raw(`</h2>`)
		}
		if s.ImageURL != "" {
			h.raw(`<img src="`)
			h.text(string(templ.URL(s.ImageURL)))
			h.raw(`" alt="`)
			h.text(s.Heading)
			h.raw(`" loading="lazy">`)
		}
		switch {
		case s.Markdown != "":
			h.component(ctx, markdown.Markdown(s.Markdown))
		case s.Text != "":
			h.raw(`<p>`)
			h.text(s.Text)
			h.raw(`</p>`)
		}
		h.raw(`</section>`)
		return h.err
	})
}

// ContactFormView renders the public contact form. Hidden fields are
// omitted and a pending flash message is shown above the form.
func ContactFormView(f ContactForm) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="contact">`)
		if f.Flash != "" {
			h.raw(`<p class="flash" role="status">`)
			h.text(f.Flash)
			h.raw(`</p>`)
		}
		h.raw(`<form method="post" action="`)
		h.text(f.Action)
		h.raw(`"><input type="hidden" name="_csrf" value="`)
		h.text(f.CSRFToken)
		h.raw(`">`)
		if f.ShowName {
			h.raw(`<label>Name <input type="text" name="name" maxlength="200" required></label>`)
		}
		if f.ShowEmail {
			h.raw(`<label>Email <input type="email" name="email" maxlength="320" required></label>`)
		}
		if f.ShowMessage {
			h.raw(`<label>Message <textarea name="message" rows="6" maxlength="5000" required></textarea></label>`)
		}
		h.raw(`<button type="submit">Send</button></form>`)
		if f.Map != nil {
			h.raw(`<iframe class="map" title="Map" width="100%" height="320" loading="lazy" src="`)
			h.text(OSMEmbedURL(*f.Map))
			h.raw(`"></iframe>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

// NotFound renders the 404 page for public sites.
func NotFound() templ.Component {
	return errorPage("Page not found", "The page you are looking for does not exist or has not been published yet.")
}

// ServerError renders the 500 page for public sites.
func ServerError() templ.Component {
	return errorPage("Something went wrong", "Please try again in a moment.")
}

func errorPage(title, detail string) templ.Component {
	return layout(Site{}, Meta{Title: title}, "", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h1>`)
		h.text(title)
		h.raw(`</h1><p>`)
		h.text(detail)
		h.raw(`</p><p><a href="/">Home</a></p>`)
		return h.err
	}))
}
