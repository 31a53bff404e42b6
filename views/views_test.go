package views

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c interface {
	Render(context.Context, io.Writer) error
}) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestPageRendersMetaAndSections(t *testing.T) {
	out := render(t, Page(PageView{
		Site: Site{ID: "site_1", Name: "example.com", URL: "/s/site_1/",
			Nav: []NavLink{{Label: "Home", URL: "/s/site_1/", Active: true}, {Label: "About", URL: "/s/site_1/about/"}}},
		PageID: "home",
		Title:  "Welcome",
		Meta: Meta{
			Title:       "Welcome | example.com",
			Description: "A <small> site",
			Keywords:    []string{"go", "sites"},
			Canonical:   "http://localhost:3000/s/site_1/",
		},
		Sections: []Section{
			{ID: "hero", Heading: "Hello", Text: "plain <text>"},
			{ID: "body", Markdown: "some **bold** words"},
		},
	}))

	assert.Contains(t, out, "<title>Welcome | example.com</title>")
	assert.Contains(t, out, `<meta name="description" content="A &lt;small&gt; site">`)
	assert.Contains(t, out, `<meta name="keywords" content="go, sites">`)
	assert.Contains(t, out, `<script type="application/ld+json">`)
	assert.Contains(t, out, `<section id="hero"><h2>Hello</h2><p>plain &lt;text&gt;</p></section>`)
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, `class="active" aria-current="page"`)
	assert.NotContains(t, out, "<text>")
}

func TestPageTitleFallsBackToPageTitle(t *testing.T) {
	out := render(t, Page(PageView{Site: Site{Name: "example.com"}, Title: "About"}))
	assert.Contains(t, out, "<title>About</title>")
}

func TestContactFormHonoursFieldToggles(t *testing.T) {
	out := render(t, ContactFormView(ContactForm{
		Action:      "/s/site_1/contact/",
		CSRFToken:   "tok",
		Flash:       "Thanks for your message",
		ShowName:    true,
		ShowEmail:   false,
		ShowMessage: true,
		Map:         &MapEmbed{Latitude: 52.5, Longitude: 13.4, Zoom: 12},
	}))

	assert.Contains(t, out, `name="_csrf" value="tok"`)
	assert.Contains(t, out, `name="name"`)
	assert.NotContains(t, out, `name="email"`)
	assert.Contains(t, out, `name="message"`)
	assert.Contains(t, out, "Thanks for your message")
	assert.Contains(t, out, "openstreetmap.org/export/embed.html")
}

func TestErrorPages(t *testing.T) {
	assert.Contains(t, render(t, NotFound()), "Page not found")
	assert.Contains(t, render(t, ServerError()), "Something went wrong")
}

func TestFontStackDropsUnsafeValues(t *testing.T) {
	assert.Equal(t, "'Inter', 'Lora', system-ui, sans-serif", fontStack("Inter, Lora"))
	assert.Equal(t, "system-ui, sans-serif", fontStack("x;}body{display:none"))
}

func TestWebPageJsonLDEscapesScriptClose(t *testing.T) {
	ld := WebPageJsonLD(PageView{Title: "</script><script>alert(1)</script>"})
	assert.False(t, strings.Contains(ld, "</script>"))
}
