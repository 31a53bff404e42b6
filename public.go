package sitebuilder

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/sitebuilder/views"
)

const contactPageID = "contact"

func (a *App) handleSiteHome(c echo.Context) error {
	return a.renderPublishedPage(c, c.Param("site_id"), "home")
}

func (a *App) handleSitePage(c echo.Context) error {
	return a.renderPublishedPage(c, c.Param("site_id"), c.Param("page_id"))
}

// renderPublishedPage renders the published copy of a page. Drafts that were
// never published are 404.
func (a *App) renderPublishedPage(c echo.Context, siteID, pageID string) error {
	ctx := c.Request().Context()
	site, err := a.Store.GetSite(ctx, siteID)
	if err != nil {
		return err
	}
	page, err := a.Store.GetPage(ctx, siteID, pageID)
	if err != nil {
		return err
	}
	if page.PublishedContent == nil {
		return ErrNotFound
	}
	published, err := a.Store.ListPublishedPages(ctx, siteID)
	if err != nil {
		return err
	}

	seo := SEOMeta{}
	if page.PublishedSEOMeta != nil {
		seo = *page.PublishedSEOMeta
	}
	view := views.PageView{
		Site: views.Site{
			ID:          site.SiteID,
			Name:        firstNonEmpty(site.DomainName, site.SiteID),
			URL:         a.pageURL(site.SiteID, "home"),
			ColorScheme: site.ColorScheme,
			Fonts:       site.Fonts,
			Nav:         a.navLinks(site.SiteID, pageID, published),
		},
		PageID: page.PageID,
		Title:  page.Title,
		Meta: views.Meta{
			Title:       seo.Title,
			Description: seo.Description,
			Keywords:    FilterEmpty(seo.Keywords),
			Canonical:   a.pageURL(site.SiteID, page.PageID),
		},
		Sections: sectionViews(page.PublishedContent.Sections),
		Updated:  page.PublishedAt,
	}
	if page.PageID == contactPageID {
		settings, err := a.Store.GetContactSettings(ctx, siteID)
		if err != nil {
			return err
		}
		view.Contact = contactFormView(settings, "/s/"+siteID+"/contact/", CsrfToken(c), popFlash(c))
	}
	a.trackView(c, siteID, page.PageID)
	return Render(c, a.Views.Page(view))
}

// navLinks orders published pages like the CMS page selector, then by id.
func (a *App) navLinks(siteID, current string, pages []Page) []views.NavLink {
	rank := make(map[string]int, len(DefaultPageIDs))
	for i, id := range DefaultPageIDs {
		rank[id] = i
	}
	sorted := append([]Page(nil), pages...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, iok := rank[sorted[i].PageID]
		rj, jok := rank[sorted[j].PageID]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		}
		return sorted[i].PageID < sorted[j].PageID
	})
	links := make([]views.NavLink, 0, len(sorted))
	for _, p := range sorted {
		links = append(links, views.NavLink{
			Label:  firstNonEmpty(p.Title, pageTitle(p.PageID)),
			URL:    strings.TrimPrefix(a.pageURL(siteID, p.PageID), a.Config.BaseURL),
			Active: p.PageID == current,
		})
	}
	return links
}

// sectionViews maps free-form section content to renderable sections. A
// string is markdown; an object may carry heading, text, markdown and
// image_url keys. Anything else is skipped.
func sectionViews(sections []Section) []views.Section {
	out := make([]views.Section, 0, len(sections))
	for _, s := range sections {
		v := views.Section{ID: s.ID}
		switch content := s.Content.(type) {
		case string:
			v.Markdown = content
		case map[string]any:
			v.Heading = stringField(content, "heading", "title")
			v.Text = stringField(content, "text")
			v.Markdown = stringField(content, "markdown", "body")
			v.ImageURL = stringField(content, "image_url", "image")
		default:
			continue
		}
		out = append(out, v)
	}
	return out
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func contactFormView(s ContactSettings, action, csrf, flash string) *views.ContactForm {
	f := &views.ContactForm{
		Action:      action,
		CSRFToken:   csrf,
		Flash:       flash,
		ShowName:    s.Form.NameFieldEnabled,
		ShowEmail:   s.Form.EmailFieldEnabled,
		ShowMessage: s.Form.MessageFieldEnabled,
	}
	if s.Map.Latitude != 0 || s.Map.Longitude != 0 {
		f.Map = &views.MapEmbed{Latitude: s.Map.Latitude, Longitude: s.Map.Longitude, Zoom: s.Map.ZoomLevel}
	}
	return f
}

// handleSiteContact accepts the public HTML contact form posted to the
// contact page and redirects back to it with a flash message.
func (a *App) handleSiteContact(c echo.Context) error {
	if c.Param("page_id") != contactPageID {
		return echo.NewHTTPError(http.StatusMethodNotAllowed, "Method not allowed")
	}
	if !a.submitLimiter.Allow(c.RealIP()) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many submissions. Try again later.")
	}
	ctx := c.Request().Context()
	siteID := c.Param("site_id")
	if _, err := a.Store.GetSite(ctx, siteID); err != nil {
		return err
	}
	settings, err := a.Store.GetContactSettings(ctx, siteID)
	if err != nil {
		return err
	}
	req := contactRequest{
		Name:    c.FormValue("name"),
		Email:   c.FormValue("email"),
		Message: c.FormValue("message"),
	}
	back := "/s/" + siteID + "/" + contactPageID + "/"

	err = validateFields(
		field{name: "name", value: req.Name, max: 200, required: settings.Form.NameFieldEnabled},
		field{name: "email", value: req.Email, max: 320, required: settings.Form.EmailFieldEnabled, email: true},
		field{name: "message", value: req.Message, max: 5000, required: settings.Form.MessageFieldEnabled},
	)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if ferr := setFlash(c, capitalize(he.Message.(string))+"."); ferr != nil {
			return ferr
		}
		return c.Redirect(http.StatusSeeOther, back)
	}
	if _, err := a.saveSubmission(ctx, siteID, req); err != nil {
		return err
	}
	if err := setFlash(c, "Thanks for your message"); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, back)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
