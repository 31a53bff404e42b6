package sitebuilder

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// renderSitemap lists the published pages of site. The home page maps to the
// site root.
func (a *App) renderSitemap(c echo.Context, site Site, pages []Page) error {
	urls := make([]sitemapURL, 0, len(pages))
	for _, p := range pages {
		urls = append(urls, sitemapURL{
			Loc:     a.pageURL(site.SiteID, p.PageID),
			LastMod: dateOnly(p.PublishedAt),
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}

// dateOnly trims a stored timestamp to its YYYY-MM-DD prefix.
func dateOnly(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}
