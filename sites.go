package sitebuilder

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
)

var rePageID = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,63}$`)

type createSiteRequest struct {
	TemplateID  string `json:"template_id"`
	DomainName  string `json:"domain_name"`
	ColorScheme string `json:"color_scheme"`
	Fonts       string `json:"fonts"`
}

func (a *App) handleCreateSite(c echo.Context) error {
	var req createSiteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	req.TemplateID = strings.TrimSpace(req.TemplateID)
	if req.TemplateID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "template_id is required")
	}
	if len(req.DomainName) > 253 || len(req.ColorScheme) > 64 || len(req.Fonts) > 256 {
		return echo.NewHTTPError(http.StatusBadRequest, "Field too long")
	}

	ctx := c.Request().Context()
	now := a.timestamp()
	site := Site{
		SiteID:      NewID(prefixSite),
		UserID:      UserID(c),
		TemplateID:  req.TemplateID,
		DomainName:  strings.TrimSpace(req.DomainName),
		ColorScheme: req.ColorScheme,
		Fonts:       req.Fonts,
		DateCreated: now,
	}
	if err := a.Store.CreateSite(ctx, site); err != nil {
		return err
	}
	for _, pageID := range DefaultPageIDs {
		if err := a.Store.CreatePage(ctx, site.SiteID, pageID, pageTitle(pageID), now); err != nil {
			a.Log.Errorw("create default page", "site_id", site.SiteID, "page_id", pageID, "error", err)
			return err
		}
	}
	a.Log.Infow("site created", "site_id", site.SiteID, "user_id", site.UserID, "template_id", site.TemplateID)
	return c.JSON(http.StatusCreated, map[string]string{"site_id": site.SiteID})
}

// pageTitle turns a page id into a display title: "about-us" -> "About Us".
func pageTitle(pageID string) string {
	words := strings.Fields(strings.ReplaceAll(pageID, "-", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func (a *App) handleListSites(c echo.Context) error {
	sites, err := a.Store.ListSitesByUser(c.Request().Context(), UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"sites": sites})
}

func (a *App) handleGetSite(c echo.Context) error {
	site, err := a.Store.GetSite(c.Request().Context(), c.Param("site_id"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Site not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, site)
}

func (a *App) handleListPages(c echo.Context) error {
	pages, err := a.Store.ListPages(c.Request().Context(), c.Param("site_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"pages": pages})
}

type createPageRequest struct {
	PageID string `json:"page_id"`
	Title  string `json:"title"`
}

func (a *App) handleCreatePage(c echo.Context) error {
	var req createPageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	req.PageID = strings.ToLower(strings.TrimSpace(req.PageID))
	if !rePageID.MatchString(req.PageID) {
		return echo.NewHTTPError(http.StatusBadRequest, "page_id must be lowercase letters, digits and dashes")
	}
	if strings.TrimSpace(req.Title) == "" {
		req.Title = pageTitle(req.PageID)
	}
	ctx := c.Request().Context()
	siteID := c.Param("site_id")
	if _, err := a.Store.GetSite(ctx, siteID); errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Site not found")
	} else if err != nil {
		return err
	}
	err := a.Store.CreatePage(ctx, siteID, req.PageID, req.Title, a.timestamp())
	if errors.Is(err, ErrConflict) {
		return echo.NewHTTPError(http.StatusConflict, "Page already exists")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]string{"page_id": req.PageID})
}

func (a *App) handleGetPage(c echo.Context) error {
	page, err := a.Store.GetPage(c.Request().Context(), c.Param("site_id"), c.Param("page_id"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Page not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

type updatePageRequest struct {
	Content *PageContent `json:"content"`
	SEOMeta *SEOMeta     `json:"seo_meta"`
}

type pageResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (a *App) handleUpdatePage(c echo.Context) error {
	var req updatePageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Content == nil || req.SEOMeta == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "content and seo_meta are required")
	}
	siteID, pageID := c.Param("site_id"), c.Param("page_id")
	err := a.Store.UpdatePageContent(c.Request().Context(), siteID, pageID, *req.Content, *req.SEOMeta, a.timestamp())
	if errors.Is(err, ErrNotFound) {
		return c.JSON(http.StatusNotFound, pageResult{Success: false, Message: "Page not found"})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pageResult{Success: true, Message: "Page successfully updated"})
}

func (a *App) handlePublishPage(c echo.Context) error {
	siteID, pageID := c.Param("site_id"), c.Param("page_id")
	err := a.Store.PublishPage(c.Request().Context(), siteID, pageID, a.timestamp())
	if errors.Is(err, ErrNotFound) {
		return c.JSON(http.StatusNotFound, pageResult{Success: false, Message: "Page not found"})
	}
	if err != nil {
		return err
	}
	a.Log.Infow("page published", "site_id", siteID, "page_id", pageID, "user_id", UserID(c))
	return c.JSON(http.StatusOK, pageResult{Success: true, Message: "Page successfully published"})
}
