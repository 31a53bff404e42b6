package sitebuilder

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

func (a *App) handleListTemplates(c echo.Context) error {
	templates, err := a.Cache.List(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"templates": templates})
}

func (a *App) handleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := a.Store.Ping(ctx); err != nil {
		a.Log.Errorw("health check failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Store.ListPosts(c.Request().Context(), 50)
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	site, err := a.Store.GetSite(ctx, c.Param("site_id"))
	if err != nil {
		return err
	}
	pages, err := a.Store.ListPublishedPages(ctx, site.SiteID)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, site, pages)
}
