package sitebuilder

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/sitebuilder/analytics"
)

// trackView records a view of a published page. Failures are logged and never
// affect the response. Requests with DNT: 1 are not recorded.
func (a *App) trackView(c echo.Context, siteID, pageID string) {
	if a.Analytics == nil || c.Request().Header.Get("DNT") == "1" {
		return
	}
	ua := c.Request().UserAgent()
	v := analytics.View{
		SiteID:    siteID,
		PageID:    pageID,
		VisitorID: a.visitors.VisitorID(c.RealIP(), ua),
		Referrer:  analytics.CleanReferrer(c.Request().Referer()),
		BotName:   analytics.BotName(ua),
		ViewedAt:  a.timestamp(),
	}
	if v.BotName == "" {
		v.Browser, v.OS, v.Device = analytics.ParseUserAgent(ua)
	}
	if err := a.Analytics.Record(c.Request().Context(), v); err != nil {
		a.Log.Warnw("record page view", "site_id", siteID, "page_id", pageID, "error", err)
	}
}

// handleSiteStats returns view statistics for the last ?days= days (default 30).
func (a *App) handleSiteStats(c echo.Context) error {
	if a.Analytics == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Analytics disabled")
	}
	days := 30
	if q := c.QueryParam("days"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 366 {
			return echo.NewHTTPError(http.StatusBadRequest, "days must be between 1 and 366")
		}
		days = n
	}
	to := a.now().UTC()
	from := to.Add(-time.Duration(days) * 24 * time.Hour)
	stats, err := a.Analytics.SiteStats(c.Request().Context(), c.Param("site_id"), from, to.Add(time.Second))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
