package views

import (
	"context"

	"github.com/eringen/sitebuilder"
	"github.com/eringen/sitebuilder/analytics"
	"github.com/eringen/sitebuilder/client/appstore"
	"github.com/eringen/sitebuilder/client/query"
)

// DashboardAPI is the part of the API the dashboard uses.
type DashboardAPI interface {
	ListSites(ctx context.Context) ([]sitebuilder.Site, error)
	SiteStats(ctx context.Context, siteID string, days int) (analytics.Stats, error)
}

// Dashboard lists the user's sites and their traffic.
type Dashboard struct {
	base
	api DashboardAPI
}

func NewDashboard(api DashboardAPI, cache *query.Cache, store *appstore.Store) *Dashboard {
	return &Dashboard{base: base{cache: cache, store: store}, api: api}
}

func (v *Dashboard) Sites(ctx context.Context) ([]sitebuilder.Site, error) {
	if err := v.requireAuth(); err != nil {
		return nil, err
	}
	return fetch(ctx, v.base, sitesKey(), v.api.ListSites)
}

func (v *Dashboard) Stats(ctx context.Context, siteID string, days int) (analytics.Stats, error) {
	if err := v.requireAuth(); err != nil {
		return analytics.Stats{}, err
	}
	return fetch(ctx, v.base, statsKey(siteID, days), func(ctx context.Context) (analytics.Stats, error) {
		return v.api.SiteStats(ctx, siteID, days)
	})
}
