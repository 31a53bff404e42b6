package views

import (
	"context"
	"sync"

	"github.com/eringen/sitebuilder"
	"github.com/eringen/sitebuilder/client"
	"github.com/eringen/sitebuilder/client/appstore"
	"github.com/eringen/sitebuilder/client/query"
)

// TemplateAPI is the part of the API the template picker uses.
type TemplateAPI interface {
	ListTemplates(ctx context.Context, category string) ([]sitebuilder.Template, error)
	CreateSite(ctx context.Context, req client.CreateSiteRequest) (string, error)
}

// TemplateSelection lists catalog templates by category and creates a site
// from the chosen one.
type TemplateSelection struct {
	base
	api TemplateAPI

	mu       sync.Mutex
	category string
}

func NewTemplateSelection(api TemplateAPI, cache *query.Cache, store *appstore.Store) *TemplateSelection {
	return &TemplateSelection{base: base{cache: cache, store: store}, api: api}
}

// SetCategory changes the category filter; "" lists every template.
func (v *TemplateSelection) SetCategory(category string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.category = category
}

func (v *TemplateSelection) Category() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.category
}

// Templates returns the templates of the current category.
func (v *TemplateSelection) Templates(ctx context.Context) ([]sitebuilder.Template, error) {
	category := v.Category()
	return fetch(ctx, v.base, templatesKey(category), func(ctx context.Context) ([]sitebuilder.Template, error) {
		return v.api.ListTemplates(ctx, category)
	})
}

// Select creates a site from templateID. Without a login it only pushes an
// error notification and returns ErrUnauthenticated.
func (v *TemplateSelection) Select(ctx context.Context, templateID string, opts client.CreateSiteRequest) (string, error) {
	if !v.store.Authenticated() {
		v.store.Error("Please log in to select a template")
		return "", ErrUnauthenticated
	}
	opts.TemplateID = templateID
	var siteID string
	err := v.mutate("Site created successfully", []query.Key{sitesKey()}, func() error {
		var err error
		siteID, err = v.api.CreateSite(ctx, opts)
		return err
	})
	return siteID, err
}
