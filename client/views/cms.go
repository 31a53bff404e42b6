package views

import (
	"context"
	"errors"
	"sync"

	"github.com/eringen/sitebuilder"
	"github.com/eringen/sitebuilder/client"
	"github.com/eringen/sitebuilder/client/appstore"
	"github.com/eringen/sitebuilder/client/query"
)

// ErrNoPage is returned by edits made before a page is selected.
var ErrNoPage = errors.New("no page selected")

// CMSAPI is the part of the API the page editor uses.
type CMSAPI interface {
	ListPages(ctx context.Context, siteID string) ([]sitebuilder.PageSummary, error)
	GetPage(ctx context.Context, siteID, pageID string) (sitebuilder.Page, error)
	UpdatePage(ctx context.Context, siteID, pageID string, content sitebuilder.PageContent, seo sitebuilder.SEOMeta) (client.Result, error)
	PublishPage(ctx context.Context, siteID, pageID string) (client.Result, error)
}

// CMS edits the pages of one site. Edits apply to a local copy of the
// selected page until SaveDraft or Publish sends it.
type CMS struct {
	base
	api    CMSAPI
	siteID string

	mu      sync.Mutex
	current string
	draft   sitebuilder.Page
	loaded  bool
	dirty   bool
}

func NewCMS(api CMSAPI, cache *query.Cache, store *appstore.Store, siteID string) *CMS {
	return &CMS{base: base{cache: cache, store: store}, api: api, siteID: siteID}
}

// RecentPages lists the site's pages, most recently modified first.
func (v *CMS) RecentPages(ctx context.Context) ([]sitebuilder.PageSummary, error) {
	return fetch(ctx, v.base, pagesKey(v.siteID), func(ctx context.Context) ([]sitebuilder.PageSummary, error) {
		return v.api.ListPages(ctx, v.siteID)
	})
}

// SelectPage switches the editor to pageID and loads it. Unsaved edits of the
// previous page are discarded. When another SelectPage started after this one,
// the older result is dropped and query.ErrSuperseded returned, so rapid
// switching always settles on the last selected page.
func (v *CMS) SelectPage(ctx context.Context, pageID string) (sitebuilder.Page, error) {
	v.mu.Lock()
	v.current = pageID
	v.loaded = false
	v.dirty = false
	v.mu.Unlock()

	p, err := fetch(ctx, v.base, pageKey(v.siteID, pageID), func(ctx context.Context) (sitebuilder.Page, error) {
		return v.api.GetPage(ctx, v.siteID, pageID)
	})
	if err != nil {
		return sitebuilder.Page{}, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current != pageID {
		return sitebuilder.Page{}, query.ErrSuperseded
	}
	v.draft = p
	v.loaded = true
	return p, nil
}

// Current returns the local copy of the selected page.
func (v *CMS) Current() (sitebuilder.Page, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.draft, v.loaded
}

// Dirty reports whether the selected page has unsaved edits.
func (v *CMS) Dirty() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dirty
}

// Edit applies fn to the local copy of the selected page.
func (v *CMS) Edit(fn func(p *sitebuilder.Page)) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.loaded {
		return ErrNoPage
	}
	fn(&v.draft)
	v.dirty = true
	return nil
}

func (v *CMS) snapshot() (sitebuilder.Page, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.loaded {
		return sitebuilder.Page{}, ErrNoPage
	}
	return v.draft, nil
}

func (v *CMS) saved(pageID, status string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current == pageID {
		v.dirty = false
		v.draft.Status = status
	}
}

// SaveDraft stores the local copy as the page's draft.
func (v *CMS) SaveDraft(ctx context.Context) error {
	if err := v.requireAuth(); err != nil {
		return err
	}
	p, err := v.snapshot()
	if err != nil {
		return err
	}
	keys := []query.Key{pagesKey(v.siteID), pageKey(v.siteID, p.PageID)}
	err = v.mutate("Draft saved", keys, func() error {
		_, err := v.api.UpdatePage(ctx, v.siteID, p.PageID, p.Content, p.SEOMeta)
		return err
	})
	if err == nil {
		v.saved(p.PageID, sitebuilder.PageStatusDraft)
	}
	return err
}

// Publish saves the local copy and makes it the public version.
func (v *CMS) Publish(ctx context.Context) error {
	if err := v.requireAuth(); err != nil {
		return err
	}
	p, err := v.snapshot()
	if err != nil {
		return err
	}
	keys := []query.Key{pagesKey(v.siteID), pageKey(v.siteID, p.PageID)}
	err = v.mutate("Page published", keys, func() error {
		if _, err := v.api.UpdatePage(ctx, v.siteID, p.PageID, p.Content, p.SEOMeta); err != nil {
			return err
		}
		_, err := v.api.PublishPage(ctx, v.siteID, p.PageID)
		return err
	})
	if err == nil {
		v.saved(p.PageID, sitebuilder.PageStatusPublished)
	}
	return err
}
