package views

import (
	"context"
	"io"

	"github.com/eringen/sitebuilder"
	"github.com/eringen/sitebuilder/client/appstore"
	"github.com/eringen/sitebuilder/client/query"
)

// PortfolioAPI is the part of the API the gallery manager uses.
type PortfolioAPI interface {
	ListPortfolio(ctx context.Context) ([]sitebuilder.PortfolioItem, error)
	UploadPortfolio(ctx context.Context, filename string, image io.Reader, title string) (sitebuilder.PortfolioItem, error)
	RenamePortfolio(ctx context.Context, itemID, title string) error
	DeletePortfolio(ctx context.Context, itemID string) error
}

// Portfolio manages the gallery. Every change needs a login.
type Portfolio struct {
	base
	api PortfolioAPI
}

func NewPortfolio(api PortfolioAPI, cache *query.Cache, store *appstore.Store) *Portfolio {
	return &Portfolio{base: base{cache: cache, store: store}, api: api}
}

func (v *Portfolio) Items(ctx context.Context) ([]sitebuilder.PortfolioItem, error) {
	return fetch(ctx, v.base, portfolioKey(), v.api.ListPortfolio)
}

func (v *Portfolio) Upload(ctx context.Context, filename string, image io.Reader, title string) (sitebuilder.PortfolioItem, error) {
	if err := v.requireAuth(); err != nil {
		return sitebuilder.PortfolioItem{}, err
	}
	var item sitebuilder.PortfolioItem
	err := v.mutate("Image uploaded", []query.Key{portfolioKey()}, func() error {
		var err error
		item, err = v.api.UploadPortfolio(ctx, filename, image, title)
		return err
	})
	return item, err
}

// Rename retitles an item, updating the cached list in place first so the
// change shows before the refetch. A failed rename drops the edited list.
func (v *Portfolio) Rename(ctx context.Context, itemID, title string) error {
	if err := v.requireAuth(); err != nil {
		return err
	}
	if items, ok := query.Get[[]sitebuilder.PortfolioItem](v.cache, portfolioKey()); ok {
		edited := make([]sitebuilder.PortfolioItem, len(items))
		copy(edited, items)
		for i := range edited {
			if edited[i].ItemID == itemID {
				edited[i].Title = title
			}
		}
		query.Set(v.cache, portfolioKey(), edited)
	}
	err := v.mutate("Title updated", []query.Key{portfolioKey()}, func() error {
		return v.api.RenamePortfolio(ctx, itemID, title)
	})
	if err != nil {
		v.cache.Invalidate(portfolioKey()...)
	}
	return err
}

func (v *Portfolio) Delete(ctx context.Context, itemID string) error {
	if err := v.requireAuth(); err != nil {
		return err
	}
	return v.mutate("Image deleted", []query.Key{portfolioKey()}, func() error {
		return v.api.DeletePortfolio(ctx, itemID)
	})
}
