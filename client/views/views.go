// Package views holds the headless controllers behind each screen of the site
// builder: they fetch through a shared query cache, run mutations against the
// API, invalidate the affected keys on success and report the outcome as a
// notification.
package views

import (
	"context"
	"errors"

	"github.com/eringen/sitebuilder/client"
	"github.com/eringen/sitebuilder/client/appstore"
	"github.com/eringen/sitebuilder/client/query"
)

// ErrUnauthenticated is returned by actions that need a login when the store
// has none. No request is sent in that case.
var ErrUnauthenticated = errors.New("not logged in")

// *client.Client serves every controller.
var (
	_ TemplateAPI  = (*client.Client)(nil)
	_ CMSAPI       = (*client.Client)(nil)
	_ BlogAPI      = (*client.Client)(nil)
	_ ContactAPI   = (*client.Client)(nil)
	_ PortfolioAPI = (*client.Client)(nil)
	_ DashboardAPI = (*client.Client)(nil)
)

const loginRequired = "Please log in to continue"

// base is embedded by every controller.
type base struct {
	cache *query.Cache
	store *appstore.Store
}

func (b base) requireAuth() error {
	if !b.store.Authenticated() {
		b.store.Error(loginRequired)
		return ErrUnauthenticated
	}
	return nil
}

// mutate runs fn, then invalidates keys and pushes success on success, or
// pushes the error message on failure.
func (b base) mutate(success string, keys []query.Key, fn func() error) error {
	if err := fn(); err != nil {
		b.store.Error(errorMessage(err))
		return err
	}
	for _, k := range keys {
		b.cache.Invalidate(k...)
	}
	if success != "" {
		b.store.Success(success)
	}
	return nil
}

// errorMessage prefers the server's message for API errors.
func errorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func fetch[T any](ctx context.Context, b base, key query.Key, fn func(context.Context) (T, error)) (T, error) {
	v, err := query.Fetch(ctx, b.cache, key, fn)
	if err != nil && !errors.Is(err, query.ErrSuperseded) && !errors.Is(err, context.Canceled) {
		b.store.Error(errorMessage(err))
	}
	return v, err
}
