// Package sitebuilder is a website builder backend built with Go, Echo and
// templ. Users log in, create sites from a template catalog, edit and publish
// pages through a JSON API, and collect blog comments, contact form messages
// and portfolio images. Published pages are rendered as HTML under /s/.
package sitebuilder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/eringen/sitebuilder/analytics"
	"github.com/eringen/sitebuilder/catalog"
	"github.com/eringen/sitebuilder/logger"
	"github.com/eringen/sitebuilder/views"
)

// ViewFuncs holds the templ components used for public site rendering.
// Replace any of them to restyle published sites.
type ViewFuncs struct {
	Page        func(p views.PageView) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// DefaultViews returns the built-in components from the views package.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Page:        views.Page,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

// App is the central sitebuilder application. It wires together the store,
// caches, handlers, middleware and views.
type App struct {
	Config Config
	Echo   *echo.Echo
	Store  *Store
	Cache  *TemplateCache
	Views  ViewFuncs
	Log    logger.Logger

	// Analytics is nil when page view recording is disabled.
	Analytics *analytics.Store

	tokens        *TokenIssuer
	loginLimiter  *Limiter
	submitLimiter *Limiter
	visitors      analytics.Hasher
	customRoutes  []func(*App)
	now           func() time.Time
	stop          context.CancelFunc
}

// WithViews replaces the public site components.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}

// New creates an App for cfg. Call Setup (or Start) before serving.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	a := &App{
		Config: cfg,
		Echo:   e,
		Views:  DefaultViews(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Setup validates the config, opens and migrates the database, seeds the
// template catalog and registers middleware and routes. Background workers
// stop when ctx is done or Close is called.
func (a *App) Setup(ctx context.Context) error {
	if err := a.Config.Validate(); err != nil {
		return fmt.Errorf("sitebuilder: invalid config: %w", err)
	}
	if err := a.Open(); err != nil {
		return err
	}
	if a.Config.seedCatalog() {
		n, err := a.SeedCatalog(ctx)
		if err != nil {
			return fmt.Errorf("sitebuilder: seed catalog: %w", err)
		}
		a.Log.Debugw("template catalog seeded", "templates", n)
	}

	ctx, a.stop = context.WithCancel(ctx)
	a.Cache = NewTemplateCache(a.Store, a.Config.TemplateCacheTTL)
	a.Cache.now = a.now
	a.tokens = NewTokenIssuer(a.Config.JWTSecret, a.Config.TokenTTL, a.now)
	a.loginLimiter = NewLimiter(ctx, a.Config.LoginMaxAttempts, a.Config.LoginWindow)
	a.submitLimiter = NewLimiter(ctx, a.Config.SubmissionRateLimit, time.Minute)

	if !a.Config.DisableAnalytics {
		a.Analytics = analytics.NewStore(a.Store.DB())
		salt, err := a.Analytics.Salt(ctx)
		if err != nil {
			return fmt.Errorf("sitebuilder: init analytics: %w", err)
		}
		a.visitors = analytics.NewHasher(salt)
		a.Analytics.StartRetention(ctx, a.Config.AnalyticsRetention, 24*time.Hour, func(err error) {
			a.Log.Warnw("analytics retention", "error", err)
		})
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Open creates the logger and opens and migrates the database, without the
// HTTP stack. Setup calls it; maintenance commands can call it alone. It does
// nothing when the store is already open.
func (a *App) Open() error {
	if a.Store != nil {
		return nil
	}
	if a.Log == nil {
		l, err := logger.New(a.Config.LogLevel)
		if err != nil {
			return fmt.Errorf("sitebuilder: init logger: %w", err)
		}
		a.Log = l
	}
	a.Log = a.Log.Named("sitebuilder")

	store, err := OpenStore(a.Config.DatabaseDriver, a.Config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("sitebuilder: open store: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return fmt.Errorf("sitebuilder: migrate: %w", err)
	}
	a.Store = store
	return nil
}

// Start runs Setup and serves HTTP until ctx is cancelled, then shuts the
// server down gracefully.
func (a *App) Start(ctx context.Context) error {
	if err := a.Setup(ctx); err != nil {
		return err
	}
	defer a.Close()

	errCh := make(chan error, 1)
	go func() {
		a.Log.Infow("listening", "addr", a.Config.Addr, "driver", a.Config.DatabaseDriver)
		errCh <- a.Echo.Start(a.Config.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.Log.Infow("shutting down")
	return a.Echo.Shutdown(shutdownCtx)
}

// SeedCatalog upserts the embedded template catalog and returns the number of
// templates written.
func (a *App) SeedCatalog(ctx context.Context) (int, error) {
	entries, err := catalog.Default()
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		t := Template{
			TemplateID:  e.ID,
			Name:        e.Name,
			Category:    e.Category,
			PreviewURL:  e.PreviewURL,
			Description: e.Description,
		}
		if err := a.Store.UpsertTemplate(ctx, t); err != nil {
			return 0, fmt.Errorf("template %s: %w", e.ID, err)
		}
	}
	if a.Cache != nil {
		a.Cache.Invalidate()
	}
	return len(entries), nil
}

func (a *App) setupRoutes() {
	e := a.Echo
	auth := a.requireAuth

	e.GET("/healthz", a.handleHealth)
	e.GET("/feed.xml", a.handleFeed)
	e.Static("/uploads", a.Config.UploadDir)

	// Published sites
	e.GET("/s/:site_id/", a.handleSiteHome)
	e.GET("/s/:site_id/sitemap.xml", a.handleSitemap)
	e.GET("/s/:site_id/:page_id/", a.handleSitePage)
	e.POST("/s/:site_id/:page_id/", a.handleSiteContact)

	api := e.Group("/api")
	api.POST("/auth/login", a.handleLogin)
	api.GET("/templates", a.handleListTemplates)

	api.POST("/sites", a.handleCreateSite, auth)
	api.GET("/sites", a.handleListSites, auth)
	api.GET("/sites/:site_id", a.handleGetSite, auth)
	api.GET("/sites/:site_id/pages", a.handleListPages, auth)
	api.POST("/sites/:site_id/pages", a.handleCreatePage, auth)
	api.GET("/sites/:site_id/pages/:page_id", a.handleGetPage, auth)
	api.PUT("/sites/:site_id/pages/:page_id", a.handleUpdatePage, auth)
	api.POST("/sites/:site_id/pages/:page_id/publish", a.handlePublishPage, auth)

	api.GET("/posts", a.handleListPosts)
	api.POST("/posts", a.handleCreatePost, auth)
	api.GET("/posts/:post_id/comments", a.handleListComments)
	api.POST("/posts/:post_id/comments", a.handleCreateComment)

	api.POST("/sites/:site_id/contact", a.handleCreateSubmission)
	api.GET("/sites/:site_id/contact/submissions", a.handleListSubmissions, auth)
	api.GET("/sites/:site_id/contact/settings", a.handleGetContactSettings, auth)
	api.PUT("/sites/:site_id/contact/settings", a.handleSaveContactSettings, auth)

	api.GET("/sites/:site_id/stats", a.handleSiteStats, auth)

	api.GET("/portfolio/items", a.handleListPortfolio)
	api.POST("/portfolio/upload", a.handlePortfolioUpload, auth)
	api.PUT("/portfolio/item/:item_id", a.handleRenamePortfolioItem, auth)
	api.DELETE("/portfolio/item/:item_id", a.handleDeletePortfolioItem, auth)

	// Everything else is the single-page app.
	if fi, err := os.Stat(a.Config.StaticDir); err == nil && fi.IsDir() {
		e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
			Root:  a.Config.StaticDir,
			HTML5: true,
			Skipper: func(c echo.Context) bool {
				p := c.Request().URL.Path
				return strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/s/") ||
					strings.HasPrefix(p, "/uploads/") || p == "/healthz" || p == "/feed.xml"
			},
		}))
	} else {
		a.Log.Warnw("static dir not found, SPA not served", "dir", a.Config.StaticDir)
	}
}

// Close stops background workers and closes the database.
func (a *App) Close() error {
	if a.stop != nil {
		a.stop()
	}
	if a.Log != nil {
		_ = a.Log.Sync()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// timeLayout is RFC 3339 with fixed-width microseconds, so stored timestamps
// sort correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// timestamp returns the current time in the stored form.
func (a *App) timestamp() string {
	return a.now().UTC().Format(timeLayout)
}
