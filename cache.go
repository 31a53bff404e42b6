package sitebuilder

import (
	"context"
	"strings"
	"sync"
	"time"
)

// TemplateCache is an in-memory copy of the template catalog with a TTL.
// The catalog is read on every template selection screen and changes only
// when the catalog is reseeded.
type TemplateCache struct {
	mu        sync.RWMutex
	templates []Template
	fetched   time.Time
	ttl       time.Duration
	store     *Store
	now       func() time.Time
}

// NewTemplateCache creates a TemplateCache backed by the given Store.
func NewTemplateCache(s *Store, ttl time.Duration) *TemplateCache {
	return &TemplateCache{store: s, ttl: ttl, now: time.Now}
}

func (c *TemplateCache) valid() bool {
	return c.templates != nil && c.now().Sub(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *TemplateCache) Invalidate() {
	c.mu.Lock()
	c.templates = nil
	c.mu.Unlock()
}

// ensureLoaded tries a read lock first and only takes the write lock when a
// reload is needed.
func (c *TemplateCache) ensureLoaded(ctx context.Context) ([]Template, error) {
	c.mu.RLock()
	if c.valid() {
		templates := c.templates
		c.mu.RUnlock()
		return templates, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.templates, nil
	}
	templates, err := c.store.ListTemplates(ctx, "")
	if err != nil {
		return nil, err
	}
	c.templates = templates
	c.fetched = c.now()
	return c.templates, nil
}

// List returns the catalog, optionally filtered by category (case-insensitive).
// The result is never nil.
func (c *TemplateCache) List(ctx context.Context, category string) ([]Template, error) {
	templates, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	category = normalizeCategory(category)
	out := make([]Template, 0, len(templates))
	for _, t := range templates {
		if category == "" || normalizeCategory(t.Category) == category {
			out = append(out, t)
		}
	}
	return out, nil
}

// Get returns one template by id.
func (c *TemplateCache) Get(ctx context.Context, templateID string) (Template, error) {
	templates, err := c.ensureLoaded(ctx)
	if err != nil {
		return Template{}, err
	}
	for _, t := range templates {
		if t.TemplateID == templateID {
			return t, nil
		}
	}
	return Template{}, ErrNotFound
}

func normalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
