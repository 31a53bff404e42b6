package sitebuilder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// CreateSite inserts a site row.
func (s *Store) CreateSite(ctx context.Context, site Site) error {
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO sites (site_id, user_id, template_id, domain_name, color_scheme, fonts, date_created) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		site.SiteID, site.UserID, site.TemplateID, site.DomainName, site.ColorScheme, site.Fonts, site.DateCreated)
	if isUniqueViolation(err) {
		return fmt.Errorf("site %s: %w", site.SiteID, ErrConflict)
	}
	return err
}

// GetSite returns a site by id.
func (s *Store) GetSite(ctx context.Context, siteID string) (Site, error) {
	var site Site
	err := s.db.GetContext(ctx, &site, s.q(`SELECT site_id, user_id, template_id, domain_name, color_scheme, fonts, date_created FROM sites WHERE site_id = ?`), siteID)
	return site, notFound(err)
}

// ListSitesByUser returns the user's sites, newest first.
func (s *Store) ListSitesByUser(ctx context.Context, userID string) ([]Site, error) {
	sites := []Site{}
	err := s.db.SelectContext(ctx, &sites, s.q(`SELECT site_id, user_id, template_id, domain_name, color_scheme, fonts, date_created FROM sites WHERE user_id = ? ORDER BY date_created DESC, site_id DESC`), userID)
	if err != nil {
		return nil, err
	}
	return sites, nil
}

// pageRow is the scanned form of a pages row; JSON columns are decoded by toPage.
type pageRow struct {
	SiteID           string         `db:"site_id"`
	PageID           string         `db:"page_id"`
	Title            string         `db:"title"`
	Content          string         `db:"content"`
	SEOMeta          string         `db:"seo_meta"`
	Status           string         `db:"status"`
	PublishedContent sql.NullString `db:"published_content"`
	PublishedSEOMeta sql.NullString `db:"published_seo_meta"`
	UpdatedAt        string         `db:"updated_at"`
	PublishedAt      sql.NullString `db:"published_at"`
}

const pageColumns = `site_id, page_id, title, content, seo_meta, status, published_content, published_seo_meta, updated_at, published_at`

func (r pageRow) toPage() (Page, error) {
	p := Page{
		SiteID:      r.SiteID,
		PageID:      r.PageID,
		Title:       r.Title,
		Status:      r.Status,
		UpdatedAt:   r.UpdatedAt,
		PublishedAt: r.PublishedAt.String,
	}
	if err := json.Unmarshal([]byte(r.Content), &p.Content); err != nil {
		return Page{}, fmt.Errorf("decode content of page %s/%s: %w", r.SiteID, r.PageID, err)
	}
	if err := json.Unmarshal([]byte(r.SEOMeta), &p.SEOMeta); err != nil {
		return Page{}, fmt.Errorf("decode seo_meta of page %s/%s: %w", r.SiteID, r.PageID, err)
	}
	if r.PublishedContent.Valid {
		var pc PageContent
		if err := json.Unmarshal([]byte(r.PublishedContent.String), &pc); err != nil {
			return Page{}, fmt.Errorf("decode published content of page %s/%s: %w", r.SiteID, r.PageID, err)
		}
		p.PublishedContent = &pc
	}
	if r.PublishedSEOMeta.Valid {
		var pm SEOMeta
		if err := json.Unmarshal([]byte(r.PublishedSEOMeta.String), &pm); err != nil {
			return Page{}, fmt.Errorf("decode published seo_meta of page %s/%s: %w", r.SiteID, r.PageID, err)
		}
		p.PublishedSEOMeta = &pm
	}
	return p, nil
}

// CreatePage inserts an empty draft page.
func (s *Store) CreatePage(ctx context.Context, siteID, pageID, title, now string) error {
	content, err := marshalJSON(PageContent{Sections: []Section{}})
	if err != nil {
		return err
	}
	seo, err := marshalJSON(SEOMeta{Title: title, Keywords: []string{}})
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.q(`INSERT INTO pages (site_id, page_id, title, content, seo_meta, status, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		siteID, pageID, title, content, seo, PageStatusDraft, now)
	if isUniqueViolation(err) {
		return fmt.Errorf("page %s/%s: %w", siteID, pageID, ErrConflict)
	}
	return err
}

// GetPage returns one page of a site.
func (s *Store) GetPage(ctx context.Context, siteID, pageID string) (Page, error) {
	var r pageRow
	err := s.db.GetContext(ctx, &r, s.q(`SELECT `+pageColumns+` FROM pages WHERE site_id = ? AND page_id = ?`), siteID, pageID)
	if err != nil {
		return Page{}, notFound(err)
	}
	return r.toPage()
}

// ListPages returns page summaries for a site, most recently modified first.
func (s *Store) ListPages(ctx context.Context, siteID string) ([]PageSummary, error) {
	pages := []PageSummary{}
	err := s.db.SelectContext(ctx, &pages, s.q(`SELECT page_id, title, status, updated_at FROM pages WHERE site_id = ? ORDER BY updated_at DESC, page_id`), siteID)
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// UpdatePageContent overwrites the working copy of a page scoped by both ids
// and marks it draft. ErrNotFound means the pair matched no row and nothing
// was written.
func (s *Store) UpdatePageContent(ctx context.Context, siteID, pageID string, content PageContent, seo SEOMeta, now string) error {
	if content.Sections == nil {
		content.Sections = []Section{}
	}
	if seo.Keywords == nil {
		seo.Keywords = []string{}
	}
	c, err := marshalJSON(content)
	if err != nil {
		return err
	}
	m, err := marshalJSON(seo)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE pages SET content = ?, seo_meta = ?, status = ?, updated_at = ? WHERE page_id = ? AND site_id = ?`),
		c, m, PageStatusDraft, now, pageID, siteID)
	if err != nil {
		return err
	}
	return expectRows(res)
}

// PublishPage copies the working copy of a page into its published copy.
func (s *Store) PublishPage(ctx context.Context, siteID, pageID, now string) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE pages SET published_content = content, published_seo_meta = seo_meta, status = ?, published_at = ?, updated_at = ? WHERE page_id = ? AND site_id = ?`),
		PageStatusPublished, now, now, pageID, siteID)
	if err != nil {
		return err
	}
	return expectRows(res)
}

// ListPublishedPages returns the pages of a site that have a published copy.
func (s *Store) ListPublishedPages(ctx context.Context, siteID string) ([]Page, error) {
	var rows []pageRow
	err := s.db.SelectContext(ctx, &rows, s.q(`SELECT `+pageColumns+` FROM pages WHERE site_id = ? AND published_content IS NOT NULL ORDER BY page_id`), siteID)
	if err != nil {
		return nil, err
	}
	pages := make([]Page, 0, len(rows))
	for _, r := range rows {
		p, err := r.toPage()
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, nil
}

// expectRows turns a zero-row update or delete into ErrNotFound.
func expectRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
