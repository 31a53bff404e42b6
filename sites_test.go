package sitebuilder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSiteCreatesDefaultPages(t *testing.T) {
	a := newTestApp(t)
	token, userID := loginAs(t, a)
	siteID := createSite(t, a, token)

	rec := doJSON(t, a, http.MethodGet, "/api/sites/"+siteID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	site := decode[Site](t, rec)
	assert.Equal(t, userID, site.UserID)
	assert.Equal(t, "business-classic", site.TemplateID)
	assert.NotEmpty(t, site.DateCreated)

	rec = doJSON(t, a, http.MethodGet, "/api/sites/"+siteID+"/pages", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pages := decode[struct {
		Pages []PageSummary `json:"pages"`
	}](t, rec).Pages
	var ids []string
	for _, p := range pages {
		ids = append(ids, p.PageID)
		assert.Equal(t, PageStatusDraft, p.Status)
	}
	assert.ElementsMatch(t, DefaultPageIDs, ids)

	rec = doJSON(t, a, http.MethodGet, "/api/sites", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sites := decode[struct {
		Sites []Site `json:"sites"`
	}](t, rec).Sites
	require.Len(t, sites, 1)
	assert.Equal(t, siteID, sites[0].SiteID)
}

func TestCreateSiteValidation(t *testing.T) {
	a := newTestApp(t)
	token, _ := loginAs(t, a)
	rec := doJSON(t, a, http.MethodPost, "/api/sites", token, map[string]string{"domain_name": "example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, countRows(t, a, "sites"))
}

func TestConcurrentSiteCreationYieldsDistinctIDs(t *testing.T) {
	a := newTestApp(t)
	token, _ := loginAs(t, a)

	const n = 16
	recs := make([]*httptest.ResponseRecorder, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/sites", strings.NewReader(`{"template_id":"blog-journal"}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)
			recs[i] = serve(a, req)
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, rec := range recs {
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		id := decode[map[string]string](t, rec)["site_id"]
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Equal(t, n, countRows(t, a, "sites"))
}

func TestUpdatePage(t *testing.T) {
	a := newTestApp(t)
	token, _ := loginAs(t, a)
	siteID := createSite(t, a, token)

	body := map[string]any{
		"content": map[string]any{"sections": []any{
			map[string]any{"id": "hero", "content": map[string]any{"heading": "Hello", "text": "Welcome"}},
		}},
		"seo_meta": map[string]any{"title": "Home", "description": "d", "keywords": []string{"a"}},
	}
	rec := doJSON(t, a, http.MethodPut, "/api/sites/"+siteID+"/pages/home", token, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, pageResult{Success: true, Message: "Page successfully updated"}, decode[pageResult](t, rec))

	rec = doJSON(t, a, http.MethodGet, "/api/sites/"+siteID+"/pages/home", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[Page](t, rec)
	assert.Equal(t, PageStatusDraft, page.Status)
	require.Len(t, page.Content.Sections, 1)
	assert.Equal(t, "hero", page.Content.Sections[0].ID)
	assert.Equal(t, "Home", page.SEOMeta.Title)
	assert.Nil(t, page.PublishedContent)
}

func TestUpdatePageUnknownPairChangesNothing(t *testing.T) {
	a := newTestApp(t)
	token, _ := loginAs(t, a)
	siteA := createSite(t, a, token)
	siteB := createSite(t, a, token)

	before, err := a.Store.GetPage(context.Background(), siteA, "home")
	require.NoError(t, err)

	body := map[string]any{
		"content":  map[string]any{"sections": []any{map[string]any{"id": "x", "content": "changed"}}},
		"seo_meta": map[string]any{"title": "changed"},
	}
	for _, path := range []string{
		"/api/sites/" + siteA + "/pages/missing",
		"/api/sites/site_unknown/pages/home",
	} {
		rec := doJSON(t, a, http.MethodPut, path, token, body)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, pageResult{Success: false, Message: "Page not found"}, decode[pageResult](t, rec))
	}

	after, err := a.Store.GetPage(context.Background(), siteA, "home")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	other, err := a.Store.GetPage(context.Background(), siteB, "home")
	require.NoError(t, err)
	assert.Empty(t, other.Content.Sections)
}

func TestUpdatePageRequiresBody(t *testing.T) {
	a := newTestApp(t)
	token, _ := loginAs(t, a)
	siteID := createSite(t, a, token)
	rec := doJSON(t, a, http.MethodPut, "/api/sites/"+siteID+"/pages/home", token, map[string]any{"content": map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePage(t *testing.T) {
	a := newTestApp(t)
	token, _ := loginAs(t, a)
	siteID := createSite(t, a, token)

	rec := doJSON(t, a, http.MethodPost, "/api/sites/"+siteID+"/pages", token, map[string]string{"page_id": "pricing"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	page, err := a.Store.GetPage(context.Background(), siteID, "pricing")
	require.NoError(t, err)
	assert.Equal(t, "Pricing", page.Title)

	rec = doJSON(t, a, http.MethodPost, "/api/sites/"+siteID+"/pages", token, map[string]string{"page_id": "pricing"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, a, http.MethodPost, "/api/sites/"+siteID+"/pages", token, map[string]string{"page_id": "Bad Id!"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, a, http.MethodPost, "/api/sites/site_missing/pages", token, map[string]string{"page_id": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublishPage(t *testing.T) {
	a := newTestApp(t)
	token, _ := loginAs(t, a)
	siteID := createSite(t, a, token)

	put := func(text string) {
		rec := doJSON(t, a, http.MethodPut, "/api/sites/"+siteID+"/pages/home", token, map[string]any{
			"content":  map[string]any{"sections": []any{map[string]any{"id": "body", "content": text}}},
			"seo_meta": map[string]any{"title": "Home page"},
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	put("first version")
	rec := serve(a, newGet("/s/"+siteID+"/"))
	assert.Equal(t, http.StatusNotFound, rec.Code, "drafts are not public")

	rec = doJSON(t, a, http.MethodPost, "/api/sites/"+siteID+"/pages/home/publish", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	page, err := a.Store.GetPage(context.Background(), siteID, "home")
	require.NoError(t, err)
	assert.Equal(t, PageStatusPublished, page.Status)
	assert.NotEmpty(t, page.PublishedAt)

	put("second version")
	rec = serve(a, newGet("/s/"+siteID+"/"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "first version")
	assert.NotContains(t, rec.Body.String(), "second version")

	page, err = a.Store.GetPage(context.Background(), siteID, "home")
	require.NoError(t, err)
	assert.Equal(t, PageStatusDraft, page.Status)

	rec = doJSON(t, a, http.MethodPost, "/api/sites/"+siteID+"/pages/nope/publish", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
