package sitebuilder

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/sitebuilder/analytics"
)

func TestHealthz(t *testing.T) {
	a := newTestApp(t)
	rec := serve(a, newGet("/healthz"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUnknownAPIRouteIsJSON404(t *testing.T) {
	a := newTestApp(t)
	rec := serve(a, newGet("/api/nope"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decode[apiError](t, rec).Error)
}

func TestListTemplatesByCategory(t *testing.T) {
	a := newTestApp(t)

	rec := serve(a, newGet("/api/templates"))
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[struct {
		Templates []Template `json:"templates"`
	}](t, rec).Templates
	assert.Len(t, all, 8)

	rec = serve(a, newGet("/api/templates?category=Blog"))
	require.Equal(t, http.StatusOK, rec.Code)
	blog := decode[struct {
		Templates []Template `json:"templates"`
	}](t, rec).Templates
	require.Len(t, blog, 2)
	for _, tpl := range blog {
		assert.Equal(t, "blog", tpl.Category)
	}

	rec = serve(a, newGet("/api/templates?category=none"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"templates":[]}`, rec.Body.String())
}

func TestCommentsRoundTrip(t *testing.T) {
	a := newTestApp(t)

	rec := doJSON(t, a, http.MethodPost, "/api/posts/post_1/comments", "", map[string]string{
		"author_name":  "Reader",
		"author_email": "reader@example.com",
		"content":      "Nice post",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[map[string]string](t, rec)["comment_id"]
	assert.True(t, strings.HasPrefix(id, "comment_"))

	rec = serve(a, newGet("/api/posts/post_1/comments"))
	require.Equal(t, http.StatusOK, rec.Code)
	comments := decode[struct {
		Comments []Comment `json:"comments"`
	}](t, rec).Comments
	require.Len(t, comments, 1)
	assert.Equal(t, id, comments[0].CommentID)
	assert.Equal(t, "Nice post", comments[0].Content)

	rec = doJSON(t, a, http.MethodPost, "/api/posts/post_1/comments", "", map[string]string{
		"author_name":  "Reader",
		"author_email": "not-an-email",
		"content":      "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, countRows(t, a, "comments"))
}

func TestSubmissionsAreRateLimited(t *testing.T) {
	a := newTestApp(t, func(c *Config) { c.SubmissionRateLimit = 2 })
	body := map[string]string{"author_name": "R", "author_email": "r@example.com", "content": "hi"}
	for i := 0; i < 2; i++ {
		rec := doJSON(t, a, http.MethodPost, "/api/posts/post_1/comments", "", body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := doJSON(t, a, http.MethodPost, "/api/posts/post_1/comments", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestPostsRoundTrip(t *testing.T) {
	a := newTestApp(t)
	token, _ := loginAs(t, a)

	rec := doJSON(t, a, http.MethodPost, "/api/posts", token, map[string]string{"title": "Hello", "body": "First **post**"})
	require.Equal(t, http.StatusCreated, rec.Code)
	postID := decode[map[string]string](t, rec)["post_id"]

	rec = serve(a, newGet("/api/posts"))
	require.Equal(t, http.StatusOK, rec.Code)
	posts := decode[struct {
		Posts []Post `json:"posts"`
	}](t, rec).Posts
	require.Len(t, posts, 1)
	assert.Equal(t, postID, posts[0].PostID)

	rec = serve(a, newGet("/feed.xml"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Hello</title>")
	assert.Contains(t, rec.Body.String(), postID)
}

func TestContactSubmissionRoundTrip(t *testing.T) {
	a := newTestApp(t)
	token, _ := loginAs(t, a)
	siteID := createSite(t, a, token)

	rec := doJSON(t, a, http.MethodPost, "/api/sites/"+siteID+"/contact", "", map[string]string{
		"name":    "Visitor",
		"email":   "visitor@example.com",
		"message": "Hello there",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[submissionResponse](t, rec)
	assert.True(t, resp.Success)
	assert.True(t, strings.HasPrefix(resp.SubmissionID, "submission_"))

	rec = doJSON(t, a, http.MethodGet, "/api/sites/"+siteID+"/contact/submissions", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	subs := decode[struct {
		Submissions []ContactSubmission `json:"submissions"`
	}](t, rec).Submissions
	require.Len(t, subs, 1)
	assert.Equal(t, resp.SubmissionID, subs[0].SubmissionID)
	assert.Equal(t, "Hello there", subs[0].Message)

	rec = doJSON(t, a, http.MethodPost, "/api/sites/"+siteID+"/contact", "", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContactSettings(t *testing.T) {
	a := newTestApp(t)
	token, _ := loginAs(t, a)
	siteID := createSite(t, a, token)
	path := "/api/sites/" + siteID + "/contact/settings"

	rec := doJSON(t, a, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, DefaultContactSettings(), decode[ContactSettings](t, rec))

	want := DefaultContactSettings()
	want.Form.CaptchaEnabled = false
	want.Map = MapSettings{Latitude: 52.52, Longitude: 13.405, ZoomLevel: 12}
	rec = doJSON(t, a, http.MethodPut, path, token, want)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, a, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, want, decode[ContactSettings](t, rec))

	want.Map.Latitude = 120
	rec = doJSON(t, a, http.MethodPut, path, token, want)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func publish(t *testing.T, a *App, token, siteID, pageID string, sections ...any) {
	t.Helper()
	rec := doJSON(t, a, http.MethodPut, "/api/sites/"+siteID+"/pages/"+pageID, token, map[string]any{
		"content":  map[string]any{"sections": sections},
		"seo_meta": map[string]any{"title": pageID + " title", "description": "about " + pageID, "keywords": []string{"k1", "k2"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = doJSON(t, a, http.MethodPost, "/api/sites/"+siteID+"/pages/"+pageID+"/publish", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestPublicPageRendering(t *testing.T) {
	a := newTestApp(t)
	token, _ := loginAs(t, a)
	siteID := createSite(t, a, token)
	publish(t, a, token, siteID, "home", map[string]any{"id": "hero", "content": map[string]any{"heading": "Welcome", "text": "to <our> site"}})
	publish(t, a, token, siteID, "about", map[string]any{"id": "story", "content": "We make **things**."})

	rec := serve(a, newGet("/s/"+siteID+"/about/"))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>about title</title>")
	assert.Contains(t, body, `<meta name="description" content="about about">`)
	assert.Contains(t, body, `<meta name="keywords" content="k1, k2">`)
	assert.Contains(t, body, "<strong>things</strong>")
	assert.Contains(t, body, `href="/s/`+siteID+`/"`)

	rec = serve(a, newGet("/s/"+siteID+"/"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "to &lt;our&gt; site")

	rec = serve(a, newGet("/s/"+siteID))
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)

	rec = serve(a, newGet("/s/"+siteID+"/blog/"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")

	rec = serve(a, newGet("/s/site_missing/"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(a, newGet("/s/"+siteID+"/sitemap.xml"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<loc>http://localhost:3000/s/"+siteID+"/</loc>")
	assert.Contains(t, rec.Body.String(), "<loc>http://localhost:3000/s/"+siteID+"/about/</loc>")
	assert.NotContains(t, rec.Body.String(), "/blog/")
}

func TestPublicContactFormFlash(t *testing.T) {
	a := newTestApp(t)
	token, _ := loginAs(t, a)
	siteID := createSite(t, a, token)
	publish(t, a, token, siteID, "contact")
	pagePath := "/s/" + siteID + "/contact/"

	rec := serve(a, newGet(pagePath))
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	var csrf string
	for _, c := range cookies {
		if c.Name == "_csrf" {
			csrf = c.Value
		}
	}
	require.NotEmpty(t, csrf)
	assert.Contains(t, rec.Body.String(), `value="`+csrf+`"`)

	post := func(form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, pagePath, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		for _, c := range cookies {
			req.AddCookie(c)
		}
		return serve(a, req)
	}

	rec = post(url.Values{"name": {"V"}, "email": {"v@example.com"}, "message": {"hi"}}, cookies)
	assert.Contains(t, []int{http.StatusBadRequest, http.StatusForbidden}, rec.Code, "missing csrf token")
	assert.Zero(t, countRows(t, a, "contact_submissions"))

	rec = post(url.Values{"_csrf": {csrf}, "name": {"V"}, "email": {"v@example.com"}, "message": {"hi"}}, cookies)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, pagePath, rec.Header().Get("Location"))
	assert.Equal(t, 1, countRows(t, a, "contact_submissions"))

	req := newGet(pagePath)
	for _, c := range append(cookies, rec.Result().Cookies()...) {
		req.AddCookie(c)
	}
	rec = serve(a, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Thanks for your message")
}

func pngUpload(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x*h/w, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func TestPortfolioLifecycle(t *testing.T) {
	a := newTestApp(t)
	token, _ := loginAs(t, a)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", "Beach Sunset.png")
	require.NoError(t, err)
	_, err = fw.Write(pngUpload(t, 1600, 800).Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/portfolio/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := serve(a, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode[PortfolioItem](t, rec)
	assert.Equal(t, 1200, item.Width)
	assert.Equal(t, 600, item.Height)
	assert.Equal(t, "Beach Sunset", item.Title)
	assert.True(t, strings.HasSuffix(item.ImageURL, "-beach-sunset.jpg"), item.ImageURL)

	stored, err := a.Store.GetPortfolioItem(context.Background(), item.ItemID)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(a.Config.UploadDir, stored.Filename))
	require.NoError(t, err)

	rec = serve(a, newGet(item.ImageURL))
	require.Equal(t, http.StatusOK, rec.Code)
	cfg, format, err := image.DecodeConfig(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 1200, cfg.Width)

	rec = doJSON(t, a, http.MethodPut, "/api/portfolio/item/"+item.ItemID, token, map[string]string{"title": "Sunset"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(a, newGet("/api/portfolio/items"))
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[struct {
		Items []PortfolioItem `json:"items"`
	}](t, rec).Items
	require.Len(t, items, 1)
	assert.Equal(t, "Sunset", items[0].Title)

	rec = doJSON(t, a, http.MethodDelete, "/api/portfolio/item/"+item.ItemID, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	_, err = os.Stat(filepath.Join(a.Config.UploadDir, stored.Filename))
	assert.True(t, os.IsNotExist(err))

	rec = doJSON(t, a, http.MethodDelete, "/api/portfolio/item/"+item.ItemID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPortfolioRejectsNonImages(t *testing.T) {
	a := newTestApp(t)
	token, _ := loginAs(t, a)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("not an image"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/portfolio/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := serve(a, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, countRows(t, a, "portfolio_items"))
}

func TestSiteStats(t *testing.T) {
	a := newTestApp(t)
	token, _ := loginAs(t, a)
	siteID := createSite(t, a, token)
	publish(t, a, token, siteID, "home")

	visit := func(ua string, dnt bool) {
		req := newGet("/s/" + siteID + "/")
		req.Header.Set("User-Agent", ua)
		req.Header.Set("Referer", "https://www.google.com/")
		if dnt {
			req.Header.Set("DNT", "1")
		}
		require.Equal(t, http.StatusOK, serve(a, req).Code)
	}
	firefox := "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
	visit(firefox, false)
	visit(firefox, false)
	visit("Mozilla/5.0 (compatible; Googlebot/2.1)", false)
	visit(firefox, true)

	rec := doJSON(t, a, http.MethodGet, "/api/sites/"+siteID+"/stats?days=7", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stats := decode[analytics.Stats](t, rec)
	assert.Equal(t, 2, stats.Views)
	assert.Equal(t, 1, stats.UniqueVisitors)
	assert.Equal(t, 1, stats.BotViews)
	assert.Equal(t, []analytics.Count{{Label: "home", Views: 2}}, stats.Pages)
	assert.Equal(t, []analytics.Count{{Label: "Google", Views: 2}}, stats.Referrers)
	assert.Equal(t, []analytics.Count{{Label: "Firefox", Views: 2}}, stats.Browsers)
	require.Len(t, stats.Daily, 1)

	rec = doJSON(t, a, http.MethodGet, "/api/sites/"+siteID+"/stats?days=0", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsCanBeDisabled(t *testing.T) {
	a := newTestApp(t, func(c *Config) { c.DisableAnalytics = true })
	token, _ := loginAs(t, a)
	siteID := createSite(t, a, token)
	publish(t, a, token, siteID, "home")

	require.Equal(t, http.StatusOK, serve(a, newGet("/s/"+siteID+"/")).Code)
	assert.Zero(t, countRows(t, a, "page_views"))
	rec := doJSON(t, a, http.MethodGet, "/api/sites/"+siteID+"/stats", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
