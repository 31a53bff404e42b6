package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/eringen/sitebuilder"
	"github.com/eringen/sitebuilder/analytics"
)

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// CreateSiteRequest is the body of POST /api/sites.
type CreateSiteRequest struct {
	TemplateID  string `json:"template_id"`
	DomainName  string `json:"domain_name"`
	ColorScheme string `json:"color_scheme"`
	Fonts       string `json:"fonts"`
}

// CommentInput is the body of a new blog comment.
type CommentInput struct {
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
	Content     string `json:"content"`
}

// ContactInput is the body of a contact form submission.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Result is the {success, message} body of page and settings mutations.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func esc(s string) string { return url.PathEscape(s) }

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	var out LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &out)
	return out, err
}

// Health reports whether the server and its database are up.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// ListTemplates returns the template catalog, filtered by category when non-empty.
func (c *Client) ListTemplates(ctx context.Context, category string) ([]sitebuilder.Template, error) {
	path := "/api/templates"
	if category != "" {
		path += "?" + url.Values{"category": {category}}.Encode()
	}
	var out struct {
		Templates []sitebuilder.Template `json:"templates"`
	}
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out.Templates, err
}

// CreateSite creates a site for the authenticated user and returns its id.
func (c *Client) CreateSite(ctx context.Context, req CreateSiteRequest) (string, error) {
	var out struct {
		SiteID string `json:"site_id"`
	}
	err := c.do(ctx, http.MethodPost, "/api/sites", req, &out)
	return out.SiteID, err
}

func (c *Client) ListSites(ctx context.Context) ([]sitebuilder.Site, error) {
	var out struct {
		Sites []sitebuilder.Site `json:"sites"`
	}
	err := c.do(ctx, http.MethodGet, "/api/sites", nil, &out)
	return out.Sites, err
}

func (c *Client) GetSite(ctx context.Context, siteID string) (sitebuilder.Site, error) {
	var out sitebuilder.Site
	err := c.do(ctx, http.MethodGet, "/api/sites/"+esc(siteID), nil, &out)
	return out, err
}

// ListPages returns page summaries, most recently modified first.
func (c *Client) ListPages(ctx context.Context, siteID string) ([]sitebuilder.PageSummary, error) {
	var out struct {
		Pages []sitebuilder.PageSummary `json:"pages"`
	}
	err := c.do(ctx, http.MethodGet, "/api/sites/"+esc(siteID)+"/pages", nil, &out)
	return out.Pages, err
}

func (c *Client) CreatePage(ctx context.Context, siteID, pageID, title string) error {
	return c.do(ctx, http.MethodPost, "/api/sites/"+esc(siteID)+"/pages", map[string]string{
		"page_id": pageID,
		"title":   title,
	}, nil)
}

// GetPage returns the working copy of a page.
func (c *Client) GetPage(ctx context.Context, siteID, pageID string) (sitebuilder.Page, error) {
	var out sitebuilder.Page
	err := c.do(ctx, http.MethodGet, "/api/sites/"+esc(siteID)+"/pages/"+esc(pageID), nil, &out)
	return out, err
}

// UpdatePage saves the working copy of a page as a draft.
func (c *Client) UpdatePage(ctx context.Context, siteID, pageID string, content sitebuilder.PageContent, seo sitebuilder.SEOMeta) (Result, error) {
	var out Result
	err := c.do(ctx, http.MethodPut, "/api/sites/"+esc(siteID)+"/pages/"+esc(pageID), map[string]any{
		"content":  content,
		"seo_meta": seo,
	}, &out)
	return out, err
}

// PublishPage makes the current working copy publicly visible.
func (c *Client) PublishPage(ctx context.Context, siteID, pageID string) (Result, error) {
	var out Result
	err := c.do(ctx, http.MethodPost, "/api/sites/"+esc(siteID)+"/pages/"+esc(pageID)+"/publish", nil, &out)
	return out, err
}

func (c *Client) ListPosts(ctx context.Context) ([]sitebuilder.Post, error) {
	var out struct {
		Posts []sitebuilder.Post `json:"posts"`
	}
	err := c.do(ctx, http.MethodGet, "/api/posts", nil, &out)
	return out.Posts, err
}

func (c *Client) CreatePost(ctx context.Context, title, body string) (string, error) {
	var out struct {
		PostID string `json:"post_id"`
	}
	err := c.do(ctx, http.MethodPost, "/api/posts", map[string]string{"title": title, "body": body}, &out)
	return out.PostID, err
}

func (c *Client) ListComments(ctx context.Context, postID string) ([]sitebuilder.Comment, error) {
	var out struct {
		Comments []sitebuilder.Comment `json:"comments"`
	}
	err := c.do(ctx, http.MethodGet, "/api/posts/"+esc(postID)+"/comments", nil, &out)
	return out.Comments, err
}

// CreateComment posts an unauthenticated comment and returns its id.
func (c *Client) CreateComment(ctx context.Context, postID string, in CommentInput) (string, error) {
	var out struct {
		CommentID string `json:"comment_id"`
	}
	err := c.do(ctx, http.MethodPost, "/api/posts/"+esc(postID)+"/comments", in, &out)
	return out.CommentID, err
}

// SubmitContact sends a contact form submission and returns its id.
func (c *Client) SubmitContact(ctx context.Context, siteID string, in ContactInput) (string, error) {
	var out struct {
		SubmissionID string `json:"submission_id"`
		Success      bool   `json:"success"`
	}
	err := c.do(ctx, http.MethodPost, "/api/sites/"+esc(siteID)+"/contact", in, &out)
	return out.SubmissionID, err
}

func (c *Client) ListSubmissions(ctx context.Context, siteID string) ([]sitebuilder.ContactSubmission, error) {
	var out struct {
		Submissions []sitebuilder.ContactSubmission `json:"submissions"`
	}
	err := c.do(ctx, http.MethodGet, "/api/sites/"+esc(siteID)+"/contact/submissions", nil, &out)
	return out.Submissions, err
}

func (c *Client) GetContactSettings(ctx context.Context, siteID string) (sitebuilder.ContactSettings, error) {
	var out sitebuilder.ContactSettings
	err := c.do(ctx, http.MethodGet, "/api/sites/"+esc(siteID)+"/contact/settings", nil, &out)
	return out, err
}

func (c *Client) SaveContactSettings(ctx context.Context, siteID string, s sitebuilder.ContactSettings) error {
	return c.do(ctx, http.MethodPut, "/api/sites/"+esc(siteID)+"/contact/settings", s, nil)
}

func (c *Client) ListPortfolio(ctx context.Context) ([]sitebuilder.PortfolioItem, error) {
	var out struct {
		Items []sitebuilder.PortfolioItem `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "/api/portfolio/items", nil, &out)
	return out.Items, err
}

// UploadPortfolio sends an image as multipart form data. An empty title lets
// the server derive one from filename.
func (c *Client) UploadPortfolio(ctx context.Context, filename string, image io.Reader, title string) (sitebuilder.PortfolioItem, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if title != "" {
		if err := mw.WriteField("title", title); err != nil {
			return sitebuilder.PortfolioItem{}, err
		}
	}
	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return sitebuilder.PortfolioItem{}, err
	}
	if _, err := io.Copy(fw, image); err != nil {
		return sitebuilder.PortfolioItem{}, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return sitebuilder.PortfolioItem{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/portfolio/upload", &body)
	if err != nil {
		return sitebuilder.PortfolioItem{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var out sitebuilder.PortfolioItem
	err = c.send(req, &out)
	return out, err
}

func (c *Client) RenamePortfolio(ctx context.Context, itemID, title string) error {
	return c.do(ctx, http.MethodPut, "/api/portfolio/item/"+esc(itemID), map[string]string{"title": title}, nil)
}

func (c *Client) DeletePortfolio(ctx context.Context, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/api/portfolio/item/"+esc(itemID), nil, nil)
}

// SiteStats returns page view statistics for the last days days.
func (c *Client) SiteStats(ctx context.Context, siteID string, days int) (analytics.Stats, error) {
	path := "/api/sites/" + esc(siteID) + "/stats"
	if days > 0 {
		path += "?days=" + strconv.Itoa(days)
	}
	var out analytics.Stats
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}
