package sitebuilder

// User is an account that can log in and own sites.
type User struct {
	UserID       string `db:"user_id" json:"user_id"`
	Username     string `db:"username" json:"username"`
	PasswordHash string `db:"password_hash" json:"-"`
	CreatedAt    string `db:"created_at" json:"created_at"`
}

// Template is a read-only catalog entry a site is created from.
type Template struct {
	TemplateID  string `db:"template_id" json:"template_id"`
	Name        string `db:"name" json:"name"`
	Category    string `db:"category" json:"category"`
	PreviewURL  string `db:"preview_url" json:"preview_url"`
	Description string `db:"description" json:"description"`
}

// Site is a website owned by one user and built from one template.
type Site struct {
	SiteID      string `db:"site_id" json:"site_id"`
	UserID      string `db:"user_id" json:"user_id"`
	TemplateID  string `db:"template_id" json:"template_id"`
	DomainName  string `db:"domain_name" json:"domain_name"`
	ColorScheme string `db:"color_scheme" json:"color_scheme"`
	Fonts       string `db:"fonts" json:"fonts"`
	DateCreated string `db:"date_created" json:"date_created"`
}

// Page statuses.
const (
	PageStatusDraft     = "draft"
	PageStatusPublished = "published"
)

// DefaultPageIDs are created for every new site, matching the CMS page selector.
var DefaultPageIDs = []string{"home", "about", "blog", "portfolio", "contact"}

// Section is one block of page content. Content is free-form JSON: a string is
// rendered as markdown, an object may carry "heading", "text" and "image_url".
type Section struct {
	ID      string `json:"id"`
	Content any    `json:"content"`
}

// PageContent is the structured body of a page.
type PageContent struct {
	Sections []Section `json:"sections"`
}

// SEOMeta carries the search metadata edited in the CMS.
type SEOMeta struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// Page is one page of a site. Content and SEOMeta are the working copy edited
// through the CMS; the Published fields hold the last published snapshot.
type Page struct {
	PageID           string       `json:"page_id"`
	SiteID           string       `json:"site_id"`
	Title            string       `json:"title"`
	Content          PageContent  `json:"content"`
	SEOMeta          SEOMeta      `json:"seo_meta"`
	Status           string       `json:"status"`
	PublishedContent *PageContent `json:"published_content,omitempty"`
	PublishedSEOMeta *SEOMeta     `json:"published_seo_meta,omitempty"`
	UpdatedAt        string       `json:"last_modified"`
	PublishedAt      string       `json:"published_at,omitempty"`
}

// PageSummary is the list form of a page used for the "recent edits" view.
type PageSummary struct {
	PageID       string `db:"page_id" json:"page_id"`
	Title        string `db:"title" json:"title"`
	Status       string `db:"status" json:"status"`
	LastModified string `db:"updated_at" json:"last_modified"`
}

// Post is a blog post. Comments attach to it by PostID.
type Post struct {
	PostID string `db:"post_id" json:"post_id"`
	Title  string `db:"title" json:"title"`
	Body   string `db:"body" json:"body"`
	Date   string `db:"date" json:"date"`
}

// Comment is an unauthenticated reader comment on a post.
type Comment struct {
	CommentID   string `db:"comment_id" json:"comment_id"`
	PostID      string `db:"post_id" json:"post_id"`
	AuthorName  string `db:"author_name" json:"author_name"`
	AuthorEmail string `db:"author_email" json:"author_email"`
	Content     string `db:"content" json:"content"`
	PublishDate string `db:"publish_date" json:"publish_date"`
}

// ContactSubmission is a message sent through a site's contact form.
type ContactSubmission struct {
	SubmissionID   string `db:"submission_id" json:"submission_id"`
	SiteID         string `db:"site_id" json:"site_id"`
	Name           string `db:"name" json:"name"`
	Email          string `db:"email" json:"email"`
	Message        string `db:"message" json:"message"`
	SubmissionDate string `db:"submission_date" json:"submission_date"`
}

// ContactSettings is the contact page configuration edited in the CMS.
// CaptchaEnabled is stored for the frontend only; submissions do not check it.
type ContactSettings struct {
	Form          ContactFormSettings  `json:"form"`
	Map           MapSettings          `json:"map"`
	Notifications NotificationSettings `json:"notifications"`
}

// ContactFormSettings toggles the visible contact form fields.
type ContactFormSettings struct {
	NameFieldEnabled    bool `json:"name_field_enabled"`
	EmailFieldEnabled   bool `json:"email_field_enabled"`
	MessageFieldEnabled bool `json:"message_field_enabled"`
	CaptchaEnabled      bool `json:"captcha_enabled"`
}

// MapSettings positions the embedded map on the contact page.
type MapSettings struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	ZoomLevel int     `json:"zoom_level"`
}

// NotificationSettings controls owner notifications for new submissions.
type NotificationSettings struct {
	EmailEnabled   bool `json:"email_enabled"`
	SendCopyToSelf bool `json:"send_copy_to_self"`
}

// DefaultContactSettings mirrors the defaults shown by the contact page editor.
func DefaultContactSettings() ContactSettings {
	return ContactSettings{
		Form: ContactFormSettings{
			NameFieldEnabled:    true,
			EmailFieldEnabled:   true,
			MessageFieldEnabled: true,
			CaptchaEnabled:      true,
		},
		Map:           MapSettings{ZoomLevel: 15},
		Notifications: NotificationSettings{EmailEnabled: true},
	}
}

// PortfolioItem is an uploaded gallery image.
type PortfolioItem struct {
	ItemID    string `db:"item_id" json:"item_id"`
	Title     string `db:"title" json:"title"`
	ImageURL  string `db:"image_url" json:"image_url"`
	Filename  string `db:"filename" json:"-"`
	Width     int    `db:"width" json:"width"`
	Height    int    `db:"height" json:"height"`
	CreatedAt string `db:"created_at" json:"created_at"`
}
