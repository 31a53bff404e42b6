package views

// Site carries the site-wide values every public page needs.
type Site struct {
	ID          string
	Name        string // domain name, shown as the site title
	URL         string // canonical root, e.g. https://example.com/s/site_x/
	ColorScheme string
	Fonts       string
	Nav         []NavLink
}

// NavLink is one entry of the site navigation.
type NavLink struct {
	Label  string
	URL    string
	Active bool
}

// Meta is the per-page SEO metadata rendered into <head>.
type Meta struct {
	Title       string
	Description string
	Keywords    []string
	Canonical   string
}

// Section is one rendered content block. Markdown, when set, is rendered in
// place of Text.
type Section struct {
	ID       string
	Heading  string
	Text     string
	Markdown string
	ImageURL string
}

// PageView is everything needed to render one published page.
type PageView struct {
	Site     Site
	PageID   string
	Title    string
	Meta     Meta
	Sections []Section
	Updated  string
	Contact  *ContactForm
}

// ContactForm configures the contact form rendered on a contact page.
type ContactForm struct {
	Action      string
	CSRFToken   string
	Flash       string
	ShowName    bool
	ShowEmail   bool
	ShowMessage bool
	Map         *MapEmbed
}

// MapEmbed positions an OpenStreetMap embed.
type MapEmbed struct {
	Latitude  float64
	Longitude float64
	Zoom      int
}
