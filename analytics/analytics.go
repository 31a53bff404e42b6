// Package analytics records privacy-preserving page views of published sites.
// Client IPs are never stored; visitors are identified by a salted hash of
// IP and User-Agent that cannot be reversed without the installation salt.
package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// Hasher derives anonymous visitor ids from a per-installation salt.
type Hasher struct {
	salt string
}

// NewHasher returns a Hasher for salt.
func NewHasher(salt string) Hasher {
	return Hasher{salt: salt}
}

// VisitorID returns a 16 hex character id for ip and userAgent.
func (h Hasher) VisitorID(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(h.salt + ip + "|" + userAgent))
	return hex.EncodeToString(sum[:])[:16]
}

// ParseUserAgent extracts browser, OS, and device from a User-Agent string.
func ParseUserAgent(ua string) (browser, os, device string) {
	ua = strings.ToLower(ua)

	// more specific patterns first: Edge and Opera UAs also contain "chrome"
	switch {
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "opera") || strings.Contains(ua, "opr/"):
		browser = "Opera"
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	default:
		browser = "Other"
	}

	// Android UAs contain "linux"
	switch {
	case strings.Contains(ua, "windows"):
		os = "Windows"
	case strings.Contains(ua, "android"):
		os = "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		os = "iOS"
	case strings.Contains(ua, "macintosh") || strings.Contains(ua, "mac os"):
		os = "macOS"
	case strings.Contains(ua, "linux"):
		os = "Linux"
	default:
		os = "Other"
	}

	// iPad UAs contain "mobile"
	switch {
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		device = "Tablet"
	case strings.Contains(ua, "mobile"):
		device = "Mobile"
	default:
		device = "Desktop"
	}
	return browser, os, device
}

var knownBots = []struct{ pattern, name string }{
	{"googlebot", "Googlebot"},
	{"bingbot", "Bingbot"},
	{"yandex", "Yandex"},
	{"baidu", "Baidu"},
	{"duckduckbot", "DuckDuckBot"},
	{"facebookexternalhit", "Facebook"},
	{"twitterbot", "Twitterbot"},
	{"linkedinbot", "LinkedIn"},
	{"ahrefsbot", "Ahrefs"},
	{"semrushbot", "SEMrush"},
	{"slurp", "Yahoo Slurp"},
}

var genericBotMarkers = []string{"bot", "crawler", "crawl", "spider", "scrape", "headless"}

// BotName returns the crawler name for ua, or "" for a regular browser.
func BotName(ua string) string {
	ua = strings.ToLower(ua)
	for _, b := range knownBots {
		if strings.Contains(ua, b.pattern) {
			return b.name
		}
	}
	for _, m := range genericBotMarkers {
		if strings.Contains(ua, m) {
			return "Other Bot"
		}
	}
	if strings.TrimSpace(ua) == "" {
		return "Unknown"
	}
	return ""
}

var referrerDomain = regexp.MustCompile(`^https?://(?:www\.)?([^/:?#]+)`)

// CleanReferrer reduces a referrer URL to a source name or bare domain.
func CleanReferrer(ref string) string {
	if ref == "" {
		return "Direct"
	}
	lower := strings.ToLower(ref)
	for _, s := range []struct{ marker, name string }{
		{"google.", "Google"},
		{"bing.", "Bing"},
		{"duckduckgo.", "DuckDuckGo"},
		{"yahoo.", "Yahoo"},
		{"github.", "GitHub"},
	} {
		if strings.Contains(lower, s.marker) {
			return s.name
		}
	}
	if m := referrerDomain.FindStringSubmatch(lower); len(m) > 1 {
		return m[1]
	}
	return "Other"
}
