package views

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"
)

// WebPageJsonLD produces a Schema.org WebPage JSON-LD block for p.
func WebPageJsonLD(p PageView) string {
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebPage",
		"name":     firstNonEmpty(p.Meta.Title, p.Title),
		"url":      p.Meta.Canonical,
		"isPartOf": map[string]string{
			"@type": "WebSite",
			"name":  p.Site.Name,
			"url":   p.Site.URL,
		},
	}
	if p.Meta.Description != "" {
		data["description"] = p.Meta.Description
	}
	if len(p.Meta.Keywords) > 0 {
		data["keywords"] = strings.Join(p.Meta.Keywords, ", ")
	}
	if p.Updated != "" {
		data["dateModified"] = p.Updated
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// OSMEmbedURL returns an OpenStreetMap embed URL centered on m. The bounding
// box shrinks by half for every zoom level.
func OSMEmbedURL(m MapEmbed) string {
	zoom := m.Zoom
	if zoom <= 0 {
		zoom = 15
	}
	delta := 360 / math.Pow(2, float64(zoom))
	bbox := fmt.Sprintf("%.6f,%.6f,%.6f,%.6f",
		m.Longitude-delta, m.Latitude-delta/2, m.Longitude+delta, m.Latitude+delta/2)
	q := url.Values{}
	q.Set("bbox", bbox)
	q.Set("layer", "mapnik")
	q.Set("marker", fmt.Sprintf("%.6f,%.6f", m.Latitude, m.Longitude))
	return "https://www.openstreetmap.org/export/embed.html?" + q.Encode()
}

// fontStack turns the stored fonts value into a CSS font-family list.
func fontStack(fonts string) string {
	var out []string
	for _, f := range strings.Split(fonts, ",") {
		f = strings.TrimSpace(f)
		if f == "" || strings.ContainsAny(f, `;{}<>"`) {
			continue
		}
		out = append(out, "'"+strings.ReplaceAll(f, "'", "")+"'")
	}
	out = append(out, "system-ui", "sans-serif")
	return strings.Join(out, ", ")
}

// accentColor maps a color scheme name to its accent color.
func accentColor(scheme string) string {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "dark":
		return "#e5e7eb"
	case "blue":
		return "#2563eb"
	case "green":
		return "#16a34a"
	case "red":
		return "#dc2626"
	case "purple":
		return "#7c3aed"
	}
	return "#111827"
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
