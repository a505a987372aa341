package widget

import (
	"regexp"
	"strings"
)

var (
	localOrigin      = regexp.MustCompile(`^https?://(?:127\.0\.0\.1|localhost)(?::\d+)?(/|$)`)
	trailingIndexDoc = regexp.MustCompile(`/index\.html$`)
)

// URLRules controls how result refs are relativized
type URLRules struct {
	// ProductionOrigin is stripped from refs, e.g. "https://blog.clexp.net"
	ProductionOrigin string
	// StripLocalhost strips 127.0.0.1 and localhost origins of a local
	// development server
	StripLocalhost bool
}

// DefaultURLRules returns the rules for the production blog
func DefaultURLRules() URLRules {
	return URLRules{
		ProductionOrigin: "https://blog.clexp.net",
		StripLocalhost:   true,
	}
}

// GetTitle derives a display title from the last path segment of url.
// Hyphens become spaces and every word starts upper-case; an url without
// segments is "Home".
func GetTitle(url string) string {
	var slug string
	for _, part := range strings.Split(url, "/") {
		if part != "" {
			slug = part
		}
	}
	if slug == "" {
		slug = "Home"
	}
	return capitalizeWords(strings.ReplaceAll(slug, "-", " "))
}

// capitalizeWords upper-cases every ASCII letter that starts a word
func capitalizeWords(s string) string {
	b := []byte(s)
	prevWord := false
	for i, c := range b {
		word := isWordByte(c)
		if word && !prevWord && c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
		prevWord = word
	}
	return string(b)
}

func isWordByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// ConvertToRelativeURL turns a production or local development URL into a
// site-relative path with a leading slash and without a trailing
// index.html document
func (r URLRules) ConvertToRelativeURL(url string) string {
	switch {
	case r.ProductionOrigin != "" && strings.HasPrefix(url, r.ProductionOrigin):
		url = strings.TrimPrefix(url, r.ProductionOrigin)
	case r.StripLocalhost:
		url = localOrigin.ReplaceAllString(url, "$1")
	}

	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}

	return trailingIndexDoc.ReplaceAllString(url, "/")
}

// ConvertToRelativeURL relativizes url with the default rules
func ConvertToRelativeURL(url string) string {
	return DefaultURLRules().ConvertToRelativeURL(url)
}
