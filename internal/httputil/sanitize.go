package httputil

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// validSlugPattern matches catalog slugs: lowercase alphanumerics separated by hyphens.
var validSlugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidateURL checks that a URL is well-formed and uses HTTPS.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("only HTTPS URLs are allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// ValidateMediaURL checks that a media URL is well-formed HTTP(S).
func ValidateMediaURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("only HTTP(S) media URLs are allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// ValidateSlug checks that a catalog slug contains only safe characters.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug cannot be empty")
	}
	if len(slug) > 256 {
		return fmt.Errorf("slug too long: %d characters", len(slug))
	}
	if !validSlugPattern.MatchString(slug) {
		return fmt.Errorf("slug contains invalid characters: %q", slug)
	}
	return nil
}

// IsURL reports whether s looks like an absolute HTTP(S) URL rather than a slug.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}

// Resolve resolves ref against base, returning ref untouched if either fails to parse.
func Resolve(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
