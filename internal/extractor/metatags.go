package extractor

import (
	nurl "net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractMetaTags reads og:title and og:image, accepting both property
// and name attribute variants.
func extractMetaTags(doc *goquery.Document, base *nurl.URL) (title, image string, warnings []string) {
	title = metaContent(doc, "og:title")
	if title == "" {
		warnings = append(warnings, "meta-tags: no og:title")
	}

	if raw := metaContent(doc, "og:image"); raw != "" {
		image = resolveImageURL(base, raw)
	}

	return title, image, warnings
}

// metaContent returns the trimmed content of the first matching meta tag.
func metaContent(doc *goquery.Document, key string) string {
	for _, selector := range []string{
		`meta[property="` + key + `"]`,
		`meta[name="` + key + `"]`,
	} {
		if content, exists := doc.Find(selector).Attr("content"); exists {
			if trimmed := strings.TrimSpace(content); trimmed != "" {
				return trimmed
			}
		}
	}

	return ""
}
