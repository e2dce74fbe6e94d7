package extractor

import (
	nurl "net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// imgSrcAttrs lists the attributes checked for an image source, in
// order: plain src first, then common lazy-load variants.
var imgSrcAttrs = []string{"src", "data-src", "data-original", "data-lazy-src"}

// extractGeneric is the last-resort strategy: document <title> text and
// the first plausible <img> source.
func extractGeneric(doc *goquery.Document, base *nurl.URL) (title, image string, warnings []string) {
	title = strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		warnings = append(warnings, "fallback: document has no title")
	}

	image = firstImageURL(doc, base)

	return title, image, warnings
}

// firstImageURL scans img elements for the first resolvable source,
// skipping data:/blob: URIs.
func firstImageURL(doc *goquery.Document, base *nurl.URL) string {
	var found string

	doc.Find("img").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		for _, attr := range imgSrcAttrs {
			src, exists := sel.Attr(attr)
			if !exists {
				continue
			}

			if resolved := resolveImageURL(base, src); resolved != "" {
				found = resolved
				return false
			}
		}

		return true
	})

	return found
}
