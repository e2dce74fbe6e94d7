package extractor

import (
	"encoding/json"
	nurl "net/url"

	"github.com/PuerkitoBio/goquery"
)

// extractLinkedData pulls title and image out of schema.org JSON-LD
// script blocks. Each block is parsed independently; a malformed block
// is reported and skipped rather than aborting the strategy.
func extractLinkedData(doc *goquery.Document, base *nurl.URL) (title, image string, warnings []string) {
	blocks := doc.Find(`script[type="application/ld+json"]`)
	if blocks.Length() == 0 {
		return "", "", []string{"linked-data: no structured data blocks"}
	}

	blocks.EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var payload any
		if err := json.Unmarshal([]byte(sel.Text()), &payload); err != nil {
			warnings = append(warnings, "linked-data: malformed JSON block")
			return true
		}

		if title == "" {
			title = searchTitle(payload, 0)
		}
		if image == "" {
			image = searchImage(payload, base, 0)
		}

		return title == "" || image == ""
	})

	return title, image, warnings
}
