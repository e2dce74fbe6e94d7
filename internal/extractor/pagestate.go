package extractor

import (
	"encoding/json"
	nurl "net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// pageStateAssign matches a page-state blob assigned to a dunder global,
// e.g. `window.__initialData__ = {...}` or `window.__initialData__ = "..."`.
var pageStateAssign = regexp.MustCompile(`window\.__\w+\s*=\s*`)

// extractPageState locates an embedded page-state JSON blob inside an
// inline script and searches it with the shared key heuristics. The blob
// may be a JSON object literal or a quoted, percent-encoded JSON string
// (the form the source site uses).
func extractPageState(doc *goquery.Document, base *nurl.URL) (title, image string, warnings []string) {
	found := false

	doc.Find("script:not([src])").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()

		loc := pageStateAssign.FindStringIndex(text)
		if loc == nil {
			return true
		}

		payload, ok := decodePageState(text[loc[1]:])
		if !ok {
			warnings = append(warnings, "page-state: blob is not valid JSON")
			return true
		}

		found = true
		if title == "" {
			title = searchTitle(payload, 0)
		}
		if image == "" {
			image = searchImage(payload, base, 0)
		}

		return title == "" || image == ""
	})

	if !found && len(warnings) == 0 {
		warnings = append(warnings, "page-state: no page-state blob")
	}

	return title, image, warnings
}

// decodePageState decodes the first JSON value following the assignment.
// A string value is assumed to be percent-encoded JSON and decoded a
// second time.
func decodePageState(rest string) (any, bool) {
	dec := json.NewDecoder(strings.NewReader(rest))

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, false
	}

	if quoted, ok := payload.(string); ok {
		unescaped, err := nurl.QueryUnescape(quoted)
		if err != nil {
			unescaped = quoted
		}

		var inner any
		if err := json.Unmarshal([]byte(unescaped), &inner); err != nil {
			return nil, false
		}
		return inner, true
	}

	return payload, true
}
