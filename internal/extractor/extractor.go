// Package extractor produces a best-effort (title, image) pair from raw
// listing HTML by trying structured-data strategies in priority order.
package extractor

import (
	"fmt"
	nurl "net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Result status values.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// Degradation reasons.
const (
	ReasonParseFailed    = "parse-failed"
	ReasonParseException = "parse-exception"
)

// Result is the outcome of extracting one page. Title is non-empty iff
// Status is StatusOK; Image is optional either way. Warnings name the
// strategies that failed and are diagnostic only.
type Result struct {
	Status   string   `json:"status"`
	Title    string   `json:"title,omitempty"`
	Image    string   `json:"image,omitempty"`
	Reason   string   `json:"reason,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// OK reports whether extraction produced a usable title.
func (r Result) OK() bool {
	return r.Status == StatusOK
}

// strategy is one named way of pulling a title and image out of a page.
// Either return value may be empty; warnings explain what was missing.
type strategy struct {
	name    string
	extract func(doc *goquery.Document, base *nurl.URL) (title, image string, warnings []string)
}

// Extractor runs the extraction strategies against fetched HTML.
type Extractor struct {
	strategies []strategy
}

// New creates an Extractor with the default strategy order: linked data,
// page-state blob, meta tags, generic markup fallback.
func New() *Extractor {
	return &Extractor{
		strategies: []strategy{
			{name: "linked-data", extract: extractLinkedData},
			{name: "page-state", extract: extractPageState},
			{name: "meta-tags", extract: extractMetaTags},
			{name: "fallback", extract: extractGeneric},
		},
	}
}

// Extract parses html and tries each strategy in order. The first
// non-empty value wins per field, independently for title and image.
// Extract never panics past its boundary; unexpected parser failures
// come back as a degraded result.
func (e *Extractor) Extract(html, baseURL string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{
				Status:   StatusDegraded,
				Reason:   ReasonParseException,
				Warnings: []string{fmt.Sprintf("panic during extraction: %v", r)},
			}
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Result{
			Status:   StatusDegraded,
			Reason:   ReasonParseException,
			Warnings: []string{fmt.Sprintf("parse html: %v", err)},
		}
	}

	base, baseErr := nurl.Parse(baseURL)
	if baseErr != nil {
		base = nil
	}

	var title, image string
	var warnings []string

	for _, s := range e.strategies {
		if title != "" && image != "" {
			break
		}

		titleUnresolved := title == ""

		t, img, warns := s.extract(doc, base)

		if title == "" && t != "" {
			title = t
		}
		if image == "" && img != "" {
			image = img
		}

		warnings = append(warnings, warns...)
		if titleUnresolved && t == "" && len(warns) == 0 {
			warnings = append(warnings, s.name+": no title")
		}
	}

	if title == "" {
		return Result{
			Status:   StatusDegraded,
			Reason:   ReasonParseFailed,
			Warnings: warnings,
		}
	}

	return Result{
		Status:   StatusOK,
		Title:    title,
		Image:    image,
		Warnings: warnings,
	}
}

// resolveImageURL resolves src against base and returns an absolute URL,
// or "" for embedded-data URIs and unresolvable references.
func resolveImageURL(base *nurl.URL, src string) string {
	s := strings.TrimSpace(src)
	if s == "" || strings.HasPrefix(s, "data:") || strings.HasPrefix(s, "blob:") {
		return ""
	}

	ref, err := nurl.Parse(s)
	if err != nil {
		return ""
	}

	if base != nil {
		ref = base.ResolveReference(ref)
	}

	if !ref.IsAbs() || (ref.Scheme != "http" && ref.Scheme != "https") {
		return ""
	}

	return ref.String()
}
