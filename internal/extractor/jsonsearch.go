package extractor

import (
	nurl "net/url"
	"strings"
)

// Key heuristics shared by the linked-data and page-state strategies.
var (
	titleKeys = []string{"name", "headline", "title"}
	imageKeys = []string{"image", "imageUrl", "thumbnailUrl", "thumbnail", "contentUrl"}
)

// maxSearchDepth bounds the recursive JSON walk so pathological blobs
// cannot blow the stack.
const maxSearchDepth = 32

// searchTitle walks an unmarshalled JSON value looking for the first
// non-empty string under a title-like key. Keyed matches at the current
// level win over matches deeper in the tree.
func searchTitle(v any, depth int) string {
	if depth > maxSearchDepth {
		return ""
	}

	switch val := v.(type) {
	case map[string]any:
		for _, key := range titleKeys {
			if s, ok := val[key].(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					return trimmed
				}
			}
		}
		for _, child := range val {
			if found := searchTitle(child, depth+1); found != "" {
				return found
			}
		}
	case []any:
		for _, child := range val {
			if found := searchTitle(child, depth+1); found != "" {
				return found
			}
		}
	}

	return ""
}

// searchImage walks an unmarshalled JSON value looking for an image URL
// under an image-like key. Values may be a plain string, an array, or a
// nested object carrying a url field.
func searchImage(v any, base *nurl.URL, depth int) string {
	if depth > maxSearchDepth {
		return ""
	}

	switch val := v.(type) {
	case map[string]any:
		for _, key := range imageKeys {
			child, ok := val[key]
			if !ok {
				continue
			}
			if found := imageFromValue(child, base, depth+1); found != "" {
				return found
			}
		}
		for _, child := range val {
			if found := searchImage(child, base, depth+1); found != "" {
				return found
			}
		}
	case []any:
		for _, child := range val {
			if found := searchImage(child, base, depth+1); found != "" {
				return found
			}
		}
	}

	return ""
}

// imageFromValue extracts a usable image URL from the value stored under
// an image-like key.
func imageFromValue(v any, base *nurl.URL, depth int) string {
	if depth > maxSearchDepth {
		return ""
	}

	switch val := v.(type) {
	case string:
		return resolveImageURL(base, val)
	case []any:
		for _, child := range val {
			if found := imageFromValue(child, base, depth+1); found != "" {
				return found
			}
		}
	case map[string]any:
		for _, key := range []string{"url", "contentUrl", "src"} {
			if s, ok := val[key].(string); ok {
				if found := resolveImageURL(base, s); found != "" {
					return found
				}
			}
		}
	}

	return ""
}
