package extractor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/adboard/internal/extractor"
)

const testBaseURL = "https://www.avito.ru/moskva/telefony/iphone_12345"

func extract(t *testing.T, html string) extractor.Result {
	t.Helper()

	return extractor.New().Extract(html, testBaseURL)
}

func TestLinkedDataWinsOverMetaTags(t *testing.T) {
	t.Parallel()

	html := `<html><head>
		<script type="application/ld+json">{"@type":"Product","name":"A"}</script>
		<meta property="og:title" content="B">
	</head><body></body></html>`

	res := extract(t, html)
	require.True(t, res.OK())
	assert.Equal(t, "A", res.Title)
}

func TestLinkedDataNestedGraph(t *testing.T) {
	t.Parallel()

	html := `<html><head><script type="application/ld+json">
		{"@graph":[{"@type":"BreadcrumbList"},{"@type":"Product","headline":"Nested headline","image":{"url":"/img/1.jpg"}}]}
	</script></head><body></body></html>`

	res := extract(t, html)
	require.True(t, res.OK())
	assert.Equal(t, "Nested headline", res.Title)
	assert.Equal(t, "https://www.avito.ru/img/1.jpg", res.Image)
}

func TestMalformedLinkedDataFallsThrough(t *testing.T) {
	t.Parallel()

	html := `<html><head>
		<script type="application/ld+json">{not json</script>
		<meta property="og:title" content="Meta title">
	</head><body></body></html>`

	res := extract(t, html)
	require.True(t, res.OK())
	assert.Equal(t, "Meta title", res.Title)
	assert.Contains(t, res.Warnings, "linked-data: malformed JSON block")
}

func TestPageStateObjectBlob(t *testing.T) {
	t.Parallel()

	html := `<html><head><script>
		window.__initialData__ = {"item":{"title":"State title","imageUrl":"https://img.example/1.jpg"}};
	</script></head><body></body></html>`

	res := extract(t, html)
	require.True(t, res.OK())
	assert.Equal(t, "State title", res.Title)
	assert.Equal(t, "https://img.example/1.jpg", res.Image)
}

func TestPageStateQuotedBlob(t *testing.T) {
	t.Parallel()

	// The source site stores state as a percent-encoded JSON string.
	html := `<html><head><script>
		window.__initialData__ = "%7B%22title%22%3A%22Encoded%20title%22%7D";
	</script></head><body></body></html>`

	res := extract(t, html)
	require.True(t, res.OK())
	assert.Equal(t, "Encoded title", res.Title)
}

func TestMetaTagNameVariant(t *testing.T) {
	t.Parallel()

	html := `<html><head>
		<meta name="og:title" content="Name variant">
		<meta name="og:image" content="//cdn.example/pic.png">
	</head><body></body></html>`

	res := extract(t, html)
	require.True(t, res.OK())
	assert.Equal(t, "Name variant", res.Title)
	assert.Equal(t, "https://cdn.example/pic.png", res.Image)
}

func TestGenericFallback(t *testing.T) {
	t.Parallel()

	html := `<html><head><title>  Plain title  </title></head><body>
		<img src="data:image/png;base64,xyz">
		<img data-src="/photos/2.jpg">
	</body></html>`

	res := extract(t, html)
	require.True(t, res.OK())
	assert.Equal(t, "Plain title", res.Title)
	assert.Equal(t, "https://www.avito.ru/photos/2.jpg", res.Image, "data: URI must be skipped")
}

func TestImageIsOptional(t *testing.T) {
	t.Parallel()

	html := `<html><head><title>No image here</title></head><body></body></html>`

	res := extract(t, html)
	require.True(t, res.OK())
	assert.Empty(t, res.Image)
}

func TestTitleFromOneStrategyImageFromAnother(t *testing.T) {
	t.Parallel()

	html := `<html><head>
		<script type="application/ld+json">{"name":"LD title"}</script>
		<meta property="og:image" content="https://cdn.example/meta.jpg">
	</head><body></body></html>`

	res := extract(t, html)
	require.True(t, res.OK())
	assert.Equal(t, "LD title", res.Title)
	assert.Equal(t, "https://cdn.example/meta.jpg", res.Image)
	assert.Empty(t, res.Warnings, "strategies running only to fill the image must not report title failures")
}

func TestNoTitleAnywhereIsDegraded(t *testing.T) {
	t.Parallel()

	html := `<html><head></head><body><p>nothing useful</p></body></html>`

	res := extract(t, html)
	require.False(t, res.OK())
	assert.Equal(t, extractor.StatusDegraded, res.Status)
	assert.Equal(t, extractor.ReasonParseFailed, res.Reason)

	assert.Contains(t, res.Warnings, "linked-data: no structured data blocks")
	assert.Contains(t, res.Warnings, "page-state: no page-state blob")
	assert.Contains(t, res.Warnings, "meta-tags: no og:title")
	assert.Contains(t, res.Warnings, "fallback: document has no title")
}

func TestBlobImageURIsDiscarded(t *testing.T) {
	t.Parallel()

	html := `<html><head><title>T</title>
		<meta property="og:image" content="blob:https://example/123">
	</head><body></body></html>`

	res := extract(t, html)
	require.True(t, res.OK())
	assert.Empty(t, res.Image)
}

func TestGarbageInputDoesNotPanic(t *testing.T) {
	t.Parallel()

	res := extract(t, "\x00\xff<<<<not html at all")
	assert.NotPanics(t, func() { _ = res })
	assert.NotEmpty(t, res.Status)
}
