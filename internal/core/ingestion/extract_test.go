package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextPlainFile(t *testing.T) {
	e := NewDocconvExtractor()
	got, err := e.ExtractText("notes.txt", []byte("plain text content"))
	require.NoError(t, err)
	assert.Equal(t, "plain text content", got)
}

func TestExtractTextUnknownExtensionTreatedAsText(t *testing.T) {
	e := NewDocconvExtractor()
	got, err := e.ExtractText("export.dat", []byte("still readable"))
	require.NoError(t, err)
	assert.Equal(t, "still readable", got)
}

func TestExtractTextInvalidUTF8Dropped(t *testing.T) {
	e := NewDocconvExtractor()
	got, err := e.ExtractText("notes.txt", []byte{'o', 'k', 0xff, 0xfe, '!'})
	require.NoError(t, err)
	assert.Equal(t, "ok!", got)
}

func TestExtractTextHTMLStripsMarkup(t *testing.T) {
	html := `<html><head>
		<style>body { color: red; }</style>
		<script>console.log("hidden");</script>
	</head><body>
		<h1>Shipping Policy</h1>
		<p>Orders ship within <b>two days</b>.</p>
	</body></html>`

	e := NewDocconvExtractor()
	got, err := e.ExtractText("policy.html", []byte(html))
	require.NoError(t, err)

	assert.Contains(t, got, "Shipping Policy")
	assert.Contains(t, got, "Orders ship within")
	assert.NotContains(t, got, "color: red")
	assert.NotContains(t, got, "console.log")
	assert.NotContains(t, got, "<p>")
}

func TestExtractTextHTMLDropsEmptyLines(t *testing.T) {
	html := "<html><body><p>first</p>\n\n\n<p>second</p></body></html>"
	e := NewDocconvExtractor()
	got, err := e.ExtractText("page.htm", []byte(html))
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", got)
}
