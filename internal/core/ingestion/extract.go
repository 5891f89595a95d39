package ingestion

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"code.sajari.com/docconv"
	"github.com/PuerkitoBio/goquery"
)

// TextExtractor turns raw document bytes into plain text. The filename is the
// format hint; extractors must never fail on undecodable plain text, only on
// structurally broken binary formats.
type TextExtractor interface {
	ExtractText(filename string, data []byte) (string, error)
}

// DocconvExtractor implements TextExtractor using sajari/docconv for the
// binary formats and goquery for HTML.
type DocconvExtractor struct{}

func NewDocconvExtractor() *DocconvExtractor {
	return &DocconvExtractor{}
}

var _ TextExtractor = (*DocconvExtractor)(nil)

// ExtractText chooses the extraction strategy from the file extension.
// Unrecognized extensions are treated as UTF-8 text with undecodable bytes
// dropped rather than failing the document.
func (e *DocconvExtractor) ExtractText(filename string, data []byte) (string, error) {
	switch strings.ToLower(path.Ext(filename)) {
	case ".pdf":
		return e.convert(data, "application/pdf")
	case ".docx":
		return e.convert(data, "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	case ".doc":
		return e.convert(data, "application/msword")
	case ".html", ".htm":
		return extractHTML(data)
	default:
		return strings.ToValidUTF8(string(data), ""), nil
	}
}

func (e *DocconvExtractor) convert(data []byte, mimeType string) (string, error) {
	res, err := docconv.Convert(bytes.NewReader(data), mimeType, false)
	if err != nil {
		return "", fmt.Errorf("docconv %s: %w", mimeType, err)
	}
	return res.Body, nil
}

// extractHTML strips script and style elements, takes the visible text and
// collapses whitespace runs, dropping empty lines.
func extractHTML(data []byte) (string, error) {
	html := strings.ToValidUTF8(string(data), "")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style").Remove()

	var out []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		for _, phrase := range strings.Split(line, "  ") {
			if phrase = strings.TrimSpace(phrase); phrase != "" {
				out = append(out, phrase)
			}
		}
	}
	return strings.Join(out, "\n"), nil
}
