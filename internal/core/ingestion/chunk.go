package ingestion

import (
	"strings"
	"unicode/utf8"
)

// Defaults used by the document pipeline. 1000 chars is roughly 250 tokens,
// which retrieves well; the 200-char overlap keeps context across boundaries.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

const paragraphSep = "\n\n"

// SplitText splits text into chunks of at most maxSize characters with
// overlap characters carried over from the end of each chunk into the next.
//
// The first pass accumulates whole paragraphs greedily; a paragraph that is
// itself larger than maxSize falls back to sentence boundaries (". "). The
// second pass prepends the word-boundary-trimmed tail of the previous segment
// to every segment after the first, re-truncating to maxSize if the prefix
// pushed it over.
//
// The split is a pure function of its inputs: the same text and parameters
// always produce the same chunk sequence. A single sentence longer than
// maxSize is emitted as its own oversized chunk rather than cut mid-sentence.
func SplitText(text string, maxSize, overlap int) []string {
	if len(text) <= maxSize {
		return []string{text}
	}

	var segments []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			segments = append(segments, strings.TrimSpace(cur.String()))
			cur.Reset()
		}
	}

	for _, para := range strings.Split(text, paragraphSep) {
		if cur.Len()+len(para)+len(paragraphSep) <= maxSize {
			cur.WriteString(para)
			cur.WriteString(paragraphSep)
			continue
		}
		flush()
		if len(para) > maxSize {
			for _, sentence := range strings.Split(para, ". ") {
				if cur.Len()+len(sentence)+2 <= maxSize {
					cur.WriteString(sentence)
					cur.WriteString(". ")
				} else {
					flush()
					cur.WriteString(sentence)
					cur.WriteString(". ")
				}
			}
		} else {
			cur.WriteString(para)
			cur.WriteString(paragraphSep)
		}
	}
	flush()

	if overlap <= 0 || len(segments) <= 1 {
		return segments
	}

	chunks := make([]string, 0, len(segments))
	chunks = append(chunks, segments[0])
	for i := 1; i < len(segments); i++ {
		prev := segments[i-1]
		tail := prev
		if len(prev) > overlap {
			start := len(prev) - overlap
			// never start the tail mid-rune
			for start < len(prev) && !utf8.RuneStart(prev[start]) {
				start++
			}
			tail = prev[start:]
		}
		// Trim forward to the next word boundary so the overlap never starts
		// mid-word.
		if idx := strings.Index(tail, " "); idx > 0 {
			tail = tail[idx+1:]
		}
		chunk := tail + " " + segments[i]
		if len(chunk) > maxSize {
			chunk = truncate(chunk, maxSize)
		}
		chunks = append(chunks, strings.TrimSpace(chunk))
	}
	return chunks
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
