package ingestion

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"strings"
)

// Record is one line of a training-file NDJSON artifact, in the layout the
// downstream search indexer imports. Field names (snake_case, raw_bytes
// base64) are a wire contract; do not change them.
type Record struct {
	ID         string         `json:"id"`
	Content    RecordContent  `json:"content"`
	StructData map[string]any `json:"struct_data"`
}

type RecordContent struct {
	MimeType string `json:"mime_type"`
	RawBytes string `json:"raw_bytes"`
}

// NewRecord base64-encodes body into a Record.
func NewRecord(id, mimeType string, body []byte, structData map[string]any) Record {
	return Record{
		ID: id,
		Content: RecordContent{
			MimeType: mimeType,
			RawBytes: base64.StdEncoding.EncodeToString(body),
		},
		StructData: structData,
	}
}

// MarshalNDJSON renders records one JSON object per line.
func MarshalNDJSON(records []Record) ([]byte, error) {
	var b strings.Builder
	for i, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("marshal record %q: %w", rec.ID, err)
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.Write(line)
	}
	return []byte(b.String()), nil
}

var (
	idInvalidChars = regexp.MustCompile(`[^a-zA-Z0-9-_]`)
	idHyphenRuns   = regexp.MustCompile(`-+`)
)

// ChunkID derives the stable identifier for chunk index of filename. The
// result only contains [a-zA-Z0-9-_]; re-deriving from the same inputs always
// yields the same identifier.
func ChunkID(filename string, index int) string {
	base := strings.TrimSuffix(filename, path.Ext(filename))
	id := idInvalidChars.ReplaceAllString(fmt.Sprintf("%s_%d", base, index), "-")
	id = idHyphenRuns.ReplaceAllString(id, "-")
	id = strings.Trim(id, "-")
	if id == "" {
		id = fmt.Sprintf("doc-%d", index)
	}
	return id
}
