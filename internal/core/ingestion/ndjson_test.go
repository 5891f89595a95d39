package ingestion

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkID(t *testing.T) {
	tests := []struct {
		filename string
		index    int
		want     string
	}{
		{"faq.pdf", 0, "faq_0"},
		{"faq.pdf", 3, "faq_3"},
		{"Shipping Policy (v2).docx", 1, "Shipping-Policy-v2-_1"},
		{"return policy.html", 0, "return-policy_0"},
		{"résumé.txt", 2, "r-sum-_2"},
		{"...", 1, "_1"},
		// Non-ASCII names collapse to hyphens; the index keeps the ID non-empty.
		{"日本語.txt", 4, "_4"},
	}
	for _, tt := range tests {
		got := ChunkID(tt.filename, tt.index)
		assert.Equal(t, tt.want, got, "ChunkID(%q, %d)", tt.filename, tt.index)
	}
}

func TestChunkIDStable(t *testing.T) {
	a := ChunkID("handbook.pdf", 7)
	b := ChunkID("handbook.pdf", 7)
	assert.Equal(t, a, b)
}

func TestMarshalNDJSONLayout(t *testing.T) {
	records := []Record{
		NewRecord("doc_0", "text/plain", []byte("hello world"), map[string]any{
			"title":        "doc.txt",
			"source":       "merchants/m1/knowledge_base/doc.txt",
			"filename":     "doc.txt",
			"chunk_index":  0,
			"total_chunks": 2,
		}),
		NewRecord("doc_1", "text/plain", []byte("second chunk"), map[string]any{
			"title": "doc.txt (Part 2)",
		}),
	}

	body, err := MarshalNDJSON(records)
	require.NoError(t, err)

	lines := strings.Split(string(body), "\n")
	require.Len(t, lines, 2)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &decoded))
	assert.Equal(t, "doc_0", decoded["id"])

	content, ok := decoded["content"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "text/plain", content["mime_type"])
	raw, err := base64.StdEncoding.DecodeString(content["raw_bytes"].(string))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(raw))

	structData, ok := decoded["struct_data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "doc.txt", structData["title"])
	assert.Equal(t, float64(2), structData["total_chunks"])
}

func TestMarshalNDJSONEmpty(t *testing.T) {
	body, err := MarshalNDJSON(nil)
	require.NoError(t, err)
	assert.Empty(t, body)
}
