package ingestion

import (
	"context"
	"log"

	"github.com/chekout-ai/onboard/internal/core"
)

const (
	// MaxEmbedTextLen is the embedding model's input limit; longer texts are
	// truncated before submission.
	MaxEmbedTextLen = 20000

	// DefaultEmbedBatchSize is how many texts go into one embedding request.
	DefaultEmbedBatchSize = 25
)

// EmbedBatcher wraps an EmbeddingProvider with fixed-size sub-batching and
// partial-failure tolerance: a failed sub-batch maps every one of its items
// to a nil vector instead of failing the whole list.
type EmbedBatcher struct {
	provider  core.EmbeddingProvider
	batchSize int
}

func NewEmbedBatcher(provider core.EmbeddingProvider, batchSize int) *EmbedBatcher {
	if batchSize <= 0 {
		batchSize = DefaultEmbedBatchSize
	}
	return &EmbedBatcher{provider: provider, batchSize: batchSize}
}

// EmbedAll returns one vector per input text, in input order. Entries are nil
// where the owning sub-batch call failed; callers skip nil vectors at storage
// time but still persist the content row.
func (b *EmbedBatcher) EmbedAll(ctx context.Context, texts []string) [][]float32 {
	out := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += b.batchSize {
		end := start + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := make([]string, 0, end-start)
		for _, t := range texts[start:end] {
			batch = append(batch, truncate(t, MaxEmbedTextLen))
		}

		vecs, err := b.provider.EmbedTexts(ctx, batch)
		if err != nil || len(vecs) != len(batch) {
			if err != nil {
				log.Printf("embed batch %d-%d failed: %v", start, end, err)
			} else {
				log.Printf("embed batch %d-%d returned %d vectors for %d texts", start, end, len(vecs), len(batch))
			}
			for range batch {
				out = append(out, nil)
			}
			continue
		}
		out = append(out, vecs...)
	}
	return out
}
