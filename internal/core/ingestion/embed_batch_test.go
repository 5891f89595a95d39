package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider returns one deterministic vector per text and can be told to
// fail specific calls.
type fakeProvider struct {
	calls     int
	batches   [][]string
	failCalls map[int]bool
}

func (f *fakeProvider) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	call := f.calls
	f.calls++
	f.batches = append(f.batches, texts)
	if f.failCalls[call] {
		return nil, errors.New("embedding backend unavailable")
	}
	out := make([][]float32, len(texts))
	for i, txt := range texts {
		out[i] = []float32{float32(len(txt)), float32(i)}
	}
	return out, nil
}

func TestEmbedAllBatchSizing(t *testing.T) {
	provider := &fakeProvider{}
	b := NewEmbedBatcher(provider, 3)

	texts := make([]string, 8)
	for i := range texts {
		texts[i] = fmt.Sprintf("text %d", i)
	}
	vecs := b.EmbedAll(context.Background(), texts)

	require.Len(t, vecs, 8)
	require.Len(t, provider.batches, 3)
	assert.Len(t, provider.batches[0], 3)
	assert.Len(t, provider.batches[1], 3)
	assert.Len(t, provider.batches[2], 2)
}

func TestEmbedAllFailedSubBatchYieldsNils(t *testing.T) {
	provider := &fakeProvider{failCalls: map[int]bool{1: true}}
	b := NewEmbedBatcher(provider, 2)

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	vecs := b.EmbedAll(context.Background(), texts)

	require.Len(t, vecs, 5)
	// First sub-batch succeeded.
	assert.NotNil(t, vecs[0])
	assert.NotNil(t, vecs[1])
	// Second sub-batch failed: exactly its items are nil.
	assert.Nil(t, vecs[2])
	assert.Nil(t, vecs[3])
	// Third sub-batch succeeded again.
	assert.NotNil(t, vecs[4])
}

func TestEmbedAllPreservesOrder(t *testing.T) {
	provider := &fakeProvider{}
	b := NewEmbedBatcher(provider, 2)

	texts := []string{"x", "yy", "zzz"}
	vecs := b.EmbedAll(context.Background(), texts)

	require.Len(t, vecs, 3)
	for i, txt := range texts {
		require.NotNil(t, vecs[i])
		assert.Equal(t, float32(len(txt)), vecs[i][0], "vector %d out of order", i)
	}
}

func TestEmbedAllTruncatesLongTexts(t *testing.T) {
	provider := &fakeProvider{}
	b := NewEmbedBatcher(provider, 10)

	long := strings.Repeat("a", MaxEmbedTextLen+500)
	b.EmbedAll(context.Background(), []string{long})

	require.Len(t, provider.batches, 1)
	assert.Len(t, provider.batches[0][0], MaxEmbedTextLen)
}

func TestEmbedAllMismatchedCountYieldsNils(t *testing.T) {
	provider := &shortProvider{}
	b := NewEmbedBatcher(provider, 4)

	vecs := b.EmbedAll(context.Background(), []string{"a", "b", "c"})
	require.Len(t, vecs, 3)
	for i := range vecs {
		assert.Nil(t, vecs[i], "vector %d should be nil on count mismatch", i)
	}
}

// shortProvider returns fewer vectors than inputs.
type shortProvider struct{}

func (s *shortProvider) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	return make([][]float32, len(texts)-1), nil
}

func TestEmbedAllEmptyInput(t *testing.T) {
	b := NewEmbedBatcher(&fakeProvider{}, 2)
	vecs := b.EmbedAll(context.Background(), nil)
	assert.Empty(t, vecs)
}
