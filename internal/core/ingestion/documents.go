package ingestion

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/chekout-ai/onboard/internal/core"
	"github.com/chekout-ai/onboard/internal/models"
)

// DocumentIngestor runs the document half of a merchant ingest: pull each
// source file from object storage, extract its text, chunk it, embed the
// chunks, and replace the merchant's stored rows in a single transaction.
type DocumentIngestor struct {
	db        core.DbClient
	obj       core.ObjectClient
	batcher   *EmbedBatcher
	extractor TextExtractor
	cfg       IngestConfig
}

func NewDocumentIngestor(db core.DbClient, obj core.ObjectClient, batcher *EmbedBatcher, extractor TextExtractor, cfg IngestConfig) *DocumentIngestor {
	return &DocumentIngestor{
		db:        db,
		obj:       obj,
		batcher:   batcher,
		extractor: extractor,
		cfg:       cfg.withDefaults(),
	}
}

// ConvertDocuments ingests docPaths for merchantID. Files that cannot be
// fetched or yield no text are skipped and reported in the summary; storage
// and persistence failures abort the run. The previous chunk set for the
// merchant is fully replaced, never merged.
func (d *DocumentIngestor) ConvertDocuments(ctx context.Context, merchantID string, docPaths []string, notify StateFunc) (*models.IngestSummary, error) {
	summary := &models.IngestSummary{}

	notify.Notify(StateExtracting)

	var chunks []models.DocumentChunk
	var records []Record
	issued := map[string]struct{}{}
	for _, p := range docPaths {
		filename := path.Base(p)

		ok, err := d.obj.Exists(ctx, p)
		if err != nil {
			summary.Skipped = append(summary.Skipped, models.SkippedFile{Path: p, Reason: fmt.Sprintf("storage check failed: %v", err)})
			continue
		}
		if !ok {
			summary.Skipped = append(summary.Skipped, models.SkippedFile{Path: p, Reason: "not found in storage"})
			continue
		}
		data, err := d.obj.Download(ctx, p)
		if err != nil {
			summary.Skipped = append(summary.Skipped, models.SkippedFile{Path: p, Reason: fmt.Sprintf("download failed: %v", err)})
			continue
		}

		text, err := d.extractor.ExtractText(filename, data)
		if err != nil {
			summary.Skipped = append(summary.Skipped, models.SkippedFile{Path: p, Reason: fmt.Sprintf("extraction failed: %v", err)})
			continue
		}

		parts := splitNonEmpty(text, d.cfg.ChunkSize, d.cfg.ChunkOverlap)
		if len(parts) == 0 {
			summary.Skipped = append(summary.Skipped, models.SkippedFile{Path: p, Reason: "no extractable text"})
			continue
		}

		for i, part := range parts {
			title := filename
			if i > 0 {
				title = fmt.Sprintf("%s (Part %d)", filename, i+1)
			}
			id := uniqueChunkID(issued, ChunkID(filename, i))
			chunks = append(chunks, models.DocumentChunk{
				MerchantID:  merchantID,
				ChunkID:     id,
				Title:       title,
				Source:      p,
				Filename:    filename,
				ChunkIndex:  i,
				TotalChunks: len(parts),
				Content:     part,
			})
			records = append(records, NewRecord(id, "text/plain", []byte(part), map[string]any{
				"title":        title,
				"source":       p,
				"filename":     filename,
				"chunk_index":  i,
				"total_chunks": len(parts),
			}))
		}
	}

	if len(records) > 0 {
		body, err := MarshalNDJSON(records)
		if err != nil {
			return nil, fmt.Errorf("encode document records: %w", err)
		}
		key := fmt.Sprintf("merchants/%s/training_files/documents.ndjson", merchantID)
		if err := d.obj.Upload(ctx, key, body, "application/x-ndjson"); err != nil {
			return nil, fmt.Errorf("upload document records: %w", err)
		}
	}

	if len(chunks) == 0 {
		log.Printf("no document chunks produced for merchant %s", merchantID)
		return summary, nil
	}

	notify.Notify(StateEmbedding)

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	embeddings := d.batcher.EmbedAll(ctx, texts)
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	notify.Notify(StatePersisting)

	count, err := d.db.ReplaceDocumentChunks(ctx, merchantID, chunks)
	if err != nil {
		return nil, fmt.Errorf("replace document chunks for merchant %s: %w", merchantID, err)
	}
	summary.Count = count
	return summary, nil
}

// uniqueChunkID disambiguates sanitized IDs that collide within one run, such
// as distinct filenames whose punctuation maps to the same hyphen. The chunk
// table has a uniqueness constraint on (merchant_id, chunk_id), so a collision
// reaching the insert would roll back the whole refresh.
func uniqueChunkID(issued map[string]struct{}, id string) string {
	out := id
	for n := 2; ; n++ {
		if _, taken := issued[out]; !taken {
			issued[out] = struct{}{}
			return out
		}
		out = fmt.Sprintf("%s-%d", id, n)
	}
}

// splitNonEmpty chunks text and drops whitespace-only chunks so they never
// reach storage or the embedding batch.
func splitNonEmpty(text string, maxSize, overlap int) []string {
	var parts []string
	for _, p := range SplitText(text, maxSize, overlap) {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
