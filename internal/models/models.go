package models

import (
	"time"
)

// Merchant is the parent record every ingested row hangs off. CRUD for it lives
// in the dashboard service; the pipeline only reads the fields it needs.
type Merchant struct {
	MerchantID       string    `db:"merchant_id" json:"merchant_id"`
	UserID           string    `db:"user_id" json:"user_id"`
	ShopName         string    `db:"shop_name" json:"shop_name"`
	ShopURL          string    `db:"shop_url" json:"shop_url"`
	Platform         string    `db:"platform" json:"platform"`
	CustomURLPattern string    `db:"custom_url_pattern" json:"custom_url_pattern,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// DocumentChunk is one retrievable slice of a merchant document.
// ChunkID is derived from the source filename plus the chunk index and is stable
// across runs. Embedding is nil when generation failed for the chunk; the row is
// still stored, only the vector column stays NULL.
type DocumentChunk struct {
	MerchantID  string    `db:"merchant_id" json:"merchant_id"`
	ChunkID     string    `db:"chunk_id" json:"chunk_id"`
	Title       string    `db:"title" json:"title"`
	Source      string    `db:"source" json:"source"`
	Filename    string    `db:"filename" json:"filename"`
	ChunkIndex  int       `db:"chunk_index" json:"chunk_index"`
	TotalChunks int       `db:"total_chunks" json:"total_chunks"`
	Content     string    `db:"content" json:"content"`
	Embedding   []float32 `db:"embedding" json:"-"`
}

// SkippedFile records a source artifact the pipeline gave up on without
// aborting the run.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// IngestSummary is what a single ingestion run reports back to the caller.
// StoreID is only set for product runs.
type IngestSummary struct {
	Count   int           `json:"count"`
	Skipped []SkippedFile `json:"skipped,omitempty"`
	StoreID int64         `json:"store_id,omitempty"`
}
