package core

import (
	"context"

	"github.com/chekout-ai/onboard/internal/models"
)

// DbClient defines all persistence operations the ingestion pipeline needs.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
//
// The Replace* methods implement the full-refresh contract: delete every
// existing row for the merchant, insert the new set, all inside one
// transaction. They either commit the complete new set or leave the old rows
// untouched.
type DbClient interface {
	UpsertMerchant(ctx context.Context, m *models.Merchant) error

	EnsureShopifyStore(ctx context.Context, merchantID, shopDomain string) (int64, error)
	EnsureWooStore(ctx context.Context, merchantID, storeURL, storeName string) (int64, error)
	EnsureSquarespaceStore(ctx context.Context, merchantID, siteURL, siteName string) (int64, error)

	ReplaceDocumentChunks(ctx context.Context, merchantID string, chunks []models.DocumentChunk) (int, error)
	ReplaceShopifyProducts(ctx context.Context, merchantID string, storeID int64, products []models.ShopifyProduct) (int, error)
	ReplaceWooProducts(ctx context.Context, merchantID string, storeID int64, products []models.WooProduct) (int, error)
	ReplaceSquarespaceProducts(ctx context.Context, merchantID string, storeID int64, products []models.SquarespaceProduct) (int, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
// It's abstract so you can replace AWS with MinIO, GCP, etc. easily.
type ObjectClient interface {
	Exists(ctx context.Context, key string) (bool, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

// EmbeddingProvider turns a batch of texts into fixed-dimension vectors.
// Implementations may enforce their own per-request batch limits; callers that
// need partial-failure tolerance should go through ingestion.EmbedBatcher.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
