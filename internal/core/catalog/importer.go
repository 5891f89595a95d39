package catalog

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/chekout-ai/onboard/internal/core"
	"github.com/chekout-ai/onboard/internal/core/ingestion"
	"github.com/chekout-ai/onboard/internal/models"
)

// ProductImporter runs the catalog half of a merchant ingest: pull the export
// file from object storage, normalize rows into the target platform's product
// shape, embed each product, and replace the merchant's stored catalog in a
// single transaction.
type ProductImporter struct {
	db      core.DbClient
	obj     core.ObjectClient
	batcher *ingestion.EmbedBatcher
}

func NewProductImporter(db core.DbClient, obj core.ObjectClient, batcher *ingestion.EmbedBatcher) *ProductImporter {
	return &ProductImporter{db: db, obj: obj, batcher: batcher}
}

// ImportProducts imports the catalog at productsPath for merchantID. An
// unsupported platform is reported as a skip, not an error, and causes no
// I/O. shopURL and shopName fall back to values derived from the merchant ID.
func (p *ProductImporter) ImportProducts(ctx context.Context, merchantID string, platform models.Platform, productsPath, shopURL, shopName string, notify ingestion.StateFunc) (*models.IngestSummary, error) {
	platform = models.Platform(strings.ToLower(strings.TrimSpace(string(platform))))
	summary := &models.IngestSummary{}

	if !platform.Valid() {
		log.Printf("platform %q not supported for product import, skipping", platform)
		summary.Skipped = append(summary.Skipped, models.SkippedFile{
			Path:   productsPath,
			Reason: fmt.Sprintf("unsupported platform: %s", platform),
		})
		return summary, nil
	}

	data, err := p.obj.Download(ctx, productsPath)
	if err != nil {
		return nil, fmt.Errorf("download catalog %s: %w", productsPath, err)
	}
	rows, err := ParseRows(path.Base(productsPath), data)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", productsPath, err)
	}
	if len(rows) == 0 {
		log.Printf("no product rows parsed from %s", productsPath)
		return summary, nil
	}
	log.Printf("parsed %d catalog rows from %s", len(rows), path.Base(productsPath))

	if shopURL == "" {
		shopURL = fmt.Sprintf("https://%s.com", merchantID)
	}
	if shopName == "" {
		shopName = merchantID
	}

	storeID, err := p.ensureStore(ctx, merchantID, platform, shopURL, shopName)
	if err != nil {
		return nil, err
	}
	summary.StoreID = storeID

	var count int
	switch platform {
	case models.PlatformShopify:
		count, err = p.importShopify(ctx, merchantID, storeID, rows, notify)
	case models.PlatformWooCommerce:
		count, err = p.importWoo(ctx, merchantID, storeID, rows, notify)
	case models.PlatformSquarespace:
		count, err = p.importSquarespace(ctx, merchantID, storeID, rows, notify)
	}
	if err != nil {
		return nil, err
	}
	summary.Count = count
	log.Printf("imported %d products for %s into %s table", count, merchantID, platform)
	return summary, nil
}

func (p *ProductImporter) ensureStore(ctx context.Context, merchantID string, platform models.Platform, shopURL, shopName string) (int64, error) {
	switch platform {
	case models.PlatformShopify:
		domain := strings.TrimPrefix(strings.TrimPrefix(shopURL, "https://"), "http://")
		domain = strings.TrimRight(domain, "/")
		return p.db.EnsureShopifyStore(ctx, merchantID, domain)
	case models.PlatformWooCommerce:
		return p.db.EnsureWooStore(ctx, merchantID, shopURL, shopName)
	case models.PlatformSquarespace:
		return p.db.EnsureSquarespaceStore(ctx, merchantID, shopURL, shopName)
	}
	return 0, fmt.Errorf("unknown platform: %s", platform)
}

func (p *ProductImporter) importShopify(ctx context.Context, merchantID string, storeID int64, rows []Row, notify ingestion.StateFunc) (int, error) {
	products := BuildShopifyProducts(rows)
	if len(products) == 0 {
		return 0, nil
	}

	texts := make([]string, len(products))
	records := make([]ingestion.Record, len(products))
	for i, prod := range products {
		texts[i] = embedText(prod.Title, prod.BodyText, prod.TagsText, prod.ProductType)
		records[i] = productRecord(fmt.Sprintf("%d", prod.ShopifyProductID), texts[i], prod.Title, prod.Handle, models.PlatformShopify)
	}
	if err := p.uploadRecords(ctx, merchantID, records); err != nil {
		return 0, err
	}

	notify.Notify(ingestion.StateEmbedding)
	embeddings := p.batcher.EmbedAll(ctx, texts)
	for i := range products {
		products[i].Embedding = embeddings[i]
	}
	notify.Notify(ingestion.StatePersisting)
	return p.db.ReplaceShopifyProducts(ctx, merchantID, storeID, products)
}

func (p *ProductImporter) importWoo(ctx context.Context, merchantID string, storeID int64, rows []Row, notify ingestion.StateFunc) (int, error) {
	products := BuildWooProducts(rows)
	if len(products) == 0 {
		return 0, nil
	}

	texts := make([]string, len(products))
	records := make([]ingestion.Record, len(products))
	for i, prod := range products {
		texts[i] = embedText(prod.Name, prod.BodyText, prod.TagsText, prod.Type)
		records[i] = productRecord(fmt.Sprintf("%d", prod.WCProductID), texts[i], prod.Name, prod.Slug, models.PlatformWooCommerce)
	}
	if err := p.uploadRecords(ctx, merchantID, records); err != nil {
		return 0, err
	}

	notify.Notify(ingestion.StateEmbedding)
	embeddings := p.batcher.EmbedAll(ctx, texts)
	for i := range products {
		products[i].Embedding = embeddings[i]
	}
	notify.Notify(ingestion.StatePersisting)
	return p.db.ReplaceWooProducts(ctx, merchantID, storeID, products)
}

func (p *ProductImporter) importSquarespace(ctx context.Context, merchantID string, storeID int64, rows []Row, notify ingestion.StateFunc) (int, error) {
	products := BuildSquarespaceProducts(rows)
	if len(products) == 0 {
		return 0, nil
	}

	texts := make([]string, len(products))
	records := make([]ingestion.Record, len(products))
	for i, prod := range products {
		texts[i] = embedText(prod.Title, prod.BodyText, prod.TagsText, prod.ProductType)
		records[i] = productRecord(prod.SquarespaceProductID, texts[i], prod.Title, prod.Handle, models.PlatformSquarespace)
	}
	if err := p.uploadRecords(ctx, merchantID, records); err != nil {
		return 0, err
	}

	notify.Notify(ingestion.StateEmbedding)
	embeddings := p.batcher.EmbedAll(ctx, texts)
	for i := range products {
		products[i].Embedding = embeddings[i]
	}
	notify.Notify(ingestion.StatePersisting)
	return p.db.ReplaceSquarespaceProducts(ctx, merchantID, storeID, products)
}

func (p *ProductImporter) uploadRecords(ctx context.Context, merchantID string, records []ingestion.Record) error {
	body, err := ingestion.MarshalNDJSON(records)
	if err != nil {
		return fmt.Errorf("encode product records: %w", err)
	}
	key := fmt.Sprintf("merchants/%s/training_files/products.ndjson", merchantID)
	if err := p.obj.Upload(ctx, key, body, "application/x-ndjson"); err != nil {
		return fmt.Errorf("upload product records: %w", err)
	}
	return nil
}

func productRecord(id, text, title, handle string, platform models.Platform) ingestion.Record {
	return ingestion.NewRecord("product-"+id, "text/plain", []byte(text), map[string]any{
		"title":    title,
		"handle":   handle,
		"platform": string(platform),
	})
}

// embedText builds the embedding input the same way for every platform:
// title, description text, tags, and type joined with single spaces.
func embedText(parts ...string) string {
	return strings.TrimSpace(strings.Join(parts, " "))
}
