package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/chekout-ai/onboard/internal/config"
	"github.com/chekout-ai/onboard/internal/core"
	"github.com/chekout-ai/onboard/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

var _ core.DbClient = (*DatabaseClient)(nil)

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctxPing, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(ctxPing); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *DatabaseClient) UpsertMerchant(ctx context.Context, m *models.Merchant) error {
	if m == nil {
		return errors.New("nil merchant")
	}
	const q = `
		INSERT INTO merchants (merchant_id, user_id, shop_name, shop_url, platform, custom_url_pattern)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (merchant_id) DO UPDATE
		  SET shop_name = EXCLUDED.shop_name,
		      shop_url = EXCLUDED.shop_url,
		      platform = EXCLUDED.platform,
		      custom_url_pattern = EXCLUDED.custom_url_pattern,
		      updated_at = now()
	`
	_, err := c.db.ExecContext(ctx, q,
		m.MerchantID, m.UserID, m.ShopName, m.ShopURL, m.Platform, m.CustomURLPattern)
	return err
}

// Store rows: product tables hang off a store FK, so imports create or claim
// one before inserting products.

func (c *DatabaseClient) EnsureShopifyStore(ctx context.Context, merchantID, shopDomain string) (int64, error) {
	// Reusing a domain (test merchants) claims the existing store row for the
	// current merchant instead of failing the unique constraint.
	const q = `
		INSERT INTO shopify_sync.shopify_stores (merchant_id, shop_domain, is_active)
		VALUES ($1, $2, 1)
		ON CONFLICT (shop_domain) DO UPDATE
		  SET merchant_id = EXCLUDED.merchant_id, is_active = 1
		RETURNING id
	`
	var id int64
	if err := c.db.QueryRowContext(ctx, q, merchantID, shopDomain).Scan(&id); err != nil {
		return 0, fmt.Errorf("ensure shopify store for domain %s: %w", shopDomain, err)
	}
	return id, nil
}

func (c *DatabaseClient) EnsureWooStore(ctx context.Context, merchantID, storeURL, storeName string) (int64, error) {
	const ins = `
		INSERT INTO woocommerce_sync.woocommerce_stores
			(merchant_id, store_url, store_name, consumer_key, consumer_secret, is_active)
		VALUES ($1, $2, $3, 'csv-import', 'csv-import', 1)
		ON CONFLICT (merchant_id) DO NOTHING
	`
	if _, err := c.db.ExecContext(ctx, ins, merchantID, storeURL, storeName); err != nil {
		return 0, fmt.Errorf("ensure woocommerce store for %s: %w", merchantID, err)
	}
	var id int64
	err := c.db.QueryRowContext(ctx,
		`SELECT id FROM woocommerce_sync.woocommerce_stores WHERE merchant_id = $1`, merchantID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("fetch woocommerce store for %s: %w", merchantID, err)
	}
	return id, nil
}

func (c *DatabaseClient) EnsureSquarespaceStore(ctx context.Context, merchantID, siteURL, siteName string) (int64, error) {
	const ins = `
		INSERT INTO squarespace_sync.squarespace_stores (merchant_id, site_url, site_name, is_active)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (merchant_id) DO NOTHING
	`
	if _, err := c.db.ExecContext(ctx, ins, merchantID, siteURL, siteName); err != nil {
		return 0, fmt.Errorf("ensure squarespace store for %s: %w", merchantID, err)
	}
	var id int64
	err := c.db.QueryRowContext(ctx,
		`SELECT id FROM squarespace_sync.squarespace_stores WHERE merchant_id = $1`, merchantID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("fetch squarespace store for %s: %w", merchantID, err)
	}
	return id, nil
}

// vectorOrNull keeps the row insertable when embedding generation failed for
// the item; the vector column stays NULL.
func vectorOrNull(embedding []float32) any {
	if embedding == nil {
		return nil
	}
	return pgvector.NewVector(embedding)
}

// ReplaceDocumentChunks deletes every chunk for the merchant and inserts the
// new set in one transaction.
func (c *DatabaseClient) ReplaceDocumentChunks(ctx context.Context, merchantID string, chunks []models.DocumentChunk) (int, error) {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM document_chunks WHERE merchant_id = $1`, merchantID); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete existing chunks: %w", err)
	}

	const q = `
		INSERT INTO document_chunks
			(merchant_id, chunk_id, title, source, filename, chunk_index, total_chunks, content, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		if _, err := stmt.ExecContext(ctx,
			merchantID, ch.ChunkID, ch.Title, ch.Source, ch.Filename,
			ch.ChunkIndex, ch.TotalChunks, ch.Content, vectorOrNull(ch.Embedding),
		); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert chunk %s: %w", ch.ChunkID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

func (c *DatabaseClient) ReplaceShopifyProducts(ctx context.Context, merchantID string, storeID int64, products []models.ShopifyProduct) (int, error) {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM shopify_sync.products WHERE merchant_id = $1`, merchantID); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete existing shopify products: %w", err)
	}

	const q = `
		INSERT INTO shopify_sync.products
			(shopify_product_id, store_id, merchant_id, title, vendor, product_type,
			 handle, status, raw_data, is_deleted, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, 0, $10)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	for i := range products {
		p := &products[i]
		raw, err := json.Marshal(p.Raw)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("marshal raw_data for product %d: %w", p.ShopifyProductID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			p.ShopifyProductID, storeID, merchantID, p.Title, p.Vendor, p.ProductType,
			p.Handle, p.Status, string(raw), vectorOrNull(p.Embedding),
		); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert shopify product %d: %w", p.ShopifyProductID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(products), nil
}

func (c *DatabaseClient) ReplaceWooProducts(ctx context.Context, merchantID string, storeID int64, products []models.WooProduct) (int, error) {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM woocommerce_sync.products WHERE merchant_id = $1`, merchantID); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete existing woocommerce products: %w", err)
	}

	const q = `
		INSERT INTO woocommerce_sync.products
			(wc_product_id, store_id, merchant_id, name, slug, sku, type, status,
			 price, regular_price, sale_price, categories, tags, raw_data, is_deleted, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::jsonb, $13::jsonb, $14::jsonb, 0, $15)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	for i := range products {
		p := &products[i]
		categories, err := json.Marshal(p.Categories)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("marshal categories for product %d: %w", p.WCProductID, err)
		}
		tags, err := json.Marshal(p.Tags)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("marshal tags for product %d: %w", p.WCProductID, err)
		}
		raw, err := json.Marshal(p.Raw)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("marshal raw_data for product %d: %w", p.WCProductID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			p.WCProductID, storeID, merchantID, p.Name, p.Slug, p.SKU, p.Type, p.Status,
			p.Price, p.RegularPrice, p.SalePrice,
			string(categories), string(tags), string(raw), vectorOrNull(p.Embedding),
		); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert woocommerce product %d: %w", p.WCProductID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(products), nil
}

// ReplaceSquarespaceProducts replaces products and their variants; the
// variants table cascades on product delete, so clearing products is enough.
func (c *DatabaseClient) ReplaceSquarespaceProducts(ctx context.Context, merchantID string, storeID int64, products []models.SquarespaceProduct) (int, error) {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM squarespace_sync.squarespace_products WHERE merchant_id = $1`, merchantID); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete existing squarespace products: %w", err)
	}

	const insProduct = `
		INSERT INTO squarespace_sync.squarespace_products
			(squarespace_product_id, store_id, merchant_id, title, description, handle,
			 product_type, sku, price, sale_price, stock, categories, tags, image_urls,
			 raw_data, is_deleted, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::jsonb, $13::jsonb, $14::jsonb, $15::jsonb, 0, $16)
		RETURNING id
	`
	const insVariant = `
		INSERT INTO squarespace_sync.squarespace_variants
			(product_id, squarespace_variant_id, sku, price, stock, option1_name, option1_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for i := range products {
		p := &products[i]
		categories, err := json.Marshal(p.Categories)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("marshal categories for product %s: %w", p.SquarespaceProductID, err)
		}
		tags, err := json.Marshal(p.Tags)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("marshal tags for product %s: %w", p.SquarespaceProductID, err)
		}
		imageURLs, err := json.Marshal(p.ImageURLs)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("marshal image_urls for product %s: %w", p.SquarespaceProductID, err)
		}
		raw, err := json.Marshal(p.Raw)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("marshal raw_data for product %s: %w", p.SquarespaceProductID, err)
		}

		var dbProductID int64
		if err := tx.QueryRowContext(ctx, insProduct,
			p.SquarespaceProductID, storeID, merchantID, p.Title, p.Description, p.Handle,
			p.ProductType, p.SKU, p.Price, p.SalePrice, p.Stock,
			string(categories), string(tags), string(imageURLs), string(raw),
			vectorOrNull(p.Embedding),
		).Scan(&dbProductID); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert squarespace product %s: %w", p.SquarespaceProductID, err)
		}

		for j := range p.Variants {
			v := &p.Variants[j]
			if _, err := tx.ExecContext(ctx, insVariant,
				dbProductID, v.VariantID, v.SKU, v.Price, v.Stock, v.Option1Name, v.Option1Val,
			); err != nil {
				_ = tx.Rollback()
				return 0, fmt.Errorf("insert variant %s: %w", v.VariantID, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(products), nil
}
