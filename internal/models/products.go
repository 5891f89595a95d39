package models

// Platform identifies which e-commerce platform a catalog import targets.
type Platform string

const (
	PlatformShopify     Platform = "shopify"
	PlatformWooCommerce Platform = "woocommerce"
	PlatformSquarespace Platform = "squarespace"
)

// Valid reports whether p is one of the supported import platforms.
func (p Platform) Valid() bool {
	switch p {
	case PlatformShopify, PlatformWooCommerce, PlatformSquarespace:
		return true
	}
	return false
}

// The raw payload structs below are a compatibility contract with the search
// indexer and the chat retrieval service: field names and nesting must match
// what the webhook sync services write for API-connected stores. Do not rename
// json tags.

// ShopifyOption is one named option (e.g. Size) with its value set.
type ShopifyOption struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Position  int      `json:"position"`
	ProductID int64    `json:"product_id"`
	Values    []string `json:"values"`
}

// ShopifyVariant mirrors the Shopify Admin API variant object for the fields
// the retrieval side reads. Nullable fields stay pointers so absent values
// serialize as JSON null, not "".
type ShopifyVariant struct {
	ID                  int64   `json:"id"`
	ProductID           int64   `json:"product_id"`
	Title               string  `json:"title"`
	Price               string  `json:"price"`
	CompareAtPrice      *string `json:"compare_at_price"`
	SKU                 *string `json:"sku"`
	Position            int     `json:"position"`
	Option1             *string `json:"option1"`
	Option2             *string `json:"option2"`
	Option3             *string `json:"option3"`
	InventoryQuantity   int     `json:"inventory_quantity"`
	InventoryPolicy     string  `json:"inventory_policy"`
	InventoryManagement string  `json:"inventory_management"`
	FulfillmentService  string  `json:"fulfillment_service"`
	RequiresShipping    bool    `json:"requires_shipping"`
	Taxable             bool    `json:"taxable"`
}

type ShopifyImage struct {
	ID         int64   `json:"id"`
	ProductID  int64   `json:"product_id"`
	Position   int     `json:"position"`
	Src        string  `json:"src"`
	Alt        string  `json:"alt"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	VariantIDs []int64 `json:"variant_ids"`
}

// ShopifyPayload is the raw_data JSONB document stored per product.
type ShopifyPayload struct {
	ID             int64            `json:"id"`
	Title          string           `json:"title"`
	Handle         string           `json:"handle"`
	BodyHTML       string           `json:"body_html"`
	Vendor         string           `json:"vendor"`
	ProductType    string           `json:"product_type"`
	Tags           string           `json:"tags"`
	Status         string           `json:"status"`
	PublishedAt    string           `json:"published_at"`
	CreatedAt      string           `json:"created_at"`
	UpdatedAt      string           `json:"updated_at"`
	PublishedScope string           `json:"published_scope"`
	Options        []ShopifyOption  `json:"options"`
	Variants       []ShopifyVariant `json:"variants"`
	Images         []ShopifyImage   `json:"images"`
	Image          *ShopifyImage    `json:"image"`
}

// ShopifyProduct is the canonical record inserted into shopify_sync.products.
// BodyText and TagsText feed the embedding input and are not serialized.
type ShopifyProduct struct {
	ShopifyProductID int64
	Title            string
	Vendor           string
	ProductType      string
	Handle           string
	Status           string
	Raw              ShopifyPayload
	BodyText         string
	TagsText         string
	Embedding        []float32
}

type WooTerm struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type WooImage struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// WooPayload is the raw_data JSONB document for a WooCommerce product. CSV
// imports always produce "simple" products, so variations stays empty and the
// product row itself carries the single variant's price and sku.
type WooPayload struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Slug             string     `json:"slug"`
	Description      string     `json:"description"`
	ShortDescription string     `json:"short_description"`
	SKU              string     `json:"sku"`
	Price            string     `json:"price"`
	RegularPrice     string     `json:"regular_price"`
	SalePrice        string     `json:"sale_price"`
	Type             string     `json:"type"`
	Status           string     `json:"status"`
	Categories       []WooTerm  `json:"categories"`
	Tags             []WooTerm  `json:"tags"`
	Images           []WooImage `json:"images"`
	Variations       []int64    `json:"variations"`
}

type WooProduct struct {
	WCProductID  int64
	Name         string
	Slug         string
	SKU          string
	Type         string
	Status       string
	Price        string
	RegularPrice string
	SalePrice    string
	Categories   []WooTerm
	Tags         []WooTerm
	Raw          WooPayload
	BodyText     string
	TagsText     string
	Embedding    []float32
}

// SquarespacePayload is the raw_data JSONB document for a Squarespace product.
type SquarespacePayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Handle      string   `json:"handle"`
	Price       float64  `json:"price"`
	SalePrice   *float64 `json:"sale_price"`
	Categories  []string `json:"categories"`
	Tags        []string `json:"tags"`
	ImageURLs   []string `json:"image_urls"`
}

// SquarespaceVariant is one row in squarespace_sync.squarespace_variants.
// CSV imports synthesize exactly one Default/Default variant per product.
type SquarespaceVariant struct {
	VariantID   string
	SKU         string
	Price       float64
	Stock       string
	Option1Name string
	Option1Val  string
}

type SquarespaceProduct struct {
	SquarespaceProductID string
	Title                string
	Description          string
	Handle               string
	ProductType          string
	SKU                  string
	Price                float64
	SalePrice            *float64
	Stock                string
	Categories           []string
	Tags                 []string
	ImageURLs            []string
	Raw                  SquarespacePayload
	Variants             []SquarespaceVariant
	BodyText             string
	TagsText             string
	Embedding            []float32
}
