package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/chekout-ai/onboard/internal/models"
)

// Imported catalogs get synthetic IDs far above any live platform range so
// they can never collide with API-synced products.
const (
	BaseProductID int64 = 9900000000001
	BaseVariantID int64 = 9900000100001
)

const importTimestamp = "2026-01-01T00:00:00-05:00"

// BuildShopifyProducts normalizes raw rows into Shopify product records. Rows
// carrying a Handle column are treated as a Shopify CSV export and grouped by
// handle; anything else is read as one product per row. Every product ends up
// with at least one variant.
func BuildShopifyProducts(rows []Row) []models.ShopifyProduct {
	if hasHandleColumn(rows) {
		return buildShopifyGrouped(rows)
	}
	return buildShopifyGeneric(rows)
}

func hasHandleColumn(rows []Row) bool {
	n := len(rows)
	if n > 3 {
		n = 3
	}
	for _, row := range rows[:n] {
		for h := range row {
			if strings.EqualFold(strings.TrimSpace(h), "handle") {
				return true
			}
		}
	}
	return false
}

func buildShopifyGrouped(rows []Row) []models.ShopifyProduct {
	var order []string
	groups := map[string][]Row{}
	for _, row := range rows {
		handle := Col(row, "Handle")
		if handle == "" {
			continue
		}
		if _, seen := groups[handle]; !seen {
			order = append(order, handle)
		}
		groups[handle] = append(groups[handle], row)
	}

	products := make([]models.ShopifyProduct, 0, len(order))
	for idx, handle := range order {
		group := groups[handle]
		first := group[0]
		productID := BaseProductID + int64(idx)

		title := Col(first, "Title")
		bodyHTML := Col(first, "Body (HTML)", "Body")
		vendor := Col(first, "Vendor")
		productType := Col(first, "Type", "Product Type")
		tags := Col(first, "Tags")
		status := Col(first, "Status")
		if status == "" {
			status = "active"
		}

		options := collectOptions(group, productID)
		variants := collectVariants(group, productID, int64(idx))
		if len(variants) == 0 {
			variants = append(variants, defaultVariant(productID, int64(idx), Col(first, "Variant Price")))
		}
		images := collectImages(group, productID)

		payload := models.ShopifyPayload{
			ID:             productID,
			Title:          title,
			Handle:         handle,
			BodyHTML:       bodyHTML,
			Vendor:         vendor,
			ProductType:    productType,
			Tags:           tags,
			Status:         status,
			PublishedAt:    importTimestamp,
			CreatedAt:      importTimestamp,
			UpdatedAt:      importTimestamp,
			PublishedScope: "web",
			Options:        options,
			Variants:       variants,
			Images:         images,
		}
		if len(images) > 0 {
			payload.Image = &images[0]
		}

		products = append(products, models.ShopifyProduct{
			ShopifyProductID: productID,
			Title:            title,
			Vendor:           vendor,
			ProductType:      productType,
			Handle:           handle,
			Status:           status,
			Raw:              payload,
			BodyText:         StripHTML(bodyHTML),
			TagsText:         tags,
		})
	}
	return products
}

func collectOptions(group []Row, productID int64) []models.ShopifyOption {
	names := map[int]string{}
	values := map[int]map[string]struct{}{}
	for _, row := range group {
		for pos := 1; pos <= 3; pos++ {
			name := Col(row, "Option"+strconv.Itoa(pos)+" Name")
			if name != "" {
				if _, ok := names[pos]; !ok {
					names[pos] = name
				}
			}
		}
	}
	for _, row := range group {
		for pos := 1; pos <= 3; pos++ {
			if _, ok := names[pos]; !ok {
				continue
			}
			val := Col(row, "Option"+strconv.Itoa(pos)+" Value")
			if val == "" {
				continue
			}
			if values[pos] == nil {
				values[pos] = map[string]struct{}{}
			}
			values[pos][val] = struct{}{}
		}
	}

	positions := make([]int, 0, len(names))
	for pos := range names {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	options := make([]models.ShopifyOption, 0, len(positions))
	for _, pos := range positions {
		vals := make([]string, 0, len(values[pos]))
		for v := range values[pos] {
			vals = append(vals, v)
		}
		sort.Strings(vals)
		options = append(options, models.ShopifyOption{
			ID:        productID*10 + int64(pos),
			Name:      names[pos],
			Position:  pos,
			ProductID: productID,
			Values:    vals,
		})
	}
	return options
}

func collectVariants(group []Row, productID, productIdx int64) []models.ShopifyVariant {
	var variants []models.ShopifyVariant
	for _, row := range group {
		price := Col(row, "Variant Price")
		if price == "" {
			continue
		}
		variantIdx := int64(len(variants))

		opt1 := optional(Col(row, "Option1 Value"))
		opt2 := optional(Col(row, "Option2 Value"))
		opt3 := optional(Col(row, "Option3 Value"))
		var parts []string
		for _, o := range []*string{opt1, opt2, opt3} {
			if o != nil {
				parts = append(parts, *o)
			}
		}
		variantTitle := "Default"
		if len(parts) > 0 {
			variantTitle = strings.Join(parts, " / ")
		}

		invQty := 0
		if n, err := strconv.Atoi(Col(row, "Variant Inventory Qty")); err == nil {
			invQty = n
		}
		policy := Col(row, "Variant Inventory Policy")
		if policy == "" {
			policy = "deny"
		}

		variants = append(variants, models.ShopifyVariant{
			ID:                  BaseVariantID + productIdx*100 + variantIdx,
			ProductID:           productID,
			Title:               variantTitle,
			Price:               price,
			CompareAtPrice:      optional(Col(row, "Variant Compare At Price")),
			SKU:                 optional(Col(row, "Variant SKU")),
			Position:            int(variantIdx) + 1,
			Option1:             opt1,
			Option2:             opt2,
			Option3:             opt3,
			InventoryQuantity:   invQty,
			InventoryPolicy:     policy,
			InventoryManagement: "shopify",
			FulfillmentService:  "manual",
			RequiresShipping:    true,
			Taxable:             true,
		})
	}
	return variants
}

func collectImages(group []Row, productID int64) []models.ShopifyImage {
	var images []models.ShopifyImage
	for _, row := range group {
		src := Col(row, "Image Src")
		if src == "" {
			continue
		}
		position, err := strconv.Atoi(Col(row, "Image Position"))
		if err != nil || position < 1 {
			position = len(images) + 1
		}
		images = append(images, models.ShopifyImage{
			ID:         productID*100 + int64(position),
			ProductID:  productID,
			Position:   position,
			Src:        src,
			Alt:        Col(row, "Image Alt Text"),
			Width:      1000,
			Height:     1000,
			VariantIDs: []int64{},
		})
	}
	return images
}

func defaultVariant(productID, productIdx int64, price string) models.ShopifyVariant {
	if price == "" {
		price = "0"
	}
	def := "Default"
	return models.ShopifyVariant{
		ID:                  BaseVariantID + productIdx*100,
		ProductID:           productID,
		Title:               "Default",
		Price:               price,
		Position:            1,
		Option1:             &def,
		InventoryQuantity:   100,
		InventoryPolicy:     "deny",
		InventoryManagement: "shopify",
		FulfillmentService:  "manual",
		RequiresShipping:    true,
		Taxable:             true,
	}
}

func buildShopifyGeneric(rows []Row) []models.ShopifyProduct {
	var products []models.ShopifyProduct
	for i, row := range rows {
		idx := int64(i)
		productID := BaseProductID + idx
		title := Col(row, "title", "name", "product_name", "product_title")
		if title == "" {
			continue
		}

		handle := Col(row, "handle", "slug", "url")
		if handle == "" {
			handle = Slugify(title)
		}
		price := Col(row, "price", "variant_price", "amount")
		if price == "" {
			price = "0"
		}
		description := Col(row, "description", "body", "body_html", "body (html)")
		vendor := Col(row, "vendor", "brand")
		productType := Col(row, "type", "product_type", "category")
		tags := Col(row, "tags")
		image := Col(row, "image", "image_url", "featured_image", "image_src")

		variant := defaultVariant(productID, idx, price)
		variant.CompareAtPrice = optional(Col(row, "compare_at_price", "original_price", "compare_price"))

		var images []models.ShopifyImage
		if image != "" {
			images = append(images, models.ShopifyImage{
				ID:         productID*100 + 1,
				ProductID:  productID,
				Position:   1,
				Src:        image,
				Alt:        title,
				Width:      1000,
				Height:     1000,
				VariantIDs: []int64{},
			})
		}

		payload := models.ShopifyPayload{
			ID:             productID,
			Title:          title,
			Handle:         handle,
			BodyHTML:       description,
			Vendor:         vendor,
			ProductType:    productType,
			Tags:           tags,
			Status:         "active",
			PublishedAt:    importTimestamp,
			CreatedAt:      importTimestamp,
			UpdatedAt:      importTimestamp,
			PublishedScope: "web",
			Options: []models.ShopifyOption{{
				ID:        productID*10 + 1,
				Name:      "Title",
				Position:  1,
				ProductID: productID,
				Values:    []string{"Default"},
			}},
			Variants: []models.ShopifyVariant{variant},
			Images:   images,
		}
		if len(images) > 0 {
			payload.Image = &images[0]
		}

		products = append(products, models.ShopifyProduct{
			ShopifyProductID: productID,
			Title:            title,
			Vendor:           vendor,
			ProductType:      productType,
			Handle:           handle,
			Status:           "active",
			Raw:              payload,
			BodyText:         StripHTML(description),
			TagsText:         tags,
		})
	}
	return products
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
