package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/chekout-ai/onboard/internal/models"
)

var nonPrice = regexp.MustCompile(`[^\d.]`)

// BuildSquarespaceProducts normalizes raw rows into Squarespace product
// records, one product per row with a single default variant.
func BuildSquarespaceProducts(rows []Row) []models.SquarespaceProduct {
	var products []models.SquarespaceProduct
	for i, row := range rows {
		productID := strconv.FormatInt(BaseProductID+int64(i), 10)
		title := Col(row, "title", "name", "product_name")
		if title == "" {
			continue
		}

		handle := Col(row, "handle", "slug", "url")
		if handle == "" {
			handle = Slugify(title)
		}
		description := Col(row, "description", "body", "body_html")
		sku := Col(row, "sku")
		productType := Col(row, "type", "product_type")
		if productType == "" {
			productType = "PHYSICAL"
		}
		tagsStr := Col(row, "tags")
		stock := Col(row, "stock", "inventory", "quantity")
		if stock == "" {
			stock = "Unlimited"
		}

		price := parsePrice(Col(row, "price", "regular_price", "amount"))
		var salePrice *float64
		if s := Col(row, "sale_price"); s != "" {
			v := parsePrice(s)
			salePrice = &v
		}

		categories := splitList(Col(row, "categories", "category"))
		tags := splitList(tagsStr)
		imageURLs := []string{}
		if image := Col(row, "image", "image_url", "featured_image", "image_src"); image != "" {
			imageURLs = append(imageURLs, image)
		}

		products = append(products, models.SquarespaceProduct{
			SquarespaceProductID: productID,
			Title:                title,
			Description:          description,
			Handle:               handle,
			ProductType:          productType,
			SKU:                  sku,
			Price:                price,
			SalePrice:            salePrice,
			Stock:                stock,
			Categories:           categories,
			Tags:                 tags,
			ImageURLs:            imageURLs,
			Raw: models.SquarespacePayload{
				Title:       title,
				Description: description,
				Handle:      handle,
				Price:       price,
				SalePrice:   salePrice,
				Categories:  categories,
				Tags:        tags,
				ImageURLs:   imageURLs,
			},
			BodyText: StripHTML(description),
			TagsText: tagsStr,
			Variants: []models.SquarespaceVariant{{
				VariantID:   "var-" + productID,
				SKU:         sku,
				Price:       price,
				Stock:       stock,
				Option1Name: "Default",
				Option1Val:  "Default",
			}},
		})
	}
	return products
}

func parsePrice(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(nonPrice.ReplaceAllString(s, ""), 64)
	if err != nil {
		return 0
	}
	return v
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
