package catalog

import (
	"strings"

	"github.com/chekout-ai/onboard/internal/models"
)

// BuildWooProducts normalizes raw rows into WooCommerce product records, one
// simple product per row. The product itself carries the price and SKU, so
// the variations list stays empty.
func BuildWooProducts(rows []Row) []models.WooProduct {
	var products []models.WooProduct
	for i, row := range rows {
		productID := BaseProductID + int64(i)
		name := Col(row, "name", "title", "product_name", "product_title")
		if name == "" {
			continue
		}

		slug := Col(row, "slug", "handle", "url")
		if slug == "" {
			slug = Slugify(name)
		}
		price := Col(row, "price", "regular_price", "variant_price", "amount")
		if price == "" {
			price = "0"
		}
		salePrice := Col(row, "sale_price")
		description := Col(row, "description", "body", "body_html")
		sku := Col(row, "sku")
		productType := Col(row, "type", "product_type")
		if productType == "" {
			productType = "simple"
		}
		categoriesStr := Col(row, "categories", "category")
		tagsStr := Col(row, "tags")
		image := Col(row, "image", "image_url", "featured_image", "image_src")
		status := Col(row, "status")
		if status == "" {
			status = "publish"
		}

		categories := splitTerms(categoriesStr)
		tags := splitTerms(tagsStr)
		var images []models.WooImage
		if image != "" {
			images = append(images, models.WooImage{ID: productID*100 + 1, Src: image, Alt: name})
		}

		payload := models.WooPayload{
			ID:               productID,
			Name:             name,
			Slug:             slug,
			Description:      description,
			ShortDescription: "",
			SKU:              sku,
			Price:            price,
			RegularPrice:     price,
			SalePrice:        salePrice,
			Type:             productType,
			Status:           status,
			Categories:       categories,
			Tags:             tags,
			Images:           images,
			Variations:       []int64{},
		}

		products = append(products, models.WooProduct{
			WCProductID:  productID,
			Name:         name,
			Slug:         slug,
			SKU:          sku,
			Type:         productType,
			Status:       status,
			Price:        price,
			RegularPrice: price,
			SalePrice:    salePrice,
			Categories:   categories,
			Tags:         tags,
			Raw:          payload,
			BodyText:     StripHTML(description),
			TagsText:     tagsStr,
		})
	}
	return products
}

func splitTerms(s string) []models.WooTerm {
	if s == "" {
		return []models.WooTerm{}
	}
	parts := strings.Split(s, ",")
	terms := make([]models.WooTerm, 0, len(parts))
	for i, p := range parts {
		terms = append(terms, models.WooTerm{ID: i, Name: strings.TrimSpace(p)})
	}
	return terms
}
