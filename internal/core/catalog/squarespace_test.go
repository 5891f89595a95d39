package catalog

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSquarespaceProducts(t *testing.T) {
	rows := []Row{
		{
			"title": "Linen Throw", "price": "$1,299.00", "sale_price": "$999.00",
			"sku": "LT-1", "description": "<p>Hand woven</p>",
			"categories": "Home, Textiles", "tags": "linen, cozy",
			"stock": "12", "image": "https://cdn.example.com/throw.jpg",
		},
	}

	products := BuildSquarespaceProducts(rows)
	require.Len(t, products, 1)

	p := products[0]
	wantID := strconv.FormatInt(BaseProductID, 10)
	assert.Equal(t, wantID, p.SquarespaceProductID)
	assert.Equal(t, "linen-throw", p.Handle)
	assert.Equal(t, 1299.0, p.Price)
	require.NotNil(t, p.SalePrice)
	assert.Equal(t, 999.0, *p.SalePrice)
	assert.Equal(t, "12", p.Stock)
	assert.Equal(t, "PHYSICAL", p.ProductType)
	assert.Equal(t, "Hand woven", p.BodyText)
	assert.Equal(t, []string{"Home", "Textiles"}, p.Categories)
	assert.Equal(t, []string{"linen", "cozy"}, p.Tags)

	require.Len(t, p.Variants, 1)
	v := p.Variants[0]
	assert.Equal(t, "var-"+wantID, v.VariantID)
	assert.Equal(t, "Default", v.Option1Name)
	assert.Equal(t, "Default", v.Option1Val)
	assert.Equal(t, 1299.0, v.Price)
	assert.Equal(t, "12", v.Stock)
}

func TestBuildSquarespaceDefaults(t *testing.T) {
	products := BuildSquarespaceProducts([]Row{{"name": "Candle"}})
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, "Unlimited", p.Stock)
	assert.Equal(t, 0.0, p.Price)
	assert.Nil(t, p.SalePrice)
	assert.Equal(t, "candle", p.Handle)
	assert.Empty(t, p.ImageURLs)
	assert.NotNil(t, p.ImageURLs)
}

func TestParsePrice(t *testing.T) {
	assert.Equal(t, 1299.0, parsePrice("$1,299.00"))
	assert.Equal(t, 19.99, parsePrice("19.99 USD"))
	assert.Equal(t, 0.0, parsePrice(""))
	assert.Equal(t, 0.0, parsePrice("free"))
}
