package configgen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectStore struct {
	objects map[string][]byte
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (f *fakeObjectStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeObjectStore) Download(_ context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (f *fakeObjectStore) Upload(_ context.Context, key string, data []byte, _ string) error {
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStore) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func TestGenerateFreshConfig(t *testing.T) {
	store := newFakeObjectStore()
	g := NewGenerator(store, "chekout-ai")

	key, config, err := g.Generate(context.Background(), GenerateParams{
		UserID:     "u1",
		MerchantID: "m1",
		ShopName:   "Example Shop",
		ShopURL:    "https://shop.example.com",
		Platform:   "Shopify",
	})
	require.NoError(t, err)
	assert.Equal(t, "merchants/m1/merchant_config.json", key)

	assert.Equal(t, "AI Assistant", config["bot_name"])
	assert.Equal(t, "shopify", config["platform"])
	assert.NotContains(t, config, "bot_tone")
	assert.NotContains(t, config, "custom_url_pattern")

	branding := config["branding"].(map[string]any)
	assert.Equal(t, "#667eea", branding["primary_color"])
	assert.Equal(t, "#764ba2", branding["secondary_color"])

	tf := config["training_files"].(map[string]any)
	assert.Equal(t, "chekout-ai", tf["bucket_name"])
	assert.Equal(t, "merchants/m1/training_files/documents.ndjson", tf["documents_path"])
	assert.Equal(t, "merchants/m1/training_files/products.ndjson", tf["products_path"])

	// the uploaded document round-trips
	var stored map[string]any
	require.NoError(t, json.Unmarshal(store.objects[key], &stored))
	assert.Equal(t, "m1", stored["merchant_id"])
}

func TestGeneratePreservesWidgetCustomizations(t *testing.T) {
	store := newFakeObjectStore()
	existing := map[string]any{
		"custom_chatbot": map[string]any{
			"title":       "Shop Buddy",
			"color":       "#112233",
			"font_family": "Georgia, serif",
			"position":    "bottom-left",
		},
		"metadata": map[string]any{
			"created_at": "2026-03-01T00:00:00Z",
			"version":    "2.1",
		},
	}
	body, err := json.Marshal(existing)
	require.NoError(t, err)
	store.objects["merchants/m1/merchant_config.json"] = body

	g := NewGenerator(store, "chekout-ai")
	_, config, err := g.Generate(context.Background(), GenerateParams{
		UserID:     "u1",
		MerchantID: "m1",
		BotName:    "New Name",
	})
	require.NoError(t, err)

	chatbot := config["custom_chatbot"].(map[string]any)
	assert.Equal(t, "Shop Buddy", chatbot["title"])
	assert.Equal(t, "#112233", chatbot["color"])
	assert.Equal(t, "Georgia, serif", chatbot["font_family"])
	assert.Equal(t, "bottom-left", chatbot["position"])

	meta := config["metadata"].(map[string]any)
	assert.Equal(t, "2026-03-01T00:00:00Z", meta["created_at"])
	assert.Equal(t, "2.1", meta["version"])
	assert.NotEqual(t, meta["created_at"], meta["updated_at"])
}

func TestGenerateURLPattern(t *testing.T) {
	store := newFakeObjectStore()
	g := NewGenerator(store, "chekout-ai")

	_, config, err := g.Generate(context.Background(), GenerateParams{
		UserID:           "u1",
		MerchantID:       "m1",
		CustomURLPattern: "/boutique/p/{handle}",
	})
	require.NoError(t, err)

	assert.Equal(t, "/boutique/p/{handle}", config["custom_url_pattern"])
	assert.Equal(t, "/boutique/p/", config["product_url_path"])
}

func TestProductURLPath(t *testing.T) {
	assert.Equal(t, "/boutique/p/", ProductURLPath("/boutique/p/{handle}"))
	assert.Equal(t, "/products/", ProductURLPath("/products/{}"))
	assert.Equal(t, "/shop/", ProductURLPath("/shop/"))
	assert.Equal(t, "/", ProductURLPath(""))
}

func TestUpdateDeepMerges(t *testing.T) {
	store := newFakeObjectStore()
	existing := map[string]any{
		"shop_name": "Example Shop",
		"branding": map[string]any{
			"primary_color":   "#111111",
			"secondary_color": "#222222",
		},
		"metadata": map[string]any{"created_at": "2026-02-01T00:00:00Z"},
	}
	body, err := json.Marshal(existing)
	require.NoError(t, err)
	store.objects["merchants/m1/merchant_config.json"] = body

	g := NewGenerator(store, "chekout-ai")
	_, updated, err := g.Update(context.Background(), "m1", map[string]any{
		"branding": map[string]any{"primary_color": "#ff0000"},
		"bot_tone": "friendly",
	})
	require.NoError(t, err)

	assert.Equal(t, "Example Shop", updated["shop_name"])
	assert.Equal(t, "friendly", updated["bot_tone"])

	branding := updated["branding"].(map[string]any)
	assert.Equal(t, "#ff0000", branding["primary_color"])
	assert.Equal(t, "#222222", branding["secondary_color"])

	meta := updated["metadata"].(map[string]any)
	assert.Equal(t, "2026-02-01T00:00:00Z", meta["created_at"])
	assert.NotEmpty(t, meta["updated_at"])
}
