package configgen

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chekout-ai/onboard/internal/core"
)

// Generator writes the merchant_config.json the chat runtime reads at request
// time. Regenerating a config must never clobber widget customizations the
// merchant made through the dashboard, so existing custom_chatbot settings
// and metadata.created_at are always carried over.
type Generator struct {
	obj    core.ObjectClient
	bucket string
}

func NewGenerator(obj core.ObjectClient, bucket string) *Generator {
	return &Generator{obj: obj, bucket: bucket}
}

// GenerateParams carries everything the merchant supplied during onboarding.
// Optional fields are omitted from the config when empty.
type GenerateParams struct {
	UserID           string
	MerchantID       string
	ShopName         string
	ShopURL          string
	BotName          string
	TargetCustomer   string
	CustomerPersona  string
	BotTone          string
	PromptText       string
	TopQuestions     string
	TopProducts      string
	PrimaryColor     string
	SecondaryColor   string
	LogoURL          string
	Platform         string
	CustomURLPattern string
}

func configKey(merchantID string) string {
	return fmt.Sprintf("merchants/%s/merchant_config.json", merchantID)
}

// Generate builds and uploads the config, returning the object key and the
// final document.
func (g *Generator) Generate(ctx context.Context, p GenerateParams) (string, map[string]any, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	key := configKey(p.MerchantID)

	existing := g.loadExisting(ctx, key)
	existingChatbot, _ := existing["custom_chatbot"].(map[string]any)
	existingMeta, _ := existing["metadata"].(map[string]any)

	botName := p.BotName
	if botName == "" {
		botName = "AI Assistant"
	}
	primary := p.PrimaryColor
	if primary == "" {
		primary = "#667eea"
	}
	secondary := p.SecondaryColor
	if secondary == "" {
		secondary = "#764ba2"
	}
	logoURL := p.LogoURL
	if logoURL == "" {
		logoURL = stringField(existingChatbot, "logo_signed_url", "")
	}

	platform := strings.ToLower(strings.TrimSpace(p.Platform))
	if platform == "" {
		platform, _ = existing["platform"].(string)
	}
	urlPattern := strings.TrimSpace(p.CustomURLPattern)
	if urlPattern == "" {
		if v, ok := existing["custom_url_pattern"].(string); ok {
			urlPattern = v
		} else if v, ok := existing["product_url_path"].(string); ok {
			urlPattern = v
		}
	}

	config := map[string]any{
		"user_id":     p.UserID,
		"merchant_id": p.MerchantID,
		"shop_name":   p.ShopName,
		"shop_url":    p.ShopURL,
		"bot_name":    botName,
		"training_files": map[string]any{
			"bucket_name":    g.bucket,
			"documents_path": fmt.Sprintf("merchants/%s/training_files/documents.ndjson", p.MerchantID),
			"products_path":  fmt.Sprintf("merchants/%s/training_files/products.ndjson", p.MerchantID),
		},
		"branding": map[string]any{
			"primary_color":   primary,
			"secondary_color": secondary,
			"logo_url":        logoURL,
		},
		"custom_chatbot": map[string]any{
			"title":           stringField(existingChatbot, "title", botName),
			"logo_signed_url": stringField(existingChatbot, "logo_signed_url", logoURL),
			"color":           stringField(existingChatbot, "color", primary),
			"font_family":     stringField(existingChatbot, "font_family", "Inter, sans-serif"),
			"tag_line":        stringField(existingChatbot, "tag_line", ""),
			"position":        stringField(existingChatbot, "position", "bottom-right"),
		},
		"metadata": map[string]any{
			"created_at": stringField(existingMeta, "created_at", now),
			"updated_at": now,
			"version":    stringField(existingMeta, "version", "1.0"),
		},
	}

	setIfPresent(config, "target_customer", p.TargetCustomer)
	setIfPresent(config, "customer_persona", p.CustomerPersona)
	setIfPresent(config, "bot_tone", p.BotTone)
	setIfPresent(config, "prompt_text", p.PromptText)
	setIfPresent(config, "top_questions", p.TopQuestions)
	setIfPresent(config, "top_products", p.TopProducts)
	setIfPresent(config, "platform", platform)
	if urlPattern != "" {
		config["custom_url_pattern"] = urlPattern
		config["product_url_path"] = ProductURLPath(urlPattern)
	}

	if err := g.upload(ctx, key, config); err != nil {
		return "", nil, err
	}
	log.Printf("generated config at %s", key)
	return key, config, nil
}

// Update deep-merges fields into the existing config without touching
// anything else, then refreshes the metadata timestamps.
func (g *Generator) Update(ctx context.Context, merchantID string, fields map[string]any) (string, map[string]any, error) {
	key := configKey(merchantID)
	existing := g.loadExisting(ctx, key)

	updated := deepMerge(existing, fields)

	now := time.Now().UTC().Format(time.RFC3339)
	meta, _ := updated["metadata"].(map[string]any)
	if meta == nil {
		meta = map[string]any{}
	}
	existingMeta, _ := existing["metadata"].(map[string]any)
	meta["created_at"] = stringField(existingMeta, "created_at", now)
	meta["updated_at"] = now
	meta["version"] = stringField(existingMeta, "version", "1.0")
	updated["metadata"] = meta

	if err := g.upload(ctx, key, updated); err != nil {
		return "", nil, err
	}
	log.Printf("updated config at %s", key)
	return key, updated, nil
}

// ProductURLPath derives the product link prefix from a URL pattern like
// "/boutique/p/{handle}": placeholders are stripped and a single trailing
// slash is kept.
func ProductURLPath(pattern string) string {
	path := strings.ReplaceAll(pattern, "{handle}", "")
	path = strings.ReplaceAll(path, "{}", "")
	return strings.TrimRight(path, "/") + "/"
}

func (g *Generator) loadExisting(ctx context.Context, key string) map[string]any {
	ok, err := g.obj.Exists(ctx, key)
	if err != nil || !ok {
		return map[string]any{}
	}
	data, err := g.obj.Download(ctx, key)
	if err != nil {
		log.Printf("could not read existing config %s: %v", key, err)
		return map[string]any{}
	}
	var existing map[string]any
	if err := json.Unmarshal(data, &existing); err != nil {
		log.Printf("could not parse existing config %s: %v", key, err)
		return map[string]any{}
	}
	return existing
}

func (g *Generator) upload(ctx context.Context, key string, config map[string]any) error {
	body, err := json.MarshalIndent(config, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := g.obj.Upload(ctx, key, body, "application/json"); err != nil {
		return fmt.Errorf("upload config %s: %w", key, err)
	}
	return nil
}

func deepMerge(base, update map[string]any) map[string]any {
	result := map[string]any{}
	for k, v := range base {
		result[k] = v
	}
	for k, v := range update {
		if existing, ok := result[k].(map[string]any); ok {
			if nested, ok := v.(map[string]any); ok {
				result[k] = deepMerge(existing, nested)
				continue
			}
		}
		result[k] = v
	}
	return result
}

func stringField(m map[string]any, key, fallback string) string {
	if m != nil {
		if v, ok := m[key].(string); ok && v != "" {
			return v
		}
	}
	return fallback
}

func setIfPresent(config map[string]any, key, value string) {
	if value != "" {
		config[key] = value
	}
}
