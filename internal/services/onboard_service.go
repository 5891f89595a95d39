package services

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/chekout-ai/onboard/internal/core"
	"github.com/chekout-ai/onboard/internal/core/catalog"
	"github.com/chekout-ai/onboard/internal/core/configgen"
	"github.com/chekout-ai/onboard/internal/core/ingestion"
	"github.com/chekout-ai/onboard/internal/models"
)

// Every merchant gets the same folder skeleton in the bucket; uploads land in
// knowledge_base and the pipeline writes its artifacts to training_files.
var merchantFolders = []string{
	"knowledge_base",
	"prompt-docs",
	"training_files",
	"brand-images",
}

// catalogFilenames are the knowledge_base files routed to the product
// importer instead of the document converter, in order of preference.
var catalogFilenames = []string{
	"products.json",
	"products.csv",
	"products.xlsx",
	"products.xls",
}

// Category exports are platform-catalog companions handled by a separate
// sync path, never plain-text documents.
var documentExclusions = map[string]struct{}{
	"products.json":   {},
	"products.csv":    {},
	"products.xlsx":   {},
	"products.xls":    {},
	"categories.csv":  {},
	"categories.xlsx": {},
	"categories.xls":  {},
}

// OnboardRequest is everything a merchant supplies to start an onboarding
// run.
type OnboardRequest struct {
	MerchantID       string `json:"merchant_id"`
	UserID           string `json:"user_id"`
	ShopName         string `json:"shop_name"`
	ShopURL          string `json:"shop_url"`
	BotName          string `json:"bot_name"`
	Platform         string `json:"platform"`
	CustomURLPattern string `json:"custom_url_pattern"`
	TargetCustomer   string `json:"target_customer"`
	CustomerPersona  string `json:"customer_persona"`
	BotTone          string `json:"bot_tone"`
	PromptText       string `json:"prompt_text"`
	TopQuestions     string `json:"top_questions"`
	TopProducts      string `json:"top_products"`
	PrimaryColor     string `json:"primary_color"`
	SecondaryColor   string `json:"secondary_color"`
	LogoURL          string `json:"logo_url"`
}

func (r *OnboardRequest) Validate() error {
	if strings.TrimSpace(r.MerchantID) == "" {
		return fmt.Errorf("merchant_id is required")
	}
	if strings.TrimSpace(r.UserID) == "" {
		return fmt.Errorf("user_id is required")
	}
	return nil
}

// OnboardService walks one merchant through the full ingestion sequence:
// merchant record, folder skeleton, catalog import, document conversion,
// config generation. Product and document failures mark their step failed but
// do not abort the run; record and folder failures do.
type OnboardService struct {
	db       core.DbClient
	obj      core.ObjectClient
	importer *catalog.ProductImporter
	ingestor *ingestion.DocumentIngestor
	confgen  *configgen.Generator
	tracker  *StatusTracker
}

func NewOnboardService(
	db core.DbClient,
	obj core.ObjectClient,
	importer *catalog.ProductImporter,
	ingestor *ingestion.DocumentIngestor,
	confgen *configgen.Generator,
	tracker *StatusTracker,
) *OnboardService {
	return &OnboardService{
		db:       db,
		obj:      obj,
		importer: importer,
		ingestor: ingestor,
		confgen:  confgen,
		tracker:  tracker,
	}
}

// Run executes the onboarding sequence for one merchant. The tracker carries
// per-step progress for the status endpoint; the returned error is the first
// run-fatal failure.
func (s *OnboardService) Run(ctx context.Context, req *OnboardRequest) error {
	merchantID := req.MerchantID

	s.tracker.Update(merchantID, StepMerchantRecord, StepInProgress, "", "")
	if err := s.db.UpsertMerchant(ctx, &models.Merchant{
		MerchantID:       merchantID,
		UserID:           req.UserID,
		ShopName:         req.ShopName,
		ShopURL:          req.ShopURL,
		Platform:         strings.ToLower(strings.TrimSpace(req.Platform)),
		CustomURLPattern: req.CustomURLPattern,
	}); err != nil {
		s.tracker.Update(merchantID, StepMerchantRecord, StepFailed, "", err.Error())
		return fmt.Errorf("create merchant record for %s: %w", merchantID, err)
	}
	s.tracker.Update(merchantID, StepMerchantRecord, StepCompleted, "merchant record created", "")

	s.tracker.Update(merchantID, StepCreateFolders, StepInProgress, "", "")
	if err := s.createFolders(ctx, merchantID); err != nil {
		s.tracker.Update(merchantID, StepCreateFolders, StepFailed, "", err.Error())
		return fmt.Errorf("create folders for %s: %w", merchantID, err)
	}
	s.tracker.Update(merchantID, StepCreateFolders, StepCompleted, "folder structure created", "")

	catalogPath, docPaths := s.scanKnowledgeBase(ctx, merchantID)

	s.runProducts(ctx, req, catalogPath)
	s.runDocuments(ctx, merchantID, docPaths)

	s.tracker.Update(merchantID, StepConfig, StepInProgress, "", "")
	key, _, err := s.confgen.Generate(ctx, configgen.GenerateParams{
		UserID:           req.UserID,
		MerchantID:       merchantID,
		ShopName:         req.ShopName,
		ShopURL:          req.ShopURL,
		BotName:          req.BotName,
		TargetCustomer:   req.TargetCustomer,
		CustomerPersona:  req.CustomerPersona,
		BotTone:          req.BotTone,
		PromptText:       req.PromptText,
		TopQuestions:     req.TopQuestions,
		TopProducts:      req.TopProducts,
		PrimaryColor:     req.PrimaryColor,
		SecondaryColor:   req.SecondaryColor,
		LogoURL:          req.LogoURL,
		Platform:         req.Platform,
		CustomURLPattern: req.CustomURLPattern,
	})
	if err != nil {
		s.tracker.Update(merchantID, StepConfig, StepFailed, "", err.Error())
		return fmt.Errorf("generate config for %s: %w", merchantID, err)
	}
	s.tracker.Update(merchantID, StepConfig, StepCompleted, "config generated at "+key, "")

	return nil
}

func (s *OnboardService) createFolders(ctx context.Context, merchantID string) error {
	for _, folder := range merchantFolders {
		key := fmt.Sprintf("merchants/%s/%s/.keep", merchantID, folder)
		ok, err := s.obj.Exists(ctx, key)
		if err == nil && ok {
			continue
		}
		if err := s.obj.Upload(ctx, key, []byte{}, "application/octet-stream"); err != nil {
			return fmt.Errorf("create %s placeholder: %w", folder, err)
		}
	}
	return nil
}

// scanKnowledgeBase splits the merchant's uploads into one catalog file (the
// first match in preference order) and the document set.
func (s *OnboardService) scanKnowledgeBase(ctx context.Context, merchantID string) (catalogPath string, docPaths []string) {
	prefix := fmt.Sprintf("merchants/%s/knowledge_base/", merchantID)
	files, err := s.obj.List(ctx, prefix)
	if err != nil {
		log.Printf("could not scan knowledge_base for %s: %v", merchantID, err)
		return "", nil
	}

	byName := map[string]string{}
	for _, f := range files {
		byName[strings.ToLower(path.Base(f))] = f
	}
	for _, name := range catalogFilenames {
		if f, ok := byName[name]; ok {
			catalogPath = f
			break
		}
	}

	for _, f := range files {
		name := strings.ToLower(path.Base(f))
		if _, excluded := documentExclusions[name]; excluded {
			continue
		}
		if strings.HasSuffix(name, ".keep") {
			continue
		}
		docPaths = append(docPaths, f)
	}
	return catalogPath, docPaths
}

// stepStates bridges pipeline run states into the tracker: non-terminal
// states surface as in_progress sub-state messages, terminal states move the
// step itself.
func (s *OnboardService) stepStates(merchantID, step string) ingestion.StateFunc {
	return func(st ingestion.RunState) {
		switch st {
		case ingestion.StateCompleted:
			s.tracker.Update(merchantID, step, StepCompleted, string(st), "")
		case ingestion.StateFailed:
			s.tracker.Update(merchantID, step, StepFailed, string(st), "")
		default:
			s.tracker.Update(merchantID, step, StepInProgress, string(st), "")
		}
	}
}

func (s *OnboardService) runProducts(ctx context.Context, req *OnboardRequest, catalogPath string) {
	merchantID := req.MerchantID
	if catalogPath == "" {
		s.tracker.Update(merchantID, StepProducts, StepSkipped, "no products file found in knowledge_base", "")
		return
	}

	notify := s.stepStates(merchantID, StepProducts)
	notify.Notify(ingestion.StatePending)
	summary, err := s.importer.ImportProducts(ctx, merchantID, models.Platform(req.Platform),
		catalogPath, req.ShopURL, req.ShopName, notify)
	if err != nil {
		s.tracker.Update(merchantID, StepProducts, StepFailed, string(ingestion.StateFailed), err.Error())
		log.Printf("product import failed for %s: %v", merchantID, err)
		return
	}
	if summary.Count == 0 && len(summary.Skipped) > 0 {
		s.tracker.Update(merchantID, StepProducts, StepSkipped, summary.Skipped[0].Reason, "")
		return
	}
	notify.Notify(ingestion.StateCompleted)
	s.tracker.Update(merchantID, StepProducts, StepCompleted,
		fmt.Sprintf("processed %d products from %s", summary.Count, catalogPath), "")
}

func (s *OnboardService) runDocuments(ctx context.Context, merchantID string, docPaths []string) {
	if len(docPaths) == 0 {
		s.tracker.Update(merchantID, StepDocuments, StepSkipped, "no documents found in knowledge_base", "")
		return
	}

	notify := s.stepStates(merchantID, StepDocuments)
	notify.Notify(ingestion.StatePending)
	summary, err := s.ingestor.ConvertDocuments(ctx, merchantID, docPaths, notify)
	if err != nil {
		s.tracker.Update(merchantID, StepDocuments, StepFailed, string(ingestion.StateFailed), err.Error())
		log.Printf("document conversion failed for %s: %v", merchantID, err)
		return
	}
	if summary.Count == 0 {
		msg := "no documents were successfully converted"
		if len(summary.Skipped) > 0 {
			msg = fmt.Sprintf("%s (all %d files were skipped)", msg, len(summary.Skipped))
		}
		s.tracker.Update(merchantID, StepDocuments, StepSkipped, msg, "")
		return
	}
	notify.Notify(ingestion.StateCompleted)
	msg := fmt.Sprintf("converted %d chunks", summary.Count)
	if len(summary.Skipped) > 0 {
		msg = fmt.Sprintf("%s (skipped %d files)", msg, len(summary.Skipped))
	}
	s.tracker.Update(merchantID, StepDocuments, StepCompleted, msg, "")
}
