package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chekout-ai/onboard/internal/core/catalog"
	"github.com/chekout-ai/onboard/internal/core/configgen"
	"github.com/chekout-ai/onboard/internal/core/ingestion"
	"github.com/chekout-ai/onboard/internal/models"
	"github.com/chekout-ai/onboard/internal/services"
)

type fakeObjectStore struct {
	objects map[string][]byte
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

type fakeDB struct{}

func (fakeDB) UpsertMerchant(context.Context, *models.Merchant) error { return nil }
func (fakeDB) EnsureShopifyStore(context.Context, string, string) (int64, error) {
	return 1, nil
}
func (fakeDB) EnsureWooStore(context.Context, string, string, string) (int64, error) {
	return 1, nil
}
func (fakeDB) EnsureSquarespaceStore(context.Context, string, string, string) (int64, error) {
	return 1, nil
}
func (fakeDB) ReplaceDocumentChunks(_ context.Context, _ string, chunks []models.DocumentChunk) (int, error) {
	return len(chunks), nil
}
func (fakeDB) ReplaceShopifyProducts(_ context.Context, _ string, _ int64, products []models.ShopifyProduct) (int, error) {
	return len(products), nil
}
func (fakeDB) ReplaceWooProducts(_ context.Context, _ string, _ int64, products []models.WooProduct) (int, error) {
	return len(products), nil
}
func (fakeDB) ReplaceSquarespaceProducts(_ context.Context, _ string, _ int64, products []models.SquarespaceProduct) (int, error) {
	return len(products), nil
}
func (fakeDB) Close() error { return nil }

type fakeProvider struct{}

func (fakeProvider) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1}
	}
	return out, nil
}

func newTestHandler(t *testing.T) (*IngestHandler, *services.StatusTracker) {
	t.Helper()
	dbc := fakeDB{}
	store := &fakeObjectStore{objects: map[string][]byte{}}
	batcher := ingestion.NewEmbedBatcher(fakeProvider{}, 25)
	importer := catalog.NewProductImporter(dbc, store, batcher)
	ingestor := ingestion.NewDocumentIngestor(dbc, store, batcher, ingestion.NewDocconvExtractor(), ingestion.IngestConfig{})
	confgen := configgen.NewGenerator(store, "test-bucket")
	tracker := services.NewStatusTracker()
	svc := services.NewOnboardService(dbc, store, importer, ingestor, confgen, tracker)

	runner, err := services.NewJobRunner(svc, tracker, 1)
	require.NoError(t, err)
	t.Cleanup(runner.Close)

	return NewIngestHandler(runner, tracker), tracker
}

func TestStartIngestAccepted(t *testing.T) {
	h, tracker := newTestHandler(t)

	body := `{"merchant_id":"m1","user_id":"u1","shop_name":"Example"}`
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.StartIngest(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "m1", resp["merchant_id"])
	assert.Equal(t, "pending", resp["status"])
	assert.NotEmpty(t, resp["job_id"])

	require.Eventually(t, func() bool {
		run := tracker.Get("m1")
		return run != nil && !run.Running
	}, 5*time.Second, 10*time.Millisecond)
}

func TestStartIngestRejectsInvalidBody(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.StartIngest(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartIngestRejectsMissingMerchantID(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader(`{"user_id":"u1"}`))
	rec := httptest.NewRecorder()
	h.StartIngest(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "merchant_id")
}

func TestGetStatus(t *testing.T) {
	h, tracker := newTestHandler(t)
	tracker.Begin("m1", "job-1")

	r := chi.NewRouter()
	r.Get("/api/ingest-status/{merchantID}", h.GetStatus)

	req := httptest.NewRequest(http.MethodGet, "/api/ingest-status/m1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status services.RunStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "m1", status.MerchantID)
	assert.Equal(t, "job-1", status.JobID)
	assert.Len(t, status.Steps, 5)
}

func TestGetStatusUnknownMerchant(t *testing.T) {
	h, _ := newTestHandler(t)

	r := chi.NewRouter()
	r.Get("/api/ingest-status/{merchantID}", h.GetStatus)

	req := httptest.NewRequest(http.MethodGet, "/api/ingest-status/ghost", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
