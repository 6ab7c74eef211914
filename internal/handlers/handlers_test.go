package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shlior7/scenergy/internal/db/models"
	"github.com/shlior7/scenergy/internal/db/repos"
	"github.com/shlior7/scenergy/internal/genai"
	"github.com/shlior7/scenergy/internal/queue"
	"github.com/shlior7/scenergy/internal/storesync"
	"github.com/shlior7/scenergy/internal/types"
)

const testTenantID = "tenant-a"

// handlerEnv wires real repositories over an in-memory database for
// exercising handlers against fake providers
type handlerEnv struct {
	ctx         context.Context
	db          *gorm.DB
	products    *repos.ProductRepository
	assets      *repos.AssetRepository
	connections *repos.StoreConnectionRepository
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_json=1"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to create in-memory database")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Job{}, &models.Product{}, &models.Asset{}, &models.StoreConnection{}))

	return &handlerEnv{
		ctx:         context.Background(),
		db:          db,
		products:    repos.NewProductRepository(db),
		assets:      repos.NewAssetRepository(db),
		connections: repos.NewStoreConnectionRepository(db),
	}
}

// makeJob decodes the payload as the queue would and wraps it in a job
// context for direct handler invocation
func (e *handlerEnv) makeJob(t *testing.T, jobType models.JobType, payload string) *queue.JobContext {
	t.Helper()

	decoded, err := types.DecodeJobPayload(jobType, json.RawMessage(payload))
	require.NoError(t, err, "test payload must be valid")

	return queue.NewJobContext(&models.Job{
		ID:       "job-1",
		TenantID: testTenantID,
		Type:     jobType,
		Status:   models.JobStatusProcessing,
		Attempts: 1,
	}, decoded)
}

func (e *handlerEnv) createProduct(t *testing.T, connectionID, externalID string, imageURLs []string) *models.Product {
	t.Helper()

	product := &models.Product{
		TenantID:     testTenantID,
		ConnectionID: connectionID,
		ExternalID:   externalID,
		Title:        "Ceramic Mug",
		ImageURLs:    imageURLs,
	}
	require.NoError(t, e.products.Upsert(e.ctx, product))
	return product
}

func (e *handlerEnv) createAsset(t *testing.T, id string, productID *uint) *models.Asset {
	t.Helper()

	asset := &models.Asset{
		ID:        id,
		TenantID:  testTenantID,
		ProductID: productID,
		Kind:      models.AssetKindImage,
		URL:       "https://cdn.example.com/stored/" + id + ".png",
	}
	require.NoError(t, e.assets.Upsert(e.ctx, asset))
	return asset
}

func (e *handlerEnv) createConnection(t *testing.T, active bool) *models.StoreConnection {
	t.Helper()

	conn := &models.StoreConnection{
		TenantID:    testTenantID,
		Provider:    models.StoreProviderShopify,
		ShopDomain:  "demo.myshopify.com",
		AccessToken: "shpat_test",
		Active:      true,
	}
	require.NoError(t, e.connections.Create(e.ctx, conn))
	if !active {
		// The column default would override a false value on insert
		require.NoError(t, e.db.Model(conn).Update("active", false).Error)
		conn.Active = false
	}
	return conn
}

func parseResult(t *testing.T, raw json.RawMessage) types.JobResult {
	t.Helper()

	var result types.JobResult
	require.NoError(t, json.Unmarshal(raw, &result))
	return result
}

func itoa(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}

// fakeProvider implements imageProvider with canned responses
type fakeProvider struct {
	generateCalls []genai.GenerateImagesRequest
	generateErr   error
	editCalls     []genai.EditImageRequest
	editErr       error
	videoCalls    []genai.GenerateVideoRequest
	videoErr      error
	videoProgress []int
}

func (f *fakeProvider) GenerateImages(_ context.Context, req genai.GenerateImagesRequest) ([]genai.Asset, error) {
	f.generateCalls = append(f.generateCalls, req)
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	assets := make([]genai.Asset, req.VariantCount)
	for i := range assets {
		assets[i] = genai.Asset{
			URL:      fmt.Sprintf("https://cdn.provider.example/gen-%d-%d.png", len(f.generateCalls), i),
			MimeType: "image/png",
		}
	}
	return assets, nil
}

func (f *fakeProvider) EditImage(_ context.Context, req genai.EditImageRequest) (genai.Asset, error) {
	f.editCalls = append(f.editCalls, req)
	if f.editErr != nil {
		return genai.Asset{}, f.editErr
	}
	return genai.Asset{URL: "https://cdn.provider.example/edited.png", MimeType: "image/png"}, nil
}

func (f *fakeProvider) GenerateVideo(_ context.Context, req genai.GenerateVideoRequest, onProgress func(int)) (genai.Asset, error) {
	f.videoCalls = append(f.videoCalls, req)
	if f.videoErr != nil {
		return genai.Asset{}, f.videoErr
	}
	for _, p := range f.videoProgress {
		if onProgress != nil {
			onProgress(p)
		}
	}
	return genai.Asset{URL: "https://cdn.provider.example/video.mp4", MimeType: "video/mp4"}, nil
}

// fakeStore implements catalogSource with canned catalog pages
type fakeStore struct {
	products   []storesync.ExternalProduct
	pages      [][]storesync.ExternalProduct
	err        error
	fetchCalls [][]string
	walkCalls  int
}

func (f *fakeStore) FetchProducts(_ context.Context, _ *models.StoreConnection, externalIDs []string) ([]storesync.ExternalProduct, error) {
	f.fetchCalls = append(f.fetchCalls, externalIDs)
	if f.err != nil {
		return nil, f.err
	}
	requested := make(map[string]bool, len(externalIDs))
	for _, id := range externalIDs {
		requested[id] = true
	}
	var out []storesync.ExternalProduct
	for _, p := range f.products {
		if requested[p.ExternalID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) ForEachProduct(_ context.Context, _ *models.StoreConnection, fn func([]storesync.ExternalProduct) error) error {
	f.walkCalls++
	if f.err != nil {
		return f.err
	}
	for _, page := range f.pages {
		if err := fn(page); err != nil {
			return err
		}
	}
	return nil
}
