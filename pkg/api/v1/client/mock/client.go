package mock

import (
	"context"
	"time"

	"github.com/shlior7/scenergy/internal/db/models"
	"github.com/shlior7/scenergy/internal/types"
	"github.com/shlior7/scenergy/pkg/api/v1/client"
)

// MockClient implements the Client interface for testing
type MockClient struct {
	// Function fields that can be set to mock behavior
	HealthCheckFn      func(ctx context.Context) (map[string]string, error)
	EnqueueJobFn       func(ctx context.Context, req types.EnqueueRequest) (types.EnqueueResponse, error)
	GetJobFn           func(ctx context.Context, id string) (types.JobResponse, error)
	ListJobsFn         func(ctx context.Context, opts *client.JobListOptions) (types.ListJobsResponse, error)
	CancelJobFn        func(ctx context.Context, id string) error
	ListProductsFn     func(ctx context.Context, opts *client.PageOptions) ([]models.Product, error)
	CreateConnectionFn func(ctx context.Context, req types.CreateConnectionRequest) (models.StoreConnection, error)
	ListConnectionsFn  func(ctx context.Context) ([]models.StoreConnection, error)

	// Call tracking for verification
	HealthCheckCalls []struct {
		Ctx context.Context
	}
	EnqueueJobCalls []struct {
		Ctx context.Context
		Req types.EnqueueRequest
	}
	GetJobCalls []struct {
		Ctx context.Context
		ID  string
	}
	ListJobsCalls []struct {
		Ctx  context.Context
		Opts *client.JobListOptions
	}
	CancelJobCalls []struct {
		Ctx context.Context
		ID  string
	}
	ListProductsCalls []struct {
		Ctx  context.Context
		Opts *client.PageOptions
	}
	CreateConnectionCalls []struct {
		Ctx context.Context
		Req types.CreateConnectionRequest
	}
	ListConnectionsCalls []struct {
		Ctx context.Context
	}
}

// Ensure MockClient implements Client interface
var _ client.Client = (*MockClient)(nil)

// HealthCheck mocks the HealthCheck method
func (m *MockClient) HealthCheck(ctx context.Context) (map[string]string, error) {
	m.HealthCheckCalls = append(m.HealthCheckCalls, struct {
		Ctx context.Context
	}{
		Ctx: ctx,
	})

	if m.HealthCheckFn != nil {
		return m.HealthCheckFn(ctx)
	}

	return map[string]string{
		"status": "healthy",
	}, nil
}

// EnqueueJob mocks the EnqueueJob method
func (m *MockClient) EnqueueJob(ctx context.Context, req types.EnqueueRequest) (types.EnqueueResponse, error) {
	m.EnqueueJobCalls = append(m.EnqueueJobCalls, struct {
		Ctx context.Context
		Req types.EnqueueRequest
	}{
		Ctx: ctx,
		Req: req,
	})

	if m.EnqueueJobFn != nil {
		return m.EnqueueJobFn(ctx, req)
	}

	return types.EnqueueResponse{JobID: "job-1"}, nil
}

// GetJob mocks the GetJob method
func (m *MockClient) GetJob(ctx context.Context, id string) (types.JobResponse, error) {
	m.GetJobCalls = append(m.GetJobCalls, struct {
		Ctx context.Context
		ID  string
	}{
		Ctx: ctx,
		ID:  id,
	})

	if m.GetJobFn != nil {
		return m.GetJobFn(ctx, id)
	}

	return types.JobResponse{
		ID:          id,
		Type:        models.JobTypeImageGeneration,
		Status:      models.JobStatusCompleted,
		Progress:    100,
		Attempts:    1,
		MaxAttempts: 3,
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

// ListJobs mocks the ListJobs method
func (m *MockClient) ListJobs(ctx context.Context, opts *client.JobListOptions) (types.ListJobsResponse, error) {
	m.ListJobsCalls = append(m.ListJobsCalls, struct {
		Ctx  context.Context
		Opts *client.JobListOptions
	}{
		Ctx:  ctx,
		Opts: opts,
	})

	if m.ListJobsFn != nil {
		return m.ListJobsFn(ctx, opts)
	}

	return types.ListJobsResponse{
		Jobs: []types.JobResponse{
			{
				ID:       "job-1",
				Type:     models.JobTypeImageGeneration,
				Status:   models.JobStatusCompleted,
				Progress: 100,
			},
			{
				ID:     "job-2",
				Type:   models.JobTypeSyncAllProducts,
				Status: models.JobStatusProcessing,
			},
		},
		Pagination: types.PaginationResponse{Total: 2, Limit: 50},
	}, nil
}

// CancelJob mocks the CancelJob method
func (m *MockClient) CancelJob(ctx context.Context, id string) error {
	m.CancelJobCalls = append(m.CancelJobCalls, struct {
		Ctx context.Context
		ID  string
	}{
		Ctx: ctx,
		ID:  id,
	})

	if m.CancelJobFn != nil {
		return m.CancelJobFn(ctx, id)
	}

	return nil
}

// ListProducts mocks the ListProducts method
func (m *MockClient) ListProducts(ctx context.Context, opts *client.PageOptions) ([]models.Product, error) {
	m.ListProductsCalls = append(m.ListProductsCalls, struct {
		Ctx  context.Context
		Opts *client.PageOptions
	}{
		Ctx:  ctx,
		Opts: opts,
	})

	if m.ListProductsFn != nil {
		return m.ListProductsFn(ctx, opts)
	}

	return []models.Product{
		{
			ID:         1,
			TenantID:   "tenant-a",
			ExternalID: "1001",
			Title:      "Ceramic Mug",
		},
	}, nil
}

// CreateConnection mocks the CreateConnection method
func (m *MockClient) CreateConnection(ctx context.Context, req types.CreateConnectionRequest) (models.StoreConnection, error) {
	m.CreateConnectionCalls = append(m.CreateConnectionCalls, struct {
		Ctx context.Context
		Req types.CreateConnectionRequest
	}{
		Ctx: ctx,
		Req: req,
	})

	if m.CreateConnectionFn != nil {
		return m.CreateConnectionFn(ctx, req)
	}

	return models.StoreConnection{
		ID:         "conn-1",
		TenantID:   "tenant-a",
		Provider:   models.StoreProvider(req.Provider),
		ShopDomain: req.ShopDomain,
		Active:     true,
	}, nil
}

// ListConnections mocks the ListConnections method
func (m *MockClient) ListConnections(ctx context.Context) ([]models.StoreConnection, error) {
	m.ListConnectionsCalls = append(m.ListConnectionsCalls, struct {
		Ctx context.Context
	}{
		Ctx: ctx,
	})

	if m.ListConnectionsFn != nil {
		return m.ListConnectionsFn(ctx)
	}

	return []models.StoreConnection{
		{
			ID:         "conn-1",
			TenantID:   "tenant-a",
			Provider:   models.StoreProviderShopify,
			ShopDomain: "demo.myshopify.com",
			Active:     true,
		},
	}, nil
}
