// Package client provides the API client for interacting with the Scenergy API
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/shlior7/scenergy/internal/constants"
	"github.com/shlior7/scenergy/internal/db/models"
	"github.com/shlior7/scenergy/internal/types"
)

// DefaultTimeout is the default timeout for API requests
const DefaultTimeout = 30 * time.Second

// DefaultBaseURL is the default base URL for the API
const DefaultBaseURL = "http://localhost:8080"

// apiV1Prefix is the prefix for all tenant-scoped endpoints
const apiV1Prefix = "/api/v1"

// Client is the interface for API client
type Client interface {
	// Health Check
	HealthCheck(ctx context.Context) (map[string]string, error)

	// Job Endpoints
	EnqueueJob(ctx context.Context, req types.EnqueueRequest) (types.EnqueueResponse, error)
	GetJob(ctx context.Context, id string) (types.JobResponse, error)
	ListJobs(ctx context.Context, opts *JobListOptions) (types.ListJobsResponse, error)
	CancelJob(ctx context.Context, id string) error

	// Product Endpoints
	ListProducts(ctx context.Context, opts *PageOptions) ([]models.Product, error)

	// Store Connection Endpoints
	CreateConnection(ctx context.Context, req types.CreateConnectionRequest) (models.StoreConnection, error)
	ListConnections(ctx context.Context) ([]models.StoreConnection, error)
}

var _ Client = &APIClient{}

// PageOptions selects a page of a list endpoint
type PageOptions struct {
	Limit  int
	Offset int
}

// JobListOptions filters and pages the jobs list endpoint
type JobListOptions struct {
	PageOptions
	Status string
	Type   string
}

// Options contains configuration options for the API client
type Options struct {
	// BaseURL is the base URL of the API
	BaseURL string

	// TenantID scopes every request; sent as the tenant header
	TenantID string

	// Timeout is the request timeout
	Timeout time.Duration
}

// APIClient implements the Client interface
type APIClient struct {
	baseURL  string
	tenantID string
	timeout  time.Duration
}

// NewClient creates a new API client with the given options
func NewClient(opts *Options) (Client, error) {
	if opts == nil {
		opts = &Options{}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	// Validate the base URL
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return &APIClient{
		baseURL:  opts.BaseURL,
		tenantID: opts.TenantID,
		timeout:  opts.Timeout,
	}, nil
}

// apiResponse is the envelope every v1 endpoint wraps its payload in
type apiResponse struct {
	Slug  string          `json:"slug"`
	Error string          `json:"error"`
	Data  json.RawMessage `json:"data"`
}

// createAgent creates a new Fiber Agent for the given method and endpoint
func (c *APIClient) createAgent(ctx context.Context, method, endpoint string, body interface{}) (*fiber.Agent, error) {
	// Resolve the endpoint URL
	fullURL := c.baseURL + endpoint

	// Create a new agent based on the HTTP method
	var agent *fiber.Agent
	switch method {
	case http.MethodGet:
		agent = fiber.Get(fullURL)
	case http.MethodPost:
		agent = fiber.Post(fullURL)
	case http.MethodDelete:
		agent = fiber.Delete(fullURL)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	// Set timeout from context or client default
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else {
		agent.Timeout(c.timeout)
	}

	// Set common headers
	agent.Set("Content-Type", "application/json")
	agent.Set("Accept", "application/json")
	if c.tenantID != "" {
		agent.Set(constants.TenantHeader, c.tenantID)
	}

	// Add body if provided
	if body != nil {
		agent.JSON(body)
	}

	return agent, nil
}

// doRequest sends the HTTP request, unwraps the response envelope, and
// decodes its data into v
func (c *APIClient) doRequest(agent *fiber.Agent, v interface{}) error {
	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("error sending request: %w", errs[0])
	}

	var envelope apiResponse
	envelopeErr := json.Unmarshal(body, &envelope)

	// Check for non-success status codes
	if statusCode < 200 || statusCode >= 300 {
		msg := string(body)
		if envelopeErr == nil && envelope.Error != "" {
			msg = envelope.Error
		}
		return &fiber.Error{
			Code:    statusCode,
			Message: msg,
		}
	}

	if v == nil {
		return nil
	}
	if envelopeErr != nil {
		return fmt.Errorf("error decoding response: %w", envelopeErr)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, v); err != nil {
		return fmt.Errorf("error decoding response data: %w", err)
	}
	return nil
}

// executeRequest creates an agent, sends the request, and processes the response
func (c *APIClient) executeRequest(ctx context.Context, method, endpoint string, body, response interface{}) error {
	agent, err := c.createAgent(ctx, method, endpoint, body)
	if err != nil {
		return err
	}

	return c.doRequest(agent, response)
}

// Health check implementation

// HealthCheck checks the health of the API
func (c *APIClient) HealthCheck(ctx context.Context) (map[string]string, error) {
	// The health endpoint is unversioned and unwrapped
	agent, err := c.createAgent(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}

	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("error sending request: %w", errs[0])
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, &fiber.Error{Code: statusCode, Message: string(body)}
	}

	var response map[string]string
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	return response, nil
}

// Job methods implementation

// EnqueueJob submits a new job and returns its assigned id
func (c *APIClient) EnqueueJob(ctx context.Context, req types.EnqueueRequest) (types.EnqueueResponse, error) {
	var response types.EnqueueResponse
	if err := c.executeRequest(ctx, http.MethodPost, apiV1Prefix+"/jobs", req, &response); err != nil {
		return types.EnqueueResponse{}, err
	}
	return response, nil
}

// GetJob retrieves the status of a job by id
func (c *APIClient) GetJob(ctx context.Context, id string) (types.JobResponse, error) {
	var response types.JobResponse
	if err := c.executeRequest(ctx, http.MethodGet, apiV1Prefix+"/jobs/"+url.PathEscape(id), nil, &response); err != nil {
		return types.JobResponse{}, err
	}
	return response, nil
}

// ListJobs lists the tenant's jobs with optional filtering
func (c *APIClient) ListJobs(ctx context.Context, opts *JobListOptions) (types.ListJobsResponse, error) {
	q := url.Values{}
	if opts != nil {
		if opts.Limit > 0 {
			q.Set("limit", fmt.Sprintf("%d", opts.Limit))
		}
		if opts.Offset > 0 {
			q.Set("offset", fmt.Sprintf("%d", opts.Offset))
		}
		if opts.Status != "" {
			q.Set("status", opts.Status)
		}
		if opts.Type != "" {
			q.Set("type", opts.Type)
		}
	}

	endpoint := apiV1Prefix + "/jobs"
	if encoded := q.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var response types.ListJobsResponse
	if err := c.executeRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return types.ListJobsResponse{}, err
	}
	return response, nil
}

// CancelJob cancels a pending job. Jobs already claimed by a worker are not
// cancellable and return a conflict error.
func (c *APIClient) CancelJob(ctx context.Context, id string) error {
	return c.executeRequest(ctx, http.MethodPost, apiV1Prefix+"/jobs/"+url.PathEscape(id)+"/cancel", nil, nil)
}

// Product methods implementation

// ListProducts lists the tenant's imported products
func (c *APIClient) ListProducts(ctx context.Context, opts *PageOptions) ([]models.Product, error) {
	q := url.Values{}
	if opts != nil {
		if opts.Limit > 0 {
			q.Set("limit", fmt.Sprintf("%d", opts.Limit))
		}
		if opts.Offset > 0 {
			q.Set("offset", fmt.Sprintf("%d", opts.Offset))
		}
	}

	endpoint := apiV1Prefix + "/products"
	if encoded := q.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var response []models.Product
	if err := c.executeRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}
	return response, nil
}

// Store connection methods implementation

// CreateConnection connects a store for the tenant
func (c *APIClient) CreateConnection(ctx context.Context, req types.CreateConnectionRequest) (models.StoreConnection, error) {
	var response models.StoreConnection
	if err := c.executeRequest(ctx, http.MethodPost, apiV1Prefix+"/connections", req, &response); err != nil {
		return models.StoreConnection{}, err
	}
	return response, nil
}

// ListConnections lists the tenant's store connections
func (c *APIClient) ListConnections(ctx context.Context) ([]models.StoreConnection, error) {
	var response []models.StoreConnection
	if err := c.executeRequest(ctx, http.MethodGet, apiV1Prefix+"/connections", nil, &response); err != nil {
		return nil, err
	}
	return response, nil
}
