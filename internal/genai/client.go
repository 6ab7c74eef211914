// Package genai provides the client for the image and video generation
// provider API
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultTimeout is the default timeout for generation requests
	DefaultTimeout = 5 * time.Minute

	// DefaultPollInterval is how often video operations are polled for
	// completion
	DefaultPollInterval = 5 * time.Second
)

// Options contains configuration options for the generation client
type Options struct {
	// BaseURL is the base URL of the provider API
	BaseURL string

	// APIKey authenticates requests against the provider
	APIKey string

	// Timeout is the per-request timeout
	Timeout time.Duration

	// PollInterval overrides how often long-running operations are polled
	PollInterval time.Duration
}

// Client is an HTTP client for the generation provider
type Client struct {
	http         *resty.Client
	pollInterval time.Duration
}

// NewClient creates a new generation client with the given options
func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = DefaultPollInterval
	}

	c := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetAuthToken(opts.APIKey)

	return &Client{http: c, pollInterval: opts.PollInterval}
}

// APIError is a non-2xx response from the provider
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider returned %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether the request may succeed if retried later.
// Rate limits and server errors are temporary, other client errors are not.
func (e *APIError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// IsTemporary reports whether err is a provider error worth retrying.
// Transport failures are not APIErrors and should be retried regardless.
func IsTemporary(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return true
}

// Asset is a single generated artifact hosted by the provider
type Asset struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

// GenerateImagesRequest is the request body for image generation
type GenerateImagesRequest struct {
	Prompt           string   `json:"prompt"`
	ProductImageURLs []string `json:"product_image_urls"`
	AspectRatio      string   `json:"aspect_ratio"`
	Quality          string   `json:"quality"`
	VariantCount     int      `json:"variant_count"`
	StyleContext     string   `json:"style_context,omitempty"`
	InspirationURLs  []string `json:"inspiration_urls,omitempty"`
}

type generateImagesResponse struct {
	Assets []Asset `json:"assets"`
}

// GenerateImages renders product scene variants and returns one asset per
// requested variant
func (c *Client) GenerateImages(ctx context.Context, req GenerateImagesRequest) ([]Asset, error) {
	var out generateImagesResponse
	if err := c.post(ctx, "/v1/images/generations", req, &out); err != nil {
		return nil, err
	}
	if len(out.Assets) == 0 {
		return nil, fmt.Errorf("provider returned no assets")
	}
	return out.Assets, nil
}

// EditImageRequest is the request body for instruction-based image editing
type EditImageRequest struct {
	SourceURL     string   `json:"source_url"`
	Instruction   string   `json:"instruction"`
	ReferenceURLs []string `json:"reference_urls,omitempty"`
	Quality       string   `json:"quality,omitempty"`
}

type editImageResponse struct {
	Asset Asset `json:"asset"`
}

// EditImage applies an edit instruction to an existing image
func (c *Client) EditImage(ctx context.Context, req EditImageRequest) (Asset, error) {
	var out editImageResponse
	if err := c.post(ctx, "/v1/images/edits", req, &out); err != nil {
		return Asset{}, err
	}
	if out.Asset.URL == "" {
		return Asset{}, fmt.Errorf("provider returned no asset")
	}
	return out.Asset, nil
}

// GenerateVideoRequest is the request body for video generation
type GenerateVideoRequest struct {
	SourceURL   string `json:"source_url"`
	Prompt      string `json:"prompt,omitempty"`
	AspectRatio string `json:"aspect_ratio"`
	Resolution  string `json:"resolution"`
	Model       string `json:"model,omitempty"`
}

// videoOperation is the provider's long-running operation envelope
type videoOperation struct {
	ID       string `json:"id"`
	Done     bool   `json:"done"`
	Progress int    `json:"progress"`
	Asset    *Asset `json:"asset,omitempty"`
	Error    string `json:"error,omitempty"`
}

// GenerateVideo starts a video generation operation and polls it until it
// completes. onProgress, if non-nil, is invoked with the provider's reported
// progress percentage after each poll.
func (c *Client) GenerateVideo(ctx context.Context, req GenerateVideoRequest, onProgress func(int)) (Asset, error) {
	var op videoOperation
	if err := c.post(ctx, "/v1/videos/generations", req, &op); err != nil {
		return Asset{}, err
	}

	for !op.Done {
		select {
		case <-ctx.Done():
			return Asset{}, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		if err := c.get(ctx, "/v1/operations/"+op.ID, &op); err != nil {
			return Asset{}, err
		}
		if onProgress != nil {
			onProgress(op.Progress)
		}
	}

	if op.Error != "" {
		return Asset{}, fmt.Errorf("video generation failed: %s", op.Error)
	}
	if op.Asset == nil {
		return Asset{}, fmt.Errorf("provider returned no asset")
	}
	return *op.Asset, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(out).
		Post(path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return newAPIError(resp)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(out).
		Get(path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return newAPIError(resp)
	}
	return nil
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func newAPIError(resp *resty.Response) error {
	msg := resp.Status()
	var body apiErrorBody
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error.Message != "" {
		msg = body.Error.Message
	}
	return &APIError{StatusCode: resp.StatusCode(), Message: msg}
}
