// Package storesync provides the client that pulls product catalogs from
// connected e-commerce stores
package storesync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/shlior7/scenergy/internal/db/models"
)

const (
	// DefaultTimeout is the default timeout for catalog requests
	DefaultTimeout = 2 * time.Minute

	// pageSize is the number of products fetched per catalog page
	pageSize = 100

	shopifyAPIVersion = "2024-07"
)

// ExternalProduct is a product as reported by the store platform, normalized
// across providers
type ExternalProduct struct {
	ExternalID  string
	Title       string
	Description string
	ImageURLs   []string
}

// Options contains configuration options for the sync client
type Options struct {
	// Timeout is the per-request timeout
	Timeout time.Duration
}

// Client fetches products from a tenant's connected store. The connection
// supplies the provider, endpoint, and credentials per request.
type Client struct {
	http *resty.Client
}

// NewClient creates a new sync client with the given options
func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	c := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{http: c}
}

// APIError is a non-2xx response from the store platform
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("store returned %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether the request may succeed if retried later
func (e *APIError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// IsTemporary reports whether err is a store error worth retrying.
// Transport failures are not APIErrors and should be retried regardless.
func IsTemporary(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return true
}

// FetchProducts retrieves the given products by their platform ids
func (c *Client) FetchProducts(ctx context.Context, conn *models.StoreConnection, externalIDs []string) ([]ExternalProduct, error) {
	if len(externalIDs) == 0 {
		return nil, fmt.Errorf("external ids are required")
	}

	impl, err := connectorFor(conn.Provider)
	if err != nil {
		return nil, err
	}
	return impl.fetchByIDs(ctx, c.http, conn, externalIDs)
}

// ForEachProduct pages through the store's full catalog, invoking fn once
// per page of products. Iteration stops on the first error from the store
// or from fn.
func (c *Client) ForEachProduct(ctx context.Context, conn *models.StoreConnection, fn func([]ExternalProduct) error) error {
	impl, err := connectorFor(conn.Provider)
	if err != nil {
		return err
	}
	return impl.fetchAll(ctx, c.http, conn, fn)
}

// connector adapts one provider's catalog API to the normalized product shape
type connector interface {
	fetchAll(ctx context.Context, http *resty.Client, conn *models.StoreConnection, fn func([]ExternalProduct) error) error
	fetchByIDs(ctx context.Context, http *resty.Client, conn *models.StoreConnection, ids []string) ([]ExternalProduct, error)
}

func connectorFor(p models.StoreProvider) (connector, error) {
	switch p {
	case models.StoreProviderShopify:
		return shopifyConnector{}, nil
	case models.StoreProviderWooCommerce:
		return wooConnector{}, nil
	case models.StoreProviderBigCommerce:
		return bigCommerceConnector{}, nil
	default:
		return nil, fmt.Errorf("invalid store provider: %s", p)
	}
}

func doGet(ctx context.Context, http *resty.Client, url string, headers map[string]string, query map[string]string, out interface{}) error {
	resp, err := http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetQueryParams(query).
		SetResult(out).
		Get(url)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return &APIError{StatusCode: resp.StatusCode(), Message: resp.Status()}
	}
	return nil
}

// Shopify

type shopifyConnector struct{}

type shopifyProduct struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	BodyHTML string `json:"body_html"`
	Images   []struct {
		Src string `json:"src"`
	} `json:"images"`
}

type shopifyProductList struct {
	Products []shopifyProduct `json:"products"`
}

func (shopifyConnector) url(conn *models.StoreConnection) string {
	return fmt.Sprintf("https://%s/admin/api/%s/products.json", conn.ShopDomain, shopifyAPIVersion)
}

func (shopifyConnector) headers(conn *models.StoreConnection) map[string]string {
	return map[string]string{"X-Shopify-Access-Token": conn.AccessToken}
}

func (s shopifyConnector) fetchAll(ctx context.Context, http *resty.Client, conn *models.StoreConnection, fn func([]ExternalProduct) error) error {
	sinceID := "0"
	for {
		var list shopifyProductList
		query := map[string]string{
			"limit":    fmt.Sprintf("%d", pageSize),
			"since_id": sinceID,
		}
		if err := doGet(ctx, http, s.url(conn), s.headers(conn), query, &list); err != nil {
			return err
		}
		if len(list.Products) == 0 {
			return nil
		}

		if err := fn(normalizeShopify(list.Products)); err != nil {
			return err
		}
		sinceID = fmt.Sprintf("%d", list.Products[len(list.Products)-1].ID)
	}
}

func (s shopifyConnector) fetchByIDs(ctx context.Context, http *resty.Client, conn *models.StoreConnection, ids []string) ([]ExternalProduct, error) {
	var list shopifyProductList
	query := map[string]string{"ids": strings.Join(ids, ",")}
	if err := doGet(ctx, http, s.url(conn), s.headers(conn), query, &list); err != nil {
		return nil, err
	}
	return normalizeShopify(list.Products), nil
}

func normalizeShopify(products []shopifyProduct) []ExternalProduct {
	out := make([]ExternalProduct, 0, len(products))
	for _, p := range products {
		ep := ExternalProduct{
			ExternalID:  fmt.Sprintf("%d", p.ID),
			Title:       p.Title,
			Description: p.BodyHTML,
		}
		for _, img := range p.Images {
			ep.ImageURLs = append(ep.ImageURLs, img.Src)
		}
		out = append(out, ep)
	}
	return out
}

// WooCommerce

type wooConnector struct{}

type wooProduct struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Images      []struct {
		Src string `json:"src"`
	} `json:"images"`
}

func (wooConnector) url(conn *models.StoreConnection) string {
	return fmt.Sprintf("https://%s/wp-json/wc/v3/products", conn.ShopDomain)
}

func (wooConnector) headers(conn *models.StoreConnection) map[string]string {
	return map[string]string{"Authorization": "Bearer " + conn.AccessToken}
}

func (w wooConnector) fetchAll(ctx context.Context, http *resty.Client, conn *models.StoreConnection, fn func([]ExternalProduct) error) error {
	for page := 1; ; page++ {
		var list []wooProduct
		query := map[string]string{
			"per_page": fmt.Sprintf("%d", pageSize),
			"page":     fmt.Sprintf("%d", page),
		}
		if err := doGet(ctx, http, w.url(conn), w.headers(conn), query, &list); err != nil {
			return err
		}
		if len(list) == 0 {
			return nil
		}

		if err := fn(normalizeWoo(list)); err != nil {
			return err
		}
	}
}

func (w wooConnector) fetchByIDs(ctx context.Context, http *resty.Client, conn *models.StoreConnection, ids []string) ([]ExternalProduct, error) {
	var list []wooProduct
	query := map[string]string{"include": strings.Join(ids, ",")}
	if err := doGet(ctx, http, w.url(conn), w.headers(conn), query, &list); err != nil {
		return nil, err
	}
	return normalizeWoo(list), nil
}

func normalizeWoo(products []wooProduct) []ExternalProduct {
	out := make([]ExternalProduct, 0, len(products))
	for _, p := range products {
		ep := ExternalProduct{
			ExternalID:  fmt.Sprintf("%d", p.ID),
			Title:       p.Name,
			Description: p.Description,
		}
		for _, img := range p.Images {
			ep.ImageURLs = append(ep.ImageURLs, img.Src)
		}
		out = append(out, ep)
	}
	return out
}

// BigCommerce

type bigCommerceConnector struct{}

type bigCommerceProduct struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Images      []struct {
		URLStandard string `json:"url_standard"`
	} `json:"images"`
}

type bigCommerceProductList struct {
	Data []bigCommerceProduct `json:"data"`
}

// url uses the store hash stored as the connection's shop domain
func (bigCommerceConnector) url(conn *models.StoreConnection) string {
	return fmt.Sprintf("https://api.bigcommerce.com/stores/%s/v3/catalog/products", conn.ShopDomain)
}

func (bigCommerceConnector) headers(conn *models.StoreConnection) map[string]string {
	return map[string]string{"X-Auth-Token": conn.AccessToken}
}

func (b bigCommerceConnector) fetchAll(ctx context.Context, http *resty.Client, conn *models.StoreConnection, fn func([]ExternalProduct) error) error {
	for page := 1; ; page++ {
		var list bigCommerceProductList
		query := map[string]string{
			"limit":   fmt.Sprintf("%d", pageSize),
			"page":    fmt.Sprintf("%d", page),
			"include": "images",
		}
		if err := doGet(ctx, http, b.url(conn), b.headers(conn), query, &list); err != nil {
			return err
		}
		if len(list.Data) == 0 {
			return nil
		}

		if err := fn(normalizeBigCommerce(list.Data)); err != nil {
			return err
		}
	}
}

func (b bigCommerceConnector) fetchByIDs(ctx context.Context, http *resty.Client, conn *models.StoreConnection, ids []string) ([]ExternalProduct, error) {
	var list bigCommerceProductList
	query := map[string]string{
		"id:in":   strings.Join(ids, ","),
		"include": "images",
	}
	if err := doGet(ctx, http, b.url(conn), b.headers(conn), query, &list); err != nil {
		return nil, err
	}
	return normalizeBigCommerce(list.Data), nil
}

func normalizeBigCommerce(products []bigCommerceProduct) []ExternalProduct {
	out := make([]ExternalProduct, 0, len(products))
	for _, p := range products {
		ep := ExternalProduct{
			ExternalID:  fmt.Sprintf("%d", p.ID),
			Title:       p.Name,
			Description: p.Description,
		}
		for _, img := range p.Images {
			ep.ImageURLs = append(ep.ImageURLs, img.URLStandard)
		}
		out = append(out, ep)
	}
	return out
}
