package handlers

import (
	"github.com/shlior7/scenergy/internal/db/models"
)

func (s *HandlerTestSuite) TestCreateConnection() {
	body := `{
		"provider": "shopify",
		"shop_domain": "demo.myshopify.com",
		"access_token": "shpat_secret"
	}`
	resp := s.doRequest("POST", "/api/v1/connections", body)
	s.Equal(201, resp.StatusCode)

	var conn models.StoreConnection
	env := s.decodeData(resp, &conn)
	s.Equal(SuccessSlug, env.Slug)
	s.NotEmpty(conn.ID)
	s.Equal(models.StoreProviderShopify, conn.Provider)
	s.Equal("demo.myshopify.com", conn.ShopDomain)
	s.True(conn.Active)

	// The token must never leave the service
	s.NotContains(string(env.Data), "shpat_secret")

	stored, err := s.connectionRepo.GetByID(s.ctx, testTenantID, conn.ID)
	s.Require().NoError(err)
	s.Equal("shpat_secret", stored.AccessToken)
}

func (s *HandlerTestSuite) TestCreateConnectionInvalidProvider() {
	body := `{
		"provider": "etsy",
		"shop_domain": "demo.example.com",
		"access_token": "tok"
	}`
	resp := s.doRequest("POST", "/api/v1/connections", body)
	s.Equal(400, resp.StatusCode)

	env := s.decodeResponse(resp)
	s.Equal(InvalidInputSlug, env.Slug)
	s.Contains(env.Error, "store provider")
}

func (s *HandlerTestSuite) TestCreateConnectionMissingDomain() {
	body := `{
		"provider": "shopify",
		"access_token": "tok"
	}`
	resp := s.doRequest("POST", "/api/v1/connections", body)
	s.Equal(400, resp.StatusCode)

	env := s.decodeResponse(resp)
	s.Equal(InvalidInputSlug, env.Slug)
	s.Contains(env.Error, "shop domain")
}

func (s *HandlerTestSuite) TestCreateConnectionMissingToken() {
	body := `{
		"provider": "shopify",
		"shop_domain": "demo.myshopify.com"
	}`
	resp := s.doRequest("POST", "/api/v1/connections", body)
	s.Equal(400, resp.StatusCode)

	env := s.decodeResponse(resp)
	s.Equal(InvalidInputSlug, env.Slug)
	s.Equal("access_token is required", env.Error)
}

func (s *HandlerTestSuite) TestListConnections() {
	s.createTestConnection()

	woo := &models.StoreConnection{
		TenantID:    testTenantID,
		Provider:    models.StoreProviderWooCommerce,
		ShopDomain:  "shop.example.com",
		AccessToken: "wc_key",
		Active:      true,
	}
	s.Require().NoError(s.connectionRepo.Create(s.ctx, woo))

	resp := s.doRequest("GET", "/api/v1/connections", "")
	s.Equal(200, resp.StatusCode)

	var conns []models.StoreConnection
	env := s.decodeData(resp, &conns)
	s.Equal(SuccessSlug, env.Slug)
	s.Require().Len(conns, 2)

	providers := []models.StoreProvider{conns[0].Provider, conns[1].Provider}
	s.ElementsMatch([]models.StoreProvider{
		models.StoreProviderShopify,
		models.StoreProviderWooCommerce,
	}, providers)
}

func (s *HandlerTestSuite) TestListConnectionsScopedToTenant() {
	s.createTestConnection()

	resp := s.doRequestAs("GET", "/api/v1/connections", "", "tenant-b")
	s.Equal(200, resp.StatusCode)

	var conns []models.StoreConnection
	s.decodeData(resp, &conns)
	s.Empty(conns)
}
