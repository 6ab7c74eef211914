package handlers

import (
	"fmt"

	"github.com/shlior7/scenergy/internal/db/models"
)

func (s *HandlerTestSuite) TestListProducts() {
	conn := s.createTestConnection()
	s.createTestProduct(conn, "1001", "Ceramic Mug")
	s.createTestProduct(conn, "1002", "Walnut Cutting Board")

	resp := s.doRequest("GET", "/api/v1/products", "")
	s.Equal(200, resp.StatusCode)

	var products []models.Product
	env := s.decodeData(resp, &products)
	s.Equal(SuccessSlug, env.Slug)
	s.Require().Len(products, 2)

	titles := []string{products[0].Title, products[1].Title}
	s.ElementsMatch([]string{"Ceramic Mug", "Walnut Cutting Board"}, titles)
}

func (s *HandlerTestSuite) TestListProductsScopedToTenant() {
	conn := s.createTestConnection()
	s.createTestProduct(conn, "1001", "Ceramic Mug")

	resp := s.doRequestAs("GET", "/api/v1/products", "", "tenant-b")
	s.Equal(200, resp.StatusCode)

	var products []models.Product
	s.decodeData(resp, &products)
	s.Empty(products)
}

func (s *HandlerTestSuite) TestGetProduct() {
	conn := s.createTestConnection()
	product := s.createTestProduct(conn, "1001", "Ceramic Mug")

	resp := s.doRequest("GET", fmt.Sprintf("/api/v1/products/%d", product.ID), "")
	s.Equal(200, resp.StatusCode)

	var got models.Product
	env := s.decodeData(resp, &got)
	s.Equal(SuccessSlug, env.Slug)
	s.Equal(product.ID, got.ID)
	s.Equal("Ceramic Mug", got.Title)
	s.Equal("1001", got.ExternalID)
	s.Equal(conn.ID, got.ConnectionID)
}

func (s *HandlerTestSuite) TestGetProductNotFound() {
	resp := s.doRequest("GET", "/api/v1/products/999", "")
	s.Equal(404, resp.StatusCode)

	env := s.decodeResponse(resp)
	s.Equal(NotFoundSlug, env.Slug)
	s.Equal("product not found", env.Error)
}

func (s *HandlerTestSuite) TestGetProductInvalidID() {
	resp := s.doRequest("GET", "/api/v1/products/mug", "")
	s.Equal(400, resp.StatusCode)

	env := s.decodeResponse(resp)
	s.Equal(InvalidInputSlug, env.Slug)
	s.Equal("invalid product id", env.Error)
}
