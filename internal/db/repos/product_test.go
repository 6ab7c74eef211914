package repos

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/shlior7/scenergy/internal/db/models"
)

type ProductRepositoryTestSuite struct {
	DBRepositoryTestSuite
}

func TestProductRepository(t *testing.T) {
	suite.Run(t, new(ProductRepositoryTestSuite))
}

func (s *ProductRepositoryTestSuite) TestUpsert() {
	conn := s.createTestConnection()
	product := s.createTestProduct(conn, "1001")
	s.NotZero(product.ID)
	s.False(product.SyncedAt.IsZero())
}

func (s *ProductRepositoryTestSuite) TestUpsertOverwrites() {
	conn := s.createTestConnection()
	s.createTestProduct(conn, "1001")

	// A second sync of the same platform product updates in place
	err := s.productRepo.Upsert(s.ctx, &models.Product{
		TenantID:     testTenantID,
		ConnectionID: conn.ID,
		ExternalID:   "1001",
		Title:        "Ceramic Mug v2",
		ImageURLs:    []string{"https://cdn.example.com/mug-front.jpg", "https://cdn.example.com/mug-side.jpg"},
	})
	s.NoError(err)

	products, err := s.productRepo.List(s.ctx, testTenantID, nil)
	s.NoError(err)
	s.Require().Len(products, 1)
	s.Equal("Ceramic Mug v2", products[0].Title)
	s.Len(products[0].ImageURLs, 2)
}

func (s *ProductRepositoryTestSuite) TestUpsertRejectsInvalid() {
	err := s.productRepo.Upsert(s.ctx, &models.Product{
		TenantID:   testTenantID,
		ExternalID: "1001",
		Title:      "No connection",
	})
	s.Error(err)
}

func (s *ProductRepositoryTestSuite) TestGetByID() {
	conn := s.createTestConnection()
	product := s.createTestProduct(conn, "1001")

	found, err := s.productRepo.GetByID(s.ctx, testTenantID, product.ID)
	s.NoError(err)
	s.Equal(product.ExternalID, found.ExternalID)

	_, err = s.productRepo.GetByID(s.ctx, "tenant-b", product.ID)
	s.ErrorIs(err, ErrProductNotFound)

	_, err = s.productRepo.GetByID(s.ctx, testTenantID, 9999)
	s.ErrorIs(err, ErrProductNotFound)
}

func (s *ProductRepositoryTestSuite) TestGetByIDs() {
	conn := s.createTestConnection()
	first := s.createTestProduct(conn, "1001")
	second := s.createTestProduct(conn, "1002")

	products, err := s.productRepo.GetByIDs(s.ctx, testTenantID, []uint{first.ID, second.ID, 9999})
	s.NoError(err)
	s.Len(products, 2)

	products, err = s.productRepo.GetByIDs(s.ctx, "tenant-b", []uint{first.ID})
	s.NoError(err)
	s.Empty(products)
}

func (s *ProductRepositoryTestSuite) TestGetByExternalIDs() {
	conn := s.createTestConnection()
	s.createTestProduct(conn, "1001")
	s.createTestProduct(conn, "1002")

	products, err := s.productRepo.GetByExternalIDs(s.ctx, conn.ID, []string{"1001", "1002", "1003"})
	s.NoError(err)
	s.Len(products, 2)

	products, err = s.productRepo.GetByExternalIDs(s.ctx, "other-connection", []string{"1001"})
	s.NoError(err)
	s.Empty(products)
}

func (s *ProductRepositoryTestSuite) TestList() {
	conn := s.createTestConnection()
	for _, id := range []string{"1001", "1002", "1003"} {
		s.createTestProduct(conn, id)
	}

	products, err := s.productRepo.List(s.ctx, testTenantID, nil)
	s.NoError(err)
	s.Len(products, 3)

	products, err = s.productRepo.List(s.ctx, testTenantID, &models.ListOptions{Limit: 2})
	s.NoError(err)
	s.Len(products, 2)

	products, err = s.productRepo.List(s.ctx, "tenant-b", nil)
	s.NoError(err)
	s.Empty(products)
}
