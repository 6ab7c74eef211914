package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shlior7/scenergy/internal/db/models"
)

// ErrProductNotFound is returned when a product id does not exist for the tenant
var ErrProductNotFound = errors.New("product not found")

// ProductRepository handles database operations for products
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository instance
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Upsert inserts a product or refreshes an existing one keyed on
// (connection_id, external_id). Sync handlers may run the same import more
// than once; the second pass overwrites instead of duplicating.
func (r *ProductRepository) Upsert(ctx context.Context, product *models.Product) error {
	if err := product.Validate(); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}
	product.SyncedAt = time.Now().UTC()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "connection_id"}, {Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "description", "image_urls", "synced_at", "updated_at",
			}),
		}).
		Create(product).Error
}

// GetByID retrieves a product by ID scoped to its owning tenant
func (r *ProductRepository) GetByID(ctx context.Context, tenantID string, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// GetByIDs retrieves a tenant's products by their ids
func (r *ProductRepository) GetByIDs(ctx context.Context, tenantID string, ids []uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&products).Error
	return products, err
}

// GetByExternalIDs retrieves a connection's products by their platform ids
func (r *ProductRepository) GetByExternalIDs(ctx context.Context, connectionID string, externalIDs []string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("connection_id = ? AND external_id IN ?", connectionID, externalIDs).
		Find(&products).Error
	return products, err
}

// List retrieves a tenant's products newest-synced-first with pagination
func (r *ProductRepository) List(ctx context.Context, tenantID string, opts *models.ListOptions) ([]models.Product, error) {
	listOpts := models.ListOptions{}
	if opts != nil {
		listOpts = *opts
	}
	listOpts.Normalize()

	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("synced_at DESC").
		Limit(listOpts.Limit).
		Offset(listOpts.Offset).
		Find(&products).Error
	return products, err
}
