package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shlior7/scenergy/internal/db/models"
)

// ErrAssetNotFound is returned when an asset id does not exist for the tenant
var ErrAssetNotFound = errors.New("asset not found")

// AssetRepository handles database operations for generated assets
type AssetRepository struct {
	db *gorm.DB
}

// NewAssetRepository creates a new asset repository instance
func NewAssetRepository(db *gorm.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// Upsert stores a generated asset. Asset ids are deterministic per producing
// job, so a handler re-run after a reclaim overwrites the earlier row.
func (r *AssetRepository) Upsert(ctx context.Context, asset *models.Asset) error {
	if err := asset.Validate(); err != nil {
		return fmt.Errorf("invalid asset: %w", err)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(asset).Error
}

// GetByID retrieves an asset by ID scoped to its owning tenant
func (r *AssetRepository) GetByID(ctx context.Context, tenantID, id string) (*models.Asset, error) {
	var asset models.Asset
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	return &asset, nil
}

// ListByJob retrieves the assets produced by a job
func (r *AssetRepository) ListByJob(ctx context.Context, jobID string) ([]models.Asset, error) {
	var assets []models.Asset
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("id ASC").
		Find(&assets).Error
	return assets, err
}
