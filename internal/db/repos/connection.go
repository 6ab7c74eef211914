package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/shlior7/scenergy/internal/db/models"
)

// ErrConnectionNotFound is returned when a store connection id does not
// exist for the tenant
var ErrConnectionNotFound = errors.New("store connection not found")

// StoreConnectionRepository handles database operations for store connections
type StoreConnectionRepository struct {
	db *gorm.DB
}

// NewStoreConnectionRepository creates a new store connection repository instance
func NewStoreConnectionRepository(db *gorm.DB) *StoreConnectionRepository {
	return &StoreConnectionRepository{db: db}
}

// Create creates a new store connection in the database
func (r *StoreConnectionRepository) Create(ctx context.Context, conn *models.StoreConnection) error {
	return r.db.WithContext(ctx).Create(conn).Error
}

// GetByID retrieves a store connection by ID scoped to its owning tenant
func (r *StoreConnectionRepository) GetByID(ctx context.Context, tenantID, id string) (*models.StoreConnection, error) {
	var conn models.StoreConnection
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&conn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConnectionNotFound
		}
		return nil, err
	}
	return &conn, nil
}

// List retrieves a tenant's store connections
func (r *StoreConnectionRepository) List(ctx context.Context, tenantID string) ([]models.StoreConnection, error) {
	var conns []models.StoreConnection
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&conns).Error
	return conns, err
}

// TouchSyncedAt records the completion time of the latest catalog sync
func (r *StoreConnectionRepository) TouchSyncedAt(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.StoreConnection{}).
		Where("id = ?", id).
		Update("last_synced_at", time.Now().UTC()).Error
}
