package models

import (
	"fmt"
	"time"
)

// Product is a catalog item imported from a connected store. Rows are
// upserted by the sync handlers keyed on (connection_id, external_id) so a
// re-run of the same sync job overwrites instead of duplicating.
type Product struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	TenantID     string    `json:"tenant_id" gorm:"not null;size:64;index"`
	ConnectionID string    `json:"connection_id" gorm:"not null;size:36;uniqueIndex:idx_products_connection_external,priority:1"`
	ExternalID   string    `json:"external_id" gorm:"not null;size:64;uniqueIndex:idx_products_connection_external,priority:2"`
	Title        string    `json:"title" gorm:"not null"`
	Description  string    `json:"description,omitempty" gorm:"type:text"`
	ImageURLs    []string  `json:"image_urls,omitempty" gorm:"serializer:json;type:jsonb"`
	SyncedAt     time.Time `json:"synced_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate ensures that the product data is valid
func (p *Product) Validate() error {
	if p.TenantID == "" {
		return fmt.Errorf("product tenant id cannot be empty")
	}
	if p.ConnectionID == "" {
		return fmt.Errorf("product connection id cannot be empty")
	}
	if p.ExternalID == "" {
		return fmt.Errorf("product external id cannot be empty")
	}
	return nil
}
